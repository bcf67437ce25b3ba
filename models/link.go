package models

import (
	"time"
)

// Link maps a short code to its destination URL together with the access
// policy chosen at creation time. PasswordHash and ExpiresAt are nil for
// open, non-expiring links; OwnerID is nil for anonymous links.
type Link struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	OwnerID      *uint      `json:"owner_id,omitempty" gorm:"index"`
	LongURL      string     `json:"long_url" gorm:"not null"`
	ShortCode    string     `json:"short_code" gorm:"unique;not null"`
	ShortURL     string     `json:"short_url" gorm:"not null"`
	PasswordHash *string    `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ClickCount   int64      `json:"click_count" gorm:"default:0"`
}
