// Package storage defines the persistence contracts for links and users.
package storage

import (
	"context"
	"errors"

	"linkcut/models"
)

// Sentinel errors shared by all store implementations.
var (
	ErrNotFound   = errors.New("record not found")
	ErrCodeTaken  = errors.New("short code already exists")
	ErrUserExists = errors.New("username or email already exists")
)

// LinkStore persists link records. Insert must enforce short-code
// uniqueness atomically at write time and return ErrCodeTaken on a
// violation; callers treat that the same as a read-time collision.
type LinkStore interface {
	Insert(ctx context.Context, link *models.Link) error
	FindByCode(ctx context.Context, code string) (*models.Link, error)
	DeleteByCode(ctx context.Context, code string) error
	FindByOwner(ctx context.Context, ownerID uint) ([]models.Link, error)
	RecordClick(ctx context.Context, stat *models.ClickStat) error
}

// UserStore persists accounts and the ownership references between an
// account and its links.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)

	// AppendLink attaches an already-inserted link to the owner's link
	// list. Returns ErrNotFound if the link does not exist.
	AppendLink(ctx context.Context, ownerID, linkID uint) error
}
