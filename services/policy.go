package services

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"linkcut/models"
)

// AccessPolicy is the optional password gate and expiry deadline attached
// to a link. Both fields are immutable after creation.
type AccessPolicy struct {
	PasswordHash *string
	ExpiresAt    *time.Time
}

// NewAccessPolicy builds a policy from the creation request. A non-empty
// password is stored as a bcrypt hash, never in the clear. expireInHours
// is relative to now; nil means the link never expires.
func NewAccessPolicy(password string, expireInHours *int, now time.Time) (AccessPolicy, error) {
	var policy AccessPolicy

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return policy, err
		}
		h := string(hash)
		policy.PasswordHash = &h
	}

	if expireInHours != nil {
		t := now.Add(time.Duration(*expireInHours) * time.Hour)
		policy.ExpiresAt = &t
	}

	return policy, nil
}

// PolicyOf reconstructs the access policy stored on a link record.
func PolicyOf(link *models.Link) AccessPolicy {
	return AccessPolicy{
		PasswordHash: link.PasswordHash,
		ExpiresAt:    link.ExpiresAt,
	}
}

// RequiresPassword reports whether the link is password-protected.
func (p AccessPolicy) RequiresPassword() bool {
	return p.PasswordHash != nil
}

// Expired reports whether the policy's deadline has passed at now.
// A link expires the moment now reaches ExpiresAt.
func (p AccessPolicy) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

// CheckPassword evaluates the password gate for a resolution attempt.
// An open link grants access regardless of candidate. A protected link
// returns ErrPasswordRequired when no candidate was supplied and
// ErrWrongPassword on a mismatch; the bcrypt comparison is safe against
// timing attacks.
func (p AccessPolicy) CheckPassword(candidate string) error {
	if p.PasswordHash == nil {
		return nil
	}
	if candidate == "" {
		return ErrPasswordRequired
	}
	if bcrypt.CompareHashAndPassword([]byte(*p.PasswordHash), []byte(candidate)) != nil {
		return ErrWrongPassword
	}
	return nil
}
