// Package services implements the short-code generation and resolution
// engine: code allocation, access policy enforcement, and the link
// lifecycle on top of the storage contracts.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"linkcut/models"
	"linkcut/storage"
)

// Links orchestrates allocation on create and policy evaluation on
// resolve. All configuration is injected at construction; the service
// holds no global state.
type Links struct {
	store   storage.LinkStore
	users   storage.UserStore
	baseURL string
	nowFunc func() time.Time
}

// NewLinks creates the link service. baseURL is the resolving host used
// to compose stored short URLs.
func NewLinks(store storage.LinkStore, users storage.UserStore, baseURL string) *Links {
	return &Links{
		store:   store,
		users:   users,
		baseURL: baseURL,
		nowFunc: time.Now,
	}
}

// CreateLink is the input to Create. OwnerID is nil for anonymous
// requests; ExpireInHours nil means the link never expires.
type CreateLink struct {
	LongURL       string
	CustomCode    string
	Password      string
	ExpireInHours *int
	OwnerID       *uint
}

// CreateResult is the outcome of a successful Create. Warning is set
// when the link exists but a follow-up step degraded (for example the
// owner attachment failed).
type CreateResult struct {
	Link    *models.Link
	Warning string
}

// Create allocates a short code for the request, persists the record in
// a single atomic write, and attaches it to the owner's link list when
// an owner is present. The owner attachment is best effort: the link is
// the primary artifact, so a failure there surfaces as a warning on an
// otherwise successful result.
func (s *Links) Create(ctx context.Context, in CreateLink) (*CreateResult, error) {
	if in.LongURL == "" {
		return nil, ErrInvalidInput
	}

	now := s.nowFunc()
	policy, err := NewAccessPolicy(in.Password, in.ExpireInHours, now)
	if err != nil {
		return nil, fmt.Errorf("hashing link password: %w", err)
	}

	link := &models.Link{
		LongURL:      in.LongURL,
		PasswordHash: policy.PasswordHash,
		ExpiresAt:    policy.ExpiresAt,
		CreatedAt:    now,
	}

	if in.CustomCode != "" {
		err = s.insertWithCustomCode(ctx, link, in.CustomCode)
	} else {
		err = s.insertWithDerivedCode(ctx, link)
	}
	if err != nil {
		return nil, err
	}

	result := &CreateResult{Link: link}
	if in.OwnerID != nil {
		if err := s.users.AppendLink(ctx, *in.OwnerID, link.ID); err != nil {
			log.Printf("Failed to attach link %q to owner %d: %v", link.ShortCode, *in.OwnerID, err)
			result.Warning = "link created but could not be attached to your account"
		} else {
			owner := *in.OwnerID
			link.OwnerID = &owner
		}
	}

	return result, nil
}

// insertWithCustomCode uses the caller's code verbatim. There is no
// retry: the caller chose the code, so an occupied code is a conflict
// whether it shows up on the pre-check or on the write itself.
func (s *Links) insertWithCustomCode(ctx context.Context, link *models.Link, code string) error {
	_, err := s.store.FindByCode(ctx, code)
	if err == nil {
		return ErrCodeConflict
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("checking custom code: %w", err)
	}

	link.ShortCode = code
	link.ShortURL = s.baseURL + "/" + code

	if err := s.store.Insert(ctx, link); err != nil {
		if errors.Is(err, storage.ErrCodeTaken) {
			return ErrCodeConflict
		}
		return fmt.Errorf("saving link: %w", err)
	}
	return nil
}

// insertWithDerivedCode derives the code from the URL's fingerprint and
// retries with fresh timestamp salt while the candidate is occupied. The
// store's unique constraint is the authority: losing the race between
// the pre-check and the write counts as a collision and retries too.
func (s *Links) insertWithDerivedCode(ctx context.Context, link *models.Link) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code := candidateCode(link.LongURL, attempt, s.nowFunc())

		_, err := s.store.FindByCode(ctx, code)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("checking candidate code: %w", err)
		}

		link.ShortCode = code
		link.ShortURL = s.baseURL + "/" + code

		err = s.store.Insert(ctx, link)
		if err == nil {
			return nil
		}
		if errors.Is(err, storage.ErrCodeTaken) {
			continue
		}
		return fmt.Errorf("saving link: %w", err)
	}
	return ErrAllocationExhausted
}

// Resolve returns the link for a short code if the access policy admits
// the request. Expired links return ErrLinkExpired, distinct from
// ErrNotFound: the record still exists, it is just no longer resolvable.
// The destination is never returned on a failed password check.
func (s *Links) Resolve(ctx context.Context, code, password string) (*models.Link, error) {
	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up link: %w", err)
	}

	policy := PolicyOf(link)
	if policy.Expired(s.nowFunc()) {
		return nil, ErrLinkExpired
	}
	if err := policy.CheckPassword(password); err != nil {
		return nil, err
	}

	return link, nil
}

// Metadata returns the record for a code without evaluating the access
// policy, so callers can inspect ownership or expiry state.
func (s *Links) Metadata(ctx context.Context, code string) (*models.Link, error) {
	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up link: %w", err)
	}
	return link, nil
}

// Delete removes the record for a code. Expired records can still be
// deleted; only a missing code is an error.
func (s *Links) Delete(ctx context.Context, code string) error {
	err := s.store.DeleteByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting link: %w", err)
	}
	return nil
}

// ListForOwner returns the owner's links, newest first where the store
// supports ordering. An owner with no links gets an empty slice.
func (s *Links) ListForOwner(ctx context.Context, ownerID uint) ([]models.Link, error) {
	links, err := s.store.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	return links, nil
}

// RecordClick stores one visit to a link. Best effort: callers run it in
// a goroutine and log failures rather than delaying the redirect.
func (s *Links) RecordClick(ctx context.Context, link *models.Link, referrer, userAgent, ipAddress string) error {
	stat := &models.ClickStat{
		LinkID:      link.ID,
		ClickedAt:   s.nowFunc(),
		ReferrerURL: referrer,
		UserAgent:   userAgent,
		IPAddress:   ipAddress,
	}
	return s.store.RecordClick(ctx, stat)
}
