package storage

import (
	"context"
	"sync"

	"linkcut/models"
)

// Memory is an in-memory store used in tests. It mirrors the uniqueness
// semantics of the Postgres implementation: Insert is atomic under the
// mutex, so a duplicate short code is rejected at write time.
type Memory struct {
	mu         sync.RWMutex
	byCode     map[string]*models.Link
	users      map[uint]*models.User
	byUsername map[string]*models.User
	nextLinkID uint
	nextUserID uint
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byCode:     make(map[string]*models.Link),
		users:      make(map[uint]*models.User),
		byUsername: make(map[string]*models.User),
	}
}

func (m *Memory) Insert(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byCode[link.ShortCode]; taken {
		return ErrCodeTaken
	}

	m.nextLinkID++
	link.ID = m.nextLinkID

	stored := *link
	m.byCode[link.ShortCode] = &stored
	return nil
}

func (m *Memory) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *link
	return &clone, nil
}

func (m *Memory) DeleteByCode(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byCode[code]; !ok {
		return ErrNotFound
	}
	delete(m.byCode, code)
	return nil
}

func (m *Memory) FindByOwner(ctx context.Context, ownerID uint) ([]models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := []models.Link{}
	for _, link := range m.byCode {
		if link.OwnerID != nil && *link.OwnerID == ownerID {
			links = append(links, *link)
		}
	}
	return links, nil
}

func (m *Memory) RecordClick(ctx context.Context, stat *models.ClickStat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, link := range m.byCode {
		if link.ID == stat.LinkID {
			link.ClickCount++
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byUsername[user.Username]; taken {
		return ErrUserExists
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return ErrUserExists
		}
	}

	m.nextUserID++
	user.ID = m.nextUserID

	stored := *user
	m.users[user.ID] = &stored
	m.byUsername[user.Username] = &stored
	return nil
}

func (m *Memory) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *Memory) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *Memory) AppendLink(ctx context.Context, ownerID, linkID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, link := range m.byCode {
		if link.ID == linkID {
			owner := ownerID
			link.OwnerID = &owner
			return nil
		}
	}
	return ErrNotFound
}
