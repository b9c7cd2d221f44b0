package userdb

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MemoryRepository keeps users in process. It ignores the db argument and is
// used when the service runs without Postgres.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
	trials  map[trialKey]struct{}
}

type trialKey struct{ user, event uuid.UUID }

// NewMemoryRepository creates an empty in-memory user store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
		trials:  make(map[trialKey]struct{}),
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) CreateUser(_ context.Context, _ bun.IDB, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = NormalizeEmail(user.Email)
	if _, ok := m.byEmail[user.Email]; ok {
		return ErrEmailTaken
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = "member"
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	stored := *user
	m.byID[user.ID] = &stored
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *MemoryRepository) GetUserByID(_ context.Context, _ bun.IDB, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryRepository) GetUserByEmail(ctx context.Context, db bun.IDB, email string) (*User, error) {
	m.mu.RLock()
	id, ok := m.byEmail[NormalizeEmail(email)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetUserByID(ctx, db, id)
}

func (m *MemoryRepository) GetUsersByIDs(_ context.Context, _ bun.IDB, ids []uuid.UUID) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepository) SetMembershipPending(_ context.Context, _ bun.IDB, id uuid.UUID, pending bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.MembershipPending = pending
	u.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryRepository) DecrementPracticesLeft(_ context.Context, _ bun.IDB, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return 0, ErrNotFound
	}
	if u.PracticesLeft > 0 {
		u.PracticesLeft--
	}
	u.UpdatedAt = time.Now()
	return u.PracticesLeft, nil
}

func (m *MemoryRepository) RecordTrialPracticeUse(_ context.Context, _ bun.IDB, userID, eventID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[userID]; !ok {
		return false, ErrNotFound
	}
	key := trialKey{user: userID, event: eventID}
	if _, dup := m.trials[key]; dup {
		return false, nil
	}
	m.trials[key] = struct{}{}
	return true, nil
}
