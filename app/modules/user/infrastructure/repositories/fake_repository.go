package userdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepository is a fake implementation of Repository for testing.
type FakeRepository struct {
	CreateUserFn             func(ctx context.Context, db bun.IDB, user *User) error
	GetUserByIDFn            func(ctx context.Context, db bun.IDB, id uuid.UUID) (*User, error)
	GetUserByEmailFn         func(ctx context.Context, db bun.IDB, email string) (*User, error)
	GetUsersByIDsFn          func(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*User, error)
	SetMembershipPendingFn   func(ctx context.Context, db bun.IDB, id uuid.UUID, pending bool) error
	DecrementPracticesLeftFn func(ctx context.Context, db bun.IDB, id uuid.UUID) (int, error)
	RecordTrialPracticeUseFn func(ctx context.Context, db bun.IDB, userID, eventID uuid.UUID) (bool, error)

	trace []string
}

// NewFakeRepository creates a new FakeRepository.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{}
}

var _ Repository = (*FakeRepository)(nil)

func (f *FakeRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the repository calls in order.
func (f *FakeRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepository) CreateUser(ctx context.Context, db bun.IDB, user *User) error {
	f.record("CreateUser")
	if f.CreateUserFn != nil {
		return f.CreateUserFn(ctx, db, user)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return nil
}

func (f *FakeRepository) GetUserByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*User, error) {
	f.record("GetUserByID")
	if f.GetUserByIDFn != nil {
		return f.GetUserByIDFn(ctx, db, id)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) GetUserByEmail(ctx context.Context, db bun.IDB, email string) (*User, error) {
	f.record("GetUserByEmail")
	if f.GetUserByEmailFn != nil {
		return f.GetUserByEmailFn(ctx, db, email)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) GetUsersByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*User, error) {
	f.record("GetUsersByIDs")
	if f.GetUsersByIDsFn != nil {
		return f.GetUsersByIDsFn(ctx, db, ids)
	}
	return nil, nil
}

func (f *FakeRepository) SetMembershipPending(ctx context.Context, db bun.IDB, id uuid.UUID, pending bool) error {
	f.record("SetMembershipPending")
	if f.SetMembershipPendingFn != nil {
		return f.SetMembershipPendingFn(ctx, db, id, pending)
	}
	return nil
}

func (f *FakeRepository) DecrementPracticesLeft(ctx context.Context, db bun.IDB, id uuid.UUID) (int, error) {
	f.record("DecrementPracticesLeft")
	if f.DecrementPracticesLeftFn != nil {
		return f.DecrementPracticesLeftFn(ctx, db, id)
	}
	return 0, nil
}

func (f *FakeRepository) RecordTrialPracticeUse(ctx context.Context, db bun.IDB, userID, eventID uuid.UUID) (bool, error) {
	f.record("RecordTrialPracticeUse")
	if f.RecordTrialPracticeUseFn != nil {
		return f.RecordTrialPracticeUseFn(ctx, db, userID, eventID)
	}
	return true, nil
}
