package userdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the persistence contract for user data.
//
// Error semantics:
//   - ErrNotFound: requested record does not exist
//   - ErrEmailTaken: CreateUser collided on email
//   - other errors: infrastructure failures
type Repository interface {
	CreateUser(ctx context.Context, db bun.IDB, user *User) error
	GetUserByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, db bun.IDB, email string) (*User, error)
	GetUsersByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*User, error)

	// SetMembershipPending flags or clears a pending membership request.
	SetMembershipPending(ctx context.Context, db bun.IDB, id uuid.UUID, pending bool) error

	// DecrementPracticesLeft lowers the trial counter by one, never below zero,
	// and returns the new value.
	DecrementPracticesLeft(ctx context.Context, db bun.IDB, id uuid.UUID) (int, error)

	// RecordTrialPracticeUse marks the event as paid for with one of the
	// user's trial practices. It returns false when the pair is already
	// recorded.
	RecordTrialPracticeUse(ctx context.Context, db bun.IDB, userID, eventID uuid.UUID) (bool, error)
}
