package userservice

import (
	"context"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	"github.com/google/uuid"
)

// Service is the user module's application API.
type Service interface {
	// GetProfile returns the signed-in user's profile.
	GetProfile(ctx context.Context) (*Profile, error)

	// RequestMembership marks the signed-in user's membership as pending.
	// Asking again while pending is a no-op.
	RequestMembership(ctx context.Context) (*Profile, error)

	// ConsumeTrialPractice uses one trial practice of a non-member who
	// registered for a practice. A (user, event) pair is charged once.
	ConsumeTrialPractice(ctx context.Context, registration clubevents.AttendeeRegisteredPayloadV1) (TrialPractice, error)
}

// Profile is the read view of a user.
type Profile struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	Membership        bool      `json:"membership"`
	MembershipPending bool      `json:"membership_pending"`
	IsDriver          bool      `json:"is_driver"`
	PracticesLeft     int       `json:"practices_left"`
}

// TrialPractice reports the outcome of ConsumeTrialPractice. Consumed is
// false when the registration did not use a trial practice.
type TrialPractice struct {
	UserID        uuid.UUID
	EventID       uuid.UUID
	Consumed      bool
	PracticesLeft int
}
