// Package clubevents defines the topics and payloads exchanged on the event
// bus.
package clubevents

import (
	"time"

	"github.com/google/uuid"
)

// Event module topics.
const (
	AttendeeRegisteredV1   = "event.attendee.registered.v1"
	AttendeeUnregisteredV1 = "event.attendee.unregistered.v1"
	DriverRemovedV1        = "event.driver.removed.v1"
	PassengerReleasedV1    = "event.passenger.released.v1"
)

// User module topics.
const (
	MembershipRequestedV1   = "user.membership.requested.v1"
	TrialPracticeConsumedV1 = "user.trial_practice.consumed.v1"
)

// AttendeeRegisteredPayloadV1 is published after a registration commits.
type AttendeeRegisteredPayloadV1 struct {
	EventID      uuid.UUID `json:"event_id"`
	UserID       uuid.UUID `json:"user_id"`
	EventType    string    `json:"event_type"`
	Mode         string    `json:"mode"`
	DriverID     uuid.UUID `json:"driver_id,omitzero"`
	RegisteredAt time.Time `json:"registered_at"`
}

// AttendeeUnregisteredPayloadV1 is published after an unregistration commits.
type AttendeeUnregisteredPayloadV1 struct {
	EventID        uuid.UUID `json:"event_id"`
	UserID         uuid.UUID `json:"user_id"`
	UnregisteredAt time.Time `json:"unregistered_at"`
}

// DriverRemovedPayloadV1 announces a deleted ride. Released lists the
// passengers who now travel on their own.
type DriverRemovedPayloadV1 struct {
	EventID  uuid.UUID   `json:"event_id"`
	DriverID uuid.UUID   `json:"driver_id"`
	OwnerID  uuid.UUID   `json:"owner_id"`
	Released []uuid.UUID `json:"released"`
}

// PassengerReleasedPayloadV1 tells one passenger that their ride was
// cancelled. They stay registered and travel on their own.
type PassengerReleasedPayloadV1 struct {
	EventID  uuid.UUID `json:"event_id"`
	UserID   uuid.UUID `json:"user_id"`
	DriverID uuid.UUID `json:"driver_id"`
}

// MembershipRequestedPayloadV1 is published when a user asks to join.
type MembershipRequestedPayloadV1 struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// TrialPracticeConsumedPayloadV1 is published when a non-member uses one of
// their trial practices.
type TrialPracticeConsumedPayloadV1 struct {
	UserID        uuid.UUID `json:"user_id"`
	EventID       uuid.UUID `json:"event_id"`
	PracticesLeft int       `json:"practices_left"`
}
