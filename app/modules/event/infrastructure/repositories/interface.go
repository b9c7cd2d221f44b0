package eventdb

import (
	"context"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListedEvent is an event row plus its attendees when they were expanded.
type ListedEvent struct {
	eventdomain.EventRecord
	Attendees []eventdomain.Person
}

// Repository is the storage contract of the event module. Every method takes
// an optional bun.IDB so callers can run it inside a transaction; nil uses
// the repository's own handle.
type Repository interface {
	ListEvents(ctx context.Context, db bun.IDB, q eventdomain.ListQuery) ([]ListedEvent, error)
	GetEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*eventdomain.EventRecord, error)
	// LockEvent loads the event and holds a row lock until db's transaction ends.
	LockEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*eventdomain.EventRecord, error)
	CreateEvent(ctx context.Context, db bun.IDB, rec *eventdomain.EventRecord) error

	ListAttendees(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]eventdomain.Person, error)
	CountAttendees(ctx context.Context, db bun.IDB, eventID uuid.UUID) (int, error)
	IsAttendee(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) (bool, error)
	AddAttendee(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) error
	RemoveAttendee(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) error

	ListDrivers(ctx context.Context, db bun.IDB, eventIDs ...uuid.UUID) ([]eventdomain.DriverRecord, error)
	GetDriver(ctx context.Context, db bun.IDB, id uuid.UUID) (*eventdomain.DriverRecord, error)
	GetDriverByOwner(ctx context.Context, db bun.IDB, eventID, ownerID uuid.UUID) (*eventdomain.DriverRecord, error)
	CreateDriver(ctx context.Context, db bun.IDB, rec *eventdomain.DriverRecord) error
	DeleteDriver(ctx context.Context, db bun.IDB, id uuid.UUID) error

	AddPassenger(ctx context.Context, db bun.IDB, driverID, eventID, userID uuid.UUID) error
	// RemovePassenger drops the user from whichever driver they ride with for
	// the event. Not riding with anyone is not an error.
	RemovePassenger(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) error
}
