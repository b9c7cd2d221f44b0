package eventdb

import (
	"time"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Event is a calendar entry.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`
	ID            uuid.UUID   `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title         string      `bun:"title,notnull"`
	Description   string      `bun:"description,notnull,default:''"`
	Type          string      `bun:"type,notnull,default:'other'"`
	StartTime     time.Time   `bun:"start_time,notnull"`
	EndTime       time.Time   `bun:"end_time,notnull"`
	Location      string      `bun:"location,notnull,default:''"`
	Capacity      int         `bun:"capacity,notnull,default:0"`
	Attendees     []*Attendee `bun:"rel:has-many,join:id=event_id"`
	CreatedAt     time.Time   `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time   `bun:",nullzero,notnull,default:current_timestamp"`
}

// Attendee is one registration of a user for an event.
type Attendee struct {
	bun.BaseModel `bun:"table:event_attendees,alias:ea"`
	EventID       uuid.UUID `bun:"event_id,pk,type:uuid"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid"`
	JoinedAt      time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp"`
	User          *Member   `bun:"rel:belongs-to,join:user_id=id"`
}

// Driver is a ride offered to an event.
type Driver struct {
	bun.BaseModel  `bun:"table:drivers,alias:d"`
	ID             uuid.UUID    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	EventID        uuid.UUID    `bun:"event_id,notnull,type:uuid"`
	OwnerID        uuid.UUID    `bun:"owner_id,notnull,type:uuid"`
	PickupTime     time.Time    `bun:"pickup_time,notnull"`
	PickupLocation string       `bun:"pickup_location,notnull"`
	Capacity       int          `bun:"capacity,notnull"`
	Owner          *Member      `bun:"rel:belongs-to,join:owner_id=id"`
	Passengers     []*Passenger `bun:"rel:has-many,join:id=driver_id"`
	CreatedAt      time.Time    `bun:",nullzero,notnull,default:current_timestamp"`
}

// Passenger seats a user in a driver's car. A user rides with at most one
// driver per event.
type Passenger struct {
	bun.BaseModel `bun:"table:driver_passengers,alias:dp"`
	DriverID      uuid.UUID `bun:"driver_id,pk,type:uuid"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid"`
	EventID       uuid.UUID `bun:"event_id,notnull,type:uuid"`
	JoinedAt      time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp"`
	User          *Member   `bun:"rel:belongs-to,join:user_id=id"`
}

// Member is the read-only slice of the users table this module needs.
type Member struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	Name          string    `bun:"name"`
	Email         string    `bun:"email"`
}

func (e *Event) toRecord() eventdomain.EventRecord {
	return eventdomain.EventRecord{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Type:        e.Type,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Location:    e.Location,
		Capacity:    e.Capacity,
	}
}

func eventFromRecord(rec *eventdomain.EventRecord) *Event {
	return &Event{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Type:        string(eventdomain.NormalizeEventType(rec.Type)),
		StartTime:   rec.StartTime,
		EndTime:     rec.EndTime,
		Location:    rec.Location,
		Capacity:    rec.Capacity,
	}
}

// people resolves attendees to persons, dropping those whose user row is gone.
func people(attendees []*Attendee) []eventdomain.Person {
	out := make([]eventdomain.Person, 0, len(attendees))
	for _, a := range attendees {
		if a.User == nil {
			continue
		}
		out = append(out, eventdomain.Person{ID: a.UserID, Name: a.User.Name, Email: a.User.Email, JoinedAt: a.JoinedAt})
	}
	return out
}

func (d *Driver) toRecord() eventdomain.DriverRecord {
	rec := eventdomain.DriverRecord{
		ID:             d.ID,
		EventID:        d.EventID,
		OwnerID:        d.OwnerID,
		PickupTime:     d.PickupTime,
		PickupLocation: d.PickupLocation,
		Capacity:       d.Capacity,
		CreatedAt:      d.CreatedAt,
		Passengers:     make([]eventdomain.Person, 0, len(d.Passengers)),
	}
	if d.Owner != nil {
		rec.Owner = &eventdomain.Person{ID: d.Owner.ID, Name: d.Owner.Name, Email: d.Owner.Email}
	}
	for _, p := range d.Passengers {
		if p.User == nil {
			continue
		}
		rec.Passengers = append(rec.Passengers, eventdomain.Person{ID: p.UserID, Name: p.User.Name, Email: p.User.Email, JoinedAt: p.JoinedAt})
	}
	return rec
}
