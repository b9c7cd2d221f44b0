package eventdomain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a club activity.
type EventType string

const (
	TypePractice     EventType = "practice"
	TypeMatchplay    EventType = "matchplay"
	TypeSpiel        EventType = "spiel"
	TypeChampionship EventType = "championship"
	TypeOpenHouse    EventType = "open house"
	TypeOther        EventType = "other"
)

// EventTypes lists every known type.
var EventTypes = []EventType{TypePractice, TypeMatchplay, TypeSpiel, TypeChampionship, TypeOpenHouse, TypeOther}

// ParseEventType matches s against the known types, ignoring case and
// surrounding space.
func ParseEventType(s string) (EventType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range EventTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// NormalizeEventType maps stored values onto a known type. Unknown or empty
// values read as TypeOther.
func NormalizeEventType(s string) EventType {
	if t, ok := ParseEventType(s); ok {
		return t
	}
	return TypeOther
}

// Person is a stored user reference as returned by the repository.
type Person struct {
	ID       uuid.UUID
	Name     string
	Email    string
	JoinedAt time.Time
}

// EventRecord is a stored event.
type EventRecord struct {
	ID          uuid.UUID
	Title       string
	Description string
	Type        string
	StartTime   time.Time
	EndTime     time.Time
	Location    string
	Capacity    int
}

// DriverRecord is a stored driver with owner and passengers expanded. Owner
// is nil when the owning user could not be resolved.
type DriverRecord struct {
	ID             uuid.UUID
	EventID        uuid.UUID
	OwnerID        uuid.UUID
	Owner          *Person
	PickupTime     time.Time
	PickupLocation string
	Capacity       int
	Passengers     []Person
	CreatedAt      time.Time
}

// PassengerIDs returns the ids of every stored passenger, owner included.
func (d DriverRecord) PassengerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(d.Passengers))
	for _, p := range d.Passengers {
		ids = append(ids, p.ID)
	}
	return ids
}

// Member is a resolved attendee in a view.
type Member struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Driver is the read view of a ride offer.
type Driver struct {
	ID             uuid.UUID `json:"id"`
	Owner          Member    `json:"owner"`
	PickupTime     time.Time `json:"pickup_time"`
	PickupLocation string    `json:"pickup_location"`
	Capacity       int       `json:"capacity"`
	Passengers     []Member  `json:"passengers"`
	SpotsLeft      int       `json:"spots_left"`
	Full           bool      `json:"full"`
}

// Transport is how an event's attendees get there.
type Transport struct {
	Self    []Member `json:"self"`
	Drivers []Driver `json:"drivers"`
}

// Event is the read view of an event with derived transport and capacity.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        EventType `json:"type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Transport   Transport `json:"transport"`
	Attendees   int       `json:"attendees"`
	// SpotsLeft is nil when the event has no capacity limit.
	SpotsLeft *int `json:"spots_left"`
}

// ToEventView maps a stored event and its transport onto the read view.
func ToEventView(rec EventRecord, t Transport) Event {
	if t.Self == nil {
		t.Self = []Member{}
	}
	if t.Drivers == nil {
		t.Drivers = []Driver{}
	}
	ev := Event{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Type:        NormalizeEventType(rec.Type),
		StartTime:   rec.StartTime,
		EndTime:     rec.EndTime,
		Location:    rec.Location,
		Capacity:    max(rec.Capacity, 0),
		Transport:   t,
		Attendees:   TotalAttendees(t),
	}
	if left, limited := EventSpotsLeft(ev.Capacity, t); limited {
		ev.SpotsLeft = &left
	}
	return ev
}

// ListOptions are the calendar filters a caller can ask for.
type ListOptions struct {
	Types        []EventType
	From         *time.Time
	To           *time.Time
	Q            string
	Location     string
	UpcomingOnly bool
	Sort         string
	Page         int
	Limit        int
}

// ExpandAttendees asks the repository to load attendee records with events.
const ExpandAttendees = "attendees"

// ListQuery is the record query sent to the repository.
type ListQuery struct {
	Filter  string
	Sort    string
	Page    int
	PerPage int
	Expand  []string
}

// Expands reports whether rel was requested.
func (q ListQuery) Expands(rel string) bool {
	for _, e := range q.Expand {
		if e == rel {
			return true
		}
	}
	return false
}

// Offset is the zero-based index of the page's first record.
func (q ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}
