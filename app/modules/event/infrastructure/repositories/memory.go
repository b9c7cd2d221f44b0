package eventdb

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	"github.com/Black-And-White-Club/curling-club/internal/filter"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MemberLookup resolves user ids to people. Ids missing from the result are
// treated as deleted users.
type MemberLookup func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]eventdomain.Person, error)

// MemoryRepository keeps events in process. It has no transactions: the db
// argument is ignored and LockEvent does not lock, so a check followed by a
// write is not atomic across callers.
type MemoryRepository struct {
	mu         sync.RWMutex
	schema     filter.Schema
	lookup     MemberLookup
	last       time.Time
	events     map[uuid.UUID]eventdomain.EventRecord
	attendees  map[uuid.UUID][]seat
	drivers    map[uuid.UUID]eventdomain.DriverRecord
	passengers []passengerSeat
}

type seat struct {
	UserID   uuid.UUID
	JoinedAt time.Time
}

type passengerSeat struct {
	seat
	DriverID uuid.UUID
	EventID  uuid.UUID
}

// NewMemoryRepository creates an empty store. A nil lookup resolves every id
// to a person without a name.
func NewMemoryRepository(loc *time.Location, lookup MemberLookup) *MemoryRepository {
	return &MemoryRepository{
		schema:    EventSchema(loc),
		lookup:    lookup,
		events:    make(map[uuid.UUID]eventdomain.EventRecord),
		attendees: make(map[uuid.UUID][]seat),
		drivers:   make(map[uuid.UUID]eventdomain.DriverRecord),
	}
}

// tick returns a strictly increasing timestamp so join order survives equal
// clock readings. Callers hold the write lock.
func (r *MemoryRepository) tick() time.Time {
	now := time.Now()
	if !now.After(r.last) {
		now = r.last.Add(time.Nanosecond)
	}
	r.last = now
	return now
}

type eventValues eventdomain.EventRecord

func (e eventValues) FilterValue(field string) any {
	switch field {
	case "id":
		return e.ID
	case "title":
		return e.Title
	case "description":
		return e.Description
	case "type":
		return e.Type
	case "location":
		return e.Location
	case "start_time":
		return e.StartTime
	case "end_time":
		return e.EndTime
	case "capacity":
		return e.Capacity
	}
	return nil
}

func (r *MemoryRepository) ListEvents(ctx context.Context, _ bun.IDB, q eventdomain.ListQuery) ([]ListedEvent, error) {
	node, err := filter.Parse(q.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	if err := r.schema.Validate(node); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	keys, err := filter.ParseSort(q.Sort, r.schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	r.mu.RLock()
	var matched []eventdomain.EventRecord
	for _, e := range r.events {
		ok, err := filter.Match(node, r.schema, eventValues(e))
		if err != nil {
			r.mu.RUnlock()
			return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		if ok {
			matched = append(matched, e)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b eventdomain.EventRecord) int {
		if c := filter.CompareRecords(eventValues(a), eventValues(b), keys, r.schema); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	if q.PerPage > 0 {
		start := min(q.Offset(), len(matched))
		end := min(start+q.PerPage, len(matched))
		matched = matched[start:end]
	}

	out := make([]ListedEvent, 0, len(matched))
	for _, e := range matched {
		le := ListedEvent{EventRecord: e}
		if q.Expands(eventdomain.ExpandAttendees) {
			if le.Attendees, err = r.ListAttendees(ctx, nil, e.ID); err != nil {
				return nil, err
			}
		}
		out = append(out, le)
	}
	return out, nil
}

func (r *MemoryRepository) GetEvent(_ context.Context, _ bun.IDB, id uuid.UUID) (*eventdomain.EventRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *MemoryRepository) LockEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*eventdomain.EventRecord, error) {
	return r.GetEvent(ctx, db, id)
}

func (r *MemoryRepository) CreateEvent(_ context.Context, _ bun.IDB, rec *eventdomain.EventRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.Type = string(eventdomain.NormalizeEventType(rec.Type))
	r.events[rec.ID] = *rec
	return nil
}

func (r *MemoryRepository) ListAttendees(ctx context.Context, _ bun.IDB, eventID uuid.UUID) ([]eventdomain.Person, error) {
	r.mu.RLock()
	seats := slices.Clone(r.attendees[eventID])
	r.mu.RUnlock()

	ids := make([]uuid.UUID, len(seats))
	for i, s := range seats {
		ids[i] = s.UserID
	}
	known, err := r.resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]eventdomain.Person, 0, len(seats))
	for _, s := range seats {
		p, ok := known[s.UserID]
		if !ok {
			continue
		}
		p.JoinedAt = s.JoinedAt
		out = append(out, p)
	}
	return out, nil
}

func (r *MemoryRepository) resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]eventdomain.Person, error) {
	if r.lookup == nil {
		out := make(map[uuid.UUID]eventdomain.Person, len(ids))
		for _, id := range ids {
			out[id] = eventdomain.Person{ID: id}
		}
		return out, nil
	}
	if len(ids) == 0 {
		return map[uuid.UUID]eventdomain.Person{}, nil
	}
	known, err := r.lookup(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("eventdb.MemoryRepository: resolve members: %w", err)
	}
	return known, nil
}

func (r *MemoryRepository) CountAttendees(_ context.Context, _ bun.IDB, eventID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.attendees[eventID]), nil
}

func (r *MemoryRepository) IsAttendee(_ context.Context, _ bun.IDB, eventID, userID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.ContainsFunc(r.attendees[eventID], func(s seat) bool { return s.UserID == userID }), nil
}

func (r *MemoryRepository) AddAttendee(_ context.Context, _ bun.IDB, eventID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[eventID]; !ok {
		return ErrNotFound
	}
	if slices.ContainsFunc(r.attendees[eventID], func(s seat) bool { return s.UserID == userID }) {
		return ErrAlreadyAttending
	}
	r.attendees[eventID] = append(r.attendees[eventID], seat{UserID: userID, JoinedAt: r.tick()})
	return nil
}

func (r *MemoryRepository) RemoveAttendee(_ context.Context, _ bun.IDB, eventID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seats := r.attendees[eventID]
	i := slices.IndexFunc(seats, func(s seat) bool { return s.UserID == userID })
	if i < 0 {
		return ErrNotFound
	}
	r.attendees[eventID] = slices.Delete(seats, i, i+1)
	return nil
}

func (r *MemoryRepository) ListDrivers(ctx context.Context, _ bun.IDB, eventIDs ...uuid.UUID) ([]eventdomain.DriverRecord, error) {
	r.mu.RLock()
	var drivers []eventdomain.DriverRecord
	for _, d := range r.drivers {
		if slices.Contains(eventIDs, d.EventID) {
			drivers = append(drivers, r.withSeats(d))
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(drivers, func(a, b eventdomain.DriverRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	for i := range drivers {
		if err := r.expandDriver(ctx, &drivers[i]); err != nil {
			return nil, err
		}
	}
	return drivers, nil
}

func (r *MemoryRepository) GetDriver(ctx context.Context, _ bun.IDB, id uuid.UUID) (*eventdomain.DriverRecord, error) {
	r.mu.RLock()
	d, ok := r.drivers[id]
	if ok {
		d = r.withSeats(d)
	}
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if err := r.expandDriver(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *MemoryRepository) GetDriverByOwner(ctx context.Context, db bun.IDB, eventID, ownerID uuid.UUID) (*eventdomain.DriverRecord, error) {
	r.mu.RLock()
	var found uuid.UUID
	for _, d := range r.drivers {
		if d.EventID == eventID && d.OwnerID == ownerID {
			found = d.ID
			break
		}
	}
	r.mu.RUnlock()
	if found == uuid.Nil {
		return nil, ErrNotFound
	}
	return r.GetDriver(ctx, db, found)
}

// withSeats copies d with its passenger ids and join times filled in.
// Callers hold at least the read lock.
func (r *MemoryRepository) withSeats(d eventdomain.DriverRecord) eventdomain.DriverRecord {
	d.Passengers = nil
	for _, p := range r.passengers {
		if p.DriverID == d.ID {
			d.Passengers = append(d.Passengers, eventdomain.Person{ID: p.UserID, JoinedAt: p.JoinedAt})
		}
	}
	return d
}

// expandDriver resolves the owner and passengers of d, dropping passengers
// whose user is gone and leaving Owner nil when the owner is.
func (r *MemoryRepository) expandDriver(ctx context.Context, d *eventdomain.DriverRecord) error {
	ids := append([]uuid.UUID{d.OwnerID}, d.PassengerIDs()...)
	known, err := r.resolve(ctx, ids)
	if err != nil {
		return err
	}
	d.Owner = nil
	if owner, ok := known[d.OwnerID]; ok {
		d.Owner = &owner
	}
	passengers := make([]eventdomain.Person, 0, len(d.Passengers))
	for _, p := range d.Passengers {
		person, ok := known[p.ID]
		if !ok {
			continue
		}
		person.JoinedAt = p.JoinedAt
		passengers = append(passengers, person)
	}
	d.Passengers = passengers
	return nil
}

func (r *MemoryRepository) CreateDriver(_ context.Context, _ bun.IDB, rec *eventdomain.DriverRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[rec.EventID]; !ok {
		return ErrNotFound
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = r.tick()
	stored := *rec
	stored.Owner = nil
	stored.Passengers = nil
	r.drivers[rec.ID] = stored
	return nil
}

func (r *MemoryRepository) DeleteDriver(_ context.Context, _ bun.IDB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[id]; !ok {
		return ErrNotFound
	}
	delete(r.drivers, id)
	r.passengers = slices.DeleteFunc(r.passengers, func(p passengerSeat) bool { return p.DriverID == id })
	return nil
}

func (r *MemoryRepository) AddPassenger(_ context.Context, _ bun.IDB, driverID, eventID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.drivers[driverID]; !ok || d.EventID != eventID {
		return ErrNotFound
	}
	if slices.ContainsFunc(r.passengers, func(p passengerSeat) bool { return p.EventID == eventID && p.UserID == userID }) {
		return ErrAlreadyRiding
	}
	r.passengers = append(r.passengers, passengerSeat{
		seat:     seat{UserID: userID, JoinedAt: r.tick()},
		DriverID: driverID,
		EventID:  eventID,
	})
	return nil
}

func (r *MemoryRepository) RemovePassenger(_ context.Context, _ bun.IDB, eventID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passengers = slices.DeleteFunc(r.passengers, func(p passengerSeat) bool {
		return p.EventID == eventID && p.UserID == userID
	})
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
