package eventservice

import (
	"context"
	"sync"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	eventdb "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Repository
// ------------------------

// FakeRepository records every call. Methods with a Func set use it; the
// rest fall through to Base.
type FakeRepository struct {
	mu    sync.Mutex
	trace []string
	Base  eventdb.Repository

	ListEventsFunc       func(ctx context.Context, q eventdomain.ListQuery) ([]eventdb.ListedEvent, error)
	LockEventFunc        func(ctx context.Context, id uuid.UUID) (*eventdomain.EventRecord, error)
	IsAttendeeFunc       func(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	CountAttendeesFunc   func(ctx context.Context, eventID uuid.UUID) (int, error)
	AddAttendeeFunc      func(ctx context.Context, eventID, userID uuid.UUID) error
	ListDriversFunc      func(ctx context.Context, eventIDs ...uuid.UUID) ([]eventdomain.DriverRecord, error)
	AddPassengerFunc     func(ctx context.Context, driverID, eventID, userID uuid.UUID) error
	RemoveAttendeeFunc   func(ctx context.Context, eventID, userID uuid.UUID) error
	GetDriverByOwnerFunc func(ctx context.Context, eventID, ownerID uuid.UUID) (*eventdomain.DriverRecord, error)
}

func (f *FakeRepository) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRepository) ListEvents(ctx context.Context, db bun.IDB, q eventdomain.ListQuery) ([]eventdb.ListedEvent, error) {
	f.record("ListEvents")
	if f.ListEventsFunc != nil {
		return f.ListEventsFunc(ctx, q)
	}
	return f.Base.ListEvents(ctx, db, q)
}

func (f *FakeRepository) GetEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*eventdomain.EventRecord, error) {
	f.record("GetEvent")
	return f.Base.GetEvent(ctx, db, id)
}

func (f *FakeRepository) LockEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*eventdomain.EventRecord, error) {
	f.record("LockEvent")
	if f.LockEventFunc != nil {
		return f.LockEventFunc(ctx, id)
	}
	return f.Base.LockEvent(ctx, db, id)
}

func (f *FakeRepository) CreateEvent(ctx context.Context, db bun.IDB, rec *eventdomain.EventRecord) error {
	f.record("CreateEvent")
	return f.Base.CreateEvent(ctx, db, rec)
}

func (f *FakeRepository) ListAttendees(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]eventdomain.Person, error) {
	f.record("ListAttendees")
	return f.Base.ListAttendees(ctx, db, eventID)
}

func (f *FakeRepository) CountAttendees(ctx context.Context, db bun.IDB, eventID uuid.UUID) (int, error) {
	f.record("CountAttendees")
	if f.CountAttendeesFunc != nil {
		return f.CountAttendeesFunc(ctx, eventID)
	}
	return f.Base.CountAttendees(ctx, db, eventID)
}

func (f *FakeRepository) IsAttendee(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) (bool, error) {
	f.record("IsAttendee")
	if f.IsAttendeeFunc != nil {
		return f.IsAttendeeFunc(ctx, eventID, userID)
	}
	return f.Base.IsAttendee(ctx, db, eventID, userID)
}

func (f *FakeRepository) AddAttendee(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) error {
	f.record("AddAttendee")
	if f.AddAttendeeFunc != nil {
		return f.AddAttendeeFunc(ctx, eventID, userID)
	}
	return f.Base.AddAttendee(ctx, db, eventID, userID)
}

func (f *FakeRepository) RemoveAttendee(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) error {
	f.record("RemoveAttendee")
	if f.RemoveAttendeeFunc != nil {
		return f.RemoveAttendeeFunc(ctx, eventID, userID)
	}
	return f.Base.RemoveAttendee(ctx, db, eventID, userID)
}

func (f *FakeRepository) ListDrivers(ctx context.Context, db bun.IDB, eventIDs ...uuid.UUID) ([]eventdomain.DriverRecord, error) {
	f.record("ListDrivers")
	if f.ListDriversFunc != nil {
		return f.ListDriversFunc(ctx, eventIDs...)
	}
	return f.Base.ListDrivers(ctx, db, eventIDs...)
}

func (f *FakeRepository) GetDriver(ctx context.Context, db bun.IDB, id uuid.UUID) (*eventdomain.DriverRecord, error) {
	f.record("GetDriver")
	return f.Base.GetDriver(ctx, db, id)
}

func (f *FakeRepository) GetDriverByOwner(ctx context.Context, db bun.IDB, eventID, ownerID uuid.UUID) (*eventdomain.DriverRecord, error) {
	f.record("GetDriverByOwner")
	if f.GetDriverByOwnerFunc != nil {
		return f.GetDriverByOwnerFunc(ctx, eventID, ownerID)
	}
	return f.Base.GetDriverByOwner(ctx, db, eventID, ownerID)
}

func (f *FakeRepository) CreateDriver(ctx context.Context, db bun.IDB, rec *eventdomain.DriverRecord) error {
	f.record("CreateDriver")
	return f.Base.CreateDriver(ctx, db, rec)
}

func (f *FakeRepository) DeleteDriver(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("DeleteDriver")
	return f.Base.DeleteDriver(ctx, db, id)
}

func (f *FakeRepository) AddPassenger(ctx context.Context, db bun.IDB, driverID, eventID, userID uuid.UUID) error {
	f.record("AddPassenger")
	if f.AddPassengerFunc != nil {
		return f.AddPassengerFunc(ctx, driverID, eventID, userID)
	}
	return f.Base.AddPassenger(ctx, db, driverID, eventID, userID)
}

func (f *FakeRepository) RemovePassenger(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) error {
	f.record("RemovePassenger")
	return f.Base.RemovePassenger(ctx, db, eventID, userID)
}

var _ eventdb.Repository = (*FakeRepository)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu          sync.Mutex
	Published   map[string][]*message.Message
	PublishFunc func(topic string, msgs ...*message.Message) error
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	if p.PublishFunc != nil {
		return p.PublishFunc(topic, msgs...)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Published == nil {
		p.Published = make(map[string][]*message.Message)
	}
	p.Published[topic] = append(p.Published[topic], msgs...)
	return nil
}

func (p *FakePublisher) Close() error { return nil }

func (p *FakePublisher) Topics() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]int, len(p.Published))
	for topic, msgs := range p.Published {
		out[topic] = len(msgs)
	}
	return out
}

var _ message.Publisher = (*FakePublisher)(nil)
