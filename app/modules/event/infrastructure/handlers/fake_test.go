package eventhandlers

import (
	"context"
	"io"

	eventservice "github.com/Black-And-White-Club/curling-club/app/modules/event/application"
	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	"github.com/google/uuid"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	trace []string

	ListEventsFunc         func(ctx context.Context, opts eventdomain.ListOptions) (eventservice.EventList, error)
	GetEventFunc           func(ctx context.Context, eventID uuid.UUID) (eventdomain.Event, error)
	NextOpenHouseFunc      func(ctx context.Context) (*eventdomain.Event, error)
	RegisterForEventFunc   func(ctx context.Context, eventID uuid.UUID, sel eventdomain.Selection) (eventdomain.Registration, error)
	UnregisterForEventFunc func(ctx context.Context, eventID uuid.UUID) (eventdomain.Unregistration, error)
	IsRegisteredForFunc    func(ctx context.Context, eventID uuid.UUID) (bool, error)
	WriteRosterFunc        func(ctx context.Context, eventID uuid.UUID, w io.Writer) (eventdomain.Event, error)
}

func (f *FakeService) Trace() []string {
	return f.trace
}

func (f *FakeService) ListEvents(ctx context.Context, opts eventdomain.ListOptions) (eventservice.EventList, error) {
	f.trace = append(f.trace, "ListEvents")
	if f.ListEventsFunc != nil {
		return f.ListEventsFunc(ctx, opts)
	}
	return eventservice.EventList{Events: []eventdomain.Event{}, Page: 1, PerPage: eventservice.DefaultPerPage}, nil
}

func (f *FakeService) GetEvent(ctx context.Context, eventID uuid.UUID) (eventdomain.Event, error) {
	f.trace = append(f.trace, "GetEvent")
	if f.GetEventFunc != nil {
		return f.GetEventFunc(ctx, eventID)
	}
	return eventdomain.Event{ID: eventID}, nil
}

func (f *FakeService) NextOpenHouse(ctx context.Context) (*eventdomain.Event, error) {
	f.trace = append(f.trace, "NextOpenHouse")
	if f.NextOpenHouseFunc != nil {
		return f.NextOpenHouseFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) RegisterForEvent(ctx context.Context, eventID uuid.UUID, sel eventdomain.Selection) (eventdomain.Registration, error) {
	f.trace = append(f.trace, "RegisterForEvent")
	if f.RegisterForEventFunc != nil {
		return f.RegisterForEventFunc(ctx, eventID, sel)
	}
	return eventdomain.Registration{EventID: eventID, Mode: sel.Mode, DriverID: sel.DriverID}, nil
}

func (f *FakeService) UnregisterForEvent(ctx context.Context, eventID uuid.UUID) (eventdomain.Unregistration, error) {
	f.trace = append(f.trace, "UnregisterForEvent")
	if f.UnregisterForEventFunc != nil {
		return f.UnregisterForEventFunc(ctx, eventID)
	}
	return eventdomain.Unregistration{EventID: eventID}, nil
}

func (f *FakeService) IsRegisteredFor(ctx context.Context, eventID uuid.UUID) (bool, error) {
	f.trace = append(f.trace, "IsRegisteredFor")
	if f.IsRegisteredForFunc != nil {
		return f.IsRegisteredForFunc(ctx, eventID)
	}
	return false, nil
}

func (f *FakeService) WriteRoster(ctx context.Context, eventID uuid.UUID, w io.Writer) (eventdomain.Event, error) {
	f.trace = append(f.trace, "WriteRoster")
	if f.WriteRosterFunc != nil {
		return f.WriteRosterFunc(ctx, eventID, w)
	}
	return eventdomain.Event{ID: eventID}, nil
}

var _ eventservice.Service = (*FakeService)(nil)
