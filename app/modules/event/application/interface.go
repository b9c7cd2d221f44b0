package eventservice

import (
	"context"
	"io"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	"github.com/google/uuid"
)

// Service is the event module's application API.
type Service interface {
	ListEvents(ctx context.Context, opts eventdomain.ListOptions) (EventList, error)
	GetEvent(ctx context.Context, eventID uuid.UUID) (eventdomain.Event, error)
	// NextOpenHouse returns the earliest upcoming open house, or nil.
	NextOpenHouse(ctx context.Context) (*eventdomain.Event, error)

	RegisterForEvent(ctx context.Context, eventID uuid.UUID, sel eventdomain.Selection) (eventdomain.Registration, error)
	UnregisterForEvent(ctx context.Context, eventID uuid.UUID) (eventdomain.Unregistration, error)
	IsRegisteredFor(ctx context.Context, eventID uuid.UUID) (bool, error)

	// WriteRoster writes the event's attendees and rides as an xlsx workbook.
	WriteRoster(ctx context.Context, eventID uuid.UUID, w io.Writer) (eventdomain.Event, error)
}

// EventList is one page of the calendar. Degraded is set when the listing
// failed and the page is empty because of it.
type EventList struct {
	Events   []eventdomain.Event `json:"events"`
	Page     int                 `json:"page"`
	PerPage  int                 `json:"per_page"`
	Degraded bool                `json:"degraded,omitempty"`
}
