package eventservice

import (
	"context"
	"errors"
	"fmt"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	eventdb "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/repositories"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/Black-And-White-Club/curling-club/app/shared/operation"
	"github.com/Black-And-White-Club/curling-club/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type eventsResult = results.OperationResult[[]eventdomain.Event, error]

// ListEvents returns one page of the calendar. A failed listing is logged and
// returned as an empty, degraded page instead of an error.
func (s *EventService) ListEvents(ctx context.Context, opts eventdomain.ListOptions) (EventList, error) {
	q := BuildListQuery(opts, s.config.Now(), s.config.Location, s.config.DefaultPerPage)
	list := EventList{Events: []eventdomain.Event{}, Page: q.Page, PerPage: q.PerPage}

	events, err := operation.Unwrap(s.listEvents(ctx, "ListEvents", q))
	if err != nil {
		s.logger.ErrorContext(ctx, "Event listing failed, returning an empty page",
			attr.ExtractCorrelationID(ctx),
			attr.String("filter", q.Filter),
			attr.String("sort", q.Sort),
			attr.Error(err),
		)
		list.Degraded = true
		return list, nil
	}
	list.Events = events
	return list, nil
}

// NextOpenHouse returns the earliest open house that has not started yet.
func (s *EventService) NextOpenHouse(ctx context.Context) (*eventdomain.Event, error) {
	q := BuildListQuery(eventdomain.ListOptions{
		Types:        []eventdomain.EventType{eventdomain.TypeOpenHouse},
		UpcomingOnly: true,
		Sort:         "start_time",
		Limit:        1,
	}, s.config.Now(), s.config.Location, s.config.DefaultPerPage)

	events, err := operation.Unwrap(s.listEvents(ctx, "NextOpenHouse", q))
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (s *EventService) listEvents(ctx context.Context, op string, q eventdomain.ListQuery) (eventsResult, error) {
	return operation.Run(s.telemetry, ctx, op, q.Filter, func(ctx context.Context) (eventsResult, error) {
		listed, err := s.repo.ListEvents(ctx, nil, q)
		if err != nil {
			if errors.Is(err, eventdb.ErrInvalidFilter) {
				return results.FailureResult[[]eventdomain.Event, error](fmt.Errorf("%w: %w", eventdomain.ErrInvalidFilter, err)), nil
			}
			return eventsResult{}, eventdomain.Unavailable("ListEvents", err)
		}

		events, err := s.buildViews(ctx, nil, listed)
		if err != nil {
			return eventsResult{}, err
		}
		return results.SuccessResult[[]eventdomain.Event, error](events), nil
	})
}

// GetEvent returns one event with its transport view.
func (s *EventService) GetEvent(ctx context.Context, eventID uuid.UUID) (eventdomain.Event, error) {
	result, err := operation.Run(s.telemetry, ctx, "GetEvent", eventID.String(), func(ctx context.Context) (results.OperationResult[eventdomain.Event, error], error) {
		rec, err := s.repo.GetEvent(ctx, nil, eventID)
		if err != nil {
			if errors.Is(err, eventdb.ErrNotFound) {
				return results.FailureResult[eventdomain.Event, error](eventdomain.ErrEventNotFound), nil
			}
			return results.OperationResult[eventdomain.Event, error]{}, eventdomain.Unavailable("GetEvent", err)
		}
		attendees, err := s.repo.ListAttendees(ctx, nil, eventID)
		if err != nil {
			return results.OperationResult[eventdomain.Event, error]{}, eventdomain.Unavailable("ListAttendees", err)
		}

		views, err := s.buildViews(ctx, nil, []eventdb.ListedEvent{{EventRecord: *rec, Attendees: attendees}})
		if err != nil {
			return results.OperationResult[eventdomain.Event, error]{}, err
		}
		return results.SuccessResult[eventdomain.Event, error](views[0]), nil
	})
	return operation.Unwrap(result, err)
}

// buildViews loads the drivers of every listed event in one query and
// aggregates each event's transport.
func (s *EventService) buildViews(ctx context.Context, db bun.IDB, listed []eventdb.ListedEvent) ([]eventdomain.Event, error) {
	if len(listed) == 0 {
		return []eventdomain.Event{}, nil
	}

	ids := make([]uuid.UUID, len(listed))
	for i, e := range listed {
		ids[i] = e.ID
	}
	drivers, err := s.repo.ListDrivers(ctx, db, ids...)
	if err != nil {
		return nil, eventdomain.Unavailable("ListDrivers", err)
	}
	byEvent := make(map[uuid.UUID][]eventdomain.DriverRecord, len(listed))
	for _, d := range drivers {
		byEvent[d.EventID] = append(byEvent[d.EventID], d)
	}

	views := make([]eventdomain.Event, 0, len(listed))
	for _, e := range listed {
		transport, skipped := eventdomain.BuildTransport(e.Attendees, byEvent[e.ID])
		for _, id := range skipped {
			s.logger.WarnContext(ctx, "Skipping driver whose owner could not be resolved",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("event_id", e.ID),
				attr.UUID("driver_id", id),
			)
		}
		views = append(views, eventdomain.ToEventView(e.EventRecord, transport))
	}
	return views, nil
}
