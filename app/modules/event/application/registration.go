package eventservice

import (
	"context"
	"errors"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	authdomain "github.com/Black-And-White-Club/curling-club/app/modules/auth/domain"
	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	eventdb "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/repositories"
	"github.com/Black-And-White-Club/curling-club/app/shared/operation"
	"github.com/Black-And-White-Club/curling-club/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type (
	registrationResult   = results.OperationResult[eventdomain.Registration, error]
	unregistrationResult = results.OperationResult[eventdomain.Unregistration, error]
)

// RegisterForEvent signs the current user up for an event with the chosen
// transport. Every check runs before the first write, inside one
// transaction holding the event row lock.
func (s *EventService) RegisterForEvent(ctx context.Context, eventID uuid.UUID, sel eventdomain.Selection) (eventdomain.Registration, error) {
	session, err := authdomain.RequireSession(ctx)
	if err != nil {
		return eventdomain.Registration{}, err
	}
	if err := sel.Validate(); err != nil {
		return eventdomain.Registration{}, err
	}

	var eventType eventdomain.EventType
	result, err := operation.Run(s.telemetry, ctx, "RegisterForEvent", eventID.String(), func(ctx context.Context) (registrationResult, error) {
		return operation.InTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (registrationResult, error) {
			fail := func(err error) (registrationResult, error) {
				return results.FailureResult[eventdomain.Registration, error](err), nil
			}

			event, err := s.repo.LockEvent(ctx, db, eventID)
			if err != nil {
				if errors.Is(err, eventdb.ErrNotFound) {
					return fail(eventdomain.ErrEventNotFound)
				}
				return registrationResult{}, eventdomain.Unavailable("LockEvent", err)
			}
			eventType = eventdomain.NormalizeEventType(event.Type)

			registered, err := s.repo.IsAttendee(ctx, db, eventID, session.UserID)
			if err != nil {
				return registrationResult{}, eventdomain.Unavailable("IsAttendee", err)
			}
			if registered {
				return fail(eventdomain.ErrAlreadyRegistered)
			}

			if event.Capacity > 0 {
				count, err := s.repo.CountAttendees(ctx, db, eventID)
				if err != nil {
					return registrationResult{}, eventdomain.Unavailable("CountAttendees", err)
				}
				if count >= event.Capacity {
					return fail(eventdomain.ErrCapacityExceeded)
				}
			}

			reg := eventdomain.Registration{EventID: eventID, UserID: session.UserID, Mode: sel.Mode}

			var driver *eventdomain.DriverRecord
			if sel.Mode == eventdomain.ModePassenger {
				driver, err = s.repo.GetDriver(ctx, db, sel.DriverID)
				if err != nil && !errors.Is(err, eventdb.ErrNotFound) {
					return registrationResult{}, eventdomain.Unavailable("GetDriver", err)
				}
				if driver == nil || driver.EventID != eventID {
					return fail(eventdomain.ErrDriverNotFound)
				}
				if eventdomain.DriverSpotsLeft(driver.Capacity, driver.OwnerID, driver.PassengerIDs()) <= 0 {
					return fail(eventdomain.ErrDriverFull)
				}
			}

			if err := s.repo.AddAttendee(ctx, db, eventID, session.UserID); err != nil {
				return registrationResult{}, writeError("AddAttendee", err, eventdomain.ErrUserNotFound)
			}

			// Without a transaction the attendee row has to be taken back by
			// hand when a later write fails.
			undo := func(driverID uuid.UUID) {
				if db != nil {
					return
				}
				if driverID != uuid.Nil {
					_ = s.repo.DeleteDriver(ctx, nil, driverID)
				}
				_ = s.repo.RemoveAttendee(ctx, nil, eventID, session.UserID)
			}

			switch sel.Mode {
			case eventdomain.ModePassenger:
				if err := s.repo.AddPassenger(ctx, db, driver.ID, eventID, session.UserID); err != nil {
					undo(uuid.Nil)
					return registrationResult{}, writeError("AddPassenger", err, eventdomain.ErrDriverNotFound)
				}
				reg.DriverID = driver.ID
			case eventdomain.ModeDriver:
				created := &eventdomain.DriverRecord{
					EventID:        eventID,
					OwnerID:        session.UserID,
					PickupTime:     sel.Offer.PickupTime,
					PickupLocation: sel.Offer.PickupLocation,
					Capacity:       sel.Offer.Capacity,
				}
				if err := s.repo.CreateDriver(ctx, db, created); err != nil {
					undo(uuid.Nil)
					return registrationResult{}, writeError("CreateDriver", err, eventdomain.ErrEventNotFound)
				}
				if err := s.repo.AddPassenger(ctx, db, created.ID, eventID, session.UserID); err != nil {
					undo(created.ID)
					return registrationResult{}, writeError("AddPassenger", err, eventdomain.ErrDriverNotFound)
				}
				reg.DriverID = created.ID
			}

			return results.SuccessResult[eventdomain.Registration, error](reg), nil
		})
	})

	reg, err := operation.Unwrap(result, err)
	if err != nil {
		return eventdomain.Registration{}, err
	}

	s.publishEvent(ctx, clubevents.AttendeeRegisteredV1, clubevents.AttendeeRegisteredPayloadV1{
		EventID:      reg.EventID,
		UserID:       reg.UserID,
		EventType:    string(eventType),
		Mode:         string(reg.Mode),
		DriverID:     reg.DriverID,
		RegisteredAt: s.config.Now(),
	})
	return reg, nil
}

// writeError maps a repository failure after the checks passed. These roll
// the transaction back. notFound names the row the write depends on.
func writeError(op string, err, notFound error) error {
	switch {
	case errors.Is(err, eventdb.ErrAlreadyAttending), errors.Is(err, eventdb.ErrAlreadyRiding):
		return eventdomain.ErrAlreadyRegistered
	case errors.Is(err, eventdb.ErrNotFound):
		return notFound
	}
	return eventdomain.Unavailable(op, err)
}

// UnregisterForEvent removes the current user from an event. A driver's
// record is deleted and its passengers stay registered on their own.
func (s *EventService) UnregisterForEvent(ctx context.Context, eventID uuid.UUID) (eventdomain.Unregistration, error) {
	session, err := authdomain.RequireSession(ctx)
	if err != nil {
		return eventdomain.Unregistration{}, err
	}

	result, err := operation.Run(s.telemetry, ctx, "UnregisterForEvent", eventID.String(), func(ctx context.Context) (unregistrationResult, error) {
		return operation.InTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (unregistrationResult, error) {
			fail := func(err error) (unregistrationResult, error) {
				return results.FailureResult[eventdomain.Unregistration, error](err), nil
			}

			if _, err := s.repo.LockEvent(ctx, db, eventID); err != nil {
				if errors.Is(err, eventdb.ErrNotFound) {
					return fail(eventdomain.ErrEventNotFound)
				}
				return unregistrationResult{}, eventdomain.Unavailable("LockEvent", err)
			}

			registered, err := s.repo.IsAttendee(ctx, db, eventID, session.UserID)
			if err != nil {
				return unregistrationResult{}, eventdomain.Unavailable("IsAttendee", err)
			}
			if !registered {
				return fail(eventdomain.ErrNotRegistered)
			}

			out := eventdomain.Unregistration{EventID: eventID, UserID: session.UserID}

			if err := s.repo.RemovePassenger(ctx, db, eventID, session.UserID); err != nil {
				return unregistrationResult{}, eventdomain.Unavailable("RemovePassenger", err)
			}

			driver, err := s.repo.GetDriverByOwner(ctx, db, eventID, session.UserID)
			switch {
			case errors.Is(err, eventdb.ErrNotFound):
			case err != nil:
				return unregistrationResult{}, eventdomain.Unavailable("GetDriverByOwner", err)
			default:
				out.RemovedDriverID = driver.ID
				for _, id := range driver.PassengerIDs() {
					if id != session.UserID {
						out.Released = append(out.Released, id)
					}
				}
				if err := s.repo.DeleteDriver(ctx, db, driver.ID); err != nil && !errors.Is(err, eventdb.ErrNotFound) {
					return unregistrationResult{}, eventdomain.Unavailable("DeleteDriver", err)
				}
			}

			if err := s.repo.RemoveAttendee(ctx, db, eventID, session.UserID); err != nil {
				if errors.Is(err, eventdb.ErrNotFound) {
					return unregistrationResult{}, eventdomain.ErrNotRegistered
				}
				return unregistrationResult{}, eventdomain.Unavailable("RemoveAttendee", err)
			}

			return results.SuccessResult[eventdomain.Unregistration, error](out), nil
		})
	})

	out, err := operation.Unwrap(result, err)
	if err != nil {
		return eventdomain.Unregistration{}, err
	}

	s.publishEvent(ctx, clubevents.AttendeeUnregisteredV1, clubevents.AttendeeUnregisteredPayloadV1{
		EventID:        out.EventID,
		UserID:         out.UserID,
		UnregisteredAt: s.config.Now(),
	})
	if out.RemovedDriverID != uuid.Nil {
		released := out.Released
		if released == nil {
			released = []uuid.UUID{}
		}
		s.publishEvent(ctx, clubevents.DriverRemovedV1, clubevents.DriverRemovedPayloadV1{
			EventID:  out.EventID,
			DriverID: out.RemovedDriverID,
			OwnerID:  out.UserID,
			Released: released,
		})
	}
	return out, nil
}

// IsRegisteredFor reports whether the current user attends the event.
func (s *EventService) IsRegisteredFor(ctx context.Context, eventID uuid.UUID) (bool, error) {
	session, err := authdomain.RequireSession(ctx)
	if err != nil {
		return false, err
	}

	result, err := operation.Run(s.telemetry, ctx, "IsRegisteredFor", eventID.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		ok, err := s.repo.IsAttendee(ctx, nil, eventID, session.UserID)
		if err != nil {
			return results.OperationResult[bool, error]{}, eventdomain.Unavailable("IsAttendee", err)
		}
		return results.SuccessResult[bool, error](ok), nil
	})
	return operation.Unwrap(result, err)
}
