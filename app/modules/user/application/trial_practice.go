package userservice

import (
	"context"
	"errors"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	userdb "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/curling-club/app/shared/operation"
	"github.com/Black-And-White-Club/curling-club/app/shared/results"
	"github.com/uptrace/bun"
)

type trialResult = results.OperationResult[TrialPractice, error]

// ConsumeTrialPractice runs for every registration. Only non-members
// registering for a practice with trial practices left use one up, and
// each event is charged once per user. Redelivered messages and
// re-registrations after unregistering are not charged again. Unregistering
// does not give the practice back.
func (s *UserService) ConsumeTrialPractice(ctx context.Context, reg clubevents.AttendeeRegisteredPayloadV1) (TrialPractice, error) {
	out := TrialPractice{UserID: reg.UserID, EventID: reg.EventID}
	if eventdomain.NormalizeEventType(reg.EventType) != eventdomain.TypePractice {
		return out, nil
	}

	result, err := operation.Run(s.telemetry, ctx, "ConsumeTrialPractice", reg.UserID.String(), func(ctx context.Context) (trialResult, error) {
		return operation.InTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (trialResult, error) {
			u, err := s.repo.GetUserByID(ctx, db, reg.UserID)
			if err != nil {
				if errors.Is(err, userdb.ErrNotFound) {
					return results.FailureResult[TrialPractice, error](ErrUserNotFound), nil
				}
				return trialResult{}, err
			}

			out.PracticesLeft = u.PracticesLeft
			if u.Membership || u.PracticesLeft <= 0 {
				return results.SuccessResult[TrialPractice, error](out), nil
			}

			first, err := s.repo.RecordTrialPracticeUse(ctx, db, u.ID, reg.EventID)
			if err != nil {
				if errors.Is(err, userdb.ErrNotFound) {
					return results.FailureResult[TrialPractice, error](ErrUserNotFound), nil
				}
				return trialResult{}, err
			}
			if !first {
				return results.SuccessResult[TrialPractice, error](out), nil
			}

			left, err := s.repo.DecrementPracticesLeft(ctx, db, u.ID)
			if err != nil {
				return trialResult{}, err
			}
			out.Consumed = true
			out.PracticesLeft = left
			return results.SuccessResult[TrialPractice, error](out), nil
		})
	})
	return operation.Unwrap(result, err)
}
