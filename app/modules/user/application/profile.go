package userservice

import (
	"context"
	"errors"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	authdomain "github.com/Black-And-White-Club/curling-club/app/modules/auth/domain"
	userdb "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/curling-club/app/shared/operation"
	"github.com/Black-And-White-Club/curling-club/app/shared/results"
	"github.com/uptrace/bun"
)

type profileResult = results.OperationResult[*Profile, error]

func toProfile(u *userdb.User) *Profile {
	return &Profile{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		Membership:        u.Membership,
		MembershipPending: u.MembershipPending,
		IsDriver:          u.IsDriver,
		PracticesLeft:     u.PracticesLeft,
	}
}

func (s *UserService) GetProfile(ctx context.Context) (*Profile, error) {
	session, err := authdomain.RequireSession(ctx)
	if err != nil {
		return nil, err
	}

	result, err := operation.Run(s.telemetry, ctx, "GetProfile", session.UserID.String(), func(ctx context.Context) (profileResult, error) {
		u, err := s.repo.GetUserByID(ctx, nil, session.UserID)
		if err != nil {
			if errors.Is(err, userdb.ErrNotFound) {
				return results.FailureResult[*Profile, error](ErrUserNotFound), nil
			}
			return profileResult{}, err
		}
		return results.SuccessResult[*Profile, error](toProfile(u)), nil
	})
	return operation.Unwrap(result, err)
}

func (s *UserService) RequestMembership(ctx context.Context) (*Profile, error) {
	session, err := authdomain.RequireSession(ctx)
	if err != nil {
		return nil, err
	}

	requested := false
	result, err := operation.Run(s.telemetry, ctx, "RequestMembership", session.UserID.String(), func(ctx context.Context) (profileResult, error) {
		return operation.InTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (profileResult, error) {
			u, err := s.repo.GetUserByID(ctx, db, session.UserID)
			if err != nil {
				if errors.Is(err, userdb.ErrNotFound) {
					return results.FailureResult[*Profile, error](ErrUserNotFound), nil
				}
				return profileResult{}, err
			}
			if u.Membership {
				return results.FailureResult[*Profile, error](ErrAlreadyMember), nil
			}
			if u.MembershipPending {
				return results.SuccessResult[*Profile, error](toProfile(u)), nil
			}

			if err := s.repo.SetMembershipPending(ctx, db, u.ID, true); err != nil {
				return profileResult{}, err
			}
			u.MembershipPending = true
			requested = true
			return results.SuccessResult[*Profile, error](toProfile(u)), nil
		})
	})

	profile, err := operation.Unwrap(result, err)
	if err != nil {
		return nil, err
	}
	if requested {
		s.publishEvent(ctx, clubevents.MembershipRequestedV1, clubevents.MembershipRequestedPayloadV1{
			UserID: profile.ID,
			Name:   profile.Name,
			Email:  profile.Email,
		})
	}
	return profile, nil
}
