package userhandlers

import (
	"context"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	userservice "github.com/Black-And-White-Club/curling-club/app/modules/user/application"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	trace []string

	GetProfileFunc           func(ctx context.Context) (*userservice.Profile, error)
	RequestMembershipFunc    func(ctx context.Context) (*userservice.Profile, error)
	ConsumeTrialPracticeFunc func(ctx context.Context, reg clubevents.AttendeeRegisteredPayloadV1) (userservice.TrialPractice, error)
}

func (f *FakeService) Trace() []string {
	return f.trace
}

func (f *FakeService) GetProfile(ctx context.Context) (*userservice.Profile, error) {
	f.trace = append(f.trace, "GetProfile")
	if f.GetProfileFunc != nil {
		return f.GetProfileFunc(ctx)
	}
	return &userservice.Profile{}, nil
}

func (f *FakeService) RequestMembership(ctx context.Context) (*userservice.Profile, error) {
	f.trace = append(f.trace, "RequestMembership")
	if f.RequestMembershipFunc != nil {
		return f.RequestMembershipFunc(ctx)
	}
	return &userservice.Profile{MembershipPending: true}, nil
}

func (f *FakeService) ConsumeTrialPractice(ctx context.Context, reg clubevents.AttendeeRegisteredPayloadV1) (userservice.TrialPractice, error) {
	f.trace = append(f.trace, "ConsumeTrialPractice")
	if f.ConsumeTrialPracticeFunc != nil {
		return f.ConsumeTrialPracticeFunc(ctx, reg)
	}
	return userservice.TrialPractice{UserID: reg.UserID, EventID: reg.EventID}, nil
}

var _ userservice.Service = (*FakeService)(nil)
