package authhandlers

import (
	"context"

	authservice "github.com/Black-And-White-Club/curling-club/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/curling-club/app/modules/auth/domain"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	SignUpFunc        func(ctx context.Context, req authservice.SignUpRequest) (*authservice.AuthResponse, error)
	LoginFunc         func(ctx context.Context, email, password string) (*authservice.AuthResponse, error)
	ValidateTokenFunc func(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

var _ authservice.Service = (*FakeService)(nil)

func (f *FakeService) SignUp(ctx context.Context, req authservice.SignUpRequest) (*authservice.AuthResponse, error) {
	if f.SignUpFunc != nil {
		return f.SignUpFunc(ctx, req)
	}
	return &authservice.AuthResponse{Token: "fake-token", Duration: 3600}, nil
}

func (f *FakeService) Login(ctx context.Context, email, password string) (*authservice.AuthResponse, error) {
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, email, password)
	}
	return &authservice.AuthResponse{Token: "fake-token", Duration: 3600}, nil
}

func (f *FakeService) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(ctx, tokenString)
	}
	return &authdomain.Claims{}, nil
}
