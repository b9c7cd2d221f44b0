package authservice

import (
	"context"

	authdomain "github.com/Black-And-White-Club/curling-club/app/modules/auth/domain"
	"github.com/google/uuid"
)

// Service defines the authentication service interface.
type Service interface {
	// SignUp creates an account and returns a session token for it.
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)

	// Login checks credentials and returns a session token.
	Login(ctx context.Context, email, password string) (*AuthResponse, error)

	// ValidateToken validates a session token and returns the claims if valid.
	ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

// SignUpRequest carries the fields of a new account.
type SignUpRequest struct {
	Name     string
	Email    string
	Password string
}

// AuthResponse is returned by SignUp and Login.
type AuthResponse struct {
	Token    string    `json:"token"`
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Duration int64     `json:"expires_in"`
}
