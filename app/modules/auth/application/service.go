package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authdomain "github.com/Black-And-White-Club/curling-club/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/curling-club/app/modules/auth/infrastructure/jwt"
	userdb "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

const DefaultTokenTTL = 24 * time.Hour

// Config holds the configuration for the auth service.
type Config struct {
	DefaultTTL time.Duration
	BcryptCost int
}

// service implements the Service interface.
type service struct {
	repo        userdb.Repository
	jwtProvider authjwt.Provider
	config      Config
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService creates a new auth service.
func NewService(
	jwtProvider authjwt.Provider,
	repo userdb.Repository,
	config Config,
	logger *slog.Logger,
	tracer trace.Tracer,
) Service {
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultTokenTTL
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:        repo,
		jwtProvider: jwtProvider,
		config:      config,
		logger:      logger,
		tracer:      tracer,
	}
}

func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.SignUp")
	defer span.End()

	email := userdb.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidSignup)
	}
	if len(req.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidSignup, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &userdb.User{
		Email:         email,
		Name:          name,
		PasswordHash:  string(hash),
		Role:          string(authdomain.RoleMember),
		PracticesLeft: userdb.DefaultPracticesLeft,
	}
	if err := s.repo.CreateUser(ctx, nil, user); err != nil {
		if errors.Is(err, userdb.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User signed up", attr.UUID("user_id", user.ID))
	return s.issue(user)
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.repo.GetUserByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, userdb.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Login rejected", attr.UUID("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *service) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	_, span := s.tracer.Start(ctx, "AuthService.ValidateToken")
	defer span.End()

	return s.jwtProvider.ValidateToken(tokenString)
}

func (s *service) issue(user *userdb.User) (*AuthResponse, error) {
	role := authdomain.Role(user.Role)
	if !role.IsValid() {
		role = authdomain.RoleMember
	}

	token, err := s.jwtProvider.GenerateToken(&authdomain.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
	}, s.config.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerateToken, err)
	}

	return &AuthResponse{
		Token:    token,
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Role:     role.String(),
		Duration: int64(s.config.DefaultTTL.Seconds()),
	}, nil
}
