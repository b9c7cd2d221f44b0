package auth

import (
	"context"
	"log/slog"
	"net/http"

	authservice "github.com/Black-And-White-Club/curling-club/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/curling-club/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/curling-club/app/modules/auth/infrastructure/jwt"
	userdb "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/curling-club/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"
)

// Sign-up and login attempts allowed per client IP.
const (
	loginRate  = 5
	loginBurst = 10
)

// Module represents the auth module.
type Module struct {
	service  authservice.Service
	handlers authhandlers.Handlers
	logger   *slog.Logger
}

// NewModule creates the auth module. Routes are mounted separately since the
// session middleware needs the service before any route exists.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	tracer trace.Tracer,
	userRepo userdb.Repository,
	validate *validator.Validate,
) *Module {
	logger.InfoContext(ctx, "Initializing auth module")

	jwtProvider := authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer)

	service := authservice.NewService(
		jwtProvider,
		userRepo,
		authservice.Config{DefaultTTL: cfg.JWT.DefaultTTL},
		logger,
		tracer,
	)

	// Cookies are only marked Secure outside development.
	handlers := authhandlers.NewAuthHandlers(service, validate, logger, tracer, !cfg.IsDevelopment())

	return &Module{
		service:  service,
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterRoutes mounts /api/auth.
func (m *Module) RegisterRoutes(r chi.Router) {
	limiter := authhandlers.NewClientLimiter(loginRate, loginBurst)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(authhandlers.Throttle(limiter, m.logger))

		r.Post("/signup", m.handlers.HandleSignUp)
		r.Post("/login", m.handlers.HandleLogin)
		r.Post("/logout", m.handlers.HandleLogout)
	})
}

// SessionMiddleware attaches the caller's session to every request that
// carries a valid token.
func (m *Module) SessionMiddleware() func(http.Handler) http.Handler {
	return authhandlers.SessionMiddleware(m.service, m.logger)
}

// GetService returns the auth service for use by other modules.
func (m *Module) GetService() authservice.Service {
	return m.service
}
