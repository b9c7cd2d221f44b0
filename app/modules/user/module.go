package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/curling-club/app/eventbus"
	authhandlers "github.com/Black-And-White-Club/curling-club/app/modules/auth/infrastructure/handlers"
	userservice "github.com/Black-And-White-Club/curling-club/app/modules/user/application"
	userhandlers "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/handlers"
	userdb "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/repositories"
	userrouter "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/router"
	"github.com/Black-And-White-Club/curling-club/app/shared/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the user module.
type Module struct {
	UserService userservice.Service
	UserRouter  *userrouter.UserRouter
	logger      *slog.Logger
}

// NewUserModule wires the user service, its bus handlers and the /api/me
// routes.
func NewUserModule(
	ctx context.Context,
	logger *slog.Logger,
	tracer trace.Tracer,
	opMetrics metrics.OperationMetrics,
	repo userdb.Repository,
	db *bun.DB,
	bus eventbus.Bus,
	router *message.Router,
	httpRouter chi.Router,
) (*Module, error) {
	logger.InfoContext(ctx, "Initializing user module")

	service := userservice.NewUserService(repo, bus, db, logger, opMetrics, tracer)
	handlers := userhandlers.NewUserHandlers(service, logger, tracer)

	userRouter := userrouter.NewUserRouter(logger, router, bus, bus, tracer, opMetrics)
	if err := userRouter.Configure(handlers); err != nil {
		return nil, fmt.Errorf("failed to configure user router: %w", err)
	}

	if httpRouter != nil {
		httpRouter.Route("/api/me", func(r chi.Router) {
			r.Use(authhandlers.RequireSession)
			r.Get("/", handlers.HandleGetProfile)
			r.Post("/membership", handlers.HandleRequestMembership)
		})
	}

	return &Module{
		UserService: service,
		UserRouter:  userRouter,
		logger:      logger,
	}, nil
}
