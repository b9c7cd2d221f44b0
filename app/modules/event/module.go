package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/curling-club/app/eventbus"
	authhandlers "github.com/Black-And-White-Club/curling-club/app/modules/auth/infrastructure/handlers"
	eventservice "github.com/Black-And-White-Club/curling-club/app/modules/event/application"
	eventhandlers "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/handlers"
	eventdb "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/repositories"
	eventrouter "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/router"
	"github.com/Black-And-White-Club/curling-club/app/shared/metrics"
	"github.com/Black-And-White-Club/curling-club/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Module represents the event module.
type Module struct {
	EventService eventservice.Service
	EventRouter  *eventrouter.EventRouter
	logger       *slog.Logger
}

// NewEventModule wires the event service, its bus handlers and the
// /api/events routes. db is nil when events are kept in memory.
func NewEventModule(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	tracer trace.Tracer,
	opMetrics metrics.OperationMetrics,
	repo eventdb.Repository,
	db *bun.DB,
	bus eventbus.Bus,
	router *message.Router,
	validate *validator.Validate,
	httpRouter chi.Router,
) (*Module, error) {
	logger.InfoContext(ctx, "Initializing event module")

	service := eventservice.NewEventService(
		repo,
		bus,
		db,
		eventservice.Config{
			Location:       cfg.Location(),
			DefaultPerPage: cfg.Events.DefaultLimit,
		},
		logger,
		opMetrics,
		tracer,
	)

	handlers := eventhandlers.NewEventHandlers(service, validate, cfg.Location(), logger, tracer)

	eventRouter := eventrouter.NewEventRouter(logger, router, bus, bus, tracer, opMetrics)
	if err := eventRouter.Configure(handlers); err != nil {
		return nil, fmt.Errorf("failed to configure event router: %w", err)
	}

	if httpRouter != nil {
		httpRouter.Route("/api/events", eventhandlers.Routes(handlers, authhandlers.RequireSession))
	}

	return &Module{
		EventService: service,
		EventRouter:  eventRouter,
		logger:       logger,
	}, nil
}
