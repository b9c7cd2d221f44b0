package userrouter

import (
	"context"
	"log/slog"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	userhandlers "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/handlers"
	"github.com/Black-And-White-Club/curling-club/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/curling-club/app/shared/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// UserRouter handles routing for user module messages.
type UserRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
	metrics    metrics.OperationMetrics
}

// NewUserRouter creates a new UserRouter.
func NewUserRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	metrics metrics.OperationMetrics,
) *UserRouter {
	return &UserRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
		metrics:    metrics,
	}
}

// Configure registers the user module handlers on the router.
func (r *UserRouter) Configure(handlers userhandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, clubevents.AttendeeRegisteredV1, handlers.HandleAttendeeRegistered)

	r.logger.Info("User router configured")
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    metrics.OperationMetrics
}

// registerHandler registers a transforming handler with a typed payload.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "user." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"", // the bus reads the topic from message metadata when empty
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}
