package eventrouter

import (
	"context"
	"log/slog"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	eventhandlers "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/handlers"
	"github.com/Black-And-White-Club/curling-club/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/curling-club/app/shared/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// EventRouter handles routing for event module messages.
type EventRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
	metrics    metrics.OperationMetrics
}

// NewEventRouter creates a new EventRouter.
func NewEventRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	metrics metrics.OperationMetrics,
) *EventRouter {
	return &EventRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
		metrics:    metrics,
	}
}

// Configure registers the event module handlers on the router.
func (r *EventRouter) Configure(handlers eventhandlers.MessageHandlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, clubevents.DriverRemovedV1, handlers.HandleDriverRemoved)

	r.logger.Info("Event router configured")
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
	handlerName := "event." + topic

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
