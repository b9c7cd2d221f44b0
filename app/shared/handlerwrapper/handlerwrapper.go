// Package handlerwrapper adapts typed message handlers to watermill.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/curling-club/app/eventbus"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/Black-And-White-Club/curling-club/app/shared/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// metricsService labels handler metrics.
const metricsService = "MessageHandler"

// Result is one message a handler wants published. Topic travels in the
// message metadata so the router can publish with an empty topic.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// WrapTransformingTyped decodes the incoming payload into T, runs handler and
// turns its results into outgoing messages that keep the correlation id.
// Payloads that cannot be decoded are logged and acked; handler errors nack
// the message.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	m metrics.OperationMetrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.NewNoop()
	}

	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := attr.WithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message.uuid", msg.UUID),
			))
		} else {
			span = trace.SpanFromContext(ctx)
		}
		defer span.End()

		m.RecordOperationAttempt(ctx, handlerName, metricsService)
		start := time.Now()
		defer func() {
			m.RecordOperationDuration(ctx, handlerName, metricsService, time.Since(start))
		}()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Dropping message with unreadable payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			m.RecordOperationFailure(ctx, handlerName, metricsService)
			span.SetStatus(codes.Error, "unreadable payload")
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Message handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			m.RecordOperationFailure(ctx, handlerName, metricsService)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			if r.Topic == "" {
				return nil, fmt.Errorf("%s: result without topic", handlerName)
			}
			next, err := eventbus.NewMessage(ctx, r.Topic, r.Payload)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			for k, v := range r.Metadata {
				next.Metadata.Set(k, v)
			}
			out = append(out, next)
		}

		m.RecordOperationSuccess(ctx, handlerName, metricsService)
		return out, nil
	}
}
