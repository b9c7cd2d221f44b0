package eventservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/curling-club/app/eventbus"
	eventdb "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/repositories"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/Black-And-White-Club/curling-club/app/shared/metrics"
	"github.com/Black-And-White-Club/curling-club/app/shared/operation"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Config holds event service settings.
type Config struct {
	// Location is the club's time zone, used for filter timestamps.
	Location *time.Location
	// DefaultPerPage is the page size when a listing asks for none.
	DefaultPerPage int
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// EventService implements the Service interface.
type EventService struct {
	repo      eventdb.Repository
	publisher message.Publisher
	db        *bun.DB
	logger    *slog.Logger
	telemetry operation.Telemetry
	config    Config
}

// NewEventService creates a new EventService. db may be nil when the
// repository is not backed by Postgres; operations then run without a
// transaction.
func NewEventService(
	repo eventdb.Repository,
	publisher message.Publisher,
	db *bun.DB,
	config Config,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.DefaultPerPage <= 0 {
		config.DefaultPerPage = DefaultPerPage
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &EventService{
		repo:      repo,
		publisher: publisher,
		db:        db,
		logger:    logger,
		config:    config,
		telemetry: operation.Telemetry{
			Service: "EventService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
		},
	}
}

// publishEvent sends payload on topic. Failures are logged and swallowed: the
// change it announces is already committed.
func (s *EventService) publishEvent(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	msg, err := eventbus.NewMessage(ctx, topic, payload)
	if err == nil {
		err = s.publisher.Publish(topic, msg)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
		return
	}
	s.logger.DebugContext(ctx, "Published event",
		attr.ExtractCorrelationID(ctx),
		attr.String("topic", topic),
		attr.String("message_id", msg.UUID),
	)
}

var _ Service = (*EventService)(nil)
