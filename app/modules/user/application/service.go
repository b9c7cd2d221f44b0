package userservice

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/curling-club/app/eventbus"
	userdb "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/Black-And-White-Club/curling-club/app/shared/metrics"
	"github.com/Black-And-White-Club/curling-club/app/shared/operation"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// UserService implements the Service interface.
type UserService struct {
	repo      userdb.Repository
	publisher message.Publisher
	db        *bun.DB
	logger    *slog.Logger
	telemetry operation.Telemetry
}

// NewUserService creates a new UserService. db may be nil for the memory
// repository.
func NewUserService(
	repo userdb.Repository,
	publisher message.Publisher,
	db *bun.DB,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		repo:      repo,
		publisher: publisher,
		db:        db,
		logger:    logger,
		telemetry: operation.Telemetry{
			Service: "UserService",
			Logger:  logger,
			Metrics: metrics,
			Tracer:  tracer,
		},
	}
}

func (s *UserService) publishEvent(ctx context.Context, topic string, payload any) {
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
	}
}

var _ Service = (*UserService)(nil)
