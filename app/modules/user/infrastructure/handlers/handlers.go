package userhandlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	authdomain "github.com/Black-And-White-Club/curling-club/app/modules/auth/domain"
	userservice "github.com/Black-And-White-Club/curling-club/app/modules/user/application"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/Black-And-White-Club/curling-club/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/curling-club/app/shared/httpjson"
	"go.opentelemetry.io/otel/trace"
)

// UserHandlers implements the Handlers interface.
type UserHandlers struct {
	service userservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewUserHandlers creates a new UserHandlers instance.
func NewUserHandlers(service userservice.Service, logger *slog.Logger, tracer trace.Tracer) *UserHandlers {
	return &UserHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

func (h *UserHandlers) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UserHandlers.HandleGetProfile")
	defer span.End()

	profile, err := h.service.GetProfile(ctx)
	if err != nil {
		h.writeError(ctx, w, "Get profile", err)
		return
	}
	httpjson.Write(w, http.StatusOK, profile)
}

func (h *UserHandlers) HandleRequestMembership(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UserHandlers.HandleRequestMembership")
	defer span.End()

	profile, err := h.service.RequestMembership(ctx)
	if err != nil {
		h.writeError(ctx, w, "Membership request", err)
		return
	}
	httpjson.Write(w, http.StatusAccepted, profile)
}

// HandleAttendeeRegistered uses a trial practice for non-members and
// announces the new count.
func (h *UserHandlers) HandleAttendeeRegistered(ctx context.Context, payload *clubevents.AttendeeRegisteredPayloadV1) ([]handlerwrapper.Result, error) {
	trial, err := h.service.ConsumeTrialPractice(ctx, *payload)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "Registration for unknown user",
				attr.ExtractCorrelationID(ctx),
				attr.UUID("user_id", payload.UserID),
			)
			return nil, nil
		}
		return nil, err
	}
	if !trial.Consumed {
		return nil, nil
	}

	return []handlerwrapper.Result{{
		Topic: clubevents.TrialPracticeConsumedV1,
		Payload: clubevents.TrialPracticeConsumedPayloadV1{
			UserID:        trial.UserID,
			EventID:       trial.EventID,
			PracticesLeft: trial.PracticesLeft,
		},
	}}, nil
}

func (h *UserHandlers) writeError(ctx context.Context, w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, authdomain.ErrUnauthenticated):
		httpjson.Error(w, http.StatusUnauthorized, "unauthenticated", "sign in required")
	case errors.Is(err, userservice.ErrUserNotFound):
		httpjson.Error(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, userservice.ErrAlreadyMember):
		httpjson.Error(w, http.StatusConflict, "already_member", err.Error())
	default:
		h.logger.ErrorContext(ctx, what+" failed", attr.ExtractCorrelationID(ctx), attr.Error(err))
		httpjson.Error(w, http.StatusServiceUnavailable, "unavailable", "profile is unavailable, try again later")
	}
}

var _ Handlers = (*UserHandlers)(nil)
