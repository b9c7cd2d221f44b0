package eventhandlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	eventservice "github.com/Black-And-White-Club/curling-club/app/modules/event/application"
	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	eventtime "github.com/Black-And-White-Club/curling-club/app/modules/event/time_utils"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/Black-And-White-Club/curling-club/app/shared/httpjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EventHandlers implements the Handlers interface.
type EventHandlers struct {
	service  eventservice.Service
	times    *eventtime.TimeParser
	validate *validator.Validate
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewEventHandlers creates a new EventHandlers instance. loc is the club's
// time zone, used for dates typed without an offset.
func NewEventHandlers(
	service eventservice.Service,
	validate *validator.Validate,
	loc *time.Location,
	logger *slog.Logger,
	tracer trace.Tracer,
) *EventHandlers {
	if validate == nil {
		validate = validator.New()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &EventHandlers{
		service:  service,
		times:    eventtime.NewTimeParser(),
		validate: validate,
		location: loc,
		now:      time.Now,
		logger:   logger,
		tracer:   tracer,
	}
}

type registrationRequest struct {
	Mode           string     `json:"mode" validate:"required,oneof=self passenger driver"`
	DriverID       string     `json:"driver_id" validate:"required_if=Mode passenger"`
	PickupTime     *time.Time `json:"pickup_time" validate:"required_if=Mode driver"`
	PickupLocation string     `json:"pickup_location" validate:"required_if=Mode driver,max=200"`
	Capacity       int        `json:"capacity" validate:"required_if=Mode driver"`
}

func (req registrationRequest) selection() (eventdomain.Selection, error) {
	switch eventdomain.SelectionMode(req.Mode) {
	case eventdomain.ModePassenger:
		id, err := uuid.Parse(req.DriverID)
		if err != nil {
			return eventdomain.Selection{}, fmt.Errorf("%w: driver_id is not a valid id", eventdomain.ErrInvalidSelection)
		}
		return eventdomain.RideWith(id), nil
	case eventdomain.ModeDriver:
		offer := eventdomain.RideOffer{PickupLocation: req.PickupLocation, Capacity: req.Capacity}
		if req.PickupTime != nil {
			offer.PickupTime = *req.PickupTime
		}
		return eventdomain.OfferRide(offer), nil
	}
	return eventdomain.SelfTransport(), nil
}

type registrationStatus struct {
	EventID    uuid.UUID `json:"event_id"`
	Registered bool      `json:"registered"`
}

func (h *EventHandlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EventHandlers.HandleListEvents")
	defer span.End()

	opts, err := h.parseListOptions(r.URL.Query(), h.now())
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	list, err := h.service.ListEvents(ctx, opts)
	if err != nil {
		h.writeError(ctx, w, "List events", err)
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

func (h *EventHandlers) HandleNextOpenHouse(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EventHandlers.HandleNextOpenHouse")
	defer span.End()

	event, err := h.service.NextOpenHouse(ctx)
	if err != nil {
		h.writeError(ctx, w, "Next open house", err)
		return
	}
	if event == nil {
		httpjson.Error(w, http.StatusNotFound, "not_found", "no open house is scheduled")
		return
	}
	httpjson.Write(w, http.StatusOK, event)
}

func (h *EventHandlers) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EventHandlers.HandleGetEvent")
	defer span.End()

	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}

	event, err := h.service.GetEvent(ctx, eventID)
	if err != nil {
		h.writeError(ctx, w, "Get event", err)
		return
	}
	httpjson.Write(w, http.StatusOK, event)
}

func (h *EventHandlers) HandleRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EventHandlers.HandleRoster")
	defer span.End()

	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	event, err := h.service.WriteRoster(ctx, eventID, &buf)
	if err != nil {
		h.writeError(ctx, w, "Roster export", err)
		return
	}

	filename := fmt.Sprintf("roster-%s.xlsx", event.StartTime.In(h.location).Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *EventHandlers) HandleGetRegistration(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EventHandlers.HandleGetRegistration")
	defer span.End()

	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}

	registered, err := h.service.IsRegisteredFor(ctx, eventID)
	if err != nil {
		h.writeError(ctx, w, "Registration lookup", err)
		return
	}
	httpjson.Write(w, http.StatusOK, registrationStatus{EventID: eventID, Registered: registered})
}

func (h *EventHandlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EventHandlers.HandleRegister")
	defer span.End()

	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}

	var req registrationRequest
	if err := httpjson.Decode(r, h.validate, &req); err != nil {
		httpjson.WriteValidation(w, err)
		return
	}
	sel, err := req.selection()
	if err != nil {
		h.writeError(ctx, w, "Register", err)
		return
	}

	reg, err := h.service.RegisterForEvent(ctx, eventID, sel)
	if err != nil {
		h.writeError(ctx, w, "Register", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, reg)
}

func (h *EventHandlers) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EventHandlers.HandleUnregister")
	defer span.End()

	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}

	out, err := h.service.UnregisterForEvent(ctx, eventID)
	if err != nil {
		h.writeError(ctx, w, "Unregister", err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

func eventIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid_id", "event id is not valid")
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps a service error onto a status and a stable code.
func (h *EventHandlers) writeError(ctx context.Context, w http.ResponseWriter, what string, err error) {
	switch eventdomain.Classify(err) {
	case eventdomain.KindUnauthenticated:
		httpjson.Error(w, http.StatusUnauthorized, "unauthenticated", "sign in required")
	case eventdomain.KindNotFound:
		httpjson.Error(w, http.StatusNotFound, notFoundCode(err), err.Error())
	case eventdomain.KindConflict:
		httpjson.Error(w, http.StatusConflict, conflictCode(err), err.Error())
	case eventdomain.KindInvalid:
		httpjson.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.logger.ErrorContext(ctx, what+" failed", attr.ExtractCorrelationID(ctx), attr.Error(err))
		httpjson.Error(w, http.StatusServiceUnavailable, "unavailable", "events are unavailable, try again later")
	}
}

func notFoundCode(err error) string {
	switch {
	case errors.Is(err, eventdomain.ErrDriverNotFound):
		return "driver_not_found"
	case errors.Is(err, eventdomain.ErrUserNotFound):
		return "user_not_found"
	}
	return "event_not_found"
}

func conflictCode(err error) string {
	switch {
	case errors.Is(err, eventdomain.ErrDriverFull):
		return "driver_full"
	case errors.Is(err, eventdomain.ErrCapacityExceeded):
		return "event_full"
	case errors.Is(err, eventdomain.ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, eventdomain.ErrNotRegistered):
		return "not_registered"
	}
	return "conflict"
}

var _ Handlers = (*EventHandlers)(nil)
