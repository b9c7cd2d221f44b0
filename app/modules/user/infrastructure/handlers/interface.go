package userhandlers

import (
	"context"
	"net/http"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	"github.com/Black-And-White-Club/curling-club/app/shared/handlerwrapper"
)

// Handlers defines the HTTP and bus handlers of the user module.
type Handlers interface {
	HandleGetProfile(w http.ResponseWriter, r *http.Request)
	HandleRequestMembership(w http.ResponseWriter, r *http.Request)

	HandleAttendeeRegistered(ctx context.Context, payload *clubevents.AttendeeRegisteredPayloadV1) ([]handlerwrapper.Result, error)
}
