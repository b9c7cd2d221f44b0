package eventhandlers

import (
	"context"
	"net/http"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	"github.com/Black-And-White-Club/curling-club/app/shared/handlerwrapper"
)

// Handlers defines the HTTP endpoints of the event module.
type Handlers interface {
	HandleListEvents(w http.ResponseWriter, r *http.Request)
	HandleNextOpenHouse(w http.ResponseWriter, r *http.Request)
	HandleGetEvent(w http.ResponseWriter, r *http.Request)
	HandleRoster(w http.ResponseWriter, r *http.Request)

	HandleGetRegistration(w http.ResponseWriter, r *http.Request)
	HandleRegister(w http.ResponseWriter, r *http.Request)
	HandleUnregister(w http.ResponseWriter, r *http.Request)
}

// MessageHandlers defines the bus handlers of the event module.
type MessageHandlers interface {
	HandleDriverRemoved(ctx context.Context, payload *clubevents.DriverRemovedPayloadV1) ([]handlerwrapper.Result, error)
}
