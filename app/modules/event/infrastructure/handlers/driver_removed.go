package eventhandlers

import (
	"context"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	"github.com/Black-And-White-Club/curling-club/app/shared/attr"
	"github.com/Black-And-White-Club/curling-club/app/shared/handlerwrapper"
)

// HandleDriverRemoved fans a cancelled ride out into one
// PassengerReleasedV1 notice per released passenger. The owner is never
// notified about their own ride.
func (h *EventHandlers) HandleDriverRemoved(ctx context.Context, payload *clubevents.DriverRemovedPayloadV1) ([]handlerwrapper.Result, error) {
	h.logger.InfoContext(ctx, "Ride cancelled",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("event_id", payload.EventID),
		attr.UUID("driver_id", payload.DriverID),
		attr.UUID("owner_id", payload.OwnerID),
		attr.Int("released", len(payload.Released)),
	)

	out := make([]handlerwrapper.Result, 0, len(payload.Released))
	seen := make(map[string]struct{}, len(payload.Released))
	for _, id := range payload.Released {
		if id == payload.OwnerID {
			continue
		}
		if _, dup := seen[id.String()]; dup {
			continue
		}
		seen[id.String()] = struct{}{}
		out = append(out, handlerwrapper.Result{
			Topic: clubevents.PassengerReleasedV1,
			Payload: clubevents.PassengerReleasedPayloadV1{
				EventID:  payload.EventID,
				UserID:   id,
				DriverID: payload.DriverID,
			},
		})
	}
	return out, nil
}

var _ MessageHandlers = (*EventHandlers)(nil)
