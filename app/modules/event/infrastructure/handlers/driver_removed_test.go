package eventhandlers

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	clubevents "github.com/Black-And-White-Club/curling-club/app/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestEventHandlers_HandleDriverRemoved(t *testing.T) {
	owner := uuid.New()
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name     string
		released []uuid.UUID
		want     []uuid.UUID
	}{
		{name: "no passengers", released: nil, want: nil},
		{name: "two passengers released", released: []uuid.UUID{a, b}, want: []uuid.UUID{a, b}},
		{name: "owner and duplicates skipped", released: []uuid.UUID{owner, a, a}, want: []uuid.UUID{a}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			s := &FakeService{}
			h := NewEventHandlers(s, nil, time.UTC, logger, noop.NewTracerProvider().Tracer("test"))

			payload := &clubevents.DriverRemovedPayloadV1{
				EventID:  uuid.New(),
				DriverID: uuid.New(),
				OwnerID:  owner,
				Released: tt.released,
			}

			results, err := h.HandleDriverRemoved(context.Background(), payload)
			require.NoError(t, err)
			assert.Empty(t, s.Trace())
			require.Len(t, results, len(tt.want))
			for i, id := range tt.want {
				assert.Equal(t, clubevents.PassengerReleasedV1, results[i].Topic)
				assert.Equal(t, clubevents.PassengerReleasedPayloadV1{
					EventID:  payload.EventID,
					UserID:   id,
					DriverID: payload.DriverID,
				}, results[i].Payload)
			}

			out := buf.String()
			assert.Contains(t, out, "Ride cancelled")
			assert.Contains(t, out, payload.DriverID.String())
		})
	}
}
