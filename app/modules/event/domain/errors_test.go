package eventdomain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindUnknown},
		{ErrUnauthenticated, KindUnauthenticated},
		{ErrEventNotFound, KindNotFound},
		{fmt.Errorf("register: %w", ErrDriverNotFound), KindNotFound},
		{ErrUserNotFound, KindNotFound},
		{ErrCapacityExceeded, KindConflict},
		{ErrDriverFull, KindConflict},
		{ErrAlreadyRegistered, KindConflict},
		{ErrNotRegistered, KindConflict},
		{ErrInvalidSelection, KindInvalid},
		{ErrInvalidFilter, KindInvalid},
		{Unavailable("ListEvents", errors.New("dial tcp: refused")), KindUnavailable},
		{errors.New("mystery"), KindUnknown},
	}
	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestErrorHierarchy(t *testing.T) {
	assert.ErrorIs(t, ErrDriverFull, ErrCapacityExceeded)
	assert.ErrorIs(t, ErrEventNotFound, ErrNotFound)
	assert.NotErrorIs(t, ErrEventNotFound, ErrDriverNotFound)

	cause := errors.New("connection reset")
	err := Unavailable("LockEvent", cause)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Unavailable("noop", nil))
}

func TestSelection_Validate(t *testing.T) {
	tomorrow := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name    string
		sel     Selection
		wantErr bool
	}{
		{"self", SelfTransport(), false},
		{"passenger", RideWith(uuid.New()), false},
		{"passenger without driver", RideWith(uuid.Nil), true},
		{"driver", OfferRide(RideOffer{PickupTime: tomorrow, PickupLocation: "Lot B", Capacity: 3}), false},
		{"driver without seats", OfferRide(RideOffer{PickupTime: tomorrow, PickupLocation: "Lot B", Capacity: 0}), true},
		{"driver with a bus", OfferRide(RideOffer{PickupTime: tomorrow, PickupLocation: "Lot B", Capacity: 40}), true},
		{"driver without location", OfferRide(RideOffer{PickupTime: tomorrow, Capacity: 2}), true},
		{"driver without time", OfferRide(RideOffer{PickupLocation: "Lot B", Capacity: 2}), true},
		{"driver without details", Selection{Mode: ModeDriver}, true},
		{"unknown mode", Selection{Mode: "teleport"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSelection)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
