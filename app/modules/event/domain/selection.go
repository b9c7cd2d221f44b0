package eventdomain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SelectionMode is how a registrant gets to the event.
type SelectionMode string

const (
	ModeSelf      SelectionMode = "self"
	ModePassenger SelectionMode = "passenger"
	ModeDriver    SelectionMode = "driver"
)

// MaxDriverCapacity bounds the seats a driver may offer.
const MaxDriverCapacity = 12

// RideOffer describes a new driver.
type RideOffer struct {
	PickupTime     time.Time
	PickupLocation string
	Capacity       int
}

// Selection is the transport choice made when registering.
type Selection struct {
	Mode     SelectionMode
	DriverID uuid.UUID
	Offer    *RideOffer
}

// SelfTransport registers without a ride.
func SelfTransport() Selection {
	return Selection{Mode: ModeSelf}
}

// RideWith registers as a passenger of an existing driver.
func RideWith(driverID uuid.UUID) Selection {
	return Selection{Mode: ModePassenger, DriverID: driverID}
}

// OfferRide registers as a new driver.
func OfferRide(offer RideOffer) Selection {
	return Selection{Mode: ModeDriver, Offer: &offer}
}

// Validate checks the selection is complete for its mode.
func (s Selection) Validate() error {
	switch s.Mode {
	case ModeSelf:
		return nil
	case ModePassenger:
		if s.DriverID == uuid.Nil {
			return fmt.Errorf("%w: driver id is required", ErrInvalidSelection)
		}
		return nil
	case ModeDriver:
		if s.Offer == nil {
			return fmt.Errorf("%w: ride details are required", ErrInvalidSelection)
		}
		if s.Offer.PickupTime.IsZero() {
			return fmt.Errorf("%w: pickup time is required", ErrInvalidSelection)
		}
		if strings.TrimSpace(s.Offer.PickupLocation) == "" {
			return fmt.Errorf("%w: pickup location is required", ErrInvalidSelection)
		}
		if s.Offer.Capacity < 1 || s.Offer.Capacity > MaxDriverCapacity {
			return fmt.Errorf("%w: capacity must be between 1 and %d", ErrInvalidSelection, MaxDriverCapacity)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown mode %q", ErrInvalidSelection, s.Mode)
}

// Registration is the outcome of a successful registration.
type Registration struct {
	EventID  uuid.UUID     `json:"event_id"`
	UserID   uuid.UUID     `json:"user_id"`
	Mode     SelectionMode `json:"mode"`
	DriverID uuid.UUID     `json:"driver_id,omitzero"`
}

// Unregistration is the outcome of a successful unregistration. When the user
// was a driver, RemovedDriverID is set and Released lists the passengers who
// now travel on their own.
type Unregistration struct {
	EventID         uuid.UUID   `json:"event_id"`
	UserID          uuid.UUID   `json:"user_id"`
	RemovedDriverID uuid.UUID   `json:"removed_driver_id,omitzero"`
	Released        []uuid.UUID `json:"released,omitempty"`
}
