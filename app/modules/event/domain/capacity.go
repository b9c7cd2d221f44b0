package eventdomain

import "github.com/google/uuid"

// Driver capacity counts passenger seats only. The owner rides in their own
// record but does not take one of its seats.

// DriverSpotsLeft returns the free seats of a driver with the given capacity,
// owner and stored passengers. The result is negative when over-booked.
func DriverSpotsLeft(capacity int, owner uuid.UUID, passengers []uuid.UUID) int {
	taken := 0
	seen := make(map[uuid.UUID]struct{}, len(passengers))
	for _, id := range passengers {
		if id == owner || id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		taken++
	}
	return capacity - taken
}

func (d Driver) spotsLeft() int {
	ids := make([]uuid.UUID, len(d.Passengers))
	for i, p := range d.Passengers {
		ids[i] = p.ID
	}
	return DriverSpotsLeft(d.Capacity, d.Owner.ID, ids)
}

// TotalAttendees counts distinct drivers, distinct passengers who are not
// drivers, and self-transport attendees.
func TotalAttendees(t Transport) int {
	drivers := make(map[uuid.UUID]struct{}, len(t.Drivers))
	for _, d := range t.Drivers {
		drivers[d.Owner.ID] = struct{}{}
	}

	passengers := make(map[uuid.UUID]struct{})
	for _, d := range t.Drivers {
		for _, p := range d.Passengers {
			if _, isDriver := drivers[p.ID]; isDriver {
				continue
			}
			passengers[p.ID] = struct{}{}
		}
	}

	self := make(map[uuid.UUID]struct{}, len(t.Self))
	for _, m := range t.Self {
		self[m.ID] = struct{}{}
	}

	return len(drivers) + len(passengers) + len(self)
}

// EventSpotsLeft returns the remaining event capacity. limited is false when
// capacity is zero or negative, meaning the event has no limit.
func EventSpotsLeft(capacity int, t Transport) (left int, limited bool) {
	if capacity <= 0 {
		return 0, false
	}
	return max(capacity-TotalAttendees(t), 0), true
}
