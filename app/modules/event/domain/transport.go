package eventdomain

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// BuildTransport places every attendee either with the driver whose
// passenger list holds them or in Self. Drivers whose owner is unresolved are
// left out and their ids returned in skipped; their passengers fall back to
// Self. Attendees with no id are dropped. The result depends only on the
// input contents, not their order.
func BuildTransport(attendees []Person, drivers []DriverRecord) (t Transport, skipped []uuid.UUID) {
	ordered := slices.Clone(drivers)
	slices.SortFunc(ordered, func(a, b DriverRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	riding := make(map[uuid.UUID]struct{})
	t.Drivers = make([]Driver, 0, len(ordered))

	for _, d := range ordered {
		if d.Owner == nil || d.Owner.ID == uuid.Nil {
			skipped = append(skipped, d.ID)
			continue
		}

		passengers := orderedPassengers(d)
		view := Driver{
			ID:             d.ID,
			Owner:          toMember(*d.Owner),
			PickupTime:     d.PickupTime,
			PickupLocation: d.PickupLocation,
			Capacity:       d.Capacity,
			Passengers:     make([]Member, 0, len(passengers)),
		}
		for _, p := range passengers {
			if _, dup := riding[p.ID]; dup {
				continue
			}
			riding[p.ID] = struct{}{}
			view.Passengers = append(view.Passengers, toMember(p))
		}
		view.SpotsLeft = view.spotsLeft()
		view.Full = view.SpotsLeft <= 0
		t.Drivers = append(t.Drivers, view)
	}

	self := slices.Clone(attendees)
	sortPeople(self)
	t.Self = make([]Member, 0, len(self))
	for _, a := range self {
		if a.ID == uuid.Nil {
			continue
		}
		if _, ok := riding[a.ID]; ok {
			continue
		}
		riding[a.ID] = struct{}{}
		t.Self = append(t.Self, toMember(a))
	}

	return t, skipped
}

// orderedPassengers returns the owner first, then the other passengers by
// join time and id. Passengers without an id are dropped.
func orderedPassengers(d DriverRecord) []Person {
	out := make([]Person, 0, len(d.Passengers)+1)
	out = append(out, *d.Owner)

	rest := make([]Person, 0, len(d.Passengers))
	for _, p := range d.Passengers {
		if p.ID == uuid.Nil || p.ID == d.Owner.ID {
			continue
		}
		rest = append(rest, p)
	}
	sortPeople(rest)
	return append(out, rest...)
}

func sortPeople(people []Person) {
	slices.SortFunc(people, func(a, b Person) int {
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
}
