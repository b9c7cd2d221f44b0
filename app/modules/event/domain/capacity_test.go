package eventdomain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDriverSpotsLeft(t *testing.T) {
	owner := uuid.New()
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name       string
		capacity   int
		passengers []uuid.UUID
		want       int
	}{
		{"owner does not take a seat", 1, []uuid.UUID{owner}, 1},
		{"one rider", 2, []uuid.UUID{owner, a}, 1},
		{"full", 2, []uuid.UUID{owner, a, b}, 0},
		{"duplicates count once", 2, []uuid.UUID{owner, a, a}, 1},
		{"over-booked goes negative", 1, []uuid.UUID{owner, a, b}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DriverSpotsLeft(tt.capacity, owner, tt.passengers))
		})
	}
}

func TestEventSpotsLeft(t *testing.T) {
	tr := Transport{Self: []Member{{ID: uuid.New()}, {ID: uuid.New()}}}

	left, limited := EventSpotsLeft(0, tr)
	assert.False(t, limited)
	assert.Zero(t, left)

	left, limited = EventSpotsLeft(5, tr)
	assert.True(t, limited)
	assert.Equal(t, 3, left)

	left, limited = EventSpotsLeft(1, tr)
	assert.True(t, limited)
	assert.Equal(t, 0, left, "never negative")
}

func TestToEventView(t *testing.T) {
	id := uuid.New()
	ev := ToEventView(EventRecord{ID: id, Title: "Bonspiel", Type: "", Capacity: 2}, Transport{
		Self: []Member{{ID: uuid.New(), Name: "A"}},
	})
	assert.Equal(t, TypeOther, ev.Type)
	assert.Equal(t, 1, ev.Attendees)
	if assert.NotNil(t, ev.SpotsLeft) {
		assert.Equal(t, 1, *ev.SpotsLeft)
	}
	assert.NotNil(t, ev.Transport.Drivers)

	unlimited := ToEventView(EventRecord{ID: id, Type: "Open House"}, Transport{})
	assert.Nil(t, unlimited.SpotsLeft)
	assert.Equal(t, TypeOpenHouse, unlimited.Type)
	assert.NotNil(t, unlimited.Transport.Self)
}

func TestParseEventType(t *testing.T) {
	got, ok := ParseEventType(" SPIEL ")
	assert.True(t, ok)
	assert.Equal(t, TypeSpiel, got)

	_, ok = ParseEventType("curling")
	assert.False(t, ok)
	assert.Equal(t, TypeOther, NormalizeEventType("curling"))
}
