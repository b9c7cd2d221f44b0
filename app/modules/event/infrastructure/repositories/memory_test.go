package eventdb

import (
	"context"
	"testing"
	"time"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directory(people ...eventdomain.Person) MemberLookup {
	byID := make(map[uuid.UUID]eventdomain.Person, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}
	return func(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]eventdomain.Person, error) {
		out := make(map[uuid.UUID]eventdomain.Person)
		for _, id := range ids {
			if p, ok := byID[id]; ok {
				out[id] = p
			}
		}
		return out, nil
	}
}

func seedEvents(t *testing.T, repo *MemoryRepository, recs ...eventdomain.EventRecord) []eventdomain.EventRecord {
	t.Helper()
	for i := range recs {
		require.NoError(t, repo.CreateEvent(context.Background(), nil, &recs[i]))
	}
	return recs
}

func TestMemoryRepository_ListEvents(t *testing.T) {
	ctx := context.Background()
	loc := time.UTC
	repo := NewMemoryRepository(loc, nil)
	day := time.Date(2026, 11, 1, 18, 0, 0, 0, loc)

	events := seedEvents(t, repo,
		eventdomain.EventRecord{Title: "Monday practice", Type: "practice", StartTime: day, Location: "Sheet A"},
		eventdomain.EventRecord{Title: "Fall Spiel", Type: "spiel", StartTime: day.Add(48 * time.Hour), Location: "Granite Club"},
		eventdomain.EventRecord{Title: "Open house", Type: "Open House", StartTime: day.Add(72 * time.Hour), Description: "Try curling"},
		eventdomain.EventRecord{Title: "Old practice", Type: "practice", StartTime: day.Add(-30 * 24 * time.Hour)},
	)

	tests := []struct {
		name  string
		query eventdomain.ListQuery
		want  []string
	}{
		{
			name:  "no filter newest first",
			query: eventdomain.ListQuery{Sort: "-start_time"},
			want:  []string{"Open house", "Fall Spiel", "Monday practice", "Old practice"},
		},
		{
			name:  "types and range",
			query: eventdomain.ListQuery{Filter: "(type = 'practice' || type = 'spiel') && start_time >= '2026-11-01 00:00:00'", Sort: "start_time"},
			want:  []string{"Monday practice", "Fall Spiel"},
		},
		{
			name:  "text search is case-insensitive",
			query: eventdomain.ListQuery{Filter: "(title ~ 'CURLING' || description ~ 'CURLING')"},
			want:  []string{"Open house"},
		},
		{
			name:  "stored type is normalized",
			query: eventdomain.ListQuery{Filter: "type = 'open house'"},
			want:  []string{"Open house"},
		},
		{
			name:  "paged",
			query: eventdomain.ListQuery{Sort: "start_time", Page: 2, PerPage: 2},
			want:  []string{"Fall Spiel", "Open house"},
		},
		{
			name:  "page past the end",
			query: eventdomain.ListQuery{Sort: "start_time", Page: 5, PerPage: 2},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListEvents(ctx, nil, tt.query)
			require.NoError(t, err)
			titles := make([]string, 0, len(got))
			for _, e := range got {
				titles = append(titles, e.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	_, err := repo.ListEvents(ctx, nil, eventdomain.ListQuery{Filter: "colour = 'red'"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = repo.ListEvents(ctx, nil, eventdomain.ListQuery{Filter: "title = "})
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = repo.ListEvents(ctx, nil, eventdomain.ListQuery{Sort: "-colour"})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	assert.Len(t, events, 4)
}

func TestMemoryRepository_AttendeesAndDrivers(t *testing.T) {
	ctx := context.Background()
	ann := eventdomain.Person{ID: uuid.New(), Name: "Ann"}
	ben := eventdomain.Person{ID: uuid.New(), Name: "Ben"}
	gone := uuid.New()

	repo := NewMemoryRepository(time.UTC, directory(ann, ben))
	ev := seedEvents(t, repo, eventdomain.EventRecord{Title: "Practice", Type: "practice", StartTime: time.Now()})[0]

	require.NoError(t, repo.AddAttendee(ctx, nil, ev.ID, ann.ID))
	require.NoError(t, repo.AddAttendee(ctx, nil, ev.ID, ben.ID))
	require.NoError(t, repo.AddAttendee(ctx, nil, ev.ID, gone))
	assert.ErrorIs(t, repo.AddAttendee(ctx, nil, ev.ID, ann.ID), ErrAlreadyAttending)
	assert.ErrorIs(t, repo.AddAttendee(ctx, nil, uuid.New(), ann.ID), ErrNotFound)

	n, err := repo.CountAttendees(ctx, nil, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "count includes rows whose user is gone")

	people, err := repo.ListAttendees(ctx, nil, ev.ID)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Ann", people[0].Name)
	assert.Equal(t, "Ben", people[1].Name)
	assert.True(t, people[0].JoinedAt.Before(people[1].JoinedAt))

	driver := &eventdomain.DriverRecord{EventID: ev.ID, OwnerID: ann.ID, PickupTime: time.Now(), PickupLocation: "Lot", Capacity: 2}
	require.NoError(t, repo.CreateDriver(ctx, nil, driver))
	require.NoError(t, repo.AddPassenger(ctx, nil, driver.ID, ev.ID, ann.ID))
	require.NoError(t, repo.AddPassenger(ctx, nil, driver.ID, ev.ID, ben.ID))
	assert.ErrorIs(t, repo.AddPassenger(ctx, nil, driver.ID, ev.ID, ben.ID), ErrAlreadyRiding)
	assert.ErrorIs(t, repo.AddPassenger(ctx, nil, driver.ID, uuid.New(), ben.ID), ErrNotFound)

	got, err := repo.GetDriverByOwner(ctx, nil, ev.ID, ann.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "Ann", got.Owner.Name)
	assert.Equal(t, []uuid.UUID{ann.ID, ben.ID}, got.PassengerIDs())

	drivers, err := repo.ListDrivers(ctx, nil, ev.ID)
	require.NoError(t, err)
	assert.Len(t, drivers, 1)

	require.NoError(t, repo.RemovePassenger(ctx, nil, ev.ID, ben.ID))
	require.NoError(t, repo.RemovePassenger(ctx, nil, ev.ID, ben.ID), "not riding is fine")
	got, err = repo.GetDriver(ctx, nil, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ann.ID}, got.PassengerIDs())

	require.NoError(t, repo.DeleteDriver(ctx, nil, driver.ID))
	assert.ErrorIs(t, repo.DeleteDriver(ctx, nil, driver.ID), ErrNotFound)
	_, err = repo.GetDriverByOwner(ctx, nil, ev.ID, ann.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.RemoveAttendee(ctx, nil, ev.ID, ann.ID))
	assert.ErrorIs(t, repo.RemoveAttendee(ctx, nil, ev.ID, ann.ID), ErrNotFound)
	ok, err := repo.IsAttendee(ctx, nil, ev.ID, ann.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryRepository_UnresolvedOwner(t *testing.T) {
	ctx := context.Background()
	rider := eventdomain.Person{ID: uuid.New(), Name: "Rider"}
	repo := NewMemoryRepository(time.UTC, directory(rider))
	ev := seedEvents(t, repo, eventdomain.EventRecord{Title: "Spiel", StartTime: time.Now()})[0]

	driver := &eventdomain.DriverRecord{EventID: ev.ID, OwnerID: uuid.New(), PickupTime: time.Now(), PickupLocation: "Lot", Capacity: 3}
	require.NoError(t, repo.CreateDriver(ctx, nil, driver))
	require.NoError(t, repo.AddPassenger(ctx, nil, driver.ID, ev.ID, rider.ID))

	got, err := repo.GetDriver(ctx, nil, driver.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Owner)
	assert.Equal(t, []uuid.UUID{rider.ID}, got.PassengerIDs())
}
