package eventservice

import (
	"testing"
	"time"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	"github.com/Black-And-White-Club/curling-club/internal/filter"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQuery(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	now := time.Date(2026, 10, 15, 14, 30, 5, 0, time.UTC)
	from := time.Date(2026, 1, 2, 3, 4, 5, 0, chicago)
	to := time.Date(2026, 12, 31, 23, 0, 0, 0, chicago)

	tests := []struct {
		name string
		opts eventdomain.ListOptions
		want eventdomain.ListQuery
	}{
		{
			name: "types, text and upcoming",
			opts: eventdomain.ListOptions{
				Types:        []eventdomain.EventType{eventdomain.TypePractice},
				Q:            "learn",
				UpcomingOnly: true,
			},
			want: eventdomain.ListQuery{
				Filter:  "(type = 'practice') && start_time >= '2026-10-15 09:30:05' && (title ~ 'learn' || description ~ 'learn')",
				Sort:    "-start_time",
				Page:    1,
				PerPage: 50,
				Expand:  []string{"attendees"},
			},
		},
		{
			name: "several types OR together",
			opts: eventdomain.ListOptions{
				Types: []eventdomain.EventType{eventdomain.TypePractice, eventdomain.TypeOpenHouse},
				Sort:  "start_time",
			},
			want: eventdomain.ListQuery{
				Filter:  "(type = 'practice' || type = 'open house')",
				Sort:    "start_time",
				Page:    1,
				PerPage: 50,
				Expand:  []string{"attendees"},
			},
		},
		{
			name: "explicit range wins over upcoming",
			opts: eventdomain.ListOptions{From: &from, To: &to, UpcomingOnly: true, Location: "Granite"},
			want: eventdomain.ListQuery{
				Filter:  "start_time >= '2026-01-02 03:04:05' && start_time <= '2026-12-31 23:00:00' && location ~ 'Granite'",
				Sort:    "-start_time",
				Page:    1,
				PerPage: 50,
				Expand:  []string{"attendees"},
			},
		},
		{
			name: "quotes and backslashes are escaped",
			opts: eventdomain.ListOptions{Q: `O'Neil \`},
			want: eventdomain.ListQuery{
				Filter:  `(title ~ 'O\'Neil \\' || description ~ 'O\'Neil \\')`,
				Sort:    "-start_time",
				Page:    1,
				PerPage: 50,
				Expand:  []string{"attendees"},
			},
		},
		{
			name: "paging is clamped",
			opts: eventdomain.ListOptions{Page: -3, Limit: 5000},
			want: eventdomain.ListQuery{
				Sort:    "-start_time",
				Page:    1,
				PerPage: MaxPerPage,
				Expand:  []string{"attendees"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildListQuery(tt.opts, now, chicago, 0)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildListQuery mismatch (-want +got):\n%s", diff)
			}

			// Every generated filter must parse back.
			_, err := filter.Parse(got.Filter)
			assert.NoError(t, err)
		})
	}
}

func TestBuildListQuery_EscapedLiteralRoundTrips(t *testing.T) {
	q := BuildListQuery(eventdomain.ListOptions{Location: `Rink 'B' \ east`}, time.Now(), time.UTC, 10)
	node, err := filter.Parse(q.Filter)
	require.NoError(t, err)
	cmpNode, ok := node.(*filter.Comparison)
	require.True(t, ok)
	assert.Equal(t, `Rink 'B' \ east`, cmpNode.Value.Str)
	assert.Equal(t, 10, q.PerPage)
}
