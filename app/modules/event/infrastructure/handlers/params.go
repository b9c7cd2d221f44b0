package eventhandlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
)

// parseListOptions reads the calendar query string. Types may repeat or be
// comma separated. Bounds accept timestamps, dates and phrases like
// "next friday".
func (h *EventHandlers) parseListOptions(q url.Values, now time.Time) (eventdomain.ListOptions, error) {
	var opts eventdomain.ListOptions

	for _, raw := range q["type"] {
		for _, part := range strings.Split(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			t, ok := eventdomain.ParseEventType(part)
			if !ok {
				return opts, fmt.Errorf("unknown event type %q", part)
			}
			opts.Types = append(opts.Types, t)
		}
	}

	for _, bound := range []struct {
		key string
		dst **time.Time
	}{{"from", &opts.From}, {"to", &opts.To}} {
		v := q.Get(bound.key)
		if v == "" {
			continue
		}
		t, err := h.times.Parse(v, h.location, now)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", bound.key, err)
		}
		*bound.dst = &t
	}
	if opts.From != nil && opts.To != nil && opts.To.Before(*opts.From) {
		return opts, fmt.Errorf("to is before from")
	}

	opts.Q = strings.TrimSpace(q.Get("q"))
	opts.Location = strings.TrimSpace(q.Get("location"))
	opts.Sort = strings.TrimSpace(q.Get("sort"))

	if v := q.Get("upcoming"); v != "" {
		upcoming, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("upcoming: %q is not a boolean", v)
		}
		opts.UpcomingOnly = upcoming
	}

	var err error
	if opts.Page, err = positiveInt(q, "page"); err != nil {
		return opts, err
	}
	if opts.Limit, err = positiveInt(q, "limit"); err != nil {
		return opts, err
	}
	return opts, nil
}

func positiveInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s: %q is not a positive integer", key, v)
	}
	return n, nil
}
