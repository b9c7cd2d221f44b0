package eventservice

import (
	"strings"
	"time"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	"github.com/Black-And-White-Club/curling-club/internal/filter"
)

const (
	DefaultPerPage = 50
	MaxPerPage     = 200
	DefaultSort    = "-start_time"
)

// BuildListQuery turns calendar options into a repository query. Timestamps
// are rendered in loc; with UpcomingOnly and no From, the range starts at now.
func BuildListQuery(opts eventdomain.ListOptions, now time.Time, loc *time.Location, defaultPerPage int) eventdomain.ListQuery {
	if loc == nil {
		loc = time.UTC
	}
	if defaultPerPage <= 0 {
		defaultPerPage = DefaultPerPage
	}

	var clauses []string

	if len(opts.Types) > 0 {
		types := make([]string, 0, len(opts.Types))
		for _, t := range opts.Types {
			types = append(types, "type = "+filter.Quote(string(t)))
		}
		clauses = append(clauses, "("+strings.Join(types, " || ")+")")
	}

	from := opts.From
	if from == nil && opts.UpcomingOnly {
		from = &now
	}
	if from != nil {
		clauses = append(clauses, "start_time >= "+filter.Quote(from.In(loc).Format(filter.TimeLayout)))
	}
	if opts.To != nil {
		clauses = append(clauses, "start_time <= "+filter.Quote(opts.To.In(loc).Format(filter.TimeLayout)))
	}

	if q := strings.TrimSpace(opts.Q); q != "" {
		lit := filter.Quote(q)
		clauses = append(clauses, "(title ~ "+lit+" || description ~ "+lit+")")
	}
	if where := strings.TrimSpace(opts.Location); where != "" {
		clauses = append(clauses, "location ~ "+filter.Quote(where))
	}

	sort := strings.TrimSpace(opts.Sort)
	if sort == "" {
		sort = DefaultSort
	}
	page := max(opts.Page, 1)
	perPage := opts.Limit
	switch {
	case perPage <= 0:
		perPage = defaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}

	return eventdomain.ListQuery{
		Filter:  strings.Join(clauses, " && "),
		Sort:    sort,
		Page:    page,
		PerPage: perPage,
		Expand:  []string{eventdomain.ExpandAttendees},
	}
}
