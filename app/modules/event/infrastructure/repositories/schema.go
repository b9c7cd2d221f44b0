package eventdb

import (
	"time"

	"github.com/Black-And-White-Club/curling-club/internal/filter"
)

// EventSchema lists the event fields a list filter or sort may reference.
// Time literals are read in loc.
func EventSchema(loc *time.Location) filter.Schema {
	return filter.Schema{
		Location: loc,
		Fields: map[string]filter.Field{
			"id":          {Column: "e.id", Kind: filter.KindID},
			"title":       {Column: "e.title", Kind: filter.KindText},
			"description": {Column: "e.description", Kind: filter.KindText},
			"type":        {Column: "e.type", Kind: filter.KindText},
			"location":    {Column: "e.location", Kind: filter.KindText},
			"start_time":  {Column: "e.start_time", Kind: filter.KindTime},
			"end_time":    {Column: "e.end_time", Kind: filter.KindTime},
			"capacity":    {Column: "e.capacity", Kind: filter.KindNumber},
		},
	}
}
