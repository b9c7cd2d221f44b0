// Package eventseed loads calendar events from YAML files.
package eventseed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	eventdb "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

// TimeLayout is the layout of start and end in seed files, read in the
// club's location.
const TimeLayout = "2006-01-02 15:04"

// File is the top level of a seed file.
type File struct {
	Events []Event `yaml:"events"`
}

// Event is one seeded event. ID is optional; events with an ID are only
// created once.
type Event struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	Location    string `yaml:"location"`
	Capacity    int    `yaml:"capacity"`
}

// Load decodes a seed file. Unknown keys and invalid events are errors.
func Load(r io.Reader, loc *time.Location) ([]eventdomain.EventRecord, error) {
	if loc == nil {
		loc = time.UTC
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	out := make([]eventdomain.EventRecord, 0, len(f.Events))
	for i, e := range f.Events {
		rec, err := e.record(loc)
		if err != nil {
			return nil, fmt.Errorf("event %d (%q): %w", i+1, e.Title, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (e Event) record(loc *time.Location) (eventdomain.EventRecord, error) {
	rec := eventdomain.EventRecord{
		Title:       strings.TrimSpace(e.Title),
		Description: e.Description,
		Location:    e.Location,
		Capacity:    e.Capacity,
	}
	if rec.Title == "" {
		return rec, errors.New("title is required")
	}
	if e.ID != "" {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return rec, fmt.Errorf("id: %w", err)
		}
		rec.ID = id
	}

	t, ok := eventdomain.ParseEventType(e.Type)
	if !ok {
		return rec, fmt.Errorf("unknown type %q", e.Type)
	}
	rec.Type = string(t)

	var err error
	if rec.StartTime, err = time.ParseInLocation(TimeLayout, e.Start, loc); err != nil {
		return rec, fmt.Errorf("start: %w", err)
	}
	if rec.EndTime, err = time.ParseInLocation(TimeLayout, e.End, loc); err != nil {
		return rec, fmt.Errorf("end: %w", err)
	}
	if !rec.EndTime.After(rec.StartTime) {
		return rec, errors.New("end must be after start")
	}
	if rec.Capacity < 0 {
		return rec, errors.New("capacity cannot be negative")
	}
	return rec, nil
}

// Apply creates the records that do not exist yet and returns how many were
// created.
func Apply(ctx context.Context, repo eventdb.Repository, db bun.IDB, records []eventdomain.EventRecord) (int, error) {
	created := 0
	for _, rec := range records {
		if rec.ID != uuid.Nil {
			_, err := repo.GetEvent(ctx, db, rec.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, eventdb.ErrNotFound) {
				return created, fmt.Errorf("look up %s: %w", rec.ID, err)
			}
		}
		if err := repo.CreateEvent(ctx, db, &rec); err != nil {
			return created, fmt.Errorf("create %q: %w", rec.Title, err)
		}
		created++
	}
	return created, nil
}
