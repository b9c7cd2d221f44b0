package eventservice

import (
	"context"
	"fmt"
	"io"
	"strings"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	rosterAttendeesSheet = "Attendees"
	rosterRidesSheet     = "Rides"
	rosterTimeLayout     = "2006-01-02 15:04"
)

// WriteRoster writes the event's attendees and rides as an xlsx workbook to w
// and returns the event it describes.
func (s *EventService) WriteRoster(ctx context.Context, eventID uuid.UUID, w io.Writer) (eventdomain.Event, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return eventdomain.Event{}, err
	}

	f, err := s.buildRoster(event)
	if err != nil {
		return eventdomain.Event{}, fmt.Errorf("build roster: %w", err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return eventdomain.Event{}, fmt.Errorf("write roster: %w", err)
	}
	return event, nil
}

func (s *EventService) buildRoster(event eventdomain.Event) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", rosterAttendeesSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(rosterRidesSheet); err != nil {
		f.Close()
		return nil, err
	}

	attendees := [][]any{{"Name", "Transport", "Driver"}}
	for _, d := range event.Transport.Drivers {
		for i, p := range d.Passengers {
			if i == 0 && p.ID == d.Owner.ID {
				attendees = append(attendees, []any{p.Name, string(eventdomain.ModeDriver), ""})
				continue
			}
			attendees = append(attendees, []any{p.Name, string(eventdomain.ModePassenger), d.Owner.Name})
		}
	}
	for _, m := range event.Transport.Self {
		attendees = append(attendees, []any{m.Name, string(eventdomain.ModeSelf), ""})
	}

	rides := [][]any{{"Driver", "Pickup time", "Pickup location", "Seats", "Seats left", "Passengers"}}
	for _, d := range event.Transport.Drivers {
		names := make([]string, 0, len(d.Passengers))
		for _, p := range d.Passengers {
			if p.ID != d.Owner.ID {
				names = append(names, p.Name)
			}
		}
		rides = append(rides, []any{
			d.Owner.Name,
			d.PickupTime.In(s.config.Location).Format(rosterTimeLayout),
			d.PickupLocation,
			d.Capacity,
			max(d.SpotsLeft, 0),
			strings.Join(names, ", "),
		})
	}

	for sheet, rows := range map[string][][]any{rosterAttendeesSheet: attendees, rosterRidesSheet: rides} {
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}
