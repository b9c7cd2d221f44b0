package eventdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	eventdomain "github.com/Black-And-White-Club/curling-club/app/modules/event/domain"
	"github.com/Black-And-White-Club/curling-club/internal/filter"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db     bun.IDB
	schema filter.Schema
}

// NewRepository creates a new event repository. Filter time literals are
// read in loc.
func NewRepository(db bun.IDB, loc *time.Location) Repository {
	return &Impl{db: db, schema: EventSchema(loc)}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func pgCode(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

func (r *Impl) ListEvents(ctx context.Context, db bun.IDB, q eventdomain.ListQuery) ([]ListedEvent, error) {
	db = r.resolveDB(db)

	node, err := filter.Parse(q.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	where, args, err := filter.ToSQL(node, r.schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	keys, err := filter.ParseSort(q.Sort, r.schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	var events []*Event
	sel := db.NewSelect().Model(&events)
	if where != "" {
		sel = sel.Where(where, args...)
	}
	for _, k := range keys {
		sel = sel.OrderExpr(k.SQL())
	}
	sel = sel.OrderExpr("e.id ASC")
	if q.PerPage > 0 {
		sel = sel.Limit(q.PerPage).Offset(q.Offset())
	}
	expand := q.Expands(eventdomain.ExpandAttendees)
	if expand {
		sel = sel.
			Relation("Attendees", func(sq *bun.SelectQuery) *bun.SelectQuery {
				return sq.Order("ea.joined_at ASC", "ea.user_id ASC")
			}).
			Relation("Attendees.User")
	}

	if err := sel.Scan(ctx); err != nil {
		return nil, fmt.Errorf("eventdb.ListEvents: %w", err)
	}

	out := make([]ListedEvent, 0, len(events))
	for _, e := range events {
		le := ListedEvent{EventRecord: e.toRecord()}
		if expand {
			le.Attendees = people(e.Attendees)
		}
		out = append(out, le)
	}
	return out, nil
}

func (r *Impl) GetEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*eventdomain.EventRecord, error) {
	return r.getEvent(ctx, r.resolveDB(db), id, false)
}

func (r *Impl) LockEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (*eventdomain.EventRecord, error) {
	return r.getEvent(ctx, r.resolveDB(db), id, true)
}

func (r *Impl) getEvent(ctx context.Context, db bun.IDB, id uuid.UUID, lock bool) (*eventdomain.EventRecord, error) {
	event := new(Event)
	sel := db.NewSelect().Model(event).Where("e.id = ?", id)
	if lock {
		sel = sel.For("UPDATE")
	}
	if err := sel.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("eventdb.GetEvent: %w", err)
	}
	rec := event.toRecord()
	return &rec, nil
}

func (r *Impl) CreateEvent(ctx context.Context, db bun.IDB, rec *eventdomain.EventRecord) error {
	db = r.resolveDB(db)
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	event := eventFromRecord(rec)
	now := time.Now()
	event.CreatedAt, event.UpdatedAt = now, now
	if _, err := db.NewInsert().Model(event).Exec(ctx); err != nil {
		return fmt.Errorf("eventdb.CreateEvent: %w", err)
	}
	rec.Type = event.Type
	return nil
}

func (r *Impl) ListAttendees(ctx context.Context, db bun.IDB, eventID uuid.UUID) ([]eventdomain.Person, error) {
	db = r.resolveDB(db)
	var attendees []*Attendee
	err := db.NewSelect().
		Model(&attendees).
		Relation("User").
		Where("ea.event_id = ?", eventID).
		Order("ea.joined_at ASC", "ea.user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("eventdb.ListAttendees: %w", err)
	}
	return people(attendees), nil
}

func (r *Impl) CountAttendees(ctx context.Context, db bun.IDB, eventID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*Attendee)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("eventdb.CountAttendees: %w", err)
	}
	return n, nil
}

func (r *Impl) IsAttendee(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	ok, err := db.NewSelect().
		Model((*Attendee)(nil)).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("eventdb.IsAttendee: %w", err)
	}
	return ok, nil
}

func (r *Impl) AddAttendee(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) error {
	db = r.resolveDB(db)
	row := &Attendee{EventID: eventID, UserID: userID, JoinedAt: time.Now()}
	if _, err := db.NewInsert().Model(row).Exec(ctx); err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return ErrAlreadyAttending
		case pgForeignKeyViolation:
			return ErrNotFound
		}
		return fmt.Errorf("eventdb.AddAttendee: %w", err)
	}
	return nil
}

func (r *Impl) RemoveAttendee(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Attendee)(nil)).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("eventdb.RemoveAttendee: %w", err)
	}
	return requireRow(res, "eventdb.RemoveAttendee")
}

func (r *Impl) ListDrivers(ctx context.Context, db bun.IDB, eventIDs ...uuid.UUID) ([]eventdomain.DriverRecord, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var drivers []*Driver
	err := r.selectDrivers(db, &drivers).
		Where("d.event_id IN (?)", bun.In(eventIDs)).
		Order("d.created_at ASC", "d.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("eventdb.ListDrivers: %w", err)
	}
	out := make([]eventdomain.DriverRecord, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, d.toRecord())
	}
	return out, nil
}

func (r *Impl) GetDriver(ctx context.Context, db bun.IDB, id uuid.UUID) (*eventdomain.DriverRecord, error) {
	db = r.resolveDB(db)
	driver := new(Driver)
	if err := r.selectDrivers(db, driver).Where("d.id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("eventdb.GetDriver: %w", err)
	}
	rec := driver.toRecord()
	return &rec, nil
}

func (r *Impl) GetDriverByOwner(ctx context.Context, db bun.IDB, eventID, ownerID uuid.UUID) (*eventdomain.DriverRecord, error) {
	db = r.resolveDB(db)
	driver := new(Driver)
	err := r.selectDrivers(db, driver).
		Where("d.event_id = ? AND d.owner_id = ?", eventID, ownerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("eventdb.GetDriverByOwner: %w", err)
	}
	rec := driver.toRecord()
	return &rec, nil
}

func (r *Impl) selectDrivers(db bun.IDB, model any) *bun.SelectQuery {
	return db.NewSelect().
		Model(model).
		Relation("Owner").
		Relation("Passengers", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("dp.joined_at ASC", "dp.user_id ASC")
		}).
		Relation("Passengers.User")
}

func (r *Impl) CreateDriver(ctx context.Context, db bun.IDB, rec *eventdomain.DriverRecord) error {
	db = r.resolveDB(db)
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	row := &Driver{
		ID:             rec.ID,
		EventID:        rec.EventID,
		OwnerID:        rec.OwnerID,
		PickupTime:     rec.PickupTime,
		PickupLocation: rec.PickupLocation,
		Capacity:       rec.Capacity,
		CreatedAt:      rec.CreatedAt,
	}
	if _, err := db.NewInsert().Model(row).Exec(ctx); err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("eventdb.CreateDriver: %w", err)
	}
	return nil
}

func (r *Impl) DeleteDriver(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().Model((*Passenger)(nil)).Where("driver_id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("eventdb.DeleteDriver: passengers: %w", err)
	}
	res, err := db.NewDelete().Model((*Driver)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("eventdb.DeleteDriver: %w", err)
	}
	return requireRow(res, "eventdb.DeleteDriver")
}

func (r *Impl) AddPassenger(ctx context.Context, db bun.IDB, driverID, eventID, userID uuid.UUID) error {
	db = r.resolveDB(db)
	row := &Passenger{DriverID: driverID, EventID: eventID, UserID: userID, JoinedAt: time.Now()}
	if _, err := db.NewInsert().Model(row).Exec(ctx); err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return ErrAlreadyRiding
		case pgForeignKeyViolation:
			return ErrNotFound
		}
		return fmt.Errorf("eventdb.AddPassenger: %w", err)
	}
	return nil
}

func (r *Impl) RemovePassenger(ctx context.Context, db bun.IDB, eventID, userID uuid.UUID) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*Passenger)(nil)).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("eventdb.RemovePassenger: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*Impl)(nil)
