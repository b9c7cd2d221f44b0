package eventmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating event tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			statements := []struct {
				name string
				sql  string
			}{
				{"events", `
					CREATE TABLE IF NOT EXISTS events (
						id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
						title TEXT NOT NULL,
						description TEXT NOT NULL DEFAULT '',
						type TEXT NOT NULL DEFAULT 'other',
						start_time TIMESTAMPTZ NOT NULL,
						end_time TIMESTAMPTZ NOT NULL,
						location TEXT NOT NULL DEFAULT '',
						capacity INTEGER NOT NULL DEFAULT 0 CHECK (capacity >= 0),
						created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
						updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
					);`},
				{"events start_time index", `CREATE INDEX IF NOT EXISTS idx_events_start_time ON events (start_time);`},
				{"event_attendees", `
					CREATE TABLE IF NOT EXISTS event_attendees (
						event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
						user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
						joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
						PRIMARY KEY (event_id, user_id)
					);`},
				{"drivers", `
					CREATE TABLE IF NOT EXISTS drivers (
						id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
						event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
						owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
						pickup_time TIMESTAMPTZ NOT NULL,
						pickup_location TEXT NOT NULL,
						capacity INTEGER NOT NULL CHECK (capacity >= 1),
						created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
						UNIQUE (event_id, owner_id)
					);`},
				{"driver_passengers", `
					CREATE TABLE IF NOT EXISTS driver_passengers (
						driver_id UUID NOT NULL REFERENCES drivers(id) ON DELETE CASCADE,
						user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
						event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
						joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
						PRIMARY KEY (driver_id, user_id),
						UNIQUE (event_id, user_id)
					);`},
			}
			for _, s := range statements {
				if _, err := tx.ExecContext(ctx, s.sql); err != nil {
					return fmt.Errorf("failed to create %s: %w", s.name, err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping event tables...")
		for _, table := range []string{"driver_passengers", "drivers", "event_attendees", "events"} {
			if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE;"); err != nil {
				return fmt.Errorf("failed to drop %s: %w", table, err)
			}
		}
		return nil
	})
}
