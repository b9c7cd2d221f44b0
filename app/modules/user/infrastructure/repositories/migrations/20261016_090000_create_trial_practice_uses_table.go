package usermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating trial_practice_uses table...")

		if _, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS trial_practice_uses (
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				event_id UUID NOT NULL,
				used_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (user_id, event_id)
			);
		`); err != nil {
			return fmt.Errorf("failed to create trial_practice_uses table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping trial_practice_uses table...")
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS trial_practice_uses;`); err != nil {
			return fmt.Errorf("failed to drop trial_practice_uses table: %w", err)
		}
		return nil
	})
}
