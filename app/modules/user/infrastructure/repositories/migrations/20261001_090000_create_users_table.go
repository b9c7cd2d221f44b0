package usermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating users table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS users (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					email TEXT NOT NULL UNIQUE,
					name TEXT NOT NULL DEFAULT '',
					password_hash TEXT NOT NULL,
					role TEXT NOT NULL DEFAULT 'member',
					membership BOOLEAN NOT NULL DEFAULT FALSE,
					membership_pending BOOLEAN NOT NULL DEFAULT FALSE,
					is_driver BOOLEAN NOT NULL DEFAULT FALSE,
					practices_left INTEGER NOT NULL DEFAULT 2 CHECK (practices_left >= 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create users table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping users table...")
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS users CASCADE;`); err != nil {
			return fmt.Errorf("failed to drop users table: %w", err)
		}
		return nil
	})
}
