package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	eventmigrations "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/repositories/migrations"
	usermigrations "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/curling-club/db/bundb"
	"github.com/Black-And-White-Club/curling-club/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// TestEnvironment holds a migrated Postgres database and a NATS server.
type TestEnvironment struct {
	Ctx       context.Context
	DB        *bun.DB
	DBService *bundb.DBService
	NatsURL   string
}

// NewTestEnvironment starts the containers and runs every migration. The
// test is skipped when Docker is not available.
func NewTestEnvironment(t *testing.T, loc *time.Location) *TestEnvironment {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to set up postgres: %v", err)
	}
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to set up nats: %v", err)
	}
	t.Cleanup(func() { _ = natsContainer.Terminate(context.Background()) })

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("Failed to open sql DB connection: %v", err)
	}
	db := bundb.BunDB(sqlDB)
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &TestEnvironment{
		Ctx:       ctx,
		DB:        db,
		DBService: bundb.NewDBService(db, loc),
		NatsURL:   natsURL,
	}
}

// RunMigrations applies the user migrations, then the event migrations.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	ordered := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"user", usermigrations.Migrations},
		{"event", eventmigrations.Migrations},
	}
	for _, m := range ordered {
		migrator := migrate.NewMigrator(db, m.migrations)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("init %s migrations: %w", m.name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("run %s migrations: %w", m.name, err)
		}
	}
	return nil
}
