package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	eventdb "github.com/Black-And-White-Club/curling-club/app/modules/event/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/curling-club/app/modules/user/infrastructure/repositories"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DBService holds the Postgres-backed repositories.
type DBService struct {
	UserDB  userdb.Repository
	EventDB eventdb.Repository
	db      *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Close closes the connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService connects to Postgres and builds the repositories. loc is
// the club time zone used by event filters.
func NewBunDBService(ctx context.Context, dsn string, loc *time.Location) (*DBService, error) {
	sqldb, err := pgConn(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := BunDB(sqldb)
	return NewDBService(db, loc), nil
}

// NewDBService builds the repositories on an open connection.
func NewDBService(db *bun.DB, loc *time.Location) *DBService {
	return &DBService{
		UserDB:  userdb.NewRepository(db),
		EventDB: eventdb.NewRepository(db, loc),
		db:      db,
	}
}

// BunDB returns a new bun.DB for given sql.DB connection pool.
func BunDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}
	return sqldb, nil
}
