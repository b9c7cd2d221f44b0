package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new user repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *Impl) CreateUser(ctx context.Context, db bun.IDB, user *User) error {
	db = r.resolveDB(db)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = NormalizeEmail(user.Email)
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	if _, err := db.NewInsert().Model(user).Exec(ctx); err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("userdb.CreateUser: %w", err)
	}
	return nil
}

func (r *Impl) GetUserByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	err := db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userdb.GetUserByID: %w", err)
	}
	return user, nil
}

func (r *Impl) GetUserByEmail(ctx context.Context, db bun.IDB, email string) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	err := db.NewSelect().
		Model(user).
		Where("email = ?", NormalizeEmail(email)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userdb.GetUserByEmail: %w", err)
	}
	return user, nil
}

func (r *Impl) GetUsersByIDs(ctx context.Context, db bun.IDB, ids []uuid.UUID) ([]*User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var users []*User
	err := db.NewSelect().
		Model(&users).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("userdb.GetUsersByIDs: %w", err)
	}
	return users, nil
}

func (r *Impl) SetMembershipPending(ctx context.Context, db bun.IDB, id uuid.UUID, pending bool) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*User)(nil)).
		Set("membership_pending = ?", pending).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.SetMembershipPending: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("userdb.SetMembershipPending: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) DecrementPracticesLeft(ctx context.Context, db bun.IDB, id uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	var left int
	err := db.NewUpdate().
		Model((*User)(nil)).
		Set("practices_left = GREATEST(practices_left - 1, 0)").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Returning("practices_left").
		Scan(ctx, &left)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("userdb.DecrementPracticesLeft: %w", err)
	}
	return left, nil
}

func (r *Impl) RecordTrialPracticeUse(ctx context.Context, db bun.IDB, userID, eventID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	use := &TrialPracticeUse{UserID: userID, EventID: eventID, UsedAt: time.Now()}
	res, err := db.NewInsert().
		Model(use).
		On("CONFLICT (user_id, event_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == "23503" {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("userdb.RecordTrialPracticeUse: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("userdb.RecordTrialPracticeUse: rows affected: %w", err)
	}
	return rows == 1, nil
}
