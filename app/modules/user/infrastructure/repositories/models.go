package userdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultPracticesLeft is the number of trial practices a new account starts with.
const DefaultPracticesLeft = 2

// User is a club account.
type User struct {
	bun.BaseModel     `bun:"table:users,alias:u"`
	ID                uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()" json:"id"`
	Email             string    `bun:"email,unique,notnull" json:"email"`
	Name              string    `bun:"name,notnull,default:''" json:"name"`
	PasswordHash      string    `bun:"password_hash,notnull" json:"-"`
	Role              string    `bun:"role,notnull,default:'member'" json:"role"`
	Membership        bool      `bun:"membership,notnull,default:false" json:"membership"`
	MembershipPending bool      `bun:"membership_pending,notnull,default:false" json:"membership_pending"`
	IsDriver          bool      `bun:"is_driver,notnull,default:false" json:"is_driver"`
	PracticesLeft     int       `bun:"practices_left,notnull,default:2" json:"practices_left"`
	CreatedAt         time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// TrialPracticeUse records that a registration used one trial practice.
// A user is charged at most once per event.
type TrialPracticeUse struct {
	bun.BaseModel `bun:"table:trial_practice_uses,alias:tpu"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid"`
	EventID       uuid.UUID `bun:"event_id,pk,type:uuid"`
	UsedAt        time.Time `bun:"used_at,notnull,default:current_timestamp"`
}
