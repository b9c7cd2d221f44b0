package authdomain

import (
	"time"

	"github.com/google/uuid"
)

// Claims represents the domain model for authentication claims.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the claims have expired.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Session converts validated claims into the request session.
func (c *Claims) Session() *Session {
	return &Session{
		UserID:    c.UserID,
		Email:     c.Email,
		Role:      c.Role,
		ExpiresAt: c.ExpiresAt,
	}
}
