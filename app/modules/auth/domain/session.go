package authdomain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUnauthenticated is returned by operations that need a signed-in user
// when the request carries no valid session.
var ErrUnauthenticated = errors.New("not signed in")

// Session is the signed-in user attached to a request.
type Session struct {
	UserID    uuid.UUID
	Email     string
	Role      Role
	ExpiresAt time.Time
}

// Valid reports whether the session identifies a user and has not expired.
func (s *Session) Valid() bool {
	if s == nil || s.UserID == uuid.Nil {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

type sessionKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session on ctx, if any.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// RequireSession returns the valid session on ctx or ErrUnauthenticated.
func RequireSession(ctx context.Context) (*Session, error) {
	s, ok := SessionFrom(ctx)
	if !ok || !s.Valid() {
		return nil, ErrUnauthenticated
	}
	return s, nil
}
