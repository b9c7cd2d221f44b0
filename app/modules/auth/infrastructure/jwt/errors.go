package authjwt

import (
	"errors"
	"fmt"
)

// ErrInvalidToken covers every session token that cannot be trusted. The
// narrower errors below wrap it, so callers that only need to know whether
// a session is usable can check for it alone.
var ErrInvalidToken = errors.New("invalid session token")

var (
	ErrExpiredToken     = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrInvalidSignature = fmt.Errorf("%w: signature does not match", ErrInvalidToken)
)
