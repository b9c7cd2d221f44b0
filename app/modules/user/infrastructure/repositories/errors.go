package userdb

import "errors"

// Sentinel errors for the user repository layer.
// These indicate infrastructure-level outcomes (presence/absence of rows), not
// domain validation failures. Service layers decide how to map them.
var (
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user record not found")

	// ErrEmailTaken indicates an insert collided with an existing email.
	ErrEmailTaken = errors.New("email already registered")
)
