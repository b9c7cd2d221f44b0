package userservice

import "errors"

var (
	// ErrUserNotFound is returned when the session's user no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyMember is returned when a member asks to join again.
	ErrAlreadyMember = errors.New("already a member")
)
