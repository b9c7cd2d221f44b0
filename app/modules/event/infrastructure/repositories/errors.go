package eventdb

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidFilter    = errors.New("invalid filter")
	ErrAlreadyAttending = errors.New("user already attends this event")
	ErrAlreadyRiding    = errors.New("user already rides with a driver for this event")
)
