package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted
	// from the current enrollment status
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrUnknownMode is returned when the pipeline mode is not recognized
	ErrUnknownMode = errors.New("unknown pipeline mode")
)
