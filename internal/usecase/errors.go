package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrJobNotFound          = errors.New("job not found")
	ErrProfileNotFound      = errors.New("user profile not found")
	ErrBusy                 = errors.New("an evaluation or rewrite is already running")
	ErrFeedbackRequired     = errors.New("feedback is required before improving")
	ErrEmptyContent         = errors.New("material content is empty")
	ErrNoInstructions       = errors.New("select at least one preset or write a note")
	ErrInvalidImproveOutput = errors.New("improve returned empty content")
	ErrRegenerateInFlight   = errors.New("material is already being regenerated")
	ErrNotReady             = errors.New("improvement session is not ready")
	ErrSessionReset         = errors.New("improvement session was reset while the request was running")
)

// ValidationError is returned before any external call when required input
// is missing.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// AIError marks a failure of the AI capability, as opposed to validation or
// persistence failures.
type AIError struct {
	Op  string
	Err error
}

func (e *AIError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *AIError) Unwrap() error { return e.Err }
