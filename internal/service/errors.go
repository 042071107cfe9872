package service

import (
	"errors"
	"fmt"
)

// --- Shared Error Definitions ---
var (
	// ErrDataUnavailable marks a storage fault. It is never retried here.
	ErrDataUnavailable  = errors.New("data unavailable")
	ErrValidationFailed = errors.New("validation failed")
)

// unavailable wraps a storage error so callers can match both
// ErrDataUnavailable and the original cause.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDataUnavailable, err)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, msg)
}
