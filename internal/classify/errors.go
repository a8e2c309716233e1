package classify

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReading is returned for NaN, infinite or out-of-domain readings.
	ErrInvalidReading = errors.New("invalid reading")

	ErrUnknownScale    = errors.New("unknown scale")
	ErrUnknownVital    = errors.New("unknown vital")
	ErrUnknownSeverity = errors.New("unknown severity")
)

// InvalidReadingError carries the rejected value. It matches ErrInvalidReading
// under errors.Is.
type InvalidReadingError struct {
	Scale  string
	Value  float64
	Reason string
}

func (e *InvalidReadingError) Error() string {
	return fmt.Sprintf("invalid reading for %s: %v (%s)", e.Scale, e.Value, e.Reason)
}

func (e *InvalidReadingError) Unwrap() error {
	return ErrInvalidReading
}
