package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyResult marks a well-formed lookup with nothing displayable in it.
// It is not a fault.
var ErrEmptyResult = errors.New("empty result")

// ErrNotFound is returned when a marker or session does not exist.
var ErrNotFound = errors.New("not found")

// FetchError is a failed remote fetch: a transport error, a non-2xx status,
// an undecodable body or a timeout.
type FetchError struct {
	Source     string // "telemetry" or "geocode"
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch: HTTP error! %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s fetch: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
