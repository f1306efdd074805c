package classify

import (
	"errors"
	"fmt"
)

// ErrRate is matched by every rate extraction failure.
var ErrRate = errors.New("proxy rate")

// RateMarkerMissingError is returned when a proxy name has no rate marker.
type RateMarkerMissingError struct {
	Name    string
	Pattern string
}

func (e *RateMarkerMissingError) Error() string {
	return fmt.Sprintf("rate marker %q not found in proxy name %q", e.Pattern, e.Name)
}

func (e *RateMarkerMissingError) Unwrap() error {
	return ErrRate
}

// RateParseError is returned when the captured rate is not a decimal number.
type RateParseError struct {
	Name  string
	Value string
	Err   error
}

func (e *RateParseError) Error() string {
	return fmt.Sprintf("invalid rate %q in proxy name %q: %v", e.Value, e.Name, e.Err)
}

func (e *RateParseError) Unwrap() []error {
	return []error{ErrRate, e.Err}
}
