// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	// timestampSecondsLayout covers everything up to the seconds field;
	// Go layouts cannot express a '-' separated fractional part.
	timestampSecondsLayout = "2006-01-02-15-04-05"

	// TimestampLen is the fixed width of a formatted Timestamp.
	TimestampLen = len(timestampSecondsLayout) + 1 + 6
)

// ErrInvalidTimestamp is the sentinel error wrapped by InvalidTimestampError.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

type (
	// Timestamp is a training-run timestamp in the form
	// YYYY-MM-DD-HH-MM-SS-ffffff (microseconds, zero-padded).
	// The fixed width makes lexical order equal chronological order.
	Timestamp string

	// InvalidTimestampError is returned when a string does not match the
	// timestamp layout.
	InvalidTimestampError struct {
		Value string
		Cause error
	}
)

// FormatTimestamp renders t in the Timestamp layout.
func FormatTimestamp(t time.Time) Timestamp {
	return Timestamp(fmt.Sprintf("%s-%06d", t.Format(timestampSecondsLayout), t.Nanosecond()/int(time.Microsecond)))
}

// ParseTimestamp parses a Timestamp string in the local time zone.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) != TimestampLen || s[len(timestampSecondsLayout)] != '-' {
		return time.Time{}, &InvalidTimestampError{Value: s}
	}
	base, err := time.ParseInLocation(timestampSecondsLayout, s[:len(timestampSecondsLayout)], time.Local)
	if err != nil {
		return time.Time{}, &InvalidTimestampError{Value: s, Cause: err}
	}
	frac := s[len(timestampSecondsLayout)+1:]
	micros, err := strconv.Atoi(frac)
	if err != nil || micros < 0 {
		return time.Time{}, &InvalidTimestampError{Value: s, Cause: err}
	}
	return base.Add(time.Duration(micros) * time.Microsecond), nil
}

// String returns the string representation of the Timestamp.
func (ts Timestamp) String() string { return string(ts) }

// Time parses the Timestamp back into a time.Time.
func (ts Timestamp) Time() (time.Time, error) { return ParseTimestamp(string(ts)) }

// Error implements the error interface.
func (e *InvalidTimestampError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid timestamp %q: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid timestamp %q: want YYYY-MM-DD-HH-MM-SS-ffffff", e.Value)
}

// Unwrap returns ErrInvalidTimestamp for errors.Is() compatibility.
func (e *InvalidTimestampError) Unwrap() error { return ErrInvalidTimestamp }
