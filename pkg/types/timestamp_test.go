// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want Timestamp
	}{
		{"zero micros are padded", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024-01-01-00-00-00-000000"},
		{"micros kept", time.Date(2024, 6, 1, 13, 5, 9, 123456000, time.UTC), "2024-06-01-13-05-09-123456"},
		{"sub-microsecond truncated", time.Date(2024, 6, 1, 13, 5, 9, 1999, time.UTC), "2024-06-01-13-05-09-000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FormatTimestamp(tt.in)
			if got != tt.want {
				t.Errorf("FormatTimestamp() = %q, want %q", got, tt.want)
			}
			if len(got) != TimestampLen {
				t.Errorf("len(FormatTimestamp()) = %d, want %d", len(got), TimestampLen)
			}
		})
	}
}

func TestParseTimestamp_RoundTrip(t *testing.T) {
	t.Parallel()

	in := time.Date(2023, 12, 31, 23, 59, 58, 654321000, time.Local)
	got, err := ParseTimestamp(FormatTimestamp(in).String())
	if err != nil {
		t.Fatalf("ParseTimestamp() error = %v", err)
	}
	if !got.Equal(in) {
		t.Errorf("ParseTimestamp() = %v, want %v", got, in)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"iso layout", "2024-01-01T00:00:00.000000"},
		{"missing micros", "2024-01-01-00-00-00"},
		{"bad month", "2024-13-01-00-00-00-000000"},
		{"letters in micros", "2024-01-01-00-00-00-abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseTimestamp(tt.in)
			if err == nil {
				t.Fatalf("ParseTimestamp(%q) returned nil error", tt.in)
			}
			if !errors.Is(err, ErrInvalidTimestamp) {
				t.Errorf("error should wrap ErrInvalidTimestamp, got: %v", err)
			}
		})
	}
}

func TestTimestamp_LexicalOrderIsChronological(t *testing.T) {
	t.Parallel()

	earlier := FormatTimestamp(time.Date(2024, 1, 9, 9, 0, 0, 999999000, time.UTC))
	later := FormatTimestamp(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	if earlier >= later {
		t.Errorf("expected %q < %q", earlier, later)
	}
}
