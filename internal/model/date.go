package model

import (
	"fmt"
	"time"
)

// DateLayout is the canonical date form used in cleaned snapshots.
const DateLayout = "2006-01-02"

// Date wraps time.Time so calendar dates round-trip through CSV in
// YYYY-MM-DD form instead of RFC3339.
type Date struct {
	time.Time
}

// NewDate returns a Date for the given moment, truncated to the day.
func NewDate(t time.Time) *Date {
	return &Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// MarshalCSV implements csvutil.Marshaler.
func (d Date) MarshalCSV() ([]byte, error) {
	return []byte(d.Format(DateLayout)), nil
}

// UnmarshalCSV implements csvutil.Unmarshaler.
func (d *Date) UnmarshalCSV(data []byte) error {
	t, err := time.Parse(DateLayout, string(data))
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", data, err)
	}
	d.Time = t
	return nil
}
