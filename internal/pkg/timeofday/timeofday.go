// Package timeofday models wall-clock times without a date, as stored for
// shift boundaries and attendance punches.
package timeofday

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const day = 24 * 60 * 60

// Time is a number of seconds since midnight in [0, 86400).
type Time int

// Of returns the wall-clock time of t in t's own location.
func Of(t time.Time) Time {
	return Time(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// New builds a Time from hour, minute and second.
func New(hour, minute, second int) Time {
	return Time(hour*3600 + minute*60 + second)
}

// Parse accepts "15:04" and "15:04:05".
func Parse(s string) (Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Of(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q: expected HH:MM or HH:MM:SS", s)
}

func (t Time) Hour() int   { return int(t) / 3600 }
func (t Time) Minute() int { return int(t) % 3600 / 60 }
func (t Time) Second() int { return int(t) % 60 }

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// Add shifts t by d, wrapping around midnight.
func (t Time) Add(d time.Duration) Time {
	s := (int(t) + int(d/time.Second)) % day
	if s < 0 {
		s += day
	}
	return Time(s)
}

// On places t on the calendar day of date, in date's location.
func (t Time) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, date.Location())
}

// Span returns the duration from start to end. An end earlier than start
// means the interval crosses midnight and 24h is added; equal values span zero.
func Span(start, end Time) time.Duration {
	diff := int(end) - int(start)
	if diff < 0 {
		diff += day
	}
	return time.Duration(diff) * time.Second
}

// CrossesMidnight reports whether an interval from start to end wraps into the next day.
func CrossesMidnight(start, end Time) bool {
	return end < start
}

func (t Time) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Time) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value stores the time as HH:MM:SS text.
func (t Time) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan reads HH:MM:SS text.
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	case time.Time:
		*t = Of(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timeofday.Time", src)
	}
}
