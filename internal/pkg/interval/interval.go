// Package interval resolves which of several date-ranged assignments applies on a given day.
package interval

import (
	"sort"
	"time"
)

const DateLayout = "2006-01-02"

// Date truncates t to its calendar day, expressed as midnight UTC.
// Dates are compared by calendar day only, independent of location.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Period is an inclusive range of calendar days. A nil End is open-ended.
type Period struct {
	Start time.Time
	End   *time.Time
}

// Covers reports start <= date AND (end IS NULL OR end >= date).
func (p Period) Covers(date time.Time) bool {
	d := Date(date)
	if Date(p.Start).After(d) {
		return false
	}
	return p.End == nil || !Date(*p.End).Before(d)
}

// Valid reports whether the end, when present, is not before the start.
func (p Period) Valid() bool {
	return p.End == nil || !Date(*p.End).Before(Date(p.Start))
}

// Overlaps reports whether p and q share at least one day.
func (p Period) Overlaps(q Period) bool {
	return p.Covers(q.Start) || q.Covers(p.Start)
}

// Days returns the number of days in the period, or false when open-ended.
func (p Period) Days() (int, bool) {
	if p.End == nil {
		return 0, false
	}
	return int(Date(*p.End).Sub(Date(p.Start)).Hours()/24) + 1, true
}

// Assignment is a date-ranged row that competes with others for the same day.
type Assignment interface {
	Span() Period
	Created() time.Time
	Key() string
}

// Resolve picks the assignment that applies on date among candidates.
//
// Overlapping assignments are allowed. The winner is the covering assignment
// with the latest start date; ties go to the most recently created row, then
// to the greatest key (keys are time-ordered UUIDs) so the result is deterministic.
// The second return value is false when nothing covers date.
func Resolve[T Assignment](candidates []T, date time.Time) (T, bool) {
	var (
		best  T
		found bool
	)
	for _, c := range candidates {
		if !c.Span().Covers(date) {
			continue
		}
		if !found || precedes(best, c) {
			best = c
			found = true
		}
	}
	return best, found
}

// Sort orders assignments by precedence, winner first.
func Sort[T Assignment](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return precedes(items[j], items[i])
	})
}

// precedes reports whether b takes precedence over a.
func precedes(a, b Assignment) bool {
	as, bs := Date(a.Span().Start), Date(b.Span().Start)
	if !as.Equal(bs) {
		return bs.After(as)
	}
	if !a.Created().Equal(b.Created()) {
		return b.Created().After(a.Created())
	}
	return b.Key() > a.Key()
}
