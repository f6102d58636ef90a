package shift

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

// ShiftType is a named working window, e.g. 08:00-16:00. An end time earlier
// than the start time means the shift finishes on the next day.
type ShiftType struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	StartTime       timeofday.Time `json:"start_time"`
	EndTime         timeofday.Time `json:"end_time"`
	BreakMinutes    int            `json:"break_minutes"`
	FlexibleMinutes int            `json:"flexible_minutes"`
	OvertimeAllowed bool           `json:"overtime_allowed"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ScheduledDuration is end - start with the midnight wrap applied.
func (s ShiftType) ScheduledDuration() time.Duration {
	return timeofday.Span(s.StartTime, s.EndTime)
}

func (s ShiftType) CrossesMidnight() bool {
	return timeofday.CrossesMidnight(s.StartTime, s.EndTime)
}

// ClosesOvernight reports whether a check-out at the next day's at still
// belongs to this shift: it must wrap midnight and at must not be later than
// the end time plus the flexible tolerance.
func (s ShiftType) ClosesOvernight(at timeofday.Time) bool {
	return s.CrossesMidnight() && int(at) <= int(s.EndTime)+s.FlexibleMinutes*60
}

// LatestOnTime is the start time plus the flexible tolerance.
func (s ShiftType) LatestOnTime() timeofday.Time {
	return s.StartTime.Add(time.Duration(s.FlexibleMinutes) * time.Minute)
}

// Assignment binds an employee to a shift type for a date range.
type Assignment struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employee_id"`
	ShiftTypeID string     `json:"shift_type_id"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (a Assignment) Span() interval.Period {
	return interval.Period{Start: a.StartDate, End: a.EndDate}
}

func (a Assignment) Created() time.Time { return a.CreatedAt }
func (a Assignment) Key() string        { return a.ID }

// AssignedShift is an assignment joined with its shift type.
type AssignedShift struct {
	Assignment
	Shift ShiftType `json:"shift"`
}
