package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

type Source string

const (
	SourceManual Source = "manual"
	SourceDevice Source = "device"
)

func (s Source) Valid() bool {
	return s == SourceManual || s == SourceDevice
}

type EventType string

const (
	EventCheckIn  EventType = "check_in"
	EventCheckOut EventType = "check_out"
)

// StatusPresent is the status tag stored on every record created by a check-in.
const StatusPresent = "present"

// Record is the single punch record of one employee on one calendar day.
// CheckOut is only ever set after CheckIn.
type Record struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Date       time.Time       `json:"date"`
	CheckIn    *timeofday.Time `json:"check_in"`
	CheckOut   *timeofday.Time `json:"check_out"`
	Source     Source          `json:"source"`
	DeviceID   *string         `json:"device_id,omitempty"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Complete reports whether both punches are present.
func (r Record) Complete() bool {
	return r.CheckIn != nil && r.CheckOut != nil
}

// Worked returns check-out minus check-in, wrapping past midnight.
func (r Record) Worked() (time.Duration, bool) {
	if !r.Complete() {
		return 0, false
	}
	return timeofday.Span(*r.CheckIn, *r.CheckOut), true
}

// RecordRow is a record joined with its employee.
type RecordRow struct {
	Record
	EmployeeName   string `json:"employee_name"`
	DepartmentCode string `json:"department_code"`
}

// RecordView annotates a record with the resolved shift and status.
type RecordView struct {
	RecordRow
	ShiftName   *string  `json:"shift_name"`
	StatusLabel string   `json:"status_label"`
	WorkedHours *float64 `json:"worked_hours"`
}

// Punch is one check-in or check-out command. Timestamp is read in its own location.
type Punch struct {
	EmployeeID string
	Timestamp  time.Time
	Source     Source
	DeviceID   *string
}
