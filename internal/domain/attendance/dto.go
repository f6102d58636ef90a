package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// PunchRequest is a manual check-in or check-out. A missing timestamp means now.
type PunchRequest struct {
	EmployeeID string  `json:"employee_id"`
	Timestamp  *string `json:"timestamp,omitempty"`

	at time.Time
}

// Validate parses the timestamp as local time in loc.
func (r *PunchRequest) Validate(loc *time.Location, now time.Time) error {
	var errs validator.ValidationErrors

	if !validator.IsValidEmployeeID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be an 8 digit id"})
	}

	r.at = now.In(loc)
	if r.Timestamp != nil {
		t, ok := validator.ParseLocalDateTime(*r.Timestamp, loc)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "timestamp must be YYYY-MM-DD HH:MM:SS or RFC3339"})
		}
		r.at = t
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Punch is only meaningful after a successful Validate.
func (r *PunchRequest) Punch() Punch {
	return Punch{EmployeeID: r.EmployeeID, Timestamp: r.at, Source: SourceManual}
}

// DeviceEvent is a raw punch produced by a fingerprint terminal.
type DeviceEvent struct {
	EmployeeID string    `json:"employee_id"`
	Timestamp  string    `json:"timestamp"`
	EventType  EventType `json:"event_type"`
	DeviceID   string    `json:"device_id"`
}

// Punch validates the event and converts it, reading the timestamp in loc.
func (e DeviceEvent) Punch(loc *time.Location) (Punch, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(e.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(e.DeviceID) {
		errs = append(errs, validator.ValidationError{Field: "device_id", Message: "device_id is required"})
	}
	t, ok := validator.ParseLocalDateTime(e.Timestamp, loc)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "timestamp must be YYYY-MM-DD HH:MM:SS or RFC3339"})
	}
	if len(errs) > 0 {
		return Punch{}, errs
	}

	deviceID := e.DeviceID
	return Punch{EmployeeID: e.EmployeeID, Timestamp: t, Source: SourceDevice, DeviceID: &deviceID}, nil
}

// RangeFilter selects records with from <= date <= to.
type RangeFilter struct {
	EmployeeID     *string
	DepartmentCode *string
	From           time.Time
	To             time.Time
	// CompleteOnly keeps records with both check-in and check-out.
	CompleteOnly bool
}
