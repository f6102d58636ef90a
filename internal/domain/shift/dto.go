package shift

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type ShiftTypeRequest struct {
	ID              string          `json:"-"`
	Name            string          `json:"name"`
	StartTime       *timeofday.Time `json:"start_time"`
	EndTime         *timeofday.Time `json:"end_time"`
	BreakMinutes    *int            `json:"break_minutes,omitempty"`
	FlexibleMinutes int             `json:"flexible_minutes"`
	OvertimeAllowed bool            `json:"overtime_allowed"`
}

func (r *ShiftTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if r.StartTime == nil {
		errs = append(errs, validator.ValidationError{Field: "start_time", Message: "start_time is required"})
	}
	if r.EndTime == nil {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time is required"})
	}
	if r.StartTime != nil && r.EndTime != nil && *r.StartTime == *r.EndTime {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must differ from start_time"})
	}
	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "break_minutes", Message: "break_minutes must not be negative"})
	}
	if r.FlexibleMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "flexible_minutes", Message: "flexible_minutes must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DefaultBreakMinutes applies when a shift type is created without a break duration.
const DefaultBreakMinutes = 60

type AssignShiftRequest struct {
	EmployeeID  string  `json:"-"`
	ShiftTypeID string  `json:"shift_type_id"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"`
	Notes       *string `json:"notes,omitempty"`

	startDate time.Time
	endDate   *time.Time
}

func (r *AssignShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.ShiftTypeID) {
		errs = append(errs, validator.ValidationError{Field: "shift_type_id", Message: "shift_type_id is required"})
	}

	start, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
	}
	r.startDate = start

	r.endDate = nil
	if r.EndDate != nil {
		end, ok := validator.IsValidDate(*r.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
		} else {
			r.endDate = &end
		}
	}

	if len(errs) == 0 && !r.Period().Valid() {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period is only meaningful after a successful Validate.
func (r *AssignShiftRequest) Period() interval.Period {
	return interval.Period{Start: r.startDate, End: r.endDate}
}

// DepartmentShift is the shift resolved for one employee of a department on a day.
type DepartmentShift struct {
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	Shift        *AssignedShift `json:"shift"`
}
