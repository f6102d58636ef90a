package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// REQUESTS
// ========================================

type LateArrivalsRequest struct {
	Date           string
	DepartmentCode *string

	date time.Time
}

func (r *LateArrivalsRequest) Validate() error {
	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		return validator.Field("date", "date must be YYYY-MM-DD")
	}
	r.date = date
	return nil
}

// Day is only meaningful after a successful Validate.
func (r *LateArrivalsRequest) Day() time.Time {
	return r.date
}

type RangeRequest struct {
	EmployeeID string
	From       string
	To         string

	from time.Time
	to   time.Time
}

func (r *RangeRequest) Validate() error {
	var errs validator.ValidationErrors

	from, okFrom := validator.IsValidDate(r.From)
	if !okFrom {
		errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be YYYY-MM-DD"})
	}
	to, okTo := validator.IsValidDate(r.To)
	if !okTo {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be YYYY-MM-DD"})
	}
	if okFrom && okTo && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must not be before from"})
	}

	if len(errs) > 0 {
		return errs
	}
	r.from, r.to = from, to
	return nil
}

// Range is only meaningful after a successful Validate.
func (r *RangeRequest) Range() (from, to time.Time) {
	return r.from, r.to
}

// ========================================
// RESULTS
// ========================================

type LateArrival struct {
	EmployeeID     string         `json:"employee_id"`
	EmployeeName   string         `json:"employee_name"`
	DepartmentCode string         `json:"department_code"`
	Date           time.Time      `json:"date"`
	CheckIn        timeofday.Time `json:"check_in"`
	ShiftName      *string        `json:"shift_name"`
	ExpectedBy     timeofday.Time `json:"expected_by"`
	LateMinutes    int            `json:"late_minutes"`
}

type DepartmentSummary struct {
	DepartmentCode   string  `json:"department_code"`
	DepartmentName   string  `json:"department_name"`
	TotalEmployees   int     `json:"total_employees"`
	PresentEmployees int     `json:"present_employees"`
	AverageHours     float64 `json:"average_hours"`
}

type EmployeeSummary struct {
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	DepartmentCode  string          `json:"department_code"`
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	DaysPresent     int             `json:"days_present"`
	AverageHours    float64         `json:"average_hours"`
	EarliestCheckIn *timeofday.Time `json:"earliest_check_in"`
	LatestCheckOut  *timeofday.Time `json:"latest_check_out"`
}
