package status

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type StatusTypeRequest struct {
	ID               string `json:"-"`
	Name             string `json:"name"`
	RequiresApproval *bool  `json:"requires_approval,omitempty"`
	MaxDays          *int   `json:"max_days,omitempty"`
}

func (r *StatusTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if r.MaxDays != nil && *r.MaxDays <= 0 {
		errs = append(errs, validator.ValidationError{Field: "max_days", Message: "max_days must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RequiresApprovalOrDefault treats a missing flag as true.
func (r *StatusTypeRequest) RequiresApprovalOrDefault() bool {
	return r.RequiresApproval == nil || *r.RequiresApproval
}

type AddStatusRequest struct {
	EmployeeID   string  `json:"-"`
	StatusTypeID string  `json:"status_type_id"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	startDate time.Time
	endDate   *time.Time
}

func (r *AddStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.StatusTypeID) {
		errs = append(errs, validator.ValidationError{Field: "status_type_id", Message: "status_type_id is required"})
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
func (r *AddStatusRequest) Period() interval.Period {
	return interval.Period{Start: r.startDate, End: r.endDate}
}

type AssignmentFilter struct {
	EmployeeID     *string
	DepartmentCode *string
	// From and To select assignments overlapping the range.
	From  *time.Time
	To    *time.Time
	State *ApprovalState
	// ActiveOn selects assignments covering a single day.
	ActiveOn *time.Time
}
