package overtime

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// Request scopes an overtime computation to one employee, one department, or everyone.
type Request struct {
	EmployeeID     *string
	DepartmentCode *string
	From           string
	To             string

	from time.Time
	to   time.Time
}

func (r *Request) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID != nil && r.DepartmentCode != nil {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id and department are mutually exclusive"})
	}

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
func (r *Request) Range() (from, to time.Time) {
	return r.from, r.to
}
