package employee

import (
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type EmployeeFilter struct {
	DepartmentCode *string
}

type CreateEmployeeRequest struct {
	Name           string    `json:"name"`
	DepartmentCode string    `json:"department_code"`
	Role           rbac.Role `json:"role"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if validator.IsEmpty(r.DepartmentCode) {
		errs = append(errs, validator.ValidationError{Field: "department_code", Message: "department_code is required"})
	}
	if r.Role == "" {
		r.Role = rbac.RoleEmployee
	}
	if !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be an upper-case role code"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateEmployeeRequest changes name and role. Department moves go through
// TransferEmployeeRequest so they leave a history row.
type UpdateEmployeeRequest struct {
	ID   string     `json:"-"`
	Name *string    `json:"name,omitempty"`
	Role *rbac.Role `json:"role,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name must not be empty"})
	}
	if r.Role != nil && !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be an upper-case role code"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TransferEmployeeRequest struct {
	EmployeeID        string  `json:"-"`
	NewDepartmentCode string  `json:"new_department_code"`
	Notes             *string `json:"notes,omitempty"`
}

func (r *TransferEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.NewDepartmentCode) {
		errs = append(errs, validator.ValidationError{Field: "new_department_code", Message: "new_department_code is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateDepartmentRequest struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	ManagerID *string `json:"manager_id,omitempty"`
}

func (r *CreateDepartmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidDepartmentCode(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code must be 2-16 upper-case letters, digits or underscores"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateDepartmentRequest struct {
	Code      string  `json:"-"`
	Name      string  `json:"name"`
	ManagerID *string `json:"manager_id,omitempty"`
}

func (r *UpdateDepartmentRequest) Validate() error {
	if validator.IsEmpty(r.Name) {
		return validator.Field("name", "name is required")
	}
	return nil
}
