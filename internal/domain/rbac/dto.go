package rbac

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type CreateRoleRequest struct {
	Code         Role         `json:"code"`
	Name         string       `json:"name"`
	Capabilities []Capability `json:"capabilities"`
}

func (r *CreateRoleRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Code.Valid() {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code must be 2-32 upper-case letters, digits or underscores"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	errs = append(errs, validateCapabilities(r.Capabilities)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRoleRequest struct {
	Code Role   `json:"-"`
	Name string `json:"name"`
}

func (r *UpdateRoleRequest) Validate() error {
	if validator.IsEmpty(r.Name) {
		return validator.Field("name", "name is required")
	}
	return nil
}

type SetRoleCapabilitiesRequest struct {
	Code         Role         `json:"-"`
	Capabilities []Capability `json:"capabilities"`
}

func (r *SetRoleCapabilitiesRequest) Validate() error {
	if errs := validateCapabilities(r.Capabilities); len(errs) > 0 {
		return errs
	}
	return nil
}

func validateCapabilities(caps []Capability) validator.ValidationErrors {
	for _, c := range caps {
		if !c.Valid() {
			return validator.Field("capabilities", fmt.Sprintf("unknown capability %q", c))
		}
	}
	return nil
}
