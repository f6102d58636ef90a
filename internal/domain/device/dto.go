package device

import (
	"net/url"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

type RegisterDeviceRequest struct {
	Name     string  `json:"name"`
	Model    *string `json:"model,omitempty"`
	Address  string  `json:"address"`
	Location *string `json:"location,omitempty"`
	Status   Status  `json:"status,omitempty"`
}

func (r *RegisterDeviceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}

	u, err := url.Parse(r.Address)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, validator.ValidationError{Field: "address", Message: "address must be an http(s) URL"})
	}

	if r.Status == "" {
		r.Status = StatusActive
	} else if !r.Status.Valid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be active or inactive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
