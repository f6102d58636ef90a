package device

import "github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"

var (
	ErrDeviceNotFound   = apperror.New(apperror.NotFound, "device not found")
	ErrDeviceNameExists = apperror.New(apperror.Conflict, "device name already exists")
	ErrDeviceInactive   = apperror.New(apperror.Conflict, "device is inactive")
)
