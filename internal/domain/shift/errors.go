package shift

import "github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"

var (
	ErrShiftTypeNotFound   = apperror.New(apperror.NotFound, "shift type not found")
	ErrShiftTypeNameExists = apperror.New(apperror.Conflict, "shift type name already exists")
	ErrShiftTypeInUse      = apperror.New(apperror.Conflict, "shift type is referenced by assignments")
	ErrInvalidRange        = apperror.New(apperror.Validation, "to must not be before from")
)
