package employee

import "github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"

var (
	ErrEmployeeNotFound     = apperror.New(apperror.NotFound, "employee not found")
	ErrEmployeeIDExhausted  = apperror.New(apperror.Conflict, "employee id sequence exhausted for this year")
	ErrDepartmentNotFound   = apperror.New(apperror.NotFound, "department not found")
	ErrDepartmentCodeExists = apperror.New(apperror.Conflict, "department code already exists")
	ErrManagerNotFound      = apperror.New(apperror.NotFound, "department manager not found")
	ErrSameDepartment       = apperror.New(apperror.Conflict, "employee already belongs to this department")
	ErrEmployeeInUse        = apperror.New(apperror.Conflict, "employee is still referenced by other records")
)
