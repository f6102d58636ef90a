package rbac

import "github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"

var (
	ErrPermissionDenied  = apperror.New(apperror.PermissionDenied, "actor lacks the required capability")
	ErrUnknownRole       = apperror.New(apperror.Validation, "unknown role")
	ErrUnknownCapability = apperror.New(apperror.Validation, "unknown capability")
	ErrOverrideNotFound  = apperror.New(apperror.NotFound, "capability override not found")
	ErrRoleNotFound      = apperror.New(apperror.NotFound, "role not found")
	ErrRoleExists        = apperror.New(apperror.Conflict, "role code already exists")
	ErrRoleInUse         = apperror.New(apperror.Conflict, "role is still assigned to employees")
	ErrWildcardRoleFixed = apperror.New(apperror.Conflict, "the ADMIN role cannot be deleted or regranted")
)
