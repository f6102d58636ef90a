package status

import "github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"

var (
	ErrStatusTypeNotFound   = apperror.New(apperror.NotFound, "status type not found")
	ErrStatusTypeNameExists = apperror.New(apperror.Conflict, "status type name already exists")
	ErrStatusTypeInUse      = apperror.New(apperror.Conflict, "status type is referenced by assignments")
	ErrAssignmentNotFound   = apperror.New(apperror.NotFound, "status assignment not found")
	ErrAlreadyApproved      = apperror.New(apperror.AlreadyApproved, "status assignment is already approved")
	ErrAlreadyRejected      = apperror.New(apperror.Conflict, "status assignment has been rejected")
	ErrInvalidRange         = apperror.New(apperror.Validation, "to must not be before from")
	ErrApproverNotEmployee  = apperror.New(apperror.PermissionDenied, "approver must be a registered employee")
)
