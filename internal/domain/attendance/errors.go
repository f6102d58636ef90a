package attendance

import "github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"

var (
	ErrAlreadyCheckedIn  = apperror.New(apperror.Conflict, "employee has already checked in on this day")
	ErrAlreadyCheckedOut = apperror.New(apperror.Conflict, "employee has already checked out on this day")
	ErrNotCheckedIn      = apperror.New(apperror.NotFound, "no check-in recorded for this day")
	ErrRecordNotFound    = apperror.New(apperror.NotFound, "attendance record not found")
	ErrUnknownEvent      = apperror.New(apperror.Validation, "unknown event type")
)
