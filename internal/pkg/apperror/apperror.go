package apperror

import "errors"

// Kind classifies an error by how callers are expected to react to it.
type Kind string

const (
	NotFound         Kind = "NOT_FOUND"
	Conflict         Kind = "CONFLICT"
	AlreadyApproved  Kind = "ALREADY_APPROVED"
	PermissionDenied Kind = "PERMISSION_DENIED"
	Validation       Kind = "VALIDATION_ERROR"
	Storage          Kind = "STORAGE_ERROR"
)

// Error is a domain error carrying its kind. Domain packages declare their
// sentinels with New and callers compare them with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates a sentinel error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// kinded is implemented by error types that know their kind without being an *Error,
// e.g. validator.ValidationErrors.
type kinded interface {
	ErrorKind() Kind
}

// KindOf returns the kind of err. Errors that carry no kind come from the
// persistence layer or the runtime and are reported as Storage.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}

	return Storage
}

// IsExpected reports whether err is a recoverable outcome the caller should
// handle (show a message, skip an event) rather than log as a failure.
func IsExpected(err error) bool {
	switch KindOf(err) {
	case NotFound, Conflict, AlreadyApproved, PermissionDenied, Validation:
		return true
	default:
		return false
	}
}
