package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses by their kind.
// Storage errors are logged here; the client only sees a generic message.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch kind := apperror.KindOf(err); kind {
	case apperror.NotFound:
		writeError(w, http.StatusNotFound, string(kind), err.Error(), nil)
	case apperror.Conflict, apperror.AlreadyApproved:
		writeError(w, http.StatusConflict, string(kind), err.Error(), nil)
	case apperror.PermissionDenied:
		Forbidden(w, err.Error())
	case apperror.Validation:
		writeError(w, http.StatusUnprocessableEntity, string(kind), err.Error(), nil)
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, string(apperror.Storage), "An unexpected error occurred", nil)
	}
}
