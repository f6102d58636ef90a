package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

func TestHandleError_StatusByKind(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperror.New(apperror.NotFound, "employee not found"), http.StatusNotFound, "NOT_FOUND"},
		{apperror.New(apperror.Conflict, "already checked in"), http.StatusConflict, "CONFLICT"},
		{apperror.New(apperror.AlreadyApproved, "already approved"), http.StatusConflict, "ALREADY_APPROVED"},
		{apperror.New(apperror.PermissionDenied, "denied"), http.StatusForbidden, "PERMISSION_DENIED"},
		{apperror.New(apperror.Validation, "bad"), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{fmt.Errorf("failed to query: %w", apperror.New(apperror.NotFound, "gone")), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError, "STORAGE_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestHandleError_StorageMessageIsGeneric(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, fmt.Errorf("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password")
}

func TestHandleError_ValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, validator.ValidationErrors{
		{Field: "name", Message: "name is required"},
		{Field: "start_date", Message: "start_date must be YYYY-MM-DD"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{
		"name":       "name is required",
		"start_date": "start_date must be YYYY-MM-DD",
	}, body.Error.Details)
}

func TestHandleError_PermissionDeniedKeepsMessage(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, fmt.Errorf("failed to approve: %w", apperror.New(apperror.PermissionDenied, "approver must be a registered employee")))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PERMISSION_DENIED", body.Error.Code)
	assert.Contains(t, body.Error.Message, "registered employee")
}
