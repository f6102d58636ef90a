package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// decodeJSON writes a 400 and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// queryPtr returns nil for an absent or empty query parameter.
func queryPtr(r *http.Request, name string) *string {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	return &v
}

// dateParam parses a required YYYY-MM-DD value.
func dateParam(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, validator.Field(name, name+" is required")
	}
	date, ok := validator.IsValidDate(value)
	if !ok {
		return time.Time{}, validator.Field(name, name+" must be YYYY-MM-DD")
	}
	return date, nil
}

// optionalDateQuery parses an optional YYYY-MM-DD query parameter.
func optionalDateQuery(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	date, err := dateParam(name, v)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
