package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ErrorKind classifies validation failures for the error taxonomy.
func (v ValidationErrors) ErrorKind() apperror.Kind {
	return apperror.Validation
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Field returns a single-field ValidationErrors.
func Field(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

var employeeIDRegex = regexp.MustCompile(`^\d{8}$`)

// IsValidEmployeeID checks the YYYYNNNN employee id format.
func IsValidEmployeeID(id string) bool {
	return employeeIDRegex.MatchString(id)
}

var departmentCodeRegex = regexp.MustCompile(`^[A-Z0-9_]{2,16}$`)

func IsValidDepartmentCode(code string) bool {
	return departmentCodeRegex.MatchString(code)
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

var localDateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ParseLocalDateTime parses a wall-clock timestamp without zone information in loc.
// RFC3339 timestamps are accepted too and converted to loc.
func ParseLocalDateTime(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, ok := IsValidDateTime(value); ok {
		return t.In(loc), true
	}
	for _, layout := range localDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsValidDateTime checks if a string is a valid ISO8601 timestamp.
// Accepts formats like: "2024-01-15T10:30:00Z" or "2024-01-15T10:30:00+07:00"
func IsValidDateTime(dateTimeStr string) (time.Time, bool) {
	// Try RFC3339 format (ISO8601 with timezone)
	t, err := time.Parse(time.RFC3339, dateTimeStr)
	if err == nil {
		return t, true
	}

	// Try RFC3339Nano format (with nanoseconds)
	t, err = time.Parse(time.RFC3339Nano, dateTimeStr)
	if err == nil {
		return t, true
	}

	return time.Time{}, false
}
