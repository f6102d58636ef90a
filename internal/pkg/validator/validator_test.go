package validator

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"",                                     // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidEmployeeID(t *testing.T) {
	valid := []string{"20240001", "20259999"}
	invalid := []string{"2024-0001", "2024001", "E1", "abcdefgh", ""}
	for _, id := range valid {
		if !IsValidEmployeeID(id) {
			t.Errorf("IsValidEmployeeID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidEmployeeID(id) {
			t.Errorf("IsValidEmployeeID(%q) = true, want false", id)
		}
	}
}

func TestIsValidDepartmentCode(t *testing.T) {
	if !IsValidDepartmentCode("ADM") || !IsValidDepartmentCode("IT") {
		t.Error("expected ADM and IT to be valid department codes")
	}
	if IsValidDepartmentCode("a") || IsValidDepartmentCode("adm") {
		t.Error("expected lower-case and single-letter codes to be rejected")
	}
}

func TestParseLocalDateTime(t *testing.T) {
	loc := time.FixedZone("AST", 3*60*60)

	cases := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2024-02-01 08:00:00", time.Date(2024, 2, 1, 8, 0, 0, 0, loc), true},
		{"2024-02-01T08:00", time.Date(2024, 2, 1, 8, 0, 0, 0, loc), true},
		{"2024-02-01T05:00:00Z", time.Date(2024, 2, 1, 8, 0, 0, 0, loc), true},
		{"2024-02-01", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}
	for _, c := range cases {
		got, ok := ParseLocalDateTime(c.input, loc)
		if ok != c.ok {
			t.Errorf("ParseLocalDateTime(%q) ok = %v, want %v", c.input, ok, c.ok)
			continue
		}
		if ok && !got.Equal(c.want) {
			t.Errorf("ParseLocalDateTime(%q) = %v, want %v", c.input, got, c.want)
		}
		if ok && (got.Hour() != 8 || got.Day() != 1) {
			t.Errorf("ParseLocalDateTime(%q) wall clock = %v, want 2024-02-01 08:00", c.input, got)
		}
	}
}

func TestValidationErrorsKind(t *testing.T) {
	err := Field("date", "date is required")
	if apperror.KindOf(err) != apperror.Validation {
		t.Errorf("KindOf(ValidationErrors) = %q, want %q", apperror.KindOf(err), apperror.Validation)
	}
	if got := err.ToMap()["date"]; got != "date is required" {
		t.Errorf("ToMap()[date] = %q", got)
	}
}
