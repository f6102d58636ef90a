package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fieldErrors []string

func (fieldErrors) Error() string { return "invalid fields" }

func (fieldErrors) ErrorKind() Kind { return Validation }

func TestKindOf(t *testing.T) {
	errMissing := New(NotFound, "employee not found")

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"sentinel", errMissing, NotFound},
		{"wrapped sentinel", fmt.Errorf("failed to check in: %w", errMissing), NotFound},
		{"kinded type", fieldErrors{"date"}, Validation},
		{"wrapped kinded type", fmt.Errorf("bad request: %w", fieldErrors{"date"}), Validation},
		{"plain error", errors.New("disk I/O error"), Storage},
		{"context error", context.DeadlineExceeded, Storage},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, KindOf(c.err))
		})
	}
}

func TestIsExpected(t *testing.T) {
	assert.True(t, IsExpected(New(Conflict, "duplicate")))
	assert.True(t, IsExpected(New(AlreadyApproved, "already approved")))
	assert.True(t, IsExpected(New(PermissionDenied, "denied")))
	assert.True(t, IsExpected(fieldErrors{"x"}))
	assert.False(t, IsExpected(errors.New("connection reset")))
	assert.False(t, IsExpected(nil))
}

func TestSentinelIdentity(t *testing.T) {
	a := New(Conflict, "same message")
	b := New(Conflict, "same message")

	assert.True(t, errors.Is(fmt.Errorf("wrap: %w", a), a))
	assert.False(t, errors.Is(a, b))
}
