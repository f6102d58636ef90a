package shift

import (
	"context"
	"time"
)

type ShiftTypeRepository interface {
	// Create returns ErrShiftTypeNameExists on a duplicate name.
	Create(ctx context.Context, shiftType ShiftType) (ShiftType, error)

	// GetByID returns ErrShiftTypeNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (ShiftType, error)

	List(ctx context.Context) ([]ShiftType, error)

	// Update returns ErrShiftTypeNotFound or ErrShiftTypeNameExists.
	Update(ctx context.Context, shiftType ShiftType) error

	// Delete returns ErrShiftTypeNotFound or ErrShiftTypeInUse.
	Delete(ctx context.Context, id string) error
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment Assignment) (Assignment, error)

	// ListCovering returns every assignment of the employee whose range contains date,
	// joined with its shift type. Ordering is not significant.
	ListCovering(ctx context.Context, employeeID string, date time.Time) ([]AssignedShift, error)

	// ListByEmployee returns assignments overlapping [from, to]; nil bounds are unbounded.
	ListByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]AssignedShift, error)
}
