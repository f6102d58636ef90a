package status

import (
	"context"
	"time"
)

type StatusTypeRepository interface {
	// Create returns ErrStatusTypeNameExists on a duplicate name.
	Create(ctx context.Context, statusType StatusType) (StatusType, error)

	// GetByID returns ErrStatusTypeNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (StatusType, error)

	List(ctx context.Context) ([]StatusType, error)

	// Update returns ErrStatusTypeNotFound or ErrStatusTypeNameExists.
	Update(ctx context.Context, statusType StatusType) error

	// Delete returns ErrStatusTypeNotFound or ErrStatusTypeInUse.
	Delete(ctx context.Context, id string) error
}

type AssignmentRepository interface {
	Create(ctx context.Context, assignment Assignment) (Assignment, error)

	// GetByID returns ErrAssignmentNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (AssignedStatus, error)

	// ListCovering returns the employee's non-rejected assignments whose range contains date.
	ListCovering(ctx context.Context, employeeID string, date time.Time) ([]AssignedStatus, error)

	List(ctx context.Context, filter AssignmentFilter) ([]AssignedStatus, error)

	// Decide moves a pending assignment to state. It returns false when the
	// assignment was no longer pending, leaving it untouched.
	Decide(ctx context.Context, id string, state ApprovalState, approverID *string, note *string, at time.Time) (bool, error)
}
