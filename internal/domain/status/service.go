package status

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
)

// Resolver answers which leave or absence applies to an employee on a day.
type Resolver interface {
	// ResolveStatus returns nil, nil for an ordinary attendance day.
	ResolveStatus(ctx context.Context, employeeID string, date time.Time) (*AssignedStatus, error)
	// ResolveApprovedStatus applies the same precedence over approved
	// assignments only, so a pending request never hides an approved one.
	ResolveApprovedStatus(ctx context.Context, employeeID string, date time.Time) (*AssignedStatus, error)
}

type StatusService interface {
	Resolver

	CreateStatusType(ctx context.Context, actor rbac.Actor, req StatusTypeRequest) (StatusType, error)
	UpdateStatusType(ctx context.Context, actor rbac.Actor, req StatusTypeRequest) (StatusType, error)
	DeleteStatusType(ctx context.Context, actor rbac.Actor, id string) error
	ListStatusTypes(ctx context.Context) ([]StatusType, error)

	// AddStatusAssignment auto-approves types that do not require approval.
	AddStatusAssignment(ctx context.Context, req AddStatusRequest) (Assignment, error)

	// ApproveStatusAssignment requires rbac.ApproveStatus.
	ApproveStatusAssignment(ctx context.Context, id string, actor rbac.Actor) (Assignment, error)
	RejectStatusAssignment(ctx context.Context, id string, actor rbac.Actor, reason *string) (Assignment, error)

	GetStatusAssignment(ctx context.Context, id string) (AssignedStatus, error)
	ListStatusAssignments(ctx context.Context, filter AssignmentFilter) ([]AssignedStatus, error)
	ListDepartmentStatus(ctx context.Context, departmentCode string, date time.Time) ([]AssignedStatus, error)
}
