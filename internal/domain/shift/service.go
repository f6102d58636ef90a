package shift

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
)

// Resolver answers which shift applies to an employee on a day.
type Resolver interface {
	// ResolveShift returns nil, nil when no assignment covers date.
	ResolveShift(ctx context.Context, employeeID string, date time.Time) (*AssignedShift, error)
}

type ShiftService interface {
	Resolver

	CreateShiftType(ctx context.Context, actor rbac.Actor, req ShiftTypeRequest) (ShiftType, error)
	UpdateShiftType(ctx context.Context, actor rbac.Actor, req ShiftTypeRequest) (ShiftType, error)
	DeleteShiftType(ctx context.Context, actor rbac.Actor, id string) error
	ListShiftTypes(ctx context.Context) ([]ShiftType, error)

	AssignShift(ctx context.Context, actor rbac.Actor, req AssignShiftRequest) (Assignment, error)

	// ListEmployeeShifts returns assignments overlapping [from, to], winner-first.
	ListEmployeeShifts(ctx context.Context, employeeID string, from, to *time.Time) ([]AssignedShift, error)
	ListDepartmentShifts(ctx context.Context, departmentCode string, date time.Time) ([]DepartmentShift, error)
}
