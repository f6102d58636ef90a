package employee

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
)

type EmployeeService interface {
	// CreateEmployee assigns the next YYYYNNNN id for the current year.
	CreateEmployee(ctx context.Context, actor rbac.Actor, req CreateEmployeeRequest) (Employee, error)
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	UpdateEmployee(ctx context.Context, actor rbac.Actor, req UpdateEmployeeRequest) (Employee, error)

	// DeleteEmployee refuses with ErrEmployeeInUse once the employee has history.
	DeleteEmployee(ctx context.Context, actor rbac.Actor, id string) error

	// TransferEmployee moves an employee and records the department history row.
	TransferEmployee(ctx context.Context, actor rbac.Actor, req TransferEmployeeRequest) (Transfer, error)
	ListTransfers(ctx context.Context, employeeID string) ([]Transfer, error)

	CreateDepartment(ctx context.Context, actor rbac.Actor, req CreateDepartmentRequest) (Department, error)
	UpdateDepartment(ctx context.Context, actor rbac.Actor, req UpdateDepartmentRequest) (Department, error)
	GetDepartment(ctx context.Context, code string) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
}
