package employee

import "context"

type EmployeeRepository interface {
	Create(ctx context.Context, employee Employee) (Employee, error)

	// GetByID returns ErrEmployeeNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (Employee, error)

	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)

	// LastIDWithPrefix returns the greatest id starting with prefix, or "" when none exists.
	LastIDWithPrefix(ctx context.Context, prefix string) (string, error)

	UpdateDepartment(ctx context.Context, id string, departmentCode string) error

	// Update stores the name and role of an existing employee.
	Update(ctx context.Context, employee Employee) error

	// Delete returns ErrEmployeeInUse while other records reference the employee.
	Delete(ctx context.Context, id string) error
}

type DepartmentRepository interface {
	// Create returns ErrDepartmentCodeExists on a duplicate code.
	Create(ctx context.Context, department Department) (Department, error)

	// GetByCode returns ErrDepartmentNotFound when the code is unknown.
	GetByCode(ctx context.Context, code string) (Department, error)

	List(ctx context.Context) ([]Department, error)
	Update(ctx context.Context, department Department) error
}

type TransferRepository interface {
	Create(ctx context.Context, transfer Transfer) (Transfer, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Transfer, error)
}
