package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, name, department_code, role, created_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		e    employee.Employee
		role string
	)
	if err := row.Scan(&e.ID, &e.Name, &e.DepartmentCode, &role, &e.CreatedAt); err != nil {
		return employee.Employee{}, err
	}
	e.Role = rbac.Role(role)
	return e, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e.CreatedAt = nowOr(e.CreatedAt)
	_, err := q.Exec(ctx,
		`INSERT INTO employees (`+employeeColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Name, e.DepartmentCode, string(e.Role), e.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return employee.Employee{}, employee.ErrDepartmentNotFound
		}
		if isUniqueViolation(err) {
			return employee.Employee{}, employee.ErrEmployeeIDExhausted
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return e, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}
	return e, nil
}

// Exists implements employee.EmployeeRepository.
func (r *employeeRepository) Exists(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check employee: %w", err)
	}
	return exists, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees`
	var args []interface{}
	if filter.DepartmentCode != nil {
		query += ` WHERE department_code = $1`
		args = append(args, *filter.DepartmentCode)
	}
	query += ` ORDER BY id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastIDWithPrefix implements employee.EmployeeRepository.
func (r *employeeRepository) LastIDWithPrefix(ctx context.Context, prefix string) (string, error) {
	q := GetQuerier(ctx, r.db)

	var last *string
	err := q.QueryRow(ctx,
		`SELECT MAX(id) FROM employees WHERE length(id) = 8 AND left(id, length($1)) = $1`,
		prefix,
	).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to get last employee id: %w", err)
	}
	if last == nil {
		return "", nil
	}
	return *last, nil
}

// UpdateDepartment implements employee.EmployeeRepository.
func (r *employeeRepository) UpdateDepartment(ctx context.Context, id string, departmentCode string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET department_code = $1 WHERE id = $2`, departmentCode, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return employee.ErrDepartmentNotFound
		}
		return fmt.Errorf("failed to update employee department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepository) Update(ctx context.Context, e employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET name = $1, role = $2 WHERE id = $3`, e.Name, string(e.Role), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Delete implements employee.EmployeeRepository.
func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return employee.ErrEmployeeInUse
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

type departmentRepository struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) employee.DepartmentRepository {
	return &departmentRepository{db: db}
}

const departmentColumns = `code, name, manager_id, created_at`

func scanDepartment(row pgx.Row) (employee.Department, error) {
	var d employee.Department
	if err := row.Scan(&d.Code, &d.Name, &d.ManagerID, &d.CreatedAt); err != nil {
		return employee.Department{}, err
	}
	return d, nil
}

// Create implements employee.DepartmentRepository.
func (r *departmentRepository) Create(ctx context.Context, d employee.Department) (employee.Department, error) {
	q := GetQuerier(ctx, r.db)

	d.CreatedAt = nowOr(d.CreatedAt)
	_, err := q.Exec(ctx,
		`INSERT INTO departments (`+departmentColumns+`) VALUES ($1, $2, $3, $4)`,
		d.Code, d.Name, d.ManagerID, d.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return employee.Department{}, employee.ErrDepartmentCodeExists
		}
		if isForeignKeyViolation(err) {
			return employee.Department{}, employee.ErrManagerNotFound
		}
		return employee.Department{}, fmt.Errorf("failed to create department: %w", err)
	}
	return d, nil
}

// GetByCode implements employee.DepartmentRepository.
func (r *departmentRepository) GetByCode(ctx context.Context, code string) (employee.Department, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDepartment(q.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Department{}, employee.ErrDepartmentNotFound
		}
		return employee.Department{}, fmt.Errorf("failed to get department: %w", err)
	}
	return d, nil
}

// List implements employee.DepartmentRepository.
func (r *departmentRepository) List(ctx context.Context) ([]employee.Department, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var out []employee.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update implements employee.DepartmentRepository.
func (r *departmentRepository) Update(ctx context.Context, d employee.Department) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE departments SET name = $1, manager_id = $2 WHERE code = $3`, d.Name, d.ManagerID, d.Code)
	if err != nil {
		if isForeignKeyViolation(err) {
			return employee.ErrManagerNotFound
		}
		return fmt.Errorf("failed to update department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrDepartmentNotFound
	}
	return nil
}

type transferRepository struct {
	db *database.DB
}

func NewTransferRepository(db *database.DB) employee.TransferRepository {
	return &transferRepository{db: db}
}

// Create implements employee.TransferRepository.
func (r *transferRepository) Create(ctx context.Context, t employee.Transfer) (employee.Transfer, error) {
	q := GetQuerier(ctx, r.db)

	t.ChangedAt = nowOr(t.ChangedAt)
	_, err := q.Exec(ctx,
		`INSERT INTO department_history (id, employee_id, old_department_code, new_department_code, notes, changed_by, changed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.EmployeeID, t.OldDepartmentCode, t.NewDepartmentCode, t.Notes, t.ChangedBy, t.ChangedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return employee.Transfer{}, employee.ErrEmployeeNotFound
		}
		return employee.Transfer{}, fmt.Errorf("failed to create transfer: %w", err)
	}
	return t, nil
}

// ListByEmployee implements employee.TransferRepository.
func (r *transferRepository) ListByEmployee(ctx context.Context, employeeID string) ([]employee.Transfer, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT id, employee_id, old_department_code, new_department_code, notes, changed_by, changed_at
		 FROM department_history
		 WHERE employee_id = $1
		 ORDER BY changed_at DESC, id DESC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var out []employee.Transfer
	for rows.Next() {
		var t employee.Transfer
		if err := rows.Scan(&t.ID, &t.EmployeeID, &t.OldDepartmentCode, &t.NewDepartmentCode, &t.Notes, &t.ChangedBy, &t.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
