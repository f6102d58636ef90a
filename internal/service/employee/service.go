package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/keylock"
)

// idSequenceKey serialises id generation across concurrent CreateEmployee calls.
const idSequenceKey = "employee-id-sequence"

const maxSequence = 9999

type EmployeeServiceImpl struct {
	transactor     database.Transactor
	locks          *keylock.Locker
	employeeRepo   employee.EmployeeRepository
	departmentRepo employee.DepartmentRepository
	transferRepo   employee.TransferRepository
	roleRepo       rbac.RoleRepository
	now            func() time.Time
}

func NewEmployeeService(
	transactor database.Transactor,
	locks *keylock.Locker,
	employeeRepo employee.EmployeeRepository,
	departmentRepo employee.DepartmentRepository,
	transferRepo employee.TransferRepository,
	roleRepo rbac.RoleRepository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		transactor:     transactor,
		locks:          locks,
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
		transferRepo:   transferRepo,
		roleRepo:       roleRepo,
		now:            time.Now,
	}
}

// nextID returns the id following last within the year prefix.
func nextID(prefix, last string) (string, error) {
	seq := 0
	if last != "" {
		n, err := strconv.Atoi(last[len(prefix):])
		if err != nil {
			return "", fmt.Errorf("malformed employee id %q: %w", last, err)
		}
		seq = n
	}
	if seq >= maxSequence {
		return "", employee.ErrEmployeeIDExhausted
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, actor rbac.Actor, req employee.CreateEmployeeRequest) (employee.Employee, error) {
	if err := rbac.Require(actor, rbac.ManageUsers); err != nil {
		return employee.Employee{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	unlock := s.locks.Lock(idSequenceKey)
	defer unlock()

	var created employee.Employee
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.departmentRepo.GetByCode(ctx, req.DepartmentCode); err != nil {
			return err
		}
		if err := s.ensureRole(ctx, req.Role); err != nil {
			return err
		}

		prefix := strconv.Itoa(s.now().Year())
		last, err := s.employeeRepo.LastIDWithPrefix(ctx, prefix)
		if err != nil {
			return fmt.Errorf("failed to read last employee id: %w", err)
		}
		id, err := nextID(prefix, last)
		if err != nil {
			return err
		}

		created, err = s.employeeRepo.Create(ctx, employee.Employee{
			ID:             id,
			Name:           req.Name,
			DepartmentCode: req.DepartmentCode,
			Role:           req.Role,
		})
		if err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.Employee{}, err
	}

	slog.Info("Employee created", "actor_id", actor.ID, "employee_id", created.ID, "department_code", created.DepartmentCode, "role", created.Role)
	return created, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.Employee, error) {
	return s.employeeRepo.GetByID(ctx, id)
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	if filter.DepartmentCode != nil {
		if _, err := s.departmentRepo.GetByCode(ctx, *filter.DepartmentCode); err != nil {
			return nil, err
		}
	}
	return s.employeeRepo.List(ctx, filter)
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, actor rbac.Actor, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	if err := rbac.Require(actor, rbac.ManageUsers); err != nil {
		return employee.Employee{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.Employee{}, err
	}

	var updated employee.Employee
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			emp.Name = *req.Name
		}
		if req.Role != nil {
			if err := s.ensureRole(ctx, *req.Role); err != nil {
				return err
			}
			emp.Role = *req.Role
		}
		if err := s.employeeRepo.Update(ctx, emp); err != nil {
			return err
		}
		updated = emp
		return nil
	})
	if err != nil {
		return employee.Employee{}, err
	}

	slog.Info("Employee updated", "actor_id", actor.ID, "employee_id", updated.ID, "role", updated.Role)
	return updated, nil
}

// DeleteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, actor rbac.Actor, id string) error {
	if err := rbac.Require(actor, rbac.ManageUsers); err != nil {
		return err
	}
	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("Employee deleted", "actor_id", actor.ID, "employee_id", id)
	return nil
}

func (s *EmployeeServiceImpl) ensureRole(ctx context.Context, role rbac.Role) error {
	if _, err := s.roleRepo.Get(ctx, role); err != nil {
		if errors.Is(err, rbac.ErrRoleNotFound) {
			return rbac.ErrUnknownRole
		}
		return fmt.Errorf("failed to check role: %w", err)
	}
	return nil
}

// TransferEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) TransferEmployee(ctx context.Context, actor rbac.Actor, req employee.TransferEmployeeRequest) (employee.Transfer, error) {
	if err := rbac.Require(actor, rbac.ManageHR); err != nil {
		return employee.Transfer{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.Transfer{}, err
	}

	var transfer employee.Transfer
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		if emp.DepartmentCode == req.NewDepartmentCode {
			return employee.ErrSameDepartment
		}
		if _, err := s.departmentRepo.GetByCode(ctx, req.NewDepartmentCode); err != nil {
			return err
		}

		changedBy := actor.ID
		transfer, err = s.transferRepo.Create(ctx, employee.Transfer{
			ID:                uuid.Must(uuid.NewV7()).String(),
			EmployeeID:        emp.ID,
			OldDepartmentCode: emp.DepartmentCode,
			NewDepartmentCode: req.NewDepartmentCode,
			Notes:             req.Notes,
			ChangedBy:         &changedBy,
			ChangedAt:         s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to record department history: %w", err)
		}
		return s.employeeRepo.UpdateDepartment(ctx, emp.ID, req.NewDepartmentCode)
	})
	if err != nil {
		return employee.Transfer{}, err
	}

	slog.Info("Employee transferred",
		"actor_id", actor.ID,
		"employee_id", transfer.EmployeeID,
		"from", transfer.OldDepartmentCode,
		"to", transfer.NewDepartmentCode,
	)
	return transfer, nil
}

// ListTransfers implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListTransfers(ctx context.Context, employeeID string) ([]employee.Transfer, error) {
	exists, err := s.employeeRepo.Exists(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check employee: %w", err)
	}
	if !exists {
		return nil, employee.ErrEmployeeNotFound
	}
	return s.transferRepo.ListByEmployee(ctx, employeeID)
}

// CreateDepartment implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateDepartment(ctx context.Context, actor rbac.Actor, req employee.CreateDepartmentRequest) (employee.Department, error) {
	if err := rbac.Require(actor, rbac.ManageDepartments); err != nil {
		return employee.Department{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.Department{}, err
	}
	if err := s.ensureManager(ctx, req.ManagerID); err != nil {
		return employee.Department{}, err
	}

	department, err := s.departmentRepo.Create(ctx, employee.Department{
		Code:      req.Code,
		Name:      req.Name,
		ManagerID: req.ManagerID,
	})
	if err != nil {
		return employee.Department{}, err
	}

	slog.Info("Department created", "actor_id", actor.ID, "department_code", department.Code)
	return department, nil
}

// UpdateDepartment implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateDepartment(ctx context.Context, actor rbac.Actor, req employee.UpdateDepartmentRequest) (employee.Department, error) {
	if err := rbac.Require(actor, rbac.ManageDepartments); err != nil {
		return employee.Department{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.Department{}, err
	}

	department, err := s.departmentRepo.GetByCode(ctx, req.Code)
	if err != nil {
		return employee.Department{}, err
	}
	if err := s.ensureManager(ctx, req.ManagerID); err != nil {
		return employee.Department{}, err
	}

	department.Name = req.Name
	department.ManagerID = req.ManagerID
	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return employee.Department{}, err
	}

	slog.Info("Department updated", "actor_id", actor.ID, "department_code", department.Code)
	return department, nil
}

// GetDepartment implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetDepartment(ctx context.Context, code string) (employee.Department, error) {
	return s.departmentRepo.GetByCode(ctx, code)
}

// ListDepartments implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListDepartments(ctx context.Context) ([]employee.Department, error) {
	return s.departmentRepo.List(ctx)
}

func (s *EmployeeServiceImpl) ensureManager(ctx context.Context, managerID *string) error {
	if managerID == nil {
		return nil
	}
	_, err := s.employeeRepo.GetByID(ctx, *managerID)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		return employee.ErrManagerNotFound
	}
	return err
}
