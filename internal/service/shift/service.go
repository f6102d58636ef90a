package shift

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/interval"
)

type ShiftServiceImpl struct {
	shiftTypeRepo  shift.ShiftTypeRepository
	assignmentRepo shift.AssignmentRepository
	employeeRepo   employee.EmployeeRepository
	departmentRepo employee.DepartmentRepository
}

func NewShiftService(
	shiftTypeRepo shift.ShiftTypeRepository,
	assignmentRepo shift.AssignmentRepository,
	employeeRepo employee.EmployeeRepository,
	departmentRepo employee.DepartmentRepository,
) shift.ShiftService {
	return &ShiftServiceImpl{
		shiftTypeRepo:  shiftTypeRepo,
		assignmentRepo: assignmentRepo,
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
	}
}

// ResolveShift implements shift.Resolver.
func (s *ShiftServiceImpl) ResolveShift(ctx context.Context, employeeID string, date time.Time) (*shift.AssignedShift, error) {
	candidates, err := s.assignmentRepo.ListCovering(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list covering shift assignments: %w", err)
	}
	winner, ok := interval.Resolve(candidates, date)
	if !ok {
		return nil, nil
	}
	if len(candidates) > 1 {
		slog.Debug("Overlapping shift assignments resolved",
			"employee_id", employeeID,
			"date", date.Format(interval.DateLayout),
			"candidates", len(candidates),
			"winner", winner.ID,
		)
	}
	return &winner, nil
}

func shiftTypeFrom(req shift.ShiftTypeRequest) shift.ShiftType {
	breakMinutes := shift.DefaultBreakMinutes
	if req.BreakMinutes != nil {
		breakMinutes = *req.BreakMinutes
	}
	return shift.ShiftType{
		ID:              req.ID,
		Name:            req.Name,
		StartTime:       *req.StartTime,
		EndTime:         *req.EndTime,
		BreakMinutes:    breakMinutes,
		FlexibleMinutes: req.FlexibleMinutes,
		OvertimeAllowed: req.OvertimeAllowed,
	}
}

// CreateShiftType implements shift.ShiftService.
func (s *ShiftServiceImpl) CreateShiftType(ctx context.Context, actor rbac.Actor, req shift.ShiftTypeRequest) (shift.ShiftType, error) {
	if err := rbac.Require(actor, rbac.ManageHR); err != nil {
		return shift.ShiftType{}, err
	}
	if err := req.Validate(); err != nil {
		return shift.ShiftType{}, err
	}

	st := shiftTypeFrom(req)
	st.ID = uuid.Must(uuid.NewV7()).String()
	created, err := s.shiftTypeRepo.Create(ctx, st)
	if err != nil {
		return shift.ShiftType{}, err
	}

	slog.Info("Shift type created", "actor_id", actor.ID, "shift_type_id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateShiftType implements shift.ShiftService.
func (s *ShiftServiceImpl) UpdateShiftType(ctx context.Context, actor rbac.Actor, req shift.ShiftTypeRequest) (shift.ShiftType, error) {
	if err := rbac.Require(actor, rbac.ManageHR); err != nil {
		return shift.ShiftType{}, err
	}
	if err := req.Validate(); err != nil {
		return shift.ShiftType{}, err
	}

	existing, err := s.shiftTypeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return shift.ShiftType{}, err
	}

	updated := shiftTypeFrom(req)
	updated.CreatedAt = existing.CreatedAt
	if req.BreakMinutes == nil {
		updated.BreakMinutes = existing.BreakMinutes
	}
	if err := s.shiftTypeRepo.Update(ctx, updated); err != nil {
		return shift.ShiftType{}, err
	}

	slog.Info("Shift type updated", "actor_id", actor.ID, "shift_type_id", updated.ID)
	return updated, nil
}

// DeleteShiftType implements shift.ShiftService.
func (s *ShiftServiceImpl) DeleteShiftType(ctx context.Context, actor rbac.Actor, id string) error {
	if err := rbac.Require(actor, rbac.ManageHR); err != nil {
		return err
	}
	if err := s.shiftTypeRepo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("Shift type deleted", "actor_id", actor.ID, "shift_type_id", id)
	return nil
}

// ListShiftTypes implements shift.ShiftService.
func (s *ShiftServiceImpl) ListShiftTypes(ctx context.Context) ([]shift.ShiftType, error) {
	return s.shiftTypeRepo.List(ctx)
}

// AssignShift implements shift.ShiftService. Overlapping ranges are accepted;
// ResolveShift decides between them.
func (s *ShiftServiceImpl) AssignShift(ctx context.Context, actor rbac.Actor, req shift.AssignShiftRequest) (shift.Assignment, error) {
	if err := rbac.Require(actor, rbac.ManageHR); err != nil {
		return shift.Assignment{}, err
	}
	if err := req.Validate(); err != nil {
		return shift.Assignment{}, err
	}

	exists, err := s.employeeRepo.Exists(ctx, req.EmployeeID)
	if err != nil {
		return shift.Assignment{}, fmt.Errorf("failed to check employee: %w", err)
	}
	if !exists {
		return shift.Assignment{}, employee.ErrEmployeeNotFound
	}
	if _, err := s.shiftTypeRepo.GetByID(ctx, req.ShiftTypeID); err != nil {
		return shift.Assignment{}, err
	}

	period := req.Period()
	assignment, err := s.assignmentRepo.Create(ctx, shift.Assignment{
		ID:          uuid.Must(uuid.NewV7()).String(),
		EmployeeID:  req.EmployeeID,
		ShiftTypeID: req.ShiftTypeID,
		StartDate:   period.Start,
		EndDate:     period.End,
		Notes:       req.Notes,
	})
	if err != nil {
		return shift.Assignment{}, fmt.Errorf("failed to create shift assignment: %w", err)
	}

	slog.Info("Shift assigned",
		"actor_id", actor.ID,
		"employee_id", assignment.EmployeeID,
		"shift_type_id", assignment.ShiftTypeID,
		"start_date", assignment.StartDate.Format(interval.DateLayout),
	)
	return assignment, nil
}

// ListEmployeeShifts implements shift.ShiftService.
func (s *ShiftServiceImpl) ListEmployeeShifts(ctx context.Context, employeeID string, from, to *time.Time) ([]shift.AssignedShift, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, shift.ErrInvalidRange
	}
	exists, err := s.employeeRepo.Exists(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check employee: %w", err)
	}
	if !exists {
		return nil, employee.ErrEmployeeNotFound
	}

	assignments, err := s.assignmentRepo.ListByEmployee(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	interval.Sort(assignments)
	return assignments, nil
}

// ListDepartmentShifts implements shift.ShiftService.
func (s *ShiftServiceImpl) ListDepartmentShifts(ctx context.Context, departmentCode string, date time.Time) ([]shift.DepartmentShift, error) {
	if _, err := s.departmentRepo.GetByCode(ctx, departmentCode); err != nil {
		return nil, err
	}
	employees, err := s.employeeRepo.List(ctx, employee.EmployeeFilter{DepartmentCode: &departmentCode})
	if err != nil {
		return nil, err
	}

	out := make([]shift.DepartmentShift, 0, len(employees))
	for _, e := range employees {
		resolved, err := s.ResolveShift(ctx, e.ID, date)
		if err != nil {
			return nil, err
		}
		out = append(out, shift.DepartmentShift{
			EmployeeID:   e.ID,
			EmployeeName: e.Name,
			Shift:        resolved,
		})
	}
	return out, nil
}
