package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/interval"
)

type StatusServiceImpl struct {
	transactor     database.Transactor
	statusTypeRepo status.StatusTypeRepository
	assignmentRepo status.AssignmentRepository
	employeeRepo   employee.EmployeeRepository
	departmentRepo employee.DepartmentRepository
	now            func() time.Time
}

func NewStatusService(
	transactor database.Transactor,
	statusTypeRepo status.StatusTypeRepository,
	assignmentRepo status.AssignmentRepository,
	employeeRepo employee.EmployeeRepository,
	departmentRepo employee.DepartmentRepository,
) status.StatusService {
	return &StatusServiceImpl{
		transactor:     transactor,
		statusTypeRepo: statusTypeRepo,
		assignmentRepo: assignmentRepo,
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
		now:            time.Now,
	}
}

// ResolveStatus implements status.Resolver. Rejected assignments never apply.
func (s *StatusServiceImpl) ResolveStatus(ctx context.Context, employeeID string, date time.Time) (*status.AssignedStatus, error) {
	candidates, err := s.assignmentRepo.ListCovering(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list covering status assignments: %w", err)
	}
	winner, ok := interval.Resolve(candidates, date)
	if !ok {
		return nil, nil
	}
	return &winner, nil
}

// ResolveApprovedStatus implements status.Resolver.
func (s *StatusServiceImpl) ResolveApprovedStatus(ctx context.Context, employeeID string, date time.Time) (*status.AssignedStatus, error) {
	candidates, err := s.assignmentRepo.ListCovering(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list covering status assignments: %w", err)
	}
	approved := candidates[:0]
	for _, c := range candidates {
		if c.Approved() {
			approved = append(approved, c)
		}
	}
	winner, ok := interval.Resolve(approved, date)
	if !ok {
		return nil, nil
	}
	return &winner, nil
}

// CreateStatusType implements status.StatusService.
func (s *StatusServiceImpl) CreateStatusType(ctx context.Context, actor rbac.Actor, req status.StatusTypeRequest) (status.StatusType, error) {
	if err := rbac.Require(actor, rbac.ManageHR); err != nil {
		return status.StatusType{}, err
	}
	if err := req.Validate(); err != nil {
		return status.StatusType{}, err
	}

	created, err := s.statusTypeRepo.Create(ctx, status.StatusType{
		ID:               uuid.Must(uuid.NewV7()).String(),
		Name:             req.Name,
		RequiresApproval: req.RequiresApprovalOrDefault(),
		MaxDays:          req.MaxDays,
	})
	if err != nil {
		return status.StatusType{}, err
	}

	slog.Info("Status type created", "actor_id", actor.ID, "status_type_id", created.ID, "name", created.Name)
	return created, nil
}

// UpdateStatusType implements status.StatusService.
func (s *StatusServiceImpl) UpdateStatusType(ctx context.Context, actor rbac.Actor, req status.StatusTypeRequest) (status.StatusType, error) {
	if err := rbac.Require(actor, rbac.ManageHR); err != nil {
		return status.StatusType{}, err
	}
	if err := req.Validate(); err != nil {
		return status.StatusType{}, err
	}

	existing, err := s.statusTypeRepo.GetByID(ctx, req.ID)
	if err != nil {
		return status.StatusType{}, err
	}

	existing.Name = req.Name
	existing.MaxDays = req.MaxDays
	if req.RequiresApproval != nil {
		existing.RequiresApproval = *req.RequiresApproval
	}
	if err := s.statusTypeRepo.Update(ctx, existing); err != nil {
		return status.StatusType{}, err
	}

	slog.Info("Status type updated", "actor_id", actor.ID, "status_type_id", existing.ID)
	return existing, nil
}

// DeleteStatusType implements status.StatusService.
func (s *StatusServiceImpl) DeleteStatusType(ctx context.Context, actor rbac.Actor, id string) error {
	if err := rbac.Require(actor, rbac.ManageHR); err != nil {
		return err
	}
	if err := s.statusTypeRepo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("Status type deleted", "actor_id", actor.ID, "status_type_id", id)
	return nil
}

// ListStatusTypes implements status.StatusService.
func (s *StatusServiceImpl) ListStatusTypes(ctx context.Context) ([]status.StatusType, error) {
	return s.statusTypeRepo.List(ctx)
}

// AddStatusAssignment implements status.StatusService.
func (s *StatusServiceImpl) AddStatusAssignment(ctx context.Context, req status.AddStatusRequest) (status.Assignment, error) {
	if err := req.Validate(); err != nil {
		return status.Assignment{}, err
	}

	var created status.Assignment
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.employeeRepo.Exists(ctx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to check employee: %w", err)
		}
		if !exists {
			return employee.ErrEmployeeNotFound
		}

		statusType, err := s.statusTypeRepo.GetByID(ctx, req.StatusTypeID)
		if err != nil {
			return err
		}

		period := req.Period()
		assignment := status.Assignment{
			ID:           uuid.Must(uuid.NewV7()).String(),
			EmployeeID:   req.EmployeeID,
			StatusTypeID: statusType.ID,
			StartDate:    period.Start,
			EndDate:      period.End,
			Notes:        req.Notes,
			State:        status.StatePending,
		}
		if !statusType.RequiresApproval {
			decidedAt := s.now().UTC()
			assignment.State = status.StateApproved
			assignment.DecidedAt = &decidedAt
		}
		if status.ExceedsCap(period, statusType.MaxDays) {
			slog.Warn("Status assignment exceeds the type's day cap",
				"employee_id", req.EmployeeID,
				"status_type_id", statusType.ID,
				"max_days", *statusType.MaxDays,
			)
		}

		created, err = s.assignmentRepo.Create(ctx, assignment)
		if err != nil {
			return fmt.Errorf("failed to create status assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return status.Assignment{}, err
	}

	slog.Info("Status assignment added",
		"assignment_id", created.ID,
		"employee_id", created.EmployeeID,
		"status_type_id", created.StatusTypeID,
		"state", created.State,
	)
	return created, nil
}

// ApproveStatusAssignment implements status.StatusService.
func (s *StatusServiceImpl) ApproveStatusAssignment(ctx context.Context, id string, actor rbac.Actor) (status.Assignment, error) {
	return s.decide(ctx, id, actor, status.StateApproved, nil)
}

// RejectStatusAssignment implements status.StatusService.
func (s *StatusServiceImpl) RejectStatusAssignment(ctx context.Context, id string, actor rbac.Actor, reason *string) (status.Assignment, error) {
	return s.decide(ctx, id, actor, status.StateRejected, reason)
}

// decidedError maps the state an assignment already reached onto the error
// returned to a second decision.
func decidedError(state status.ApprovalState) error {
	switch state {
	case status.StateApproved:
		return status.ErrAlreadyApproved
	case status.StateRejected:
		return status.ErrAlreadyRejected
	}
	return nil
}

func (s *StatusServiceImpl) decide(ctx context.Context, id string, actor rbac.Actor, to status.ApprovalState, note *string) (status.Assignment, error) {
	// Checked before the lookup: a denied caller gets PermissionDenied even for unknown ids.
	if err := rbac.Require(actor, rbac.ApproveStatus); err != nil {
		slog.Debug("Status decision denied", "actor_id", actor.ID, "assignment_id", id, "decision", to)
		return status.Assignment{}, err
	}

	var decided status.Assignment
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		// approved_by references employees, so the approver must be one.
		isEmployee, err := s.employeeRepo.Exists(ctx, actor.ID)
		if err != nil {
			return fmt.Errorf("failed to check approver: %w", err)
		}
		if !isEmployee {
			return status.ErrApproverNotEmployee
		}

		current, err := s.assignmentRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := decidedError(current.State); err != nil {
			return err
		}

		at := s.now().UTC()
		approverID := actor.ID
		ok, err := s.assignmentRepo.Decide(ctx, id, to, &approverID, note, at)
		if err != nil {
			return fmt.Errorf("failed to store status decision: %w", err)
		}
		if !ok {
			latest, err := s.assignmentRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := decidedError(latest.State); err != nil {
				return err
			}
			return fmt.Errorf("status assignment %s was not updated", id)
		}

		decided = current.Assignment
		decided.State = to
		decided.ApprovedBy = &approverID
		decided.DecidedAt = &at
		decided.DecisionNote = note
		return nil
	})
	if err != nil {
		return status.Assignment{}, err
	}

	slog.Info("Status assignment decided",
		"assignment_id", decided.ID,
		"employee_id", decided.EmployeeID,
		"state", decided.State,
		"actor_id", actor.ID,
	)
	return decided, nil
}

// GetStatusAssignment implements status.StatusService.
func (s *StatusServiceImpl) GetStatusAssignment(ctx context.Context, id string) (status.AssignedStatus, error) {
	return s.assignmentRepo.GetByID(ctx, id)
}

// ListStatusAssignments implements status.StatusService.
func (s *StatusServiceImpl) ListStatusAssignments(ctx context.Context, filter status.AssignmentFilter) ([]status.AssignedStatus, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, status.ErrInvalidRange
	}
	assignments, err := s.assignmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	interval.Sort(assignments)
	return assignments, nil
}

// ListDepartmentStatus implements status.StatusService. Employees without an
// applicable status on date are omitted.
func (s *StatusServiceImpl) ListDepartmentStatus(ctx context.Context, departmentCode string, date time.Time) ([]status.AssignedStatus, error) {
	if _, err := s.departmentRepo.GetByCode(ctx, departmentCode); err != nil {
		return nil, err
	}
	employees, err := s.employeeRepo.List(ctx, employee.EmployeeFilter{DepartmentCode: &departmentCode})
	if err != nil {
		return nil, err
	}

	out := make([]status.AssignedStatus, 0)
	for _, e := range employees {
		resolved, err := s.ResolveStatus(ctx, e.ID, date)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			out = append(out, *resolved)
		}
	}
	return out, nil
}
