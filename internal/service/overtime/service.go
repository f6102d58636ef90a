package overtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/interval"
)

type OvertimeServiceImpl struct {
	recordRepo     attendance.RecordRepository
	employeeRepo   employee.EmployeeRepository
	departmentRepo employee.DepartmentRepository
	shifts         shift.Resolver
	policy         overtime.Policy
}

func NewOvertimeService(
	recordRepo attendance.RecordRepository,
	employeeRepo employee.EmployeeRepository,
	departmentRepo employee.DepartmentRepository,
	shifts shift.Resolver,
	policy overtime.Policy,
) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		recordRepo:     recordRepo,
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
		shifts:         shifts,
		policy:         policy,
	}
}

// ComputeOvertime implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) ComputeOvertime(ctx context.Context, req overtime.Request) ([]overtime.Summary, error) {
	days, err := s.OvertimeDays(ctx, req)
	if err != nil {
		return nil, err
	}
	return overtime.Aggregate(days), nil
}

// OvertimeDays implements overtime.OvertimeService.
func (s *OvertimeServiceImpl) OvertimeDays(ctx context.Context, req overtime.Request) ([]overtime.Day, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.EmployeeID != nil {
		exists, err := s.employeeRepo.Exists(ctx, *req.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check employee: %w", err)
		}
		if !exists {
			return nil, employee.ErrEmployeeNotFound
		}
	}
	if req.DepartmentCode != nil {
		if _, err := s.departmentRepo.GetByCode(ctx, *req.DepartmentCode); err != nil {
			return nil, err
		}
	}

	from, to := req.Range()
	rows, err := s.recordRepo.ListRange(ctx, attendance.RangeFilter{
		EmployeeID:     req.EmployeeID,
		DepartmentCode: req.DepartmentCode,
		From:           from,
		To:             to,
		CompleteOnly:   true,
	})
	if err != nil {
		return nil, err
	}

	days := make([]overtime.Day, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		resolved, err := s.shifts.ResolveShift(ctx, row.EmployeeID, row.Date)
		if err != nil {
			return nil, err
		}
		if resolved == nil || !resolved.Shift.OvertimeAllowed {
			skipped++
			continue
		}

		st := resolved.Shift
		worked, scheduled, extra := overtime.Compute(*row.CheckIn, *row.CheckOut, st.StartTime, st.EndTime, s.policy)
		days = append(days, overtime.Day{
			EmployeeID:     row.EmployeeID,
			EmployeeName:   row.EmployeeName,
			DepartmentCode: row.DepartmentCode,
			Date:           row.Date,
			ShiftName:      st.Name,
			CheckIn:        *row.CheckIn,
			CheckOut:       *row.CheckOut,
			WorkedHours:    worked.Hours(),
			ScheduledHours: scheduled.Hours(),
			OvertimeHours:  extra.Hours(),
		})
	}

	slog.Debug("Overtime days computed",
		"from", from.Format(interval.DateLayout),
		"to", to.Format(interval.DateLayout),
		"records", len(rows),
		"days", len(days),
		"skipped", skipped,
	)
	return days, nil
}
