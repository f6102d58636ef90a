package report

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

// lateWindow bounds how far past the expected time a check-in still counts as
// late. Anything further is read as an early arrival wrapping past midnight.
const lateWindow = 12 * time.Hour

type ReportServiceImpl struct {
	recordRepo     attendance.RecordRepository
	employeeRepo   employee.EmployeeRepository
	departmentRepo employee.DepartmentRepository
	shifts         shift.Resolver
	lateThreshold  timeofday.Time
}

func NewReportService(
	recordRepo attendance.RecordRepository,
	employeeRepo employee.EmployeeRepository,
	departmentRepo employee.DepartmentRepository,
	shifts shift.Resolver,
	lateThreshold timeofday.Time,
) report.ReportService {
	return &ReportServiceImpl{
		recordRepo:     recordRepo,
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
		shifts:         shifts,
		lateThreshold:  lateThreshold,
	}
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

// LateArrivals implements report.ReportService.
func (s *ReportServiceImpl) LateArrivals(ctx context.Context, req report.LateArrivalsRequest) ([]report.LateArrival, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.DepartmentCode != nil {
		if _, err := s.departmentRepo.GetByCode(ctx, *req.DepartmentCode); err != nil {
			return nil, err
		}
	}

	rows, err := s.recordRepo.ListByDate(ctx, req.Day(), req.DepartmentCode)
	if err != nil {
		return nil, err
	}

	late := make([]report.LateArrival, 0)
	for _, row := range rows {
		if row.CheckIn == nil {
			continue
		}

		expected := s.lateThreshold
		var shiftName *string
		resolved, err := s.shifts.ResolveShift(ctx, row.EmployeeID, row.Date)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			expected = resolved.Shift.LatestOnTime()
			name := resolved.Shift.Name
			shiftName = &name
		}

		lateness := timeofday.Span(expected, *row.CheckIn)
		if lateness <= 0 || lateness >= lateWindow {
			continue
		}
		late = append(late, report.LateArrival{
			EmployeeID:     row.EmployeeID,
			EmployeeName:   row.EmployeeName,
			DepartmentCode: row.DepartmentCode,
			Date:           row.Date,
			CheckIn:        *row.CheckIn,
			ShiftName:      shiftName,
			ExpectedBy:     expected,
			LateMinutes:    int(lateness / time.Minute),
		})
	}

	slices.SortStableFunc(late, func(a, b report.LateArrival) int {
		if c := cmp.Compare(b.LateMinutes, a.LateMinutes); c != 0 {
			return c
		}
		return cmp.Compare(a.EmployeeID, b.EmployeeID)
	})
	return late, nil
}

// DepartmentSummary implements report.ReportService. EmployeeID is ignored.
func (s *ReportServiceImpl) DepartmentSummary(ctx context.Context, req report.RangeRequest) ([]report.DepartmentSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	from, to := req.Range()

	departments, err := s.departmentRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]report.DepartmentSummary, 0, len(departments))
	for _, d := range departments {
		code := d.Code
		employees, err := s.employeeRepo.List(ctx, employee.EmployeeFilter{DepartmentCode: &code})
		if err != nil {
			return nil, err
		}
		rows, err := s.recordRepo.ListRange(ctx, attendance.RangeFilter{DepartmentCode: &code, From: from, To: to})
		if err != nil {
			return nil, fmt.Errorf("failed to list attendance for department %s: %w", code, err)
		}

		present := make(map[string]struct{})
		var total time.Duration
		complete := 0
		for _, row := range rows {
			if row.CheckIn != nil {
				present[row.EmployeeID] = struct{}{}
			}
			if worked, ok := row.Worked(); ok {
				total += worked
				complete++
			}
		}

		summary := report.DepartmentSummary{
			DepartmentCode:   d.Code,
			DepartmentName:   d.Name,
			TotalEmployees:   len(employees),
			PresentEmployees: len(present),
		}
		if complete > 0 {
			summary.AverageHours = roundHours(total.Hours() / float64(complete))
		}
		out = append(out, summary)
	}
	return out, nil
}

// EmployeeSummary implements report.ReportService.
func (s *ReportServiceImpl) EmployeeSummary(ctx context.Context, req report.RangeRequest) (report.EmployeeSummary, error) {
	if err := req.Validate(); err != nil {
		return report.EmployeeSummary{}, err
	}
	from, to := req.Range()

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return report.EmployeeSummary{}, err
	}
	rows, err := s.recordRepo.ListRange(ctx, attendance.RangeFilter{EmployeeID: &emp.ID, From: from, To: to})
	if err != nil {
		return report.EmployeeSummary{}, err
	}

	summary := report.EmployeeSummary{
		EmployeeID:     emp.ID,
		EmployeeName:   emp.Name,
		DepartmentCode: emp.DepartmentCode,
		From:           from,
		To:             to,
	}

	var total time.Duration
	complete := 0
	for _, row := range rows {
		if row.CheckIn != nil {
			summary.DaysPresent++
			if summary.EarliestCheckIn == nil || *row.CheckIn < *summary.EarliestCheckIn {
				in := *row.CheckIn
				summary.EarliestCheckIn = &in
			}
		}
		if row.CheckOut != nil {
			if summary.LatestCheckOut == nil || *row.CheckOut > *summary.LatestCheckOut {
				out := *row.CheckOut
				summary.LatestCheckOut = &out
			}
		}
		if worked, ok := row.Worked(); ok {
			total += worked
			complete++
		}
	}
	if complete > 0 {
		summary.AverageHours = roundHours(total.Hours() / float64(complete))
	}
	return summary, nil
}
