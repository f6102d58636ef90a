// Package service wires the domain services over one repository set.
package service

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/device"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/report"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/i18n"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/keylock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
	"github.com/cmlabs-hris/attendance-engine/internal/repository"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	deviceService "github.com/cmlabs-hris/attendance-engine/internal/service/device"
	employeeService "github.com/cmlabs-hris/attendance-engine/internal/service/employee"
	overtimeService "github.com/cmlabs-hris/attendance-engine/internal/service/overtime"
	rbacService "github.com/cmlabs-hris/attendance-engine/internal/service/rbac"
	reportService "github.com/cmlabs-hris/attendance-engine/internal/service/report"
	shiftService "github.com/cmlabs-hris/attendance-engine/internal/service/shift"
	statusService "github.com/cmlabs-hris/attendance-engine/internal/service/status"
)

type Options struct {
	Location       *time.Location
	Translator     *i18n.Translator
	OvertimePolicy overtime.Policy
	LateThreshold  timeofday.Time
	DeviceClient   device.Client
}

type Services struct {
	RBAC       rbac.Service
	Employee   employee.EmployeeService
	Shift      shift.ShiftService
	Status     status.StatusService
	Attendance attendance.AttendanceService
	Overtime   overtime.OvertimeService
	Report     report.ReportService
	Device     device.DeviceService
}

// New builds every service. All attendance writers share one lock table.
func New(repos repository.Set, opts Options) Services {
	locks := keylock.New()

	shifts := shiftService.NewShiftService(repos.ShiftTypes, repos.ShiftAssignments, repos.Employees, repos.Departments)
	statuses := statusService.NewStatusService(
		repos.Transactor,
		repos.StatusTypes,
		repos.StatusAssignments,
		repos.Employees,
		repos.Departments,
	)
	attendances := attendanceService.NewAttendanceService(
		repos.Transactor,
		locks,
		repos.Attendance,
		repos.Employees,
		repos.Departments,
		shifts,
		statuses,
		opts.Translator,
		opts.Location,
	)

	return Services{
		RBAC: rbacService.NewRBACService(repos.Transactor, repos.Roles, repos.Overrides, repos.Employees),
		Employee: employeeService.NewEmployeeService(
			repos.Transactor,
			locks,
			repos.Employees,
			repos.Departments,
			repos.Transfers,
			repos.Roles,
		),
		Shift:      shifts,
		Status:     statuses,
		Attendance: attendances,
		Overtime:   overtimeService.NewOvertimeService(repos.Attendance, repos.Employees, repos.Departments, shifts, opts.OvertimePolicy),
		Report:     reportService.NewReportService(repos.Attendance, repos.Employees, repos.Departments, shifts, opts.LateThreshold),
		Device:     deviceService.NewDeviceService(repos.Devices, opts.DeviceClient, attendances, opts.Location),
	}
}
