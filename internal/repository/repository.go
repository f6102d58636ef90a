// Package repository groups the storage implementations every backend provides.
package repository

import (
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/device"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

// Set is one backend's repositories sharing a single transactor.
type Set struct {
	Transactor        database.Transactor
	Employees         employee.EmployeeRepository
	Departments       employee.DepartmentRepository
	Transfers         employee.TransferRepository
	Overrides         rbac.OverrideRepository
	Roles             rbac.RoleRepository
	ShiftTypes        shift.ShiftTypeRepository
	ShiftAssignments  shift.AssignmentRepository
	StatusTypes       status.StatusTypeRepository
	StatusAssignments status.AssignmentRepository
	Attendance        attendance.RecordRepository
	Devices           device.DeviceRepository
}
