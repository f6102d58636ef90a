package attendance_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/i18n"
	"github.com/cmlabs-hris/attendance-engine/internal/service/servicetest"
)

func punch(employeeID, at string) attendance.Punch {
	return attendance.Punch{EmployeeID: employeeID, Timestamp: servicetest.At(at), Source: attendance.SourceManual}
}

func TestRecordCheckIn_DoubleCheckInConflicts(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	first, err := env.Services.Attendance.RecordCheckIn(ctx, punch(emp.ID, "2024-02-01 08:00"))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, first.Status)

	_, err = env.Services.Attendance.RecordCheckIn(ctx, punch(emp.ID, "2024-02-01 09:00"))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	assert.Equal(t, apperror.Conflict, apperror.KindOf(err))

	rec, err := env.Repos.Attendance.GetByEmployeeAndDate(ctx, emp.ID, servicetest.Day("2024-02-01"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, servicetest.Clock("08:00"), *rec.CheckIn)
}

func TestRecordCheckIn_UnknownEmployee(t *testing.T) {
	env := servicetest.New(t)

	_, err := env.Services.Attendance.RecordCheckIn(context.Background(), punch("19990001", "2024-02-01 08:00"))
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestRecordCheckOut(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	_, err := env.Services.Attendance.RecordCheckOut(ctx, punch(emp.ID, "2024-02-01 16:00"))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))

	_, err = env.Services.Attendance.RecordCheckIn(ctx, punch(emp.ID, "2024-02-01 08:00"))
	require.NoError(t, err)

	rec, err := env.Services.Attendance.RecordCheckOut(ctx, punch(emp.ID, "2024-02-01 16:30"))
	require.NoError(t, err)
	worked, ok := rec.Worked()
	require.True(t, ok)
	assert.Equal(t, 8.5, worked.Hours())

	_, err = env.Services.Attendance.RecordCheckOut(ctx, punch(emp.ID, "2024-02-01 17:00"))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	stored, err := env.Repos.Attendance.GetByEmployeeAndDate(ctx, emp.ID, servicetest.Day("2024-02-01"))
	require.NoError(t, err)
	assert.Equal(t, servicetest.Clock("16:30"), *stored.CheckOut)
}

func TestRecordCheckOut_OvernightShiftClosesPreviousDay(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	night, err := env.Services.Shift.CreateShiftType(ctx, servicetest.HR, shift.ShiftTypeRequest{
		Name:      "Night",
		StartTime: servicetest.Ptr(servicetest.Clock("22:00")),
		EndTime:   servicetest.Ptr(servicetest.Clock("06:00")),
	})
	require.NoError(t, err)
	_, err = env.Services.Shift.AssignShift(ctx, servicetest.HR, shift.AssignShiftRequest{
		EmployeeID: emp.ID, ShiftTypeID: night.ID, StartDate: "2024-01-01",
	})
	require.NoError(t, err)

	_, err = env.Services.Attendance.RecordCheckIn(ctx, punch(emp.ID, "2024-02-01 22:10"))
	require.NoError(t, err)

	rec, err := env.Services.Attendance.RecordCheckOut(ctx, punch(emp.ID, "2024-02-02 06:05"))
	require.NoError(t, err)
	assert.Equal(t, servicetest.Day("2024-02-01"), rec.Date)

	next, err := env.Repos.Attendance.GetByEmployeeAndDate(ctx, emp.ID, servicetest.Day("2024-02-02"))
	require.NoError(t, err)
	assert.Nil(t, next, "no record is created for the check-out day")
}

func TestRecordCheckOut_OvernightWindowEndsAfterTolerance(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	night, err := env.Services.Shift.CreateShiftType(ctx, servicetest.HR, shift.ShiftTypeRequest{
		Name:            "Night",
		StartTime:       servicetest.Ptr(servicetest.Clock("22:00")),
		EndTime:         servicetest.Ptr(servicetest.Clock("06:00")),
		FlexibleMinutes: 30,
	})
	require.NoError(t, err)
	_, err = env.Services.Shift.AssignShift(ctx, servicetest.HR, shift.AssignShiftRequest{
		EmployeeID: emp.ID, ShiftTypeID: night.ID, StartDate: "2024-01-01",
	})
	require.NoError(t, err)

	_, err = env.Services.Attendance.RecordCheckIn(ctx, punch(emp.ID, "2024-02-01 22:10"))
	require.NoError(t, err)

	_, err = env.Services.Attendance.RecordCheckOut(ctx, punch(emp.ID, "2024-02-02 21:00"))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn, "the next evening is outside the shift")

	rec, err := env.Services.Attendance.RecordCheckOut(ctx, punch(emp.ID, "2024-02-02 06:25"))
	require.NoError(t, err)
	assert.Equal(t, servicetest.Day("2024-02-01"), rec.Date)
}

func TestRecordCheckOut_DayShiftDoesNotReachBack(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	_, err := env.Services.Attendance.RecordCheckIn(ctx, punch(emp.ID, "2024-02-01 08:00"))
	require.NoError(t, err)

	_, err = env.Services.Attendance.RecordCheckOut(ctx, punch(emp.ID, "2024-02-02 06:00"))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestRecordCheckIn_ConcurrentWritersKeepOneRecord(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	const n = 10
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.Services.Attendance.RecordCheckIn(ctx, punch(emp.ID, "2024-02-01 08:00"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	}
	assert.Equal(t, 1, succeeded)

	rows, err := env.Repos.Attendance.ListByDate(ctx, servicetest.Day("2024-02-01"), nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRecordEvent(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	_, err := env.Services.Attendance.RecordEvent(ctx, attendance.DeviceEvent{
		EmployeeID: emp.ID, Timestamp: "2024-02-01 08:00:00", EventType: "door_open", DeviceID: "dev-1",
	})
	assert.ErrorIs(t, err, attendance.ErrUnknownEvent)
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))

	rec, err := env.Services.Attendance.RecordEvent(ctx, attendance.DeviceEvent{
		EmployeeID: emp.ID, Timestamp: "2024-02-01 08:00:00", EventType: attendance.EventCheckIn, DeviceID: "dev-1",
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.SourceDevice, rec.Source)
	require.NotNil(t, rec.DeviceID)
	assert.Equal(t, "dev-1", *rec.DeviceID)

	rec, err = env.Services.Attendance.RecordEvent(ctx, attendance.DeviceEvent{
		EmployeeID: emp.ID, Timestamp: "2024-02-01 17:00:00", EventType: attendance.EventCheckOut, DeviceID: "dev-2",
	})
	require.NoError(t, err)
	assert.Equal(t, servicetest.Clock("17:00"), *rec.CheckOut)
	assert.Equal(t, "dev-2", *rec.DeviceID)
}

func TestRecordViews_PendingRequestKeepsApprovedLabel(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	remote, err := env.Services.Status.CreateStatusType(ctx, servicetest.HR, status.StatusTypeRequest{
		Name: "Remote work", RequiresApproval: servicetest.Ptr(false),
	})
	require.NoError(t, err)
	leave, err := env.Services.Status.CreateStatusType(ctx, servicetest.HR, status.StatusTypeRequest{
		Name: "Annual leave", RequiresApproval: servicetest.Ptr(true),
	})
	require.NoError(t, err)

	_, err = env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: emp.ID, StatusTypeID: remote.ID, StartDate: "2024-02-01", EndDate: servicetest.Ptr("2024-02-29"),
	})
	require.NoError(t, err)
	pending, err := env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: emp.ID, StatusTypeID: leave.ID, StartDate: "2024-02-05", EndDate: servicetest.Ptr("2024-02-06"),
	})
	require.NoError(t, err)
	require.Equal(t, status.StatePending, pending.State)

	_, err = env.Services.Attendance.RecordCheckIn(ctx, punch(emp.ID, "2024-02-05 08:00"))
	require.NoError(t, err)

	view, err := env.Services.Attendance.GetRecord(ctx, emp.ID, servicetest.Day("2024-02-05"))
	require.NoError(t, err)
	assert.Equal(t, "Remote work", view.StatusLabel)

	_, err = env.Services.Status.ApproveStatusAssignment(ctx, pending.ID, servicetest.HR)
	require.NoError(t, err)

	view, err = env.Services.Attendance.GetRecord(ctx, emp.ID, servicetest.Day("2024-02-05"))
	require.NoError(t, err)
	assert.Equal(t, "Annual leave", view.StatusLabel)
}

func TestRecordViews(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	huda := env.Employee(t, "Huda", "IT")
	omar := env.Employee(t, "Omar", "SAL")

	remote, err := env.Services.Status.CreateStatusType(ctx, servicetest.HR, status.StatusTypeRequest{
		Name: "Remote work", RequiresApproval: servicetest.Ptr(false),
	})
	require.NoError(t, err)
	_, err = env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: omar.ID, StatusTypeID: remote.ID, StartDate: "2024-02-01", EndDate: servicetest.Ptr("2024-02-01"),
	})
	require.NoError(t, err)

	for _, id := range []string{huda.ID, omar.ID} {
		_, err := env.Services.Attendance.RecordCheckIn(ctx, punch(id, "2024-02-01 08:00"))
		require.NoError(t, err)
	}
	_, err = env.Services.Attendance.RecordCheckOut(ctx, punch(huda.ID, "2024-02-01 15:45"))
	require.NoError(t, err)

	view, err := env.Services.Attendance.GetRecord(ctx, huda.ID, servicetest.Day("2024-02-01"))
	require.NoError(t, err)
	assert.Equal(t, "حاضر", view.StatusLabel)
	assert.Equal(t, "Huda", view.EmployeeName)
	assert.Nil(t, view.ShiftName)
	require.NotNil(t, view.WorkedHours)
	assert.Equal(t, 7.75, *view.WorkedHours)

	english, err := env.Services.Attendance.GetRecord(i18n.WithLocale(ctx, "en"), huda.ID, servicetest.Day("2024-02-01"))
	require.NoError(t, err)
	assert.Equal(t, "Present", english.StatusLabel)

	_, err = env.Services.Attendance.GetRecord(ctx, huda.ID, servicetest.Day("2024-02-02"))
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)

	all, err := env.Services.Attendance.GetRecordsForDate(ctx, servicetest.Day("2024-02-01"), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	sales := "SAL"
	only, err := env.Services.Attendance.GetRecordsForDate(ctx, servicetest.Day("2024-02-01"), &sales)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "Remote work", only[0].StatusLabel)
	assert.Nil(t, only[0].WorkedHours)

	missing := "NOPE"
	_, err = env.Services.Attendance.GetRecordsForDate(ctx, servicetest.Day("2024-02-01"), &missing)
	assert.ErrorIs(t, err, employee.ErrDepartmentNotFound)
}

