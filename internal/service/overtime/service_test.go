package overtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/overtime"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/service"
	"github.com/cmlabs-hris/attendance-engine/internal/service/servicetest"
)

func withShift(t *testing.T, env *servicetest.Env, employeeID, name, start, end string, overtimeAllowed bool) {
	t.Helper()
	ctx := context.Background()

	st, err := env.Services.Shift.CreateShiftType(ctx, servicetest.HR, shift.ShiftTypeRequest{
		Name:            name,
		StartTime:       servicetest.Ptr(servicetest.Clock(start)),
		EndTime:         servicetest.Ptr(servicetest.Clock(end)),
		OvertimeAllowed: overtimeAllowed,
	})
	require.NoError(t, err)
	_, err = env.Services.Shift.AssignShift(ctx, servicetest.HR, shift.AssignShiftRequest{
		EmployeeID: employeeID, ShiftTypeID: st.ID, StartDate: "2024-01-01",
	})
	require.NoError(t, err)
}

func work(t *testing.T, env *servicetest.Env, employeeID, in, out string) {
	t.Helper()
	ctx := context.Background()

	_, err := env.Services.Attendance.RecordCheckIn(ctx, attendance.Punch{EmployeeID: employeeID, Timestamp: servicetest.At(in)})
	require.NoError(t, err)
	_, err = env.Services.Attendance.RecordCheckOut(ctx, attendance.Punch{EmployeeID: employeeID, Timestamp: servicetest.At(out)})
	require.NoError(t, err)
}

func TestComputeOvertime_DayShift(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")
	withShift(t, env, emp.ID, "Day", "08:00", "16:00", true)
	work(t, env, emp.ID, "2024-02-01 08:00", "2024-02-01 19:00")

	summaries, err := env.Services.Overtime.ComputeOvertime(ctx, overtime.Request{From: "2024-02-01", To: "2024-02-29"})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, emp.ID, summaries[0].EmployeeID)
	assert.Equal(t, 1, summaries[0].DaysCount)
	assert.InDelta(t, 3.0, summaries[0].TotalHours, 1e-9)
	assert.InDelta(t, 3.0, summaries[0].AverageHours, 1e-9)
}

func TestOvertimeDays_NightShiftWrapIsNotClamped(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")
	withShift(t, env, emp.ID, "Night", "22:00", "06:00", true)
	work(t, env, emp.ID, "2024-02-01 22:10", "2024-02-02 06:05")

	days, err := env.Services.Overtime.OvertimeDays(ctx, overtime.Request{EmployeeID: &emp.ID, From: "2024-02-01", To: "2024-02-02"})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.InDelta(t, 7.9167, days[0].WorkedHours, 0.001)
	assert.InDelta(t, 8.0, days[0].ScheduledHours, 1e-9)
	assert.Less(t, days[0].OvertimeHours, 0.0)

	summaries, err := env.Services.Overtime.ComputeOvertime(ctx, overtime.Request{EmployeeID: &emp.ID, From: "2024-02-01", To: "2024-02-02"})
	require.NoError(t, err)
	assert.Empty(t, summaries, "only strictly positive totals are reported")
}

func TestComputeOvertime_ShortDayReducesTotalUnlessClamped(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name  string
		clamp bool
		want  float64
	}{
		{name: "unclamped", clamp: false, want: 1.0},
		{name: "clamped", clamp: true, want: 2.0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env := servicetest.New(t, func(o *service.Options) {
				o.OvertimePolicy = overtime.Policy{ClampNegative: tc.clamp}
			})
			emp := env.Employee(t, "Huda", "IT")
			withShift(t, env, emp.ID, "Day", "08:00", "16:00", true)
			work(t, env, emp.ID, "2024-02-01 08:00", "2024-02-01 18:00")
			work(t, env, emp.ID, "2024-02-02 08:00", "2024-02-02 15:00")

			summaries, err := env.Services.Overtime.ComputeOvertime(ctx, overtime.Request{From: "2024-02-01", To: "2024-02-02"})
			require.NoError(t, err)
			require.Len(t, summaries, 1)
			assert.Equal(t, 2, summaries[0].DaysCount)
			assert.InDelta(t, tc.want, summaries[0].TotalHours, 1e-9)
		})
	}
}

func TestComputeOvertime_SkipsDaysWithoutEligibleShift(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	noShift := env.Employee(t, "Huda", "IT")
	noOvertime := env.Employee(t, "Omar", "IT")
	withShift(t, env, noOvertime.ID, "Fixed", "08:00", "16:00", false)

	work(t, env, noShift.ID, "2024-02-01 08:00", "2024-02-01 20:00")
	work(t, env, noOvertime.ID, "2024-02-01 08:00", "2024-02-01 20:00")

	days, err := env.Services.Overtime.OvertimeDays(ctx, overtime.Request{From: "2024-02-01", To: "2024-02-01"})
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestComputeOvertime_Scope(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	it := env.Employee(t, "Huda", "IT")
	sales := env.Employee(t, "Omar", "SAL")
	withShift(t, env, it.ID, "Day", "08:00", "16:00", true)
	_, err := env.Services.Shift.AssignShift(ctx, servicetest.HR, shift.AssignShiftRequest{
		EmployeeID: sales.ID, ShiftTypeID: firstShiftTypeID(t, env), StartDate: "2024-01-01",
	})
	require.NoError(t, err)
	work(t, env, it.ID, "2024-02-01 08:00", "2024-02-01 18:00")
	work(t, env, sales.ID, "2024-02-01 08:00", "2024-02-01 17:00")

	dept := "SAL"
	summaries, err := env.Services.Overtime.ComputeOvertime(ctx, overtime.Request{DepartmentCode: &dept, From: "2024-02-01", To: "2024-02-01"})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, sales.ID, summaries[0].EmployeeID)

	all, err := env.Services.Overtime.ComputeOvertime(ctx, overtime.Request{From: "2024-02-01", To: "2024-02-01"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, it.ID, all[0].EmployeeID, "largest total first")

	missing := "NOPE"
	_, err = env.Services.Overtime.ComputeOvertime(ctx, overtime.Request{DepartmentCode: &missing, From: "2024-02-01", To: "2024-02-01"})
	assert.ErrorIs(t, err, employee.ErrDepartmentNotFound)

	unknown := "19990001"
	_, err = env.Services.Overtime.ComputeOvertime(ctx, overtime.Request{EmployeeID: &unknown, From: "2024-02-01", To: "2024-02-01"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func firstShiftTypeID(t *testing.T, env *servicetest.Env) string {
	t.Helper()
	types, err := env.Services.Shift.ListShiftTypes(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, types)
	return types[0].ID
}
