package overtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

func TestCompute_DayShift(t *testing.T) {
	worked, scheduled, ot := Compute(
		timeofday.New(8, 0, 0), timeofday.New(19, 0, 0),
		timeofday.New(8, 0, 0), timeofday.New(16, 0, 0),
		Policy{},
	)

	assert.Equal(t, 11*time.Hour, worked)
	assert.Equal(t, 8*time.Hour, scheduled)
	assert.Equal(t, 3*time.Hour, ot)
}

func TestCompute_NightShiftWrapsMidnight(t *testing.T) {
	worked, scheduled, ot := Compute(
		timeofday.New(22, 10, 0), timeofday.New(6, 5, 0),
		timeofday.New(22, 0, 0), timeofday.New(6, 0, 0),
		Policy{},
	)

	assert.InDelta(t, 7.9167, worked.Hours(), 0.001)
	assert.Equal(t, 8.0, scheduled.Hours())
	assert.Equal(t, -5*time.Minute, ot)
}

func TestCompute_ClampNegative(t *testing.T) {
	_, _, ot := Compute(
		timeofday.New(22, 10, 0), timeofday.New(6, 5, 0),
		timeofday.New(22, 0, 0), timeofday.New(6, 0, 0),
		Policy{ClampNegative: true},
	)

	assert.Equal(t, time.Duration(0), ot)
}

func TestAggregate(t *testing.T) {
	days := []Day{
		{EmployeeID: "20240001", OvertimeHours: 3},
		{EmployeeID: "20240002", OvertimeHours: -0.5},
		{EmployeeID: "20240001", OvertimeHours: -1},
		{EmployeeID: "20240003", OvertimeHours: 4},
		{EmployeeID: "20240004", OvertimeHours: 0},
	}

	got := Aggregate(days)

	if assert.Len(t, got, 2) {
		assert.Equal(t, "20240003", got[0].EmployeeID)
		assert.Equal(t, 1, got[0].DaysCount)
		assert.Equal(t, 4.0, got[0].TotalHours)

		assert.Equal(t, "20240001", got[1].EmployeeID)
		assert.Equal(t, 2, got[1].DaysCount)
		assert.Equal(t, 2.0, got[1].TotalHours)
		assert.Equal(t, 1.0, got[1].AverageHours)
	}
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

func TestRequestValidate(t *testing.T) {
	emp, dept := "20240001", "IT"

	ok := Request{From: "2024-01-01", To: "2024-01-31", EmployeeID: &emp}
	assert.NoError(t, ok.Validate())
	from, to := ok.Range()
	assert.Equal(t, "2024-01-01", from.Format("2006-01-02"))
	assert.Equal(t, "2024-01-31", to.Format("2006-01-02"))

	both := Request{From: "2024-01-01", To: "2024-01-31", EmployeeID: &emp, DepartmentCode: &dept}
	assert.Error(t, both.Validate())

	reversed := Request{From: "2024-02-01", To: "2024-01-31"}
	assert.Error(t, reversed.Validate())

	malformed := Request{From: "01/01/2024", To: "2024-01-31"}
	assert.Error(t, malformed.Validate())
}
