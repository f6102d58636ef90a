package overtime

import (
	"cmp"
	"slices"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

// Policy controls how under-worked days count towards the aggregate.
type Policy struct {
	// ClampNegative counts days worked shorter than scheduled as zero
	// instead of letting them reduce the total.
	ClampNegative bool
}

// Day is the overtime contribution of one complete attendance record.
type Day struct {
	EmployeeID     string         `json:"employee_id"`
	EmployeeName   string         `json:"employee_name"`
	DepartmentCode string         `json:"department_code"`
	Date           time.Time      `json:"date"`
	ShiftName      string         `json:"shift_name"`
	CheckIn        timeofday.Time `json:"check_in"`
	CheckOut       timeofday.Time `json:"check_out"`
	WorkedHours    float64        `json:"worked_hours"`
	ScheduledHours float64        `json:"scheduled_hours"`
	OvertimeHours  float64        `json:"overtime_hours"`
}

// Summary aggregates the overtime days of one employee.
type Summary struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	DepartmentCode string  `json:"department_code"`
	DaysCount      int     `json:"days_count"`
	TotalHours     float64 `json:"total_hours"`
	AverageHours   float64 `json:"average_hours"`
}

// Compute returns worked, scheduled and overtime durations for one day.
// Both the punch interval and the shift interval wrap past midnight when
// their end is earlier than their start.
func Compute(checkIn, checkOut, shiftStart, shiftEnd timeofday.Time, policy Policy) (worked, scheduled, overtime time.Duration) {
	worked = timeofday.Span(checkIn, checkOut)
	scheduled = timeofday.Span(shiftStart, shiftEnd)
	overtime = worked - scheduled
	if policy.ClampNegative && overtime < 0 {
		overtime = 0
	}
	return worked, scheduled, overtime
}

// Aggregate sums days per employee. Only employees with a strictly positive
// total are returned, largest total first.
func Aggregate(days []Day) []Summary {
	index := make(map[string]int)
	var out []Summary
	for _, d := range days {
		i, ok := index[d.EmployeeID]
		if !ok {
			i = len(out)
			index[d.EmployeeID] = i
			out = append(out, Summary{
				EmployeeID:     d.EmployeeID,
				EmployeeName:   d.EmployeeName,
				DepartmentCode: d.DepartmentCode,
			})
		}
		out[i].DaysCount++
		out[i].TotalHours += d.OvertimeHours
	}

	result := out[:0]
	for _, s := range out {
		if s.TotalHours <= 0 {
			continue
		}
		s.AverageHours = s.TotalHours / float64(s.DaysCount)
		result = append(result, s)
	}

	slices.SortStableFunc(result, func(a, b Summary) int {
		if c := cmp.Compare(b.TotalHours, a.TotalHours); c != 0 {
			return c
		}
		return cmp.Compare(a.EmployeeID, b.EmployeeID)
	})
	return result
}
