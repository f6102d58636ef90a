package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	// RecordCheckIn creates the day's record or fills its missing check-in.
	RecordCheckIn(ctx context.Context, punch Punch) (Record, error)

	// RecordCheckOut closes the day's record. A night-shift check-out after
	// midnight closes the previous day's record instead.
	RecordCheckOut(ctx context.Context, punch Punch) (Record, error)

	// RecordEvent dispatches a device event onto RecordCheckIn or RecordCheckOut.
	RecordEvent(ctx context.Context, event DeviceEvent) (Record, error)

	GetRecord(ctx context.Context, employeeID string, date time.Time) (RecordView, error)
	GetRecordsForDate(ctx context.Context, date time.Time, departmentCode *string) ([]RecordView, error)
}
