package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

// RecordRepository stores attendance records. The store enforces one record per (employee, date).
type RecordRepository interface {
	// GetByEmployeeAndDate returns nil, nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// Create returns ErrAlreadyCheckedIn when a record for the same day already exists.
	Create(ctx context.Context, record Record) (Record, error)

	// SetCheckIn fills the check-in of a record that has none and reports whether it did.
	SetCheckIn(ctx context.Context, id string, at timeofday.Time, source Source, deviceID *string, updatedAt time.Time) (bool, error)

	// SetCheckOut fills the check-out of a checked-in record that has none and reports whether it did.
	SetCheckOut(ctx context.Context, id string, at timeofday.Time, source Source, deviceID *string, updatedAt time.Time) (bool, error)

	ListByDate(ctx context.Context, date time.Time, departmentCode *string) ([]RecordRow, error)
	ListRange(ctx context.Context, filter RangeFilter) ([]RecordRow, error)
}
