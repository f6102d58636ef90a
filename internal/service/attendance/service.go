package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/i18n"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/keylock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

type AttendanceServiceImpl struct {
	transactor     database.Transactor
	locks          *keylock.Locker
	recordRepo     attendance.RecordRepository
	employeeRepo   employee.EmployeeRepository
	departmentRepo employee.DepartmentRepository
	shifts         shift.Resolver
	statuses       status.Resolver
	translator     *i18n.Translator
	loc            *time.Location
	now            func() time.Time
}

func NewAttendanceService(
	transactor database.Transactor,
	locks *keylock.Locker,
	recordRepo attendance.RecordRepository,
	employeeRepo employee.EmployeeRepository,
	departmentRepo employee.DepartmentRepository,
	shifts shift.Resolver,
	statuses status.Resolver,
	translator *i18n.Translator,
	loc *time.Location,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		transactor:     transactor,
		locks:          locks,
		recordRepo:     recordRepo,
		employeeRepo:   employeeRepo,
		departmentRepo: departmentRepo,
		shifts:         shifts,
		statuses:       statuses,
		translator:     translator,
		loc:            loc,
		now:            time.Now,
	}
}

// lockKey scopes the write lock to the employee. A check-out may close the
// previous day's record, so locking per day is not enough.
func lockKey(employeeID string) string {
	return "attendance:" + employeeID
}

func (s *AttendanceServiceImpl) ensureEmployee(ctx context.Context, employeeID string) error {
	exists, err := s.employeeRepo.Exists(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to check employee: %w", err)
	}
	if !exists {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func normalize(punch attendance.Punch) attendance.Punch {
	if !punch.Source.Valid() {
		punch.Source = attendance.SourceManual
	}
	if punch.Source == attendance.SourceManual {
		punch.DeviceID = nil
	}
	return punch
}

// RecordCheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordCheckIn(ctx context.Context, punch attendance.Punch) (attendance.Record, error) {
	punch = normalize(punch)
	date := interval.Date(punch.Timestamp)
	at := timeofday.Of(punch.Timestamp)

	unlock := s.locks.Lock(lockKey(punch.EmployeeID))
	defer unlock()

	var record attendance.Record
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureEmployee(ctx, punch.EmployeeID); err != nil {
			return err
		}

		existing, err := s.recordRepo.GetByEmployeeAndDate(ctx, punch.EmployeeID, date)
		if err != nil {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}

		now := s.now().UTC()
		if existing == nil {
			record, err = s.recordRepo.Create(ctx, attendance.Record{
				ID:         uuid.Must(uuid.NewV7()).String(),
				EmployeeID: punch.EmployeeID,
				Date:       date,
				CheckIn:    &at,
				Source:     punch.Source,
				DeviceID:   punch.DeviceID,
				Status:     attendance.StatusPresent,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
			return err
		}

		if existing.CheckIn != nil {
			return attendance.ErrAlreadyCheckedIn
		}
		ok, err := s.recordRepo.SetCheckIn(ctx, existing.ID, at, punch.Source, punch.DeviceID, now)
		if err != nil {
			return fmt.Errorf("failed to set check-in: %w", err)
		}
		if !ok {
			return attendance.ErrAlreadyCheckedIn
		}

		record = *existing
		record.CheckIn = &at
		record.Source = punch.Source
		record.DeviceID = punch.DeviceID
		record.Status = attendance.StatusPresent
		record.UpdatedAt = now
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	slog.Info("Check-in recorded",
		"employee_id", record.EmployeeID,
		"date", record.Date.Format(interval.DateLayout),
		"check_in", at.String(),
		"source", record.Source,
	)
	return record, nil
}

// openRecord returns the record a check-out on date at at should close: the
// day's own record, or the previous day's when that day's shift runs past
// midnight and at falls before its end plus the flexible tolerance.
func (s *AttendanceServiceImpl) openRecord(ctx context.Context, employeeID string, date time.Time, at timeofday.Time) (*attendance.Record, error) {
	today, err := s.recordRepo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if today != nil && today.CheckIn != nil {
		return today, nil
	}

	previousDate := date.AddDate(0, 0, -1)
	previous, err := s.recordRepo.GetByEmployeeAndDate(ctx, employeeID, previousDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if previous == nil || previous.CheckIn == nil || previous.CheckOut != nil {
		return today, nil
	}

	resolved, err := s.shifts.ResolveShift(ctx, employeeID, previousDate)
	if err != nil {
		return nil, err
	}
	if resolved == nil || !resolved.Shift.ClosesOvernight(at) {
		return today, nil
	}

	slog.Debug("Check-out attached to overnight record",
		"employee_id", employeeID,
		"record_date", previousDate.Format(interval.DateLayout),
		"shift", resolved.Shift.Name,
	)
	return previous, nil
}

// RecordCheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordCheckOut(ctx context.Context, punch attendance.Punch) (attendance.Record, error) {
	punch = normalize(punch)
	date := interval.Date(punch.Timestamp)
	at := timeofday.Of(punch.Timestamp)

	unlock := s.locks.Lock(lockKey(punch.EmployeeID))
	defer unlock()

	var record attendance.Record
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureEmployee(ctx, punch.EmployeeID); err != nil {
			return err
		}

		open, err := s.openRecord(ctx, punch.EmployeeID, date, at)
		if err != nil {
			return err
		}
		if open == nil || open.CheckIn == nil {
			return attendance.ErrNotCheckedIn
		}
		if open.CheckOut != nil {
			return attendance.ErrAlreadyCheckedOut
		}

		now := s.now().UTC()
		ok, err := s.recordRepo.SetCheckOut(ctx, open.ID, at, punch.Source, punch.DeviceID, now)
		if err != nil {
			return fmt.Errorf("failed to set check-out: %w", err)
		}
		if !ok {
			return attendance.ErrAlreadyCheckedOut
		}

		record = *open
		record.CheckOut = &at
		record.Source = punch.Source
		record.DeviceID = punch.DeviceID
		record.UpdatedAt = now
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	slog.Info("Check-out recorded",
		"employee_id", record.EmployeeID,
		"date", record.Date.Format(interval.DateLayout),
		"check_out", at.String(),
		"source", record.Source,
	)
	return record, nil
}

// RecordEvent implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecordEvent(ctx context.Context, event attendance.DeviceEvent) (attendance.Record, error) {
	if event.EventType != attendance.EventCheckIn && event.EventType != attendance.EventCheckOut {
		return attendance.Record{}, attendance.ErrUnknownEvent
	}
	punch, err := event.Punch(s.loc)
	if err != nil {
		return attendance.Record{}, err
	}

	if event.EventType == attendance.EventCheckIn {
		return s.RecordCheckIn(ctx, punch)
	}
	return s.RecordCheckOut(ctx, punch)
}

// GetRecord implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetRecord(ctx context.Context, employeeID string, date time.Time) (attendance.RecordView, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return attendance.RecordView{}, err
	}

	day := interval.Date(date)
	rows, err := s.recordRepo.ListRange(ctx, attendance.RangeFilter{
		EmployeeID: &employeeID,
		From:       day,
		To:         day,
	})
	if err != nil {
		return attendance.RecordView{}, err
	}
	if len(rows) == 0 {
		return attendance.RecordView{}, attendance.ErrRecordNotFound
	}
	return s.view(ctx, rows[0])
}

// GetRecordsForDate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetRecordsForDate(ctx context.Context, date time.Time, departmentCode *string) ([]attendance.RecordView, error) {
	if departmentCode != nil {
		if _, err := s.departmentRepo.GetByCode(ctx, *departmentCode); err != nil {
			return nil, err
		}
	}

	rows, err := s.recordRepo.ListByDate(ctx, interval.Date(date), departmentCode)
	if err != nil {
		return nil, err
	}

	views := make([]attendance.RecordView, 0, len(rows))
	for _, row := range rows {
		v, err := s.view(ctx, row)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// view annotates row with its resolved shift and status. Only an approved
// status replaces the present label.
func (s *AttendanceServiceImpl) view(ctx context.Context, row attendance.RecordRow) (attendance.RecordView, error) {
	v := attendance.RecordView{
		RecordRow:   row,
		StatusLabel: s.translator.T(ctx, i18n.StatusPresent),
	}

	resolvedShift, err := s.shifts.ResolveShift(ctx, row.EmployeeID, row.Date)
	if err != nil {
		return attendance.RecordView{}, err
	}
	if resolvedShift != nil {
		name := resolvedShift.Shift.Name
		v.ShiftName = &name
	}

	resolvedStatus, err := s.statuses.ResolveApprovedStatus(ctx, row.EmployeeID, row.Date)
	if err != nil {
		return attendance.RecordView{}, err
	}
	if resolvedStatus != nil {
		v.StatusLabel = resolvedStatus.TypeName
	}

	if worked, ok := row.Worked(); ok {
		hours := math.Round(worked.Hours()*100) / 100
		v.WorkedHours = &hours
	}
	return v, nil
}
