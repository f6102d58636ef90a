package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

type attendanceRepository struct {
	db *database.SQLiteDB
}

func NewAttendanceRepository(db *database.SQLiteDB) attendance.RecordRepository {
	return &attendanceRepository{db: db}
}

const recordColumns = `r.id, r.employee_id, r.date, r.check_in, r.check_out, r.source, r.device_id, r.status, r.created_at, r.updated_at`

// recordScan holds the scan targets of recordColumns until decode.
type recordScan struct {
	date, source             string
	checkIn, checkOut, devID sql.NullString
	createdAt, updatedAt     int64
}

func (s *recordScan) dest(rec *attendance.Record) []any {
	return []any{&rec.ID, &rec.EmployeeID, &s.date, &s.checkIn, &s.checkOut, &s.source, &s.devID, &rec.Status, &s.createdAt, &s.updatedAt}
}

func (s *recordScan) decode(rec *attendance.Record) error {
	var err error
	if rec.Date, err = fromDate(s.date); err != nil {
		return err
	}
	if rec.CheckIn, err = fromNullTimeOfDay(s.checkIn); err != nil {
		return err
	}
	if rec.CheckOut, err = fromNullTimeOfDay(s.checkOut); err != nil {
		return err
	}
	rec.Source = attendance.Source(s.source)
	rec.DeviceID = fromNullString(s.devID)
	rec.CreatedAt = fromMillis(s.createdAt)
	rec.UpdatedAt = fromMillis(s.updatedAt)
	return nil
}

// GetByEmployeeAndDate implements attendance.RecordRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := getQuerier(ctx, r.db)

	var (
		rec attendance.Record
		s   recordScan
	)
	err := q.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM attendance_records r WHERE r.employee_id = ? AND r.date = ?`,
		employeeID, toDate(date),
	).Scan(s.dest(&rec)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if err := s.decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode attendance record: %w", err)
	}
	return &rec, nil
}

// Create implements attendance.RecordRepository.
func (r *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := getQuerier(ctx, r.db)

	rec.CreatedAt = nowOr(rec.CreatedAt)
	rec.UpdatedAt = nowOr(rec.UpdatedAt)
	_, err := q.ExecContext(ctx,
		`INSERT INTO attendance_records (id, employee_id, date, check_in, check_out, source, device_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.EmployeeID, toDate(rec.Date), nullTimeOfDay(rec.CheckIn), nullTimeOfDay(rec.CheckOut),
		string(rec.Source), rec.DeviceID, rec.Status, toMillis(rec.CreatedAt), toMillis(rec.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	return rec, nil
}

// SetCheckIn implements attendance.RecordRepository.
func (r *attendanceRepository) SetCheckIn(ctx context.Context, id string, at timeofday.Time, source attendance.Source, deviceID *string, updatedAt time.Time) (bool, error) {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx,
		`UPDATE attendance_records
		 SET check_in = ?, source = ?, device_id = ?, status = ?, updated_at = ?
		 WHERE id = ? AND check_in IS NULL`,
		at.String(), string(source), deviceID, attendance.StatusPresent, toMillis(updatedAt), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set check-in: %w", err)
	}
	n, err := affected(res)
	return n == 1, err
}

// SetCheckOut implements attendance.RecordRepository.
func (r *attendanceRepository) SetCheckOut(ctx context.Context, id string, at timeofday.Time, source attendance.Source, deviceID *string, updatedAt time.Time) (bool, error) {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx,
		`UPDATE attendance_records
		 SET check_out = ?, source = ?, device_id = ?, updated_at = ?
		 WHERE id = ? AND check_in IS NOT NULL AND check_out IS NULL`,
		at.String(), string(source), deviceID, toMillis(updatedAt), id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set check-out: %w", err)
	}
	n, err := affected(res)
	return n == 1, err
}

func (r *attendanceRepository) listRows(ctx context.Context, where []string, args []any) ([]attendance.RecordRow, error) {
	q := getQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + `, e.name, e.department_code
		FROM attendance_records r
		JOIN employees e ON e.id = r.employee_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY r.date, e.department_code, e.name, r.employee_id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var out []attendance.RecordRow
	for rows.Next() {
		var (
			row attendance.RecordRow
			s   recordScan
		)
		dest := append(s.dest(&row.Record), &row.EmployeeName, &row.DepartmentCode)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		if err := s.decode(&row.Record); err != nil {
			return nil, fmt.Errorf("failed to decode attendance record: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListByDate implements attendance.RecordRepository.
func (r *attendanceRepository) ListByDate(ctx context.Context, date time.Time, departmentCode *string) ([]attendance.RecordRow, error) {
	where := []string{`r.date = ?`}
	args := []any{toDate(date)}
	if departmentCode != nil {
		where = append(where, `e.department_code = ?`)
		args = append(args, *departmentCode)
	}
	return r.listRows(ctx, where, args)
}

// ListRange implements attendance.RecordRepository.
func (r *attendanceRepository) ListRange(ctx context.Context, filter attendance.RangeFilter) ([]attendance.RecordRow, error) {
	where := []string{`r.date >= ?`, `r.date <= ?`}
	args := []any{toDate(filter.From), toDate(filter.To)}
	if filter.EmployeeID != nil {
		where = append(where, `r.employee_id = ?`)
		args = append(args, *filter.EmployeeID)
	}
	if filter.DepartmentCode != nil {
		where = append(where, `e.department_code = ?`)
		args = append(args, *filter.DepartmentCode)
	}
	if filter.CompleteOnly {
		where = append(where, `r.check_in IS NOT NULL`, `r.check_out IS NOT NULL`)
	}
	return r.listRows(ctx, where, args)
}
