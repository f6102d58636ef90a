package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRepository{db: db}
}

const recordColumns = `r.id, r.employee_id, r.date, r.check_in, r.check_out, r.source, r.device_id, r.status, r.created_at, r.updated_at`

// recordScan holds the scan targets of recordColumns until decode.
type recordScan struct {
	date              pgtype.Date
	checkIn, checkOut pgtype.Time
	source            string
}

func (s *recordScan) dest(rec *attendance.Record) []interface{} {
	return []interface{}{&rec.ID, &rec.EmployeeID, &s.date, &s.checkIn, &s.checkOut, &s.source, &rec.DeviceID, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt}
}

func (s *recordScan) decode(rec *attendance.Record) {
	rec.Date = fromPgDate(s.date)
	rec.CheckIn = fromPgNullTime(s.checkIn)
	rec.CheckOut = fromPgNullTime(s.checkOut)
	rec.Source = attendance.Source(s.source)
}

// GetByEmployeeAndDate implements attendance.RecordRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	var (
		rec attendance.Record
		s   recordScan
	)
	err := q.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM attendance_records r WHERE r.employee_id = $1 AND r.date = $2`,
		employeeID, toPgDate(date),
	).Scan(s.dest(&rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	s.decode(&rec)
	return &rec, nil
}

// Create implements attendance.RecordRepository.
func (r *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	rec.CreatedAt = nowOr(rec.CreatedAt)
	rec.UpdatedAt = nowOr(rec.UpdatedAt)
	_, err := q.Exec(ctx,
		`INSERT INTO attendance_records (id, employee_id, date, check_in, check_out, source, device_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.EmployeeID, toPgDate(rec.Date), toPgNullTime(rec.CheckIn), toPgNullTime(rec.CheckOut),
		string(rec.Source), rec.DeviceID, rec.Status, rec.CreatedAt, rec.UpdatedAt,
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
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE attendance_records
		 SET check_in = $1, source = $2, device_id = $3, status = $4, updated_at = $5
		 WHERE id = $6 AND check_in IS NULL`,
		toPgTime(at), string(source), deviceID, attendance.StatusPresent, updatedAt, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set check-in: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetCheckOut implements attendance.RecordRepository.
func (r *attendanceRepository) SetCheckOut(ctx context.Context, id string, at timeofday.Time, source attendance.Source, deviceID *string, updatedAt time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE attendance_records
		 SET check_out = $1, source = $2, device_id = $3, updated_at = $4
		 WHERE id = $5 AND check_in IS NOT NULL AND check_out IS NULL`,
		toPgTime(at), string(source), deviceID, updatedAt, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set check-out: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *attendanceRepository) listRows(ctx context.Context, where []string, args []interface{}) ([]attendance.RecordRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + `, e.name, e.department_code
		FROM attendance_records r
		JOIN employees e ON e.id = r.employee_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY r.date, e.department_code, e.name, r.employee_id`

	rows, err := q.Query(ctx, query, args...)
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
		s.decode(&row.Record)
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListByDate implements attendance.RecordRepository.
func (r *attendanceRepository) ListByDate(ctx context.Context, date time.Time, departmentCode *string) ([]attendance.RecordRow, error) {
	where := []string{`r.date = $1`}
	args := []interface{}{toPgDate(date)}
	if departmentCode != nil {
		where = append(where, `e.department_code = $2`)
		args = append(args, *departmentCode)
	}
	return r.listRows(ctx, where, args)
}

// ListRange implements attendance.RecordRepository.
func (r *attendanceRepository) ListRange(ctx context.Context, filter attendance.RangeFilter) ([]attendance.RecordRow, error) {
	where := []string{`r.date >= $1`, `r.date <= $2`}
	args := []interface{}{toPgDate(filter.From), toPgDate(filter.To)}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		where = append(where, fmt.Sprintf(`r.employee_id = $%d`, len(args)))
	}
	if filter.DepartmentCode != nil {
		args = append(args, *filter.DepartmentCode)
		where = append(where, fmt.Sprintf(`e.department_code = $%d`, len(args)))
	}
	if filter.CompleteOnly {
		where = append(where, `r.check_in IS NOT NULL`, `r.check_out IS NOT NULL`)
	}
	return r.listRows(ctx, where, args)
}
