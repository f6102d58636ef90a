package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
)

type shiftTypeRepository struct {
	db *database.SQLiteDB
}

func NewShiftTypeRepository(db *database.SQLiteDB) shift.ShiftTypeRepository {
	return &shiftTypeRepository{db: db}
}

const shiftTypeColumns = `id, name, start_time, end_time, break_minutes, flexible_minutes, overtime_allowed, created_at`

func scanShiftType(row interface{ Scan(...any) error }) (shift.ShiftType, error) {
	var (
		s          shift.ShiftType
		start, end string
		createdAt  int64
	)
	if err := row.Scan(&s.ID, &s.Name, &start, &end, &s.BreakMinutes, &s.FlexibleMinutes, &s.OvertimeAllowed, &createdAt); err != nil {
		return shift.ShiftType{}, err
	}
	var err error
	if s.StartTime, err = timeofday.Parse(start); err != nil {
		return shift.ShiftType{}, err
	}
	if s.EndTime, err = timeofday.Parse(end); err != nil {
		return shift.ShiftType{}, err
	}
	s.CreatedAt = fromMillis(createdAt)
	return s, nil
}

// Create implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) Create(ctx context.Context, s shift.ShiftType) (shift.ShiftType, error) {
	q := getQuerier(ctx, r.db)

	s.CreatedAt = nowOr(s.CreatedAt)
	_, err := q.ExecContext(ctx,
		`INSERT INTO shift_types (`+shiftTypeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.StartTime.String(), s.EndTime.String(), s.BreakMinutes, s.FlexibleMinutes, s.OvertimeAllowed, toMillis(s.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shift.ShiftType{}, shift.ErrShiftTypeNameExists
		}
		return shift.ShiftType{}, fmt.Errorf("failed to create shift type: %w", err)
	}
	return s, nil
}

// GetByID implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) GetByID(ctx context.Context, id string) (shift.ShiftType, error) {
	q := getQuerier(ctx, r.db)

	s, err := scanShiftType(q.QueryRowContext(ctx, `SELECT `+shiftTypeColumns+` FROM shift_types WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shift.ShiftType{}, shift.ErrShiftTypeNotFound
		}
		return shift.ShiftType{}, fmt.Errorf("failed to get shift type: %w", err)
	}
	return s, nil
}

// List implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) List(ctx context.Context) ([]shift.ShiftType, error) {
	q := getQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, `SELECT `+shiftTypeColumns+` FROM shift_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift types: %w", err)
	}
	defer rows.Close()

	var out []shift.ShiftType
	for rows.Next() {
		s, err := scanShiftType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift type: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) Update(ctx context.Context, s shift.ShiftType) error {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx,
		`UPDATE shift_types
		 SET name = ?, start_time = ?, end_time = ?, break_minutes = ?, flexible_minutes = ?, overtime_allowed = ?
		 WHERE id = ?`,
		s.Name, s.StartTime.String(), s.EndTime.String(), s.BreakMinutes, s.FlexibleMinutes, s.OvertimeAllowed, s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shift.ErrShiftTypeNameExists
		}
		return fmt.Errorf("failed to update shift type: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return shift.ErrShiftTypeNotFound
	}
	return nil
}

// Delete implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) Delete(ctx context.Context, id string) error {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `DELETE FROM shift_types WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shift.ErrShiftTypeInUse
		}
		return fmt.Errorf("failed to delete shift type: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return shift.ErrShiftTypeNotFound
	}
	return nil
}

type shiftAssignmentRepository struct {
	db *database.SQLiteDB
}

func NewShiftAssignmentRepository(db *database.SQLiteDB) shift.AssignmentRepository {
	return &shiftAssignmentRepository{db: db}
}

const assignedShiftSelect = `
	SELECT a.id, a.employee_id, a.shift_type_id, a.start_date, a.end_date, a.notes, a.created_at,
	       t.id, t.name, t.start_time, t.end_time, t.break_minutes, t.flexible_minutes, t.overtime_allowed, t.created_at
	FROM shift_assignments a
	JOIN shift_types t ON t.id = a.shift_type_id`

func scanAssignedShift(rows *sql.Rows) (shift.AssignedShift, error) {
	var (
		a              shift.AssignedShift
		startDate      string
		endDate, notes sql.NullString
		createdAt      int64
		tStart, tEnd   string
		typeCreatedAt  int64
	)
	err := rows.Scan(
		&a.ID, &a.EmployeeID, &a.ShiftTypeID, &startDate, &endDate, &notes, &createdAt,
		&a.Shift.ID, &a.Shift.Name, &tStart, &tEnd, &a.Shift.BreakMinutes, &a.Shift.FlexibleMinutes, &a.Shift.OvertimeAllowed, &typeCreatedAt,
	)
	if err != nil {
		return shift.AssignedShift{}, err
	}
	if a.StartDate, err = fromDate(startDate); err != nil {
		return shift.AssignedShift{}, err
	}
	if a.EndDate, err = fromNullDate(endDate); err != nil {
		return shift.AssignedShift{}, err
	}
	if a.Shift.StartTime, err = timeofday.Parse(tStart); err != nil {
		return shift.AssignedShift{}, err
	}
	if a.Shift.EndTime, err = timeofday.Parse(tEnd); err != nil {
		return shift.AssignedShift{}, err
	}
	a.Notes = fromNullString(notes)
	a.CreatedAt = fromMillis(createdAt)
	a.Shift.CreatedAt = fromMillis(typeCreatedAt)
	return a, nil
}

func (r *shiftAssignmentRepository) query(ctx context.Context, query string, args ...any) ([]shift.AssignedShift, error) {
	q := getQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift assignments: %w", err)
	}
	defer rows.Close()

	var out []shift.AssignedShift
	for rows.Next() {
		a, err := scanAssignedShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create implements shift.AssignmentRepository.
func (r *shiftAssignmentRepository) Create(ctx context.Context, a shift.Assignment) (shift.Assignment, error) {
	q := getQuerier(ctx, r.db)

	a.CreatedAt = nowOr(a.CreatedAt)
	_, err := q.ExecContext(ctx,
		`INSERT INTO shift_assignments (id, employee_id, shift_type_id, start_date, end_date, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EmployeeID, a.ShiftTypeID, toDate(a.StartDate), nullDate(a.EndDate), a.Notes, toMillis(a.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shift.Assignment{}, shift.ErrShiftTypeNotFound
		}
		return shift.Assignment{}, fmt.Errorf("failed to create shift assignment: %w", err)
	}
	return a, nil
}

// ListCovering implements shift.AssignmentRepository.
func (r *shiftAssignmentRepository) ListCovering(ctx context.Context, employeeID string, date time.Time) ([]shift.AssignedShift, error) {
	day := toDate(date)
	return r.query(ctx,
		assignedShiftSelect+`
		WHERE a.employee_id = ?
		  AND a.start_date <= ?
		  AND (a.end_date IS NULL OR a.end_date >= ?)`,
		employeeID, day, day,
	)
}

// ListByEmployee implements shift.AssignmentRepository.
func (r *shiftAssignmentRepository) ListByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]shift.AssignedShift, error) {
	query := assignedShiftSelect + ` WHERE a.employee_id = ?`
	args := []any{employeeID}
	if to != nil {
		query += ` AND a.start_date <= ?`
		args = append(args, toDate(*to))
	}
	if from != nil {
		query += ` AND (a.end_date IS NULL OR a.end_date >= ?)`
		args = append(args, toDate(*from))
	}
	query += ` ORDER BY a.start_date DESC, a.created_at DESC, a.id DESC`
	return r.query(ctx, query, args...)
}
