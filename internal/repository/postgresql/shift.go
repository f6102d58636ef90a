package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type shiftTypeRepository struct {
	db *database.DB
}

func NewShiftTypeRepository(db *database.DB) shift.ShiftTypeRepository {
	return &shiftTypeRepository{db: db}
}

const shiftTypeColumns = `id, name, start_time, end_time, break_minutes, flexible_minutes, overtime_allowed, created_at`

func scanShiftType(row pgx.Row) (shift.ShiftType, error) {
	var (
		s          shift.ShiftType
		start, end pgtype.Time
	)
	if err := row.Scan(&s.ID, &s.Name, &start, &end, &s.BreakMinutes, &s.FlexibleMinutes, &s.OvertimeAllowed, &s.CreatedAt); err != nil {
		return shift.ShiftType{}, err
	}
	s.StartTime = fromPgTime(start)
	s.EndTime = fromPgTime(end)
	return s, nil
}

// Create implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) Create(ctx context.Context, s shift.ShiftType) (shift.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	s.CreatedAt = nowOr(s.CreatedAt)
	_, err := q.Exec(ctx,
		`INSERT INTO shift_types (`+shiftTypeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.Name, toPgTime(s.StartTime), toPgTime(s.EndTime), s.BreakMinutes, s.FlexibleMinutes, s.OvertimeAllowed, s.CreatedAt,
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
	q := GetQuerier(ctx, r.db)

	s, err := scanShiftType(q.QueryRow(ctx, `SELECT `+shiftTypeColumns+` FROM shift_types WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.ShiftType{}, shift.ErrShiftTypeNotFound
		}
		return shift.ShiftType{}, fmt.Errorf("failed to get shift type: %w", err)
	}
	return s, nil
}

// List implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) List(ctx context.Context) ([]shift.ShiftType, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+shiftTypeColumns+` FROM shift_types ORDER BY name`)
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
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE shift_types
		 SET name = $1, start_time = $2, end_time = $3, break_minutes = $4, flexible_minutes = $5, overtime_allowed = $6
		 WHERE id = $7`,
		s.Name, toPgTime(s.StartTime), toPgTime(s.EndTime), s.BreakMinutes, s.FlexibleMinutes, s.OvertimeAllowed, s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shift.ErrShiftTypeNameExists
		}
		return fmt.Errorf("failed to update shift type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftTypeNotFound
	}
	return nil
}

// Delete implements shift.ShiftTypeRepository.
func (r *shiftTypeRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shift_types WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shift.ErrShiftTypeInUse
		}
		return fmt.Errorf("failed to delete shift type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftTypeNotFound
	}
	return nil
}

type shiftAssignmentRepository struct {
	db *database.DB
}

func NewShiftAssignmentRepository(db *database.DB) shift.AssignmentRepository {
	return &shiftAssignmentRepository{db: db}
}

const assignedShiftSelect = `
	SELECT a.id, a.employee_id, a.shift_type_id, a.start_date, a.end_date, a.notes, a.created_at,
	       t.id, t.name, t.start_time, t.end_time, t.break_minutes, t.flexible_minutes, t.overtime_allowed, t.created_at
	FROM shift_assignments a
	JOIN shift_types t ON t.id = a.shift_type_id`

func (r *shiftAssignmentRepository) query(ctx context.Context, query string, args ...interface{}) ([]shift.AssignedShift, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shift assignments: %w", err)
	}
	defer rows.Close()

	var out []shift.AssignedShift
	for rows.Next() {
		var (
			a                  shift.AssignedShift
			startDate, endDate pgtype.Date
			tStart, tEnd       pgtype.Time
		)
		err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.ShiftTypeID, &startDate, &endDate, &a.Notes, &a.CreatedAt,
			&a.Shift.ID, &a.Shift.Name, &tStart, &tEnd, &a.Shift.BreakMinutes, &a.Shift.FlexibleMinutes, &a.Shift.OvertimeAllowed, &a.Shift.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift assignment: %w", err)
		}
		a.StartDate = fromPgDate(startDate)
		a.EndDate = fromPgNullDate(endDate)
		a.Shift.StartTime = fromPgTime(tStart)
		a.Shift.EndTime = fromPgTime(tEnd)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create implements shift.AssignmentRepository.
func (r *shiftAssignmentRepository) Create(ctx context.Context, a shift.Assignment) (shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	a.CreatedAt = nowOr(a.CreatedAt)
	_, err := q.Exec(ctx,
		`INSERT INTO shift_assignments (id, employee_id, shift_type_id, start_date, end_date, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.EmployeeID, a.ShiftTypeID, toPgDate(a.StartDate), toPgNullDate(a.EndDate), a.Notes, a.CreatedAt,
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
	return r.query(ctx,
		assignedShiftSelect+`
		WHERE a.employee_id = $1
		  AND a.start_date <= $2
		  AND (a.end_date IS NULL OR a.end_date >= $2)`,
		employeeID, toPgDate(date),
	)
}

// ListByEmployee implements shift.AssignmentRepository.
func (r *shiftAssignmentRepository) ListByEmployee(ctx context.Context, employeeID string, from, to *time.Time) ([]shift.AssignedShift, error) {
	return r.query(ctx,
		assignedShiftSelect+`
		WHERE a.employee_id = $1
		  AND ($2::date IS NULL OR a.start_date <= $2)
		  AND ($3::date IS NULL OR a.end_date IS NULL OR a.end_date >= $3)
		ORDER BY a.start_date DESC, a.created_at DESC, a.id DESC`,
		employeeID, toPgNullDate(to), toPgNullDate(from),
	)
}
