package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type statusTypeRepository struct {
	db *database.SQLiteDB
}

func NewStatusTypeRepository(db *database.SQLiteDB) status.StatusTypeRepository {
	return &statusTypeRepository{db: db}
}

const statusTypeColumns = `id, name, requires_approval, max_days, created_at`

func scanStatusType(row interface{ Scan(...any) error }) (status.StatusType, error) {
	var (
		s         status.StatusType
		maxDays   sql.NullInt64
		createdAt int64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.RequiresApproval, &maxDays, &createdAt); err != nil {
		return status.StatusType{}, err
	}
	s.MaxDays = fromNullInt(maxDays)
	s.CreatedAt = fromMillis(createdAt)
	return s, nil
}

// Create implements status.StatusTypeRepository.
func (r *statusTypeRepository) Create(ctx context.Context, s status.StatusType) (status.StatusType, error) {
	q := getQuerier(ctx, r.db)

	s.CreatedAt = nowOr(s.CreatedAt)
	_, err := q.ExecContext(ctx,
		`INSERT INTO status_types (`+statusTypeColumns+`) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.RequiresApproval, s.MaxDays, toMillis(s.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return status.StatusType{}, status.ErrStatusTypeNameExists
		}
		return status.StatusType{}, fmt.Errorf("failed to create status type: %w", err)
	}
	return s, nil
}

// GetByID implements status.StatusTypeRepository.
func (r *statusTypeRepository) GetByID(ctx context.Context, id string) (status.StatusType, error) {
	q := getQuerier(ctx, r.db)

	s, err := scanStatusType(q.QueryRowContext(ctx, `SELECT `+statusTypeColumns+` FROM status_types WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return status.StatusType{}, status.ErrStatusTypeNotFound
		}
		return status.StatusType{}, fmt.Errorf("failed to get status type: %w", err)
	}
	return s, nil
}

// List implements status.StatusTypeRepository.
func (r *statusTypeRepository) List(ctx context.Context) ([]status.StatusType, error) {
	q := getQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, `SELECT `+statusTypeColumns+` FROM status_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list status types: %w", err)
	}
	defer rows.Close()

	var out []status.StatusType
	for rows.Next() {
		s, err := scanStatusType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status type: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update implements status.StatusTypeRepository.
func (r *statusTypeRepository) Update(ctx context.Context, s status.StatusType) error {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx,
		`UPDATE status_types SET name = ?, requires_approval = ?, max_days = ? WHERE id = ?`,
		s.Name, s.RequiresApproval, s.MaxDays, s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return status.ErrStatusTypeNameExists
		}
		return fmt.Errorf("failed to update status type: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return status.ErrStatusTypeNotFound
	}
	return nil
}

// Delete implements status.StatusTypeRepository.
func (r *statusTypeRepository) Delete(ctx context.Context, id string) error {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `DELETE FROM status_types WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return status.ErrStatusTypeInUse
		}
		return fmt.Errorf("failed to delete status type: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return status.ErrStatusTypeNotFound
	}
	return nil
}

type statusAssignmentRepository struct {
	db *database.SQLiteDB
}

func NewStatusAssignmentRepository(db *database.SQLiteDB) status.AssignmentRepository {
	return &statusAssignmentRepository{db: db}
}

const assignedStatusSelect = `
	SELECT a.id, a.employee_id, a.status_type_id, a.start_date, a.end_date, a.notes,
	       a.state, a.approved_by, a.decided_at, a.decision_note, a.created_at,
	       t.name, t.max_days, e.name, e.department_code
	FROM status_assignments a
	JOIN status_types t ON t.id = a.status_type_id
	JOIN employees e ON e.id = a.employee_id`

func scanAssignedStatus(row interface{ Scan(...any) error }) (status.AssignedStatus, error) {
	var (
		a                        status.AssignedStatus
		startDate, state         string
		endDate, notes           sql.NullString
		approvedBy, decisionNote sql.NullString
		decidedAt, maxDays       sql.NullInt64
		createdAt                int64
	)
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.StatusTypeID, &startDate, &endDate, &notes,
		&state, &approvedBy, &decidedAt, &decisionNote, &createdAt,
		&a.TypeName, &maxDays, &a.EmployeeName, &a.DepartmentCode,
	)
	if err != nil {
		return status.AssignedStatus{}, err
	}
	if a.StartDate, err = fromDate(startDate); err != nil {
		return status.AssignedStatus{}, err
	}
	if a.EndDate, err = fromNullDate(endDate); err != nil {
		return status.AssignedStatus{}, err
	}
	a.Notes = fromNullString(notes)
	a.State = status.ApprovalState(state)
	a.ApprovedBy = fromNullString(approvedBy)
	a.DecidedAt = fromNullMillis(decidedAt)
	a.DecisionNote = fromNullString(decisionNote)
	a.CreatedAt = fromMillis(createdAt)
	a.MaxDays = fromNullInt(maxDays)
	a.ExceedsMaxDays = status.ExceedsCap(a.Span(), a.MaxDays)
	return a, nil
}

func (r *statusAssignmentRepository) query(ctx context.Context, query string, args ...any) ([]status.AssignedStatus, error) {
	q := getQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list status assignments: %w", err)
	}
	defer rows.Close()

	var out []status.AssignedStatus
	for rows.Next() {
		a, err := scanAssignedStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan status assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create implements status.AssignmentRepository.
func (r *statusAssignmentRepository) Create(ctx context.Context, a status.Assignment) (status.Assignment, error) {
	q := getQuerier(ctx, r.db)

	a.CreatedAt = nowOr(a.CreatedAt)
	_, err := q.ExecContext(ctx,
		`INSERT INTO status_assignments (
		   id, employee_id, status_type_id, start_date, end_date, notes,
		   state, approved_by, decided_at, decision_note, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EmployeeID, a.StatusTypeID, toDate(a.StartDate), nullDate(a.EndDate), a.Notes,
		string(a.State), a.ApprovedBy, nullMillis(a.DecidedAt), a.DecisionNote, toMillis(a.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return status.Assignment{}, status.ErrStatusTypeNotFound
		}
		return status.Assignment{}, fmt.Errorf("failed to create status assignment: %w", err)
	}
	return a, nil
}

// GetByID implements status.AssignmentRepository.
func (r *statusAssignmentRepository) GetByID(ctx context.Context, id string) (status.AssignedStatus, error) {
	q := getQuerier(ctx, r.db)

	a, err := scanAssignedStatus(q.QueryRowContext(ctx, assignedStatusSelect+` WHERE a.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return status.AssignedStatus{}, status.ErrAssignmentNotFound
		}
		return status.AssignedStatus{}, fmt.Errorf("failed to get status assignment: %w", err)
	}
	return a, nil
}

// ListCovering implements status.AssignmentRepository.
func (r *statusAssignmentRepository) ListCovering(ctx context.Context, employeeID string, date time.Time) ([]status.AssignedStatus, error) {
	day := toDate(date)
	return r.query(ctx,
		assignedStatusSelect+`
		WHERE a.employee_id = ?
		  AND a.state <> 'rejected'
		  AND a.start_date <= ?
		  AND (a.end_date IS NULL OR a.end_date >= ?)`,
		employeeID, day, day,
	)
}

// List implements status.AssignmentRepository.
func (r *statusAssignmentRepository) List(ctx context.Context, filter status.AssignmentFilter) ([]status.AssignedStatus, error) {
	var (
		where []string
		args  []any
	)
	if filter.EmployeeID != nil {
		where = append(where, `a.employee_id = ?`)
		args = append(args, *filter.EmployeeID)
	}
	if filter.DepartmentCode != nil {
		where = append(where, `e.department_code = ?`)
		args = append(args, *filter.DepartmentCode)
	}
	if filter.State != nil {
		where = append(where, `a.state = ?`)
		args = append(args, string(*filter.State))
	}
	if filter.To != nil {
		where = append(where, `a.start_date <= ?`)
		args = append(args, toDate(*filter.To))
	}
	if filter.From != nil {
		where = append(where, `(a.end_date IS NULL OR a.end_date >= ?)`)
		args = append(args, toDate(*filter.From))
	}
	if filter.ActiveOn != nil {
		day := toDate(*filter.ActiveOn)
		where = append(where, `a.start_date <= ? AND (a.end_date IS NULL OR a.end_date >= ?)`)
		args = append(args, day, day)
	}

	query := assignedStatusSelect
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY a.start_date DESC, a.created_at DESC, a.id DESC`
	return r.query(ctx, query, args...)
}

// Decide implements status.AssignmentRepository.
func (r *statusAssignmentRepository) Decide(ctx context.Context, id string, state status.ApprovalState, approverID *string, note *string, at time.Time) (bool, error) {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx,
		`UPDATE status_assignments
		 SET state = ?, approved_by = ?, decision_note = ?, decided_at = ?
		 WHERE id = ? AND state = 'pending'`,
		string(state), approverID, note, toMillis(at), id,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, status.ErrApproverNotEmployee
		}
		return false, fmt.Errorf("failed to decide status assignment: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
