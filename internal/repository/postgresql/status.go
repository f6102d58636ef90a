package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type statusTypeRepository struct {
	db *database.DB
}

func NewStatusTypeRepository(db *database.DB) status.StatusTypeRepository {
	return &statusTypeRepository{db: db}
}

const statusTypeColumns = `id, name, requires_approval, max_days, created_at`

func scanStatusType(row pgx.Row) (status.StatusType, error) {
	var (
		s       status.StatusType
		maxDays pgtype.Int4
	)
	if err := row.Scan(&s.ID, &s.Name, &s.RequiresApproval, &maxDays, &s.CreatedAt); err != nil {
		return status.StatusType{}, err
	}
	s.MaxDays = fromNullInt4(maxDays)
	return s, nil
}

// Create implements status.StatusTypeRepository.
func (r *statusTypeRepository) Create(ctx context.Context, s status.StatusType) (status.StatusType, error) {
	q := GetQuerier(ctx, r.db)

	s.CreatedAt = nowOr(s.CreatedAt)
	_, err := q.Exec(ctx,
		`INSERT INTO status_types (`+statusTypeColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.Name, s.RequiresApproval, toNullInt4(s.MaxDays), s.CreatedAt,
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
	q := GetQuerier(ctx, r.db)

	s, err := scanStatusType(q.QueryRow(ctx, `SELECT `+statusTypeColumns+` FROM status_types WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return status.StatusType{}, status.ErrStatusTypeNotFound
		}
		return status.StatusType{}, fmt.Errorf("failed to get status type: %w", err)
	}
	return s, nil
}

// List implements status.StatusTypeRepository.
func (r *statusTypeRepository) List(ctx context.Context) ([]status.StatusType, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+statusTypeColumns+` FROM status_types ORDER BY name`)
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
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE status_types SET name = $1, requires_approval = $2, max_days = $3 WHERE id = $4`,
		s.Name, s.RequiresApproval, toNullInt4(s.MaxDays), s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return status.ErrStatusTypeNameExists
		}
		return fmt.Errorf("failed to update status type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return status.ErrStatusTypeNotFound
	}
	return nil
}

// Delete implements status.StatusTypeRepository.
func (r *statusTypeRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM status_types WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return status.ErrStatusTypeInUse
		}
		return fmt.Errorf("failed to delete status type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return status.ErrStatusTypeNotFound
	}
	return nil
}

type statusAssignmentRepository struct {
	db *database.DB
}

func NewStatusAssignmentRepository(db *database.DB) status.AssignmentRepository {
	return &statusAssignmentRepository{db: db}
}

const assignedStatusSelect = `
	SELECT a.id, a.employee_id, a.status_type_id, a.start_date, a.end_date, a.notes,
	       a.state, a.approved_by, a.decided_at, a.decision_note, a.created_at,
	       t.name, t.max_days, e.name, e.department_code
	FROM status_assignments a
	JOIN status_types t ON t.id = a.status_type_id
	JOIN employees e ON e.id = a.employee_id`

func scanAssignedStatus(row pgx.Row) (status.AssignedStatus, error) {
	var (
		a                  status.AssignedStatus
		startDate, endDate pgtype.Date
		state              string
		maxDays            pgtype.Int4
	)
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.StatusTypeID, &startDate, &endDate, &a.Notes,
		&state, &a.ApprovedBy, &a.DecidedAt, &a.DecisionNote, &a.CreatedAt,
		&a.TypeName, &maxDays, &a.EmployeeName, &a.DepartmentCode,
	)
	if err != nil {
		return status.AssignedStatus{}, err
	}
	a.StartDate = fromPgDate(startDate)
	a.EndDate = fromPgNullDate(endDate)
	a.State = status.ApprovalState(state)
	a.MaxDays = fromNullInt4(maxDays)
	a.ExceedsMaxDays = status.ExceedsCap(a.Span(), a.MaxDays)
	return a, nil
}

func (r *statusAssignmentRepository) query(ctx context.Context, query string, args ...interface{}) ([]status.AssignedStatus, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
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
	q := GetQuerier(ctx, r.db)

	a.CreatedAt = nowOr(a.CreatedAt)
	_, err := q.Exec(ctx,
		`INSERT INTO status_assignments (
		   id, employee_id, status_type_id, start_date, end_date, notes,
		   state, approved_by, decided_at, decision_note, created_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.EmployeeID, a.StatusTypeID, toPgDate(a.StartDate), toPgNullDate(a.EndDate), a.Notes,
		string(a.State), a.ApprovedBy, a.DecidedAt, a.DecisionNote, a.CreatedAt,
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
	q := GetQuerier(ctx, r.db)

	a, err := scanAssignedStatus(q.QueryRow(ctx, assignedStatusSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return status.AssignedStatus{}, status.ErrAssignmentNotFound
		}
		return status.AssignedStatus{}, fmt.Errorf("failed to get status assignment: %w", err)
	}
	return a, nil
}

// ListCovering implements status.AssignmentRepository.
func (r *statusAssignmentRepository) ListCovering(ctx context.Context, employeeID string, date time.Time) ([]status.AssignedStatus, error) {
	return r.query(ctx,
		assignedStatusSelect+`
		WHERE a.employee_id = $1
		  AND a.state <> 'rejected'
		  AND a.start_date <= $2
		  AND (a.end_date IS NULL OR a.end_date >= $2)`,
		employeeID, toPgDate(date),
	)
}

// List implements status.AssignmentRepository.
func (r *statusAssignmentRepository) List(ctx context.Context, filter status.AssignmentFilter) ([]status.AssignedStatus, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.EmployeeID != nil {
		where = append(where, `a.employee_id = `+arg(*filter.EmployeeID))
	}
	if filter.DepartmentCode != nil {
		where = append(where, `e.department_code = `+arg(*filter.DepartmentCode))
	}
	if filter.State != nil {
		where = append(where, `a.state = `+arg(string(*filter.State)))
	}
	if filter.To != nil {
		where = append(where, `a.start_date <= `+arg(toPgDate(*filter.To)))
	}
	if filter.From != nil {
		where = append(where, `(a.end_date IS NULL OR a.end_date >= `+arg(toPgDate(*filter.From))+`)`)
	}
	if filter.ActiveOn != nil {
		p := arg(toPgDate(*filter.ActiveOn))
		where = append(where, `a.start_date <= `+p+` AND (a.end_date IS NULL OR a.end_date >= `+p+`)`)
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
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE status_assignments
		 SET state = $1, approved_by = $2, decision_note = $3, decided_at = $4
		 WHERE id = $5 AND state = 'pending'`,
		string(state), approverID, note, at, id,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, status.ErrApproverNotEmployee
		}
		return false, fmt.Errorf("failed to decide status assignment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
