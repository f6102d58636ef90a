package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type overrideRepository struct {
	db *database.SQLiteDB
}

func NewOverrideRepository(db *database.SQLiteDB) rbac.OverrideRepository {
	return &overrideRepository{db: db}
}

// ListByEmployee implements rbac.OverrideRepository.
func (r *overrideRepository) ListByEmployee(ctx context.Context, employeeID string) ([]rbac.Override, error) {
	q := getQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx,
		`SELECT employee_id, capability, granted, granted_by, created_at
		 FROM capability_overrides
		 WHERE employee_id = ?
		 ORDER BY capability`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list capability overrides: %w", err)
	}
	defer rows.Close()

	var out []rbac.Override
	for rows.Next() {
		var (
			o          rbac.Override
			capability string
			grantedBy  sql.NullString
			createdAt  int64
		)
		if err := rows.Scan(&o.EmployeeID, &capability, &o.Granted, &grantedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan capability override: %w", err)
		}
		o.Capability = rbac.Capability(capability)
		o.GrantedBy = fromNullString(grantedBy)
		o.CreatedAt = fromMillis(createdAt)
		out = append(out, o)
	}
	return out, rows.Err()
}

// Upsert implements rbac.OverrideRepository.
func (r *overrideRepository) Upsert(ctx context.Context, o rbac.Override) error {
	q := getQuerier(ctx, r.db)

	_, err := q.ExecContext(ctx,
		`INSERT INTO capability_overrides (employee_id, capability, granted, granted_by, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (employee_id, capability) DO UPDATE SET
		   granted = excluded.granted,
		   granted_by = excluded.granted_by,
		   created_at = excluded.created_at`,
		o.EmployeeID, string(o.Capability), o.Granted, o.GrantedBy, toMillis(nowOr(o.CreatedAt)),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert capability override: %w", err)
	}
	return nil
}

// Delete implements rbac.OverrideRepository.
func (r *overrideRepository) Delete(ctx context.Context, employeeID string, capability rbac.Capability) error {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx,
		`DELETE FROM capability_overrides WHERE employee_id = ? AND capability = ?`,
		employeeID, string(capability),
	)
	if err != nil {
		return fmt.Errorf("failed to delete capability override: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return rbac.ErrOverrideNotFound
	}
	return nil
}

type roleRepository struct {
	db *database.SQLiteDB
}

func NewRoleRepository(db *database.SQLiteDB) rbac.RoleRepository {
	return &roleRepository{db: db}
}

const roleSelect = `SELECT r.code, r.name, r.created_at, COUNT(e.id)
	FROM roles r
	LEFT JOIN employees e ON e.role = r.code`

func scanRole(row interface{ Scan(...any) error }) (rbac.RoleDefinition, error) {
	var (
		d         rbac.RoleDefinition
		code      string
		createdAt int64
	)
	if err := row.Scan(&code, &d.Name, &createdAt, &d.EmployeeCount); err != nil {
		return rbac.RoleDefinition{}, err
	}
	d.Code = rbac.Role(code)
	d.CreatedAt = fromMillis(createdAt)
	return d, nil
}

// grants loads capabilities keyed by role, restricted to code when it is non-empty.
func (r *roleRepository) grants(ctx context.Context, code rbac.Role) (map[rbac.Role][]rbac.Capability, error) {
	q := getQuerier(ctx, r.db)

	query := `SELECT role_code, capability FROM role_capabilities`
	var args []any
	if code != "" {
		query += ` WHERE role_code = ?`
		args = append(args, string(code))
	}
	query += ` ORDER BY role_code, capability`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list role capabilities: %w", err)
	}
	defer rows.Close()

	out := make(map[rbac.Role][]rbac.Capability)
	for rows.Next() {
		var role, capability string
		if err := rows.Scan(&role, &capability); err != nil {
			return nil, fmt.Errorf("failed to scan role capability: %w", err)
		}
		out[rbac.Role(role)] = append(out[rbac.Role(role)], rbac.Capability(capability))
	}
	return out, rows.Err()
}

// Get implements rbac.RoleRepository.
func (r *roleRepository) Get(ctx context.Context, code rbac.Role) (rbac.RoleDefinition, error) {
	q := getQuerier(ctx, r.db)

	d, err := scanRole(q.QueryRowContext(ctx, roleSelect+` WHERE r.code = ? GROUP BY r.code, r.name, r.created_at`, string(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rbac.RoleDefinition{}, rbac.ErrRoleNotFound
		}
		return rbac.RoleDefinition{}, fmt.Errorf("failed to get role: %w", err)
	}

	grants, err := r.grants(ctx, code)
	if err != nil {
		return rbac.RoleDefinition{}, err
	}
	d.Capabilities = grants[code]
	return d, nil
}

// List implements rbac.RoleRepository.
func (r *roleRepository) List(ctx context.Context) ([]rbac.RoleDefinition, error) {
	q := getQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, roleSelect+` GROUP BY r.code, r.name, r.created_at ORDER BY r.code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var out []rbac.RoleDefinition
	for rows.Next() {
		d, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	grants, err := r.grants(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Capabilities = grants[out[i].Code]
	}
	return out, nil
}

// Create implements rbac.RoleRepository.
func (r *roleRepository) Create(ctx context.Context, d rbac.RoleDefinition) (rbac.RoleDefinition, error) {
	q := getQuerier(ctx, r.db)

	d.CreatedAt = nowOr(d.CreatedAt)
	_, err := q.ExecContext(ctx,
		`INSERT INTO roles (code, name, created_at) VALUES (?, ?, ?)`,
		string(d.Code), d.Name, toMillis(d.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return rbac.RoleDefinition{}, rbac.ErrRoleExists
		}
		return rbac.RoleDefinition{}, fmt.Errorf("failed to create role: %w", err)
	}
	if err := r.insertGrants(ctx, d.Code, d.Capabilities); err != nil {
		return rbac.RoleDefinition{}, err
	}
	return d, nil
}

func (r *roleRepository) insertGrants(ctx context.Context, code rbac.Role, caps []rbac.Capability) error {
	q := getQuerier(ctx, r.db)

	for _, c := range caps {
		_, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO role_capabilities (role_code, capability) VALUES (?, ?)`,
			string(code), string(c),
		)
		if err != nil {
			return fmt.Errorf("failed to grant %s to role: %w", c, err)
		}
	}
	return nil
}

// UpdateName implements rbac.RoleRepository.
func (r *roleRepository) UpdateName(ctx context.Context, code rbac.Role, name string) error {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `UPDATE roles SET name = ? WHERE code = ?`, name, string(code))
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return rbac.ErrRoleNotFound
	}
	return nil
}

// Delete implements rbac.RoleRepository.
func (r *roleRepository) Delete(ctx context.Context, code rbac.Role) error {
	q := getQuerier(ctx, r.db)

	var holders int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees WHERE role = ?`, string(code)).Scan(&holders); err != nil {
		return fmt.Errorf("failed to count role holders: %w", err)
	}
	if holders > 0 {
		return rbac.ErrRoleInUse
	}

	res, err := q.ExecContext(ctx, `DELETE FROM roles WHERE code = ?`, string(code))
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return rbac.ErrRoleNotFound
	}
	return nil
}

// SetCapabilities implements rbac.RoleRepository.
func (r *roleRepository) SetCapabilities(ctx context.Context, code rbac.Role, caps []rbac.Capability) error {
	q := getQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM roles WHERE code = ?)`, string(code)).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if !exists {
		return rbac.ErrRoleNotFound
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM role_capabilities WHERE role_code = ?`, string(code)); err != nil {
		return fmt.Errorf("failed to clear role capabilities: %w", err)
	}
	return r.insertGrants(ctx, code, caps)
}
