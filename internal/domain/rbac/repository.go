package rbac

import "context"

// OverrideRepository persists per-employee capability overrides.
type OverrideRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]Override, error)

	// Upsert replaces any existing override for the same employee and capability.
	Upsert(ctx context.Context, override Override) error

	// Delete returns ErrOverrideNotFound when nothing was removed.
	Delete(ctx context.Context, employeeID string, capability Capability) error
}

// RoleRepository persists roles and their capability grants.
type RoleRepository interface {
	// Get returns ErrRoleNotFound when the code is unknown.
	Get(ctx context.Context, code Role) (RoleDefinition, error)

	// List returns every role with its employee count, ordered by code.
	List(ctx context.Context) ([]RoleDefinition, error)

	// Create stores the role and its grants. It returns ErrRoleExists on a duplicate code.
	Create(ctx context.Context, role RoleDefinition) (RoleDefinition, error)

	UpdateName(ctx context.Context, code Role, name string) error

	// Delete returns ErrRoleInUse while employees still hold the role.
	Delete(ctx context.Context, code Role) error

	// SetCapabilities replaces the role's grants.
	SetCapabilities(ctx context.Context, code Role, capabilities []Capability) error
}
