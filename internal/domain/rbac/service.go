package rbac

import "context"

type Service interface {
	// ResolveActor builds the Actor for an authenticated (id, role) pair.
	ResolveActor(ctx context.Context, actorID string, role Role) (Actor, error)

	ListOverrides(ctx context.Context, actor Actor, employeeID string) ([]Override, error)
	GrantCapability(ctx context.Context, actor Actor, employeeID string, capability Capability) error
	RevokeCapability(ctx context.Context, actor Actor, employeeID string, capability Capability) error
	ClearOverride(ctx context.Context, actor Actor, employeeID string, capability Capability) error

	// Role management requires ManageRoles. The wildcard role can be renamed
	// but never deleted or regranted.
	ListRoles(ctx context.Context, actor Actor) ([]RoleDefinition, error)
	GetRole(ctx context.Context, actor Actor, code Role) (RoleDefinition, error)
	CreateRole(ctx context.Context, actor Actor, req CreateRoleRequest) (RoleDefinition, error)
	UpdateRole(ctx context.Context, actor Actor, req UpdateRoleRequest) (RoleDefinition, error)
	DeleteRole(ctx context.Context, actor Actor, code Role) error
	SetRoleCapabilities(ctx context.Context, actor Actor, req SetRoleCapabilitiesRequest) (RoleDefinition, error)
}
