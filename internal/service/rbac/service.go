package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type RBACServiceImpl struct {
	transactor   database.Transactor
	roleRepo     rbac.RoleRepository
	overrideRepo rbac.OverrideRepository
	employeeRepo employee.EmployeeRepository
}

func NewRBACService(
	transactor database.Transactor,
	roleRepo rbac.RoleRepository,
	overrideRepo rbac.OverrideRepository,
	employeeRepo employee.EmployeeRepository,
) rbac.Service {
	return &RBACServiceImpl{
		transactor:   transactor,
		roleRepo:     roleRepo,
		overrideRepo: overrideRepo,
		employeeRepo: employeeRepo,
	}
}

// ResolveActor implements rbac.Service.
func (s *RBACServiceImpl) ResolveActor(ctx context.Context, actorID string, role rbac.Role) (rbac.Actor, error) {
	if !role.Valid() {
		return rbac.Actor{}, rbac.ErrUnknownRole
	}

	actor := rbac.Actor{ID: actorID, Role: role}
	if actor.IsWildcard() {
		actor.Capabilities = append([]rbac.Capability(nil), rbac.AllCapabilities...)
		return actor, nil
	}

	stored, err := s.roleRepo.Get(ctx, role)
	if err != nil {
		if errors.Is(err, rbac.ErrRoleNotFound) {
			return rbac.Actor{}, rbac.ErrUnknownRole
		}
		return rbac.Actor{}, fmt.Errorf("failed to load role: %w", err)
	}
	overrides, err := s.overrideRepo.ListByEmployee(ctx, actorID)
	if err != nil {
		return rbac.Actor{}, fmt.Errorf("failed to load capability overrides: %w", err)
	}
	actor.Capabilities = rbac.ResolveCapabilities(stored.Capabilities, overrides)
	return actor, nil
}

// ListOverrides implements rbac.Service.
func (s *RBACServiceImpl) ListOverrides(ctx context.Context, actor rbac.Actor, employeeID string) ([]rbac.Override, error) {
	if err := rbac.Require(actor, rbac.ManageRoles); err != nil {
		return nil, err
	}
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.overrideRepo.ListByEmployee(ctx, employeeID)
}

// GrantCapability implements rbac.Service.
func (s *RBACServiceImpl) GrantCapability(ctx context.Context, actor rbac.Actor, employeeID string, capability rbac.Capability) error {
	return s.setOverride(ctx, actor, employeeID, capability, true)
}

// RevokeCapability implements rbac.Service.
func (s *RBACServiceImpl) RevokeCapability(ctx context.Context, actor rbac.Actor, employeeID string, capability rbac.Capability) error {
	return s.setOverride(ctx, actor, employeeID, capability, false)
}

// ClearOverride implements rbac.Service.
func (s *RBACServiceImpl) ClearOverride(ctx context.Context, actor rbac.Actor, employeeID string, capability rbac.Capability) error {
	if err := rbac.Require(actor, rbac.ManageRoles); err != nil {
		return err
	}
	if !capability.Valid() {
		return rbac.ErrUnknownCapability
	}
	if err := s.overrideRepo.Delete(ctx, employeeID, capability); err != nil {
		return err
	}

	slog.Info("Capability override cleared", "actor_id", actor.ID, "employee_id", employeeID, "capability", capability)
	return nil
}

func (s *RBACServiceImpl) setOverride(ctx context.Context, actor rbac.Actor, employeeID string, capability rbac.Capability, granted bool) error {
	if err := rbac.Require(actor, rbac.ManageRoles); err != nil {
		return err
	}
	if !capability.Valid() {
		return rbac.ErrUnknownCapability
	}
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return err
	}

	actorID := actor.ID
	err := s.overrideRepo.Upsert(ctx, rbac.Override{
		EmployeeID: employeeID,
		Capability: capability,
		Granted:    granted,
		GrantedBy:  &actorID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to store capability override: %w", err)
	}

	slog.Info("Capability override stored", "actor_id", actor.ID, "employee_id", employeeID, "capability", capability, "granted", granted)
	return nil
}

func (s *RBACServiceImpl) ensureEmployee(ctx context.Context, employeeID string) error {
	exists, err := s.employeeRepo.Exists(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to check employee: %w", err)
	}
	if !exists {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// ListRoles implements rbac.Service.
func (s *RBACServiceImpl) ListRoles(ctx context.Context, actor rbac.Actor) ([]rbac.RoleDefinition, error) {
	if err := rbac.Require(actor, rbac.ManageRoles); err != nil {
		return nil, err
	}
	return s.roleRepo.List(ctx)
}

// GetRole implements rbac.Service.
func (s *RBACServiceImpl) GetRole(ctx context.Context, actor rbac.Actor, code rbac.Role) (rbac.RoleDefinition, error) {
	if err := rbac.Require(actor, rbac.ManageRoles); err != nil {
		return rbac.RoleDefinition{}, err
	}
	return s.roleRepo.Get(ctx, code)
}

// CreateRole implements rbac.Service.
func (s *RBACServiceImpl) CreateRole(ctx context.Context, actor rbac.Actor, req rbac.CreateRoleRequest) (rbac.RoleDefinition, error) {
	if err := rbac.Require(actor, rbac.ManageRoles); err != nil {
		return rbac.RoleDefinition{}, err
	}
	if err := req.Validate(); err != nil {
		return rbac.RoleDefinition{}, err
	}

	var created rbac.RoleDefinition
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.roleRepo.Create(ctx, rbac.RoleDefinition{
			Code:         req.Code,
			Name:         req.Name,
			Capabilities: uniqueSorted(req.Capabilities),
			CreatedAt:    time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return rbac.RoleDefinition{}, err
	}

	slog.Info("Role created", "actor_id", actor.ID, "role", created.Code, "capabilities", created.Capabilities)
	return created, nil
}

// UpdateRole implements rbac.Service.
func (s *RBACServiceImpl) UpdateRole(ctx context.Context, actor rbac.Actor, req rbac.UpdateRoleRequest) (rbac.RoleDefinition, error) {
	if err := rbac.Require(actor, rbac.ManageRoles); err != nil {
		return rbac.RoleDefinition{}, err
	}
	if err := req.Validate(); err != nil {
		return rbac.RoleDefinition{}, err
	}

	var updated rbac.RoleDefinition
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.roleRepo.UpdateName(ctx, req.Code, req.Name); err != nil {
			return err
		}
		var err error
		updated, err = s.roleRepo.Get(ctx, req.Code)
		return err
	})
	if err != nil {
		return rbac.RoleDefinition{}, err
	}

	slog.Info("Role renamed", "actor_id", actor.ID, "role", updated.Code, "name", updated.Name)
	return updated, nil
}

// DeleteRole implements rbac.Service.
func (s *RBACServiceImpl) DeleteRole(ctx context.Context, actor rbac.Actor, code rbac.Role) error {
	if err := rbac.Require(actor, rbac.ManageRoles); err != nil {
		return err
	}
	if code == rbac.WildcardRole {
		return rbac.ErrWildcardRoleFixed
	}

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.roleRepo.Delete(ctx, code)
	})
	if err != nil {
		return err
	}

	slog.Info("Role deleted", "actor_id", actor.ID, "role", code)
	return nil
}

// SetRoleCapabilities implements rbac.Service. Holders of the role see the
// new grants on their next request.
func (s *RBACServiceImpl) SetRoleCapabilities(ctx context.Context, actor rbac.Actor, req rbac.SetRoleCapabilitiesRequest) (rbac.RoleDefinition, error) {
	if err := rbac.Require(actor, rbac.ManageRoles); err != nil {
		return rbac.RoleDefinition{}, err
	}
	if req.Code == rbac.WildcardRole {
		return rbac.RoleDefinition{}, rbac.ErrWildcardRoleFixed
	}
	if err := req.Validate(); err != nil {
		return rbac.RoleDefinition{}, err
	}

	var updated rbac.RoleDefinition
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.roleRepo.SetCapabilities(ctx, req.Code, uniqueSorted(req.Capabilities)); err != nil {
			return err
		}
		var err error
		updated, err = s.roleRepo.Get(ctx, req.Code)
		return err
	})
	if err != nil {
		return rbac.RoleDefinition{}, err
	}

	slog.Info("Role capabilities replaced", "actor_id", actor.ID, "role", updated.Code, "capabilities", updated.Capabilities)
	return updated, nil
}

func uniqueSorted(caps []rbac.Capability) []rbac.Capability {
	out := slices.Clone(caps)
	slices.Sort(out)
	return slices.Compact(out)
}
