package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/attendance-engine/internal/service/servicetest"
)

func TestResolveActor(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	_, err := env.Services.RBAC.ResolveActor(ctx, emp.ID, rbac.Role("GUEST"))
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)

	admin, err := env.Services.RBAC.ResolveActor(ctx, emp.ID, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.ElementsMatch(t, rbac.AllCapabilities, admin.Capabilities)

	actor, err := env.Services.RBAC.ResolveActor(ctx, emp.ID, rbac.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Capability{rbac.ViewOwnData}, actor.Capabilities)
}

func TestOverrides(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	err := env.Services.RBAC.GrantCapability(ctx, servicetest.HR, emp.ID, rbac.ApproveStatus)
	assert.ErrorIs(t, err, rbac.ErrPermissionDenied, "HR cannot manage roles")

	err = env.Services.RBAC.GrantCapability(ctx, servicetest.Admin, emp.ID, rbac.Capability("FLY"))
	assert.ErrorIs(t, err, rbac.ErrUnknownCapability)

	err = env.Services.RBAC.GrantCapability(ctx, servicetest.Admin, "19990001", rbac.ApproveStatus)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	require.NoError(t, env.Services.RBAC.GrantCapability(ctx, servicetest.Admin, emp.ID, rbac.ApproveStatus))
	require.NoError(t, env.Services.RBAC.RevokeCapability(ctx, servicetest.Admin, emp.ID, rbac.ViewOwnData))

	actor, err := env.Services.RBAC.ResolveActor(ctx, emp.ID, rbac.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Capability{rbac.ApproveStatus}, actor.Capabilities)
	assert.True(t, rbac.HasCapability(actor, rbac.ApproveStatus))

	overrides, err := env.Services.RBAC.ListOverrides(ctx, servicetest.Admin, emp.ID)
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	for _, o := range overrides {
		require.NotNil(t, o.GrantedBy)
		assert.Equal(t, servicetest.Admin.ID, *o.GrantedBy)
	}

	require.NoError(t, env.Services.RBAC.ClearOverride(ctx, servicetest.Admin, emp.ID, rbac.ViewOwnData))
	assert.ErrorIs(t, env.Services.RBAC.ClearOverride(ctx, servicetest.Admin, emp.ID, rbac.ViewOwnData), rbac.ErrOverrideNotFound)

	actor, err = env.Services.RBAC.ResolveActor(ctx, emp.ID, rbac.RoleEmployee)
	require.NoError(t, err)
	assert.ElementsMatch(t, []rbac.Capability{rbac.ApproveStatus, rbac.ViewOwnData}, actor.Capabilities)
}

func TestRoleCatalogue(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)

	_, err := env.Services.RBAC.ListRoles(ctx, servicetest.HR)
	assert.ErrorIs(t, err, rbac.ErrPermissionDenied)

	roles, err := env.Services.RBAC.ListRoles(ctx, servicetest.Admin)
	require.NoError(t, err)
	byCode := make(map[rbac.Role]rbac.RoleDefinition)
	for _, r := range roles {
		byCode[r.Code] = r
	}
	require.Len(t, byCode, 3)
	assert.ElementsMatch(t, rbac.DefaultRoleGrants[rbac.RoleHR], byCode[rbac.RoleHR].Capabilities)
	assert.Equal(t, 1, byCode[rbac.RoleHR].EmployeeCount)

	t.Run("create rejects bad input", func(t *testing.T) {
		_, err := env.Services.RBAC.CreateRole(ctx, servicetest.Admin, rbac.CreateRoleRequest{Code: "HR", Name: "Again"})
		assert.ErrorIs(t, err, rbac.ErrRoleExists)

		_, err = env.Services.RBAC.CreateRole(ctx, servicetest.Admin, rbac.CreateRoleRequest{
			Code: "LEAD", Name: "Lead", Capabilities: []rbac.Capability{"FLY"},
		})
		assert.Equal(t, apperror.Validation, apperror.KindOf(err))
	})

	created, err := env.Services.RBAC.CreateRole(ctx, servicetest.Admin, rbac.CreateRoleRequest{
		Code: "SUPERVISOR", Name: "Supervisor",
		Capabilities: []rbac.Capability{rbac.ViewOwnData, rbac.ApproveStatus, rbac.ViewOwnData},
	})
	require.NoError(t, err)
	assert.Equal(t, []rbac.Capability{rbac.ApproveStatus, rbac.ViewOwnData}, created.Capabilities)

	lead, err := env.Services.Employee.CreateEmployee(ctx, servicetest.Admin, employee.CreateEmployeeRequest{
		Name: "Omar", DepartmentCode: "IT", Role: "SUPERVISOR",
	})
	require.NoError(t, err)

	actor, err := env.Services.RBAC.ResolveActor(ctx, lead.ID, "SUPERVISOR")
	require.NoError(t, err)
	assert.Equal(t, []rbac.Capability{rbac.ApproveStatus, rbac.ViewOwnData}, actor.Capabilities)

	t.Run("regranting applies on the next resolve", func(t *testing.T) {
		updated, err := env.Services.RBAC.SetRoleCapabilities(ctx, servicetest.Admin, rbac.SetRoleCapabilitiesRequest{
			Code: "SUPERVISOR", Capabilities: []rbac.Capability{rbac.ViewReports},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.EmployeeCount)

		actor, err := env.Services.RBAC.ResolveActor(ctx, lead.ID, "SUPERVISOR")
		require.NoError(t, err)
		assert.Equal(t, []rbac.Capability{rbac.ViewReports}, actor.Capabilities)
	})

	t.Run("wildcard role stays fixed", func(t *testing.T) {
		assert.ErrorIs(t, env.Services.RBAC.DeleteRole(ctx, servicetest.Admin, rbac.RoleAdmin), rbac.ErrWildcardRoleFixed)
		_, err := env.Services.RBAC.SetRoleCapabilities(ctx, servicetest.Admin, rbac.SetRoleCapabilitiesRequest{Code: rbac.RoleAdmin})
		assert.ErrorIs(t, err, rbac.ErrWildcardRoleFixed)

		renamed, err := env.Services.RBAC.UpdateRole(ctx, servicetest.Admin, rbac.UpdateRoleRequest{Code: rbac.RoleAdmin, Name: "Superuser"})
		require.NoError(t, err)
		assert.Equal(t, "Superuser", renamed.Name)
	})

	t.Run("delete waits for the last holder", func(t *testing.T) {
		assert.ErrorIs(t, env.Services.RBAC.DeleteRole(ctx, servicetest.Admin, "SUPERVISOR"), rbac.ErrRoleInUse)

		_, err := env.Services.Employee.UpdateEmployee(ctx, servicetest.Admin, employee.UpdateEmployeeRequest{
			ID: lead.ID, Role: servicetest.Ptr(rbac.RoleEmployee),
		})
		require.NoError(t, err)
		require.NoError(t, env.Services.RBAC.DeleteRole(ctx, servicetest.Admin, "SUPERVISOR"))

		_, err = env.Services.RBAC.GetRole(ctx, servicetest.Admin, "SUPERVISOR")
		assert.ErrorIs(t, err, rbac.ErrRoleNotFound)
		_, err = env.Services.RBAC.ResolveActor(ctx, lead.ID, "SUPERVISOR")
		assert.ErrorIs(t, err, rbac.ErrUnknownRole)
		assert.ErrorIs(t, env.Services.RBAC.DeleteRole(ctx, servicetest.Admin, "SUPERVISOR"), rbac.ErrRoleNotFound)
	})
}
