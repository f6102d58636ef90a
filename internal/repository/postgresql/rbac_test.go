package postgresql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql/postgresqltest"
)

func TestRoleRepository_GrantsAndHolders(t *testing.T) {
	ctx := context.Background()
	setup := postgresqltest.NewTestDatabase(t)
	repo := postgresql.NewRoleRepository(setup.DB)

	seeded, err := repo.Get(ctx, rbac.RoleHR)
	require.NoError(t, err)
	assert.ElementsMatch(t, rbac.DefaultRoleGrants[rbac.RoleHR], seeded.Capabilities)

	_, err = repo.Create(ctx, rbac.RoleDefinition{Code: "LEAD", Name: "Lead", Capabilities: []rbac.Capability{rbac.ApproveStatus}})
	require.NoError(t, err)
	_, err = repo.Create(ctx, rbac.RoleDefinition{Code: "LEAD", Name: "Again"})
	assert.ErrorIs(t, err, rbac.ErrRoleExists)

	employees := postgresql.NewEmployeeRepository(setup.DB)
	_, err = employees.Create(ctx, employee.Employee{ID: "20240001", Name: "Rana", DepartmentCode: "IT", Role: "LEAD"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "LEAD")
	require.NoError(t, err)
	assert.Equal(t, 1, got.EmployeeCount)
	assert.ErrorIs(t, repo.Delete(ctx, "LEAD"), rbac.ErrRoleInUse)

	require.NoError(t, employees.Delete(ctx, "20240001"))
	require.NoError(t, repo.Delete(ctx, "LEAD"))
	_, err = repo.Get(ctx, "LEAD")
	assert.ErrorIs(t, err, rbac.ErrRoleNotFound)
}
