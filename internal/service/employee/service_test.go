package employee_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-engine/internal/service/servicetest"
)

func TestCreateEmployee_SequentialIDs(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	year := time.Now().Year()

	first := env.Employee(t, "Huda", "IT")
	second := env.Employee(t, "Omar", "SAL")

	assert.Equal(t, fmt.Sprintf("%d0001", year), first.ID)
	assert.Equal(t, fmt.Sprintf("%d0002", year), second.ID)

	got, err := env.Services.Employee.GetEmployee(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "SAL", got.DepartmentCode)
	assert.Equal(t, rbac.RoleEmployee, got.Role)
}

func TestCreateEmployee_Errors(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)

	_, err := env.Services.Employee.CreateEmployee(ctx, servicetest.Staff, employee.CreateEmployeeRequest{Name: "X", DepartmentCode: "IT"})
	assert.ErrorIs(t, err, rbac.ErrPermissionDenied)

	_, err = env.Services.Employee.CreateEmployee(ctx, servicetest.HR, employee.CreateEmployeeRequest{Name: "X", DepartmentCode: "NOPE"})
	assert.ErrorIs(t, err, employee.ErrDepartmentNotFound)

	_, err = env.Services.Employee.CreateEmployee(ctx, servicetest.HR, employee.CreateEmployeeRequest{Name: "X", DepartmentCode: "IT", Role: "manager"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "role")

	_, err = env.Services.Employee.CreateEmployee(ctx, servicetest.HR, employee.CreateEmployeeRequest{Name: "X", DepartmentCode: "IT", Role: "MANAGER"})
	assert.ErrorIs(t, err, rbac.ErrUnknownRole, "well-formed codes must still exist in the roles table")
}

func TestUpdateEmployee(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	_, err := env.Services.Employee.UpdateEmployee(ctx, servicetest.Staff, employee.UpdateEmployeeRequest{ID: emp.ID, Name: servicetest.Ptr("Hoda")})
	assert.ErrorIs(t, err, rbac.ErrPermissionDenied)

	_, err = env.Services.Employee.UpdateEmployee(ctx, servicetest.HR, employee.UpdateEmployeeRequest{ID: "19990001", Name: servicetest.Ptr("Hoda")})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = env.Services.Employee.UpdateEmployee(ctx, servicetest.HR, employee.UpdateEmployeeRequest{ID: emp.ID, Role: servicetest.Ptr(rbac.Role("GUEST"))})
	assert.ErrorIs(t, err, rbac.ErrUnknownRole)

	_, err = env.Services.Employee.UpdateEmployee(ctx, servicetest.HR, employee.UpdateEmployeeRequest{ID: emp.ID, Name: servicetest.Ptr(" ")})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "name")

	updated, err := env.Services.Employee.UpdateEmployee(ctx, servicetest.HR, employee.UpdateEmployeeRequest{
		ID: emp.ID, Name: servicetest.Ptr("Hoda"), Role: servicetest.Ptr(rbac.RoleHR),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hoda", updated.Name)
	assert.Equal(t, rbac.RoleHR, updated.Role)
	assert.Equal(t, "IT", updated.DepartmentCode, "department only changes through a transfer")

	stored, err := env.Services.Employee.GetEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Name, stored.Name)
	assert.Equal(t, rbac.RoleHR, stored.Role)
}

func TestDeleteEmployee(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	fresh := env.Employee(t, "Huda", "IT")
	moved := env.Employee(t, "Omar", "IT")

	assert.ErrorIs(t, env.Services.Employee.DeleteEmployee(ctx, servicetest.Staff, fresh.ID), rbac.ErrPermissionDenied)

	require.NoError(t, env.Services.RBAC.GrantCapability(ctx, servicetest.Admin, fresh.ID, rbac.ViewReports))
	require.NoError(t, env.Services.Employee.DeleteEmployee(ctx, servicetest.HR, fresh.ID), "overrides go with the employee")
	_, err := env.Services.Employee.GetEmployee(ctx, fresh.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
	assert.ErrorIs(t, env.Services.Employee.DeleteEmployee(ctx, servicetest.HR, fresh.ID), employee.ErrEmployeeNotFound)

	_, err = env.Services.Employee.TransferEmployee(ctx, servicetest.HR, employee.TransferEmployeeRequest{EmployeeID: moved.ID, NewDepartmentCode: "SAL"})
	require.NoError(t, err)
	assert.ErrorIs(t, env.Services.Employee.DeleteEmployee(ctx, servicetest.HR, moved.ID), employee.ErrEmployeeInUse)
}

func TestCreateEmployee_SequenceExhausted(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)

	_, err := env.Repos.Employees.Create(ctx, employee.Employee{
		ID: fmt.Sprintf("%d9999", time.Now().Year()), Name: "Last", DepartmentCode: "IT", Role: rbac.RoleEmployee,
	})
	require.NoError(t, err)

	_, err = env.Services.Employee.CreateEmployee(ctx, servicetest.Admin, employee.CreateEmployeeRequest{Name: "Overflow", DepartmentCode: "IT"})
	assert.ErrorIs(t, err, employee.ErrEmployeeIDExhausted)
}

func TestCreateEmployee_ConcurrentIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)

	const n = 8
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emp, err := env.Services.Employee.CreateEmployee(ctx, servicetest.Admin, employee.CreateEmployeeRequest{
				Name: fmt.Sprintf("Worker %d", i), DepartmentCode: "IT",
			})
			assert.NoError(t, err)
			ids[i] = emp.ID
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestTransferEmployee(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Lina", "IT")

	_, err := env.Services.Employee.TransferEmployee(ctx, servicetest.HR, employee.TransferEmployeeRequest{
		EmployeeID: emp.ID, NewDepartmentCode: "IT",
	})
	assert.ErrorIs(t, err, employee.ErrSameDepartment)

	_, err = env.Services.Employee.TransferEmployee(ctx, servicetest.HR, employee.TransferEmployeeRequest{
		EmployeeID: emp.ID, NewDepartmentCode: "NOPE",
	})
	assert.ErrorIs(t, err, employee.ErrDepartmentNotFound)

	notes := "reorg"
	transfer, err := env.Services.Employee.TransferEmployee(ctx, servicetest.HR, employee.TransferEmployeeRequest{
		EmployeeID: emp.ID, NewDepartmentCode: "ACC", Notes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "IT", transfer.OldDepartmentCode)
	assert.Equal(t, "ACC", transfer.NewDepartmentCode)
	require.NotNil(t, transfer.ChangedBy)
	assert.Equal(t, servicetest.HR.ID, *transfer.ChangedBy)

	got, err := env.Services.Employee.GetEmployee(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACC", got.DepartmentCode)

	history, err := env.Services.Employee.ListTransfers(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "reorg", *history[0].Notes)

	_, err = env.Services.Employee.ListTransfers(ctx, "19990001")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDepartments(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	manager := env.Employee(t, "Sara", "IT")

	_, err := env.Services.Employee.CreateDepartment(ctx, servicetest.HR, employee.CreateDepartmentRequest{Code: "OPS", Name: "Operations"})
	assert.ErrorIs(t, err, rbac.ErrPermissionDenied, "HR does not manage departments")

	_, err = env.Services.Employee.CreateDepartment(ctx, servicetest.Admin, employee.CreateDepartmentRequest{Code: "IT", Name: "Dup"})
	assert.ErrorIs(t, err, employee.ErrDepartmentCodeExists)

	_, err = env.Services.Employee.CreateDepartment(ctx, servicetest.Admin, employee.CreateDepartmentRequest{
		Code: "OPS", Name: "Operations", ManagerID: servicetest.Ptr("19990001"),
	})
	assert.ErrorIs(t, err, employee.ErrManagerNotFound)

	created, err := env.Services.Employee.CreateDepartment(ctx, servicetest.Admin, employee.CreateDepartmentRequest{
		Code: "OPS", Name: "Operations", ManagerID: &manager.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "OPS", created.Code)

	updated, err := env.Services.Employee.UpdateDepartment(ctx, servicetest.Admin, employee.UpdateDepartmentRequest{Code: "OPS", Name: "Ops"})
	require.NoError(t, err)
	assert.Equal(t, "Ops", updated.Name)
	assert.Nil(t, updated.ManagerID)

	got, err := env.Services.Employee.GetDepartment(ctx, "OPS")
	require.NoError(t, err)
	assert.Equal(t, "Ops", got.Name)

	_, err = env.Services.Employee.UpdateDepartment(ctx, servicetest.Admin, employee.UpdateDepartmentRequest{Code: "NOPE", Name: "x"})
	assert.ErrorIs(t, err, employee.ErrDepartmentNotFound)

	list, err := env.Services.Employee.ListDepartments(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 6)
}
