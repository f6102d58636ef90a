package status_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/status"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/attendance-engine/internal/service/servicetest"
)

func statusType(t *testing.T, env *servicetest.Env, name string, requiresApproval bool, maxDays *int) status.StatusType {
	t.Helper()
	st, err := env.Services.Status.CreateStatusType(context.Background(), servicetest.HR, status.StatusTypeRequest{
		Name: name, RequiresApproval: &requiresApproval, MaxDays: maxDays,
	})
	require.NoError(t, err)
	return st
}

func TestAddStatusAssignment_AutoApproves(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")
	remote := statusType(t, env, "Remote work", false, nil)

	a, err := env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: emp.ID, StatusTypeID: remote.ID, StartDate: "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, status.StateApproved, a.State)
	assert.Nil(t, a.ApprovedBy, "auto-approval records no approver")

	stored, err := env.Services.Status.GetStatusAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, stored.Approved())
	assert.Nil(t, stored.ApprovedBy)
	assert.Equal(t, "Remote work", stored.TypeName)
}

func TestAddStatusAssignment_Errors(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")
	leave := statusType(t, env, "Annual leave", true, nil)

	_, err := env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: "19990001", StatusTypeID: leave.ID, StartDate: "2024-03-01",
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: emp.ID, StatusTypeID: "missing", StartDate: "2024-03-01",
	})
	assert.ErrorIs(t, err, status.ErrStatusTypeNotFound)

	end := "2024-02-01"
	_, err = env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: emp.ID, StatusTypeID: leave.ID, StartDate: "2024-03-01", EndDate: &end,
	})
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))
}

func TestApproveStatusAssignment(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")
	leave := statusType(t, env, "Annual leave", true, nil)

	a, err := env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: emp.ID, StatusTypeID: leave.ID, StartDate: "2024-03-01", EndDate: servicetest.Ptr("2024-03-05"),
	})
	require.NoError(t, err)
	require.Equal(t, status.StatePending, a.State)

	t.Run("denied without capability leaves it pending", func(t *testing.T) {
		_, err := env.Services.Status.ApproveStatusAssignment(ctx, a.ID, servicetest.Staff)
		assert.ErrorIs(t, err, rbac.ErrPermissionDenied)

		stored, err := env.Services.Status.GetStatusAssignment(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, status.StatePending, stored.State)
	})

	t.Run("approver outside the employee table is denied", func(t *testing.T) {
		outsider := rbac.Actor{ID: "19990001", Role: rbac.RoleHR, Capabilities: []rbac.Capability{rbac.ApproveStatus}}
		_, err := env.Services.Status.ApproveStatusAssignment(ctx, a.ID, outsider)
		assert.ErrorIs(t, err, status.ErrApproverNotEmployee)
		assert.Equal(t, apperror.PermissionDenied, apperror.KindOf(err))

		stored, err := env.Services.Status.GetStatusAssignment(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, status.StatePending, stored.State)
	})

	t.Run("approver records the actor", func(t *testing.T) {
		approved, err := env.Services.Status.ApproveStatusAssignment(ctx, a.ID, servicetest.HR)
		require.NoError(t, err)
		assert.Equal(t, status.StateApproved, approved.State)
		require.NotNil(t, approved.ApprovedBy)
		assert.Equal(t, servicetest.HR.ID, *approved.ApprovedBy)
	})

	t.Run("second approval is AlreadyApproved", func(t *testing.T) {
		_, err := env.Services.Status.ApproveStatusAssignment(ctx, a.ID, servicetest.HR)
		assert.ErrorIs(t, err, status.ErrAlreadyApproved)
		assert.Equal(t, apperror.AlreadyApproved, apperror.KindOf(err))
	})

	t.Run("rejecting an approved assignment is AlreadyApproved", func(t *testing.T) {
		_, err := env.Services.Status.RejectStatusAssignment(ctx, a.ID, servicetest.HR, nil)
		assert.ErrorIs(t, err, status.ErrAlreadyApproved)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := env.Services.Status.ApproveStatusAssignment(ctx, "missing", servicetest.HR)
		assert.ErrorIs(t, err, status.ErrAssignmentNotFound)
	})
}

func TestRejectStatusAssignment(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")
	leave := statusType(t, env, "Annual leave", true, nil)

	a, err := env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: emp.ID, StatusTypeID: leave.ID, StartDate: "2024-03-01",
	})
	require.NoError(t, err)

	reason := "peak season"
	rejected, err := env.Services.Status.RejectStatusAssignment(ctx, a.ID, servicetest.HR, &reason)
	require.NoError(t, err)
	assert.Equal(t, status.StateRejected, rejected.State)
	assert.Equal(t, &reason, rejected.DecisionNote)

	_, err = env.Services.Status.ApproveStatusAssignment(ctx, a.ID, servicetest.HR)
	assert.ErrorIs(t, err, status.ErrAlreadyRejected)

	resolved, err := env.Services.Status.ResolveStatus(ctx, emp.ID, servicetest.Day("2024-03-02"))
	require.NoError(t, err)
	assert.Nil(t, resolved, "rejected assignments never apply")
}

func TestResolveStatus_TieBreak(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")
	remote := statusType(t, env, "Remote work", false, nil)
	sick := statusType(t, env, "Sick leave", false, nil)

	_, err := env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: emp.ID, StatusTypeID: remote.ID, StartDate: "2024-03-01", EndDate: servicetest.Ptr("2024-03-31"),
	})
	require.NoError(t, err)
	later, err := env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: emp.ID, StatusTypeID: sick.ID, StartDate: "2024-03-10", EndDate: servicetest.Ptr("2024-03-12"),
	})
	require.NoError(t, err)

	resolved, err := env.Services.Status.ResolveStatus(ctx, emp.ID, servicetest.Day("2024-03-11"))
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, later.ID, resolved.ID, "latest start date wins")

	resolved, err = env.Services.Status.ResolveStatus(ctx, emp.ID, servicetest.Day("2024-03-20"))
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "Remote work", resolved.TypeName)

	resolved, err = env.Services.Status.ResolveStatus(ctx, emp.ID, servicetest.Day("2024-04-01"))
	require.NoError(t, err)
	assert.Nil(t, resolved)

	dept, err := env.Services.Status.ListDepartmentStatus(ctx, "IT", servicetest.Day("2024-03-11"))
	require.NoError(t, err)
	require.Len(t, dept, 1)
	assert.Equal(t, "Sick leave", dept[0].TypeName)
}

func TestStatusAssignment_ExceedsMaxDays(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")
	leave := statusType(t, env, "Annual leave", true, servicetest.Ptr(3))

	a, err := env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{
		EmployeeID: emp.ID, StatusTypeID: leave.ID, StartDate: "2024-03-01", EndDate: servicetest.Ptr("2024-03-05"),
	})
	require.NoError(t, err, "the cap is advisory")

	stored, err := env.Services.Status.GetStatusAssignment(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, stored.ExceedsMaxDays)

	pending := status.StatePending
	list, err := env.Services.Status.ListStatusAssignments(ctx, status.AssignmentFilter{EmployeeID: &emp.ID, State: &pending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestStatusTypeCatalogue(t *testing.T) {
	ctx := context.Background()
	env := servicetest.New(t)
	emp := env.Employee(t, "Huda", "IT")

	_, err := env.Services.Status.CreateStatusType(ctx, servicetest.Staff, status.StatusTypeRequest{Name: "Leave"})
	assert.ErrorIs(t, err, rbac.ErrPermissionDenied)

	leave, err := env.Services.Status.CreateStatusType(ctx, servicetest.HR, status.StatusTypeRequest{Name: "Leave"})
	require.NoError(t, err)
	assert.True(t, leave.RequiresApproval, "approval is required unless stated otherwise")

	_, err = env.Services.Status.CreateStatusType(ctx, servicetest.HR, status.StatusTypeRequest{Name: "Leave"})
	assert.ErrorIs(t, err, status.ErrStatusTypeNameExists)

	updated, err := env.Services.Status.UpdateStatusType(ctx, servicetest.HR, status.StatusTypeRequest{ID: leave.ID, Name: "Annual leave", MaxDays: servicetest.Ptr(21)})
	require.NoError(t, err)
	assert.Equal(t, "Annual leave", updated.Name)
	assert.True(t, updated.RequiresApproval)

	_, err = env.Services.Status.AddStatusAssignment(ctx, status.AddStatusRequest{EmployeeID: emp.ID, StatusTypeID: leave.ID, StartDate: "2024-03-01"})
	require.NoError(t, err)
	assert.ErrorIs(t, env.Services.Status.DeleteStatusType(ctx, servicetest.HR, leave.ID), status.ErrStatusTypeInUse)

	other, err := env.Services.Status.CreateStatusType(ctx, servicetest.HR, status.StatusTypeRequest{Name: "Training"})
	require.NoError(t, err)
	require.NoError(t, env.Services.Status.DeleteStatusType(ctx, servicetest.HR, other.ID))

	types, err := env.Services.Status.ListStatusTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
}
