// Package servicetest wires the services over a throwaway SQLite store.
package servicetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/i18n"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
	"github.com/cmlabs-hris/attendance-engine/internal/repository"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/sqlite"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/sqlite/sqlitetest"
	"github.com/cmlabs-hris/attendance-engine/internal/service"
)

var (
	Admin = rbac.Actor{ID: "20240001", Role: rbac.RoleAdmin, Capabilities: rbac.AllCapabilities}
	HR    = rbac.Actor{ID: "20240002", Role: rbac.RoleHR, Capabilities: rbac.DefaultRoleGrants[rbac.RoleHR]}
	Staff = rbac.Actor{ID: "20240003", Role: rbac.RoleEmployee, Capabilities: rbac.DefaultRoleGrants[rbac.RoleEmployee]}
)

type Env struct {
	Repos repository.Set
	service.Services
}

// New returns services in UTC with the Arabic default locale, a 09:00 late
// threshold and no device client. Admin, HR and Staff exist as employees of
// ADM. opts may adjust the options before wiring.
func New(t testing.TB, opts ...func(*service.Options)) *Env {
	t.Helper()

	translator, err := i18n.New("ar")
	require.NoError(t, err)

	o := service.Options{
		Location:      time.UTC,
		Translator:    translator,
		LateThreshold: timeofday.New(9, 0, 0),
	}
	for _, fn := range opts {
		fn(&o)
	}

	repos := sqlite.NewRepositories(sqlitetest.Open(t))
	for _, actor := range []rbac.Actor{Admin, HR, Staff} {
		_, err := repos.Employees.Create(context.Background(), employee.Employee{
			ID:             actor.ID,
			Name:           string(actor.Role),
			DepartmentCode: "ADM",
			Role:           actor.Role,
		})
		require.NoError(t, err)
	}
	return &Env{Repos: repos, Services: service.New(repos, o)}
}

// Employee creates an employee in departmentCode and returns it.
func (e *Env) Employee(t testing.TB, name, departmentCode string) employee.Employee {
	t.Helper()

	emp, err := e.Services.Employee.CreateEmployee(context.Background(), Admin, employee.CreateEmployeeRequest{
		Name:           name,
		DepartmentCode: departmentCode,
		Role:           rbac.RoleEmployee,
	})
	require.NoError(t, err)
	return emp
}

// Day parses a YYYY-MM-DD date.
func Day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// At parses "YYYY-MM-DD HH:MM" in UTC.
func At(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Clock parses "HH:MM".
func Clock(s string) timeofday.Time {
	t, err := timeofday.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func Ptr[T any](v T) *T {
	return &v
}
