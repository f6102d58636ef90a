package employee

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
)

type Employee struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DepartmentCode string    `json:"department_code"`
	Role           rbac.Role `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

type Department struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	ManagerID *string   `json:"manager_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Transfer records an employee moving between departments.
type Transfer struct {
	ID                string    `json:"id"`
	EmployeeID        string    `json:"employee_id"`
	OldDepartmentCode string    `json:"old_department_code"`
	NewDepartmentCode string    `json:"new_department_code"`
	Notes             *string   `json:"notes,omitempty"`
	ChangedBy         *string   `json:"changed_by,omitempty"`
	ChangedAt         time.Time `json:"changed_at"`
}
