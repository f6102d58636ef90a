package status

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/interval"
)

// StatusType is a kind of leave or absence, e.g. annual leave or remote work.
type StatusType struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	RequiresApproval bool      `json:"requires_approval"`
	MaxDays          *int      `json:"max_days,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type ApprovalState string

const (
	StatePending  ApprovalState = "pending"
	StateApproved ApprovalState = "approved"
	StateRejected ApprovalState = "rejected"
)

func (s ApprovalState) Valid() bool {
	switch s {
	case StatePending, StateApproved, StateRejected:
		return true
	}
	return false
}

// Assignment is a date-ranged leave or absence record subject to approval.
// Pending moves to Approved or Rejected exactly once.
type Assignment struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employee_id"`
	StatusTypeID string        `json:"status_type_id"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      *time.Time    `json:"end_date,omitempty"`
	Notes        *string       `json:"notes,omitempty"`
	State        ApprovalState `json:"state"`
	ApprovedBy   *string       `json:"approved_by,omitempty"`
	DecidedAt    *time.Time    `json:"decided_at,omitempty"`
	DecisionNote *string       `json:"decision_note,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

func (a Assignment) Approved() bool { return a.State == StateApproved }

func (a Assignment) Span() interval.Period {
	return interval.Period{Start: a.StartDate, End: a.EndDate}
}

func (a Assignment) Created() time.Time { return a.CreatedAt }
func (a Assignment) Key() string        { return a.ID }

// AssignedStatus is an assignment joined with its type and employee.
type AssignedStatus struct {
	Assignment
	TypeName       string `json:"status_type"`
	EmployeeName   string `json:"employee_name"`
	DepartmentCode string `json:"department_code"`
	MaxDays        *int   `json:"max_days,omitempty"`

	// ExceedsMaxDays is advisory; the cap is never enforced on write.
	ExceedsMaxDays bool `json:"exceeds_max_days"`
}

// ExceedsCap reports whether a closed period is longer than maxDays.
func ExceedsCap(p interval.Period, maxDays *int) bool {
	if maxDays == nil {
		return false
	}
	days, ok := p.Days()
	return ok && days > *maxDays
}
