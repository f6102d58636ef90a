package report

import "context"

// ReportService derives read-only reports from attendance and resolved shifts.
type ReportService interface {
	// LateArrivals lists check-ins after the resolved shift start plus its
	// flexible minutes, or after the default threshold when no shift applies.
	LateArrivals(ctx context.Context, req LateArrivalsRequest) ([]LateArrival, error)

	DepartmentSummary(ctx context.Context, req RangeRequest) ([]DepartmentSummary, error)
	EmployeeSummary(ctx context.Context, req RangeRequest) (EmployeeSummary, error)
}
