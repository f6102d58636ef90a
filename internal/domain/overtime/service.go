package overtime

import "context"

type OvertimeService interface {
	// ComputeOvertime aggregates overtime per employee over the requested range.
	// Days without a resolved shift, or whose shift disallows overtime, are skipped.
	ComputeOvertime(ctx context.Context, req Request) ([]Summary, error)

	// OvertimeDays lists the contributing days behind ComputeOvertime, oldest first.
	OvertimeDays(ctx context.Context, req Request) ([]Day, error)
}
