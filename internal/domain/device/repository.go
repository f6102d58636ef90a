package device

import (
	"context"
	"time"
)

type DeviceRepository interface {
	// Create returns ErrDeviceNameExists on a duplicate name.
	Create(ctx context.Context, device Device) (Device, error)

	// GetByID returns ErrDeviceNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (Device, error)

	List(ctx context.Context, status *Status) ([]Device, error)
	UpdateLastSync(ctx context.Context, id string, at time.Time) error
}
