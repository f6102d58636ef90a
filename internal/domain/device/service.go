package device

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
)

// Client fetches raw punch events from a device gateway.
type Client interface {
	// FetchEvents returns events newer than since; a nil since fetches everything retained.
	FetchEvents(ctx context.Context, device Device, since *time.Time) ([]attendance.DeviceEvent, error)
}

type DeviceService interface {
	RegisterDevice(ctx context.Context, actor rbac.Actor, req RegisterDeviceRequest) (Device, error)
	ListDevices(ctx context.Context) ([]Device, error)

	// SyncDevice feeds the device's new events through the attendance state
	// machine in timestamp order and advances its last sync mark.
	SyncDevice(ctx context.Context, id string) (SyncResult, error)

	// SyncAll polls every active device. A failing device does not stop the others.
	SyncAll(ctx context.Context) ([]SyncResult, error)
}
