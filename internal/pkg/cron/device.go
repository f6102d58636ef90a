package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/device"
)

type DeviceJobs struct {
	deviceService device.DeviceService
}

func NewDeviceJobs(deviceService device.DeviceService) *DeviceJobs {
	return &DeviceJobs{deviceService: deviceService}
}

func (j *DeviceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("poll_attendance_devices", interval, j.PollDevices)
}

// PollDevices pulls new punches from every active device. Per-device failures
// are logged by the device service and retried on the next tick.
func (j *DeviceJobs) PollDevices(ctx context.Context) error {
	_, err := j.deviceService.SyncAll(ctx)
	return err
}
