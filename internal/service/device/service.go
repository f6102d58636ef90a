package device

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/device"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// maxParallelSyncs bounds how many device gateways are polled at once.
const maxParallelSyncs = 4

type DeviceServiceImpl struct {
	deviceRepo device.DeviceRepository
	client     device.Client
	attendance attendance.AttendanceService
	loc        *time.Location
}

func NewDeviceService(
	deviceRepo device.DeviceRepository,
	client device.Client,
	attendanceService attendance.AttendanceService,
	loc *time.Location,
) device.DeviceService {
	return &DeviceServiceImpl{
		deviceRepo: deviceRepo,
		client:     client,
		attendance: attendanceService,
		loc:        loc,
	}
}

// RegisterDevice implements device.DeviceService.
func (s *DeviceServiceImpl) RegisterDevice(ctx context.Context, actor rbac.Actor, req device.RegisterDeviceRequest) (device.Device, error) {
	if err := rbac.Require(actor, rbac.ManageAttendance); err != nil {
		return device.Device{}, err
	}
	if err := req.Validate(); err != nil {
		return device.Device{}, err
	}

	created, err := s.deviceRepo.Create(ctx, device.Device{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Name:     req.Name,
		Model:    req.Model,
		Address:  req.Address,
		Location: req.Location,
		Status:   req.Status,
	})
	if err != nil {
		return device.Device{}, err
	}

	slog.Info("Device registered", "actor_id", actor.ID, "device_id", created.ID, "name", created.Name, "address", created.Address)
	return created, nil
}

// ListDevices implements device.DeviceService.
func (s *DeviceServiceImpl) ListDevices(ctx context.Context) ([]device.Device, error) {
	return s.deviceRepo.List(ctx, nil)
}

// SyncDevice implements device.DeviceService.
func (s *DeviceServiceImpl) SyncDevice(ctx context.Context, id string) (device.SyncResult, error) {
	d, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		return device.SyncResult{}, err
	}
	if d.Status != device.StatusActive {
		return device.SyncResult{}, device.ErrDeviceInactive
	}
	return s.sync(ctx, d)
}

// SyncAll implements device.DeviceService.
func (s *DeviceServiceImpl) SyncAll(ctx context.Context) ([]device.SyncResult, error) {
	active := device.StatusActive
	devices, err := s.deviceRepo.List(ctx, &active)
	if err != nil {
		return nil, err
	}

	results := make([]device.SyncResult, len(devices))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelSyncs)
	for i, d := range devices {
		i, d := i, d
		g.Go(func() error {
			res, err := s.sync(gCtx, d)
			if err != nil {
				slog.Error("Device sync failed", "device_id", d.ID, "name", d.Name, "error", err)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}

type timedEvent struct {
	event attendance.DeviceEvent
	at    time.Time
}

// sync applies the device's new events oldest first. Expected failures such as
// duplicates are skipped; any other failure stops the batch and leaves
// last_sync at the last processed event so the rest is fetched again.
func (s *DeviceServiceImpl) sync(ctx context.Context, d device.Device) (device.SyncResult, error) {
	result := device.SyncResult{DeviceID: d.ID, LastSync: d.LastSync}

	events, err := s.client.FetchEvents(ctx, d, d.LastSync)
	if err != nil {
		return result, fmt.Errorf("failed to fetch events from device %s: %w", d.ID, err)
	}
	result.Fetched = len(events)

	timed := make([]timedEvent, 0, len(events))
	for _, e := range events {
		at, ok := validator.ParseLocalDateTime(e.Timestamp, s.loc)
		if !ok {
			slog.Debug("Device event skipped", "device_id", d.ID, "employee_id", e.EmployeeID, "reason", "unparsable timestamp", "timestamp", e.Timestamp)
			result.Skipped++
			continue
		}
		if e.DeviceID == "" {
			e.DeviceID = d.ID
		}
		timed = append(timed, timedEvent{event: e, at: at})
	}
	sort.SliceStable(timed, func(i, j int) bool { return timed[i].at.Before(timed[j].at) })

	var (
		last    *time.Time
		stopErr error
	)
	for _, te := range timed {
		_, err := s.attendance.RecordEvent(ctx, te.event)
		if err != nil && !apperror.IsExpected(err) {
			stopErr = err
			break
		}
		if err != nil {
			slog.Debug("Device event skipped",
				"device_id", d.ID,
				"employee_id", te.event.EmployeeID,
				"event_type", te.event.EventType,
				"reason", err.Error(),
			)
			result.Skipped++
		} else {
			result.Applied++
		}
		at := te.at
		last = &at
	}

	if last != nil && (d.LastSync == nil || last.After(*d.LastSync)) {
		if err := s.deviceRepo.UpdateLastSync(ctx, d.ID, *last); err != nil {
			return result, fmt.Errorf("failed to advance last sync of device %s: %w", d.ID, err)
		}
		result.LastSync = last
	}

	if stopErr != nil {
		return result, fmt.Errorf("device %s batch stopped: %w", d.ID, stopErr)
	}
	if result.Fetched > 0 {
		slog.Info("Device synced", "device_id", d.ID, "fetched", result.Fetched, "applied", result.Applied, "skipped", result.Skipped)
	}
	return result, nil
}
