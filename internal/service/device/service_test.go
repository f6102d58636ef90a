package device_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/device"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/attendance-engine/internal/service"
	"github.com/cmlabs-hris/attendance-engine/internal/service/servicetest"
)

type stubClient struct {
	mu     sync.Mutex
	events map[string][]attendance.DeviceEvent
	err    map[string]error
	since  map[string]*time.Time
}

func newStubClient() *stubClient {
	return &stubClient{
		events: make(map[string][]attendance.DeviceEvent),
		err:    make(map[string]error),
		since:  make(map[string]*time.Time),
	}
}

func (c *stubClient) FetchEvents(_ context.Context, d device.Device, since *time.Time) ([]attendance.DeviceEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.since[d.Name] = since
	return c.events[d.Name], c.err[d.Name]
}

func setup(t *testing.T) (*servicetest.Env, *stubClient) {
	client := newStubClient()
	env := servicetest.New(t, func(o *service.Options) { o.DeviceClient = client })
	return env, client
}

func register(t *testing.T, env *servicetest.Env, name string, st device.Status) device.Device {
	t.Helper()
	d, err := env.Services.Device.RegisterDevice(context.Background(), servicetest.HR, device.RegisterDeviceRequest{
		Name: name, Address: "http://10.0.0.5:8080", Status: st,
	})
	require.NoError(t, err)
	return d
}

func TestRegisterDevice(t *testing.T) {
	ctx := context.Background()
	env, _ := setup(t)

	_, err := env.Services.Device.RegisterDevice(ctx, servicetest.Staff, device.RegisterDeviceRequest{Name: "gate", Address: "http://gate"})
	assert.ErrorIs(t, err, rbac.ErrPermissionDenied)

	_, err = env.Services.Device.RegisterDevice(ctx, servicetest.HR, device.RegisterDeviceRequest{Name: "gate", Address: "ftp://gate"})
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))

	d := register(t, env, "gate", "")
	assert.Equal(t, device.StatusActive, d.Status)

	_, err = env.Services.Device.RegisterDevice(ctx, servicetest.HR, device.RegisterDeviceRequest{Name: "gate", Address: "http://other"})
	assert.ErrorIs(t, err, device.ErrDeviceNameExists)

	list, err := env.Services.Device.ListDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSyncDevice_AppliesInTimestampOrderAndSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	env, client := setup(t)
	emp := env.Employee(t, "Huda", "IT")
	d := register(t, env, "gate", device.StatusActive)

	client.events["gate"] = []attendance.DeviceEvent{
		{EmployeeID: emp.ID, Timestamp: "2024-02-01 17:00:00", EventType: attendance.EventCheckOut},
		{EmployeeID: emp.ID, Timestamp: "2024-02-01 08:00:00", EventType: attendance.EventCheckIn},
		{EmployeeID: emp.ID, Timestamp: "2024-02-01 08:00:05", EventType: attendance.EventCheckIn},
		{EmployeeID: "19990001", Timestamp: "2024-02-01 08:01:00", EventType: attendance.EventCheckIn},
		{EmployeeID: emp.ID, Timestamp: "yesterday", EventType: attendance.EventCheckIn},
	}

	res, err := env.Services.Device.SyncDevice(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Fetched)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 3, res.Skipped)
	require.NotNil(t, res.LastSync)
	assert.True(t, res.LastSync.Equal(servicetest.At("2024-02-01 17:00")))

	rec, err := env.Repos.Attendance.GetByEmployeeAndDate(ctx, emp.ID, servicetest.Day("2024-02-01"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, servicetest.Clock("08:00"), *rec.CheckIn)
	assert.Equal(t, servicetest.Clock("17:00"), *rec.CheckOut)
	assert.Equal(t, attendance.SourceDevice, rec.Source)
	require.NotNil(t, rec.DeviceID)
	assert.Equal(t, d.ID, *rec.DeviceID, "events without a device id are attributed to the polled device")

	stored, err := env.Repos.Devices.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastSync)
	assert.True(t, stored.LastSync.Equal(*res.LastSync))

	client.events["gate"] = nil
	_, err = env.Services.Device.SyncDevice(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, client.since["gate"])
	assert.True(t, client.since["gate"].Equal(*res.LastSync), "the next poll resumes from last sync")
}

func TestSyncDevice_Errors(t *testing.T) {
	ctx := context.Background()
	env, client := setup(t)
	idle := register(t, env, "idle", device.StatusInactive)
	broken := register(t, env, "broken", device.StatusActive)
	client.err["broken"] = errors.New("connection refused")

	_, err := env.Services.Device.SyncDevice(ctx, "missing")
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)

	_, err = env.Services.Device.SyncDevice(ctx, idle.ID)
	assert.ErrorIs(t, err, device.ErrDeviceInactive)

	_, err = env.Services.Device.SyncDevice(ctx, broken.ID)
	assert.ErrorContains(t, err, "connection refused")

	stored, err := env.Repos.Devices.GetByID(ctx, broken.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastSync)
}

func TestSyncAll_SkipsInactiveAndSurvivesFailures(t *testing.T) {
	ctx := context.Background()
	env, client := setup(t)
	emp := env.Employee(t, "Huda", "IT")
	register(t, env, "idle", device.StatusInactive)
	register(t, env, "broken", device.StatusActive)
	healthy := register(t, env, "healthy", device.StatusActive)

	client.err["broken"] = errors.New("timeout")
	client.events["idle"] = []attendance.DeviceEvent{{EmployeeID: emp.ID, Timestamp: "2024-02-01 07:00:00", EventType: attendance.EventCheckIn}}
	client.events["healthy"] = []attendance.DeviceEvent{{EmployeeID: emp.ID, Timestamp: "2024-02-01 08:00:00", EventType: attendance.EventCheckIn}}

	results, err := env.Services.Device.SyncAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	applied := 0
	for _, r := range results {
		if r.DeviceID == healthy.ID {
			applied = r.Applied
		}
	}
	assert.Equal(t, 1, applied)

	rec, err := env.Repos.Attendance.GetByEmployeeAndDate(ctx, emp.ID, servicetest.Day("2024-02-01"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, servicetest.Clock("08:00"), *rec.CheckIn, "inactive devices are not polled")
}
