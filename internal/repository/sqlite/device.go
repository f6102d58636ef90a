package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/device"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type deviceRepository struct {
	db *database.SQLiteDB
}

func NewDeviceRepository(db *database.SQLiteDB) device.DeviceRepository {
	return &deviceRepository{db: db}
}

const deviceColumns = `id, name, model, address, location, status, last_sync, created_at`

func scanDevice(row interface{ Scan(...any) error }) (device.Device, error) {
	var (
		d               device.Device
		model, location sql.NullString
		st              string
		lastSync        sql.NullInt64
		createdAt       int64
	)
	if err := row.Scan(&d.ID, &d.Name, &model, &d.Address, &location, &st, &lastSync, &createdAt); err != nil {
		return device.Device{}, err
	}
	d.Model = fromNullString(model)
	d.Location = fromNullString(location)
	d.Status = device.Status(st)
	d.LastSync = fromNullMillis(lastSync)
	d.CreatedAt = fromMillis(createdAt)
	return d, nil
}

// Create implements device.DeviceRepository.
func (r *deviceRepository) Create(ctx context.Context, d device.Device) (device.Device, error) {
	q := getQuerier(ctx, r.db)

	d.CreatedAt = nowOr(d.CreatedAt)
	_, err := q.ExecContext(ctx,
		`INSERT INTO fingerprint_devices (`+deviceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Model, d.Address, d.Location, string(d.Status), nullMillis(d.LastSync), toMillis(d.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return device.Device{}, device.ErrDeviceNameExists
		}
		return device.Device{}, fmt.Errorf("failed to create device: %w", err)
	}
	return d, nil
}

// GetByID implements device.DeviceRepository.
func (r *deviceRepository) GetByID(ctx context.Context, id string) (device.Device, error) {
	q := getQuerier(ctx, r.db)

	d, err := scanDevice(q.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM fingerprint_devices WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return device.Device{}, device.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

// List implements device.DeviceRepository.
func (r *deviceRepository) List(ctx context.Context, st *device.Status) ([]device.Device, error) {
	q := getQuerier(ctx, r.db)

	query := `SELECT ` + deviceColumns + ` FROM fingerprint_devices`
	var args []any
	if st != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*st))
	}
	query += ` ORDER BY name`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var out []device.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateLastSync implements device.DeviceRepository.
func (r *deviceRepository) UpdateLastSync(ctx context.Context, id string, at time.Time) error {
	q := getQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `UPDATE fingerprint_devices SET last_sync = ? WHERE id = ?`, toMillis(at), id)
	if err != nil {
		return fmt.Errorf("failed to update device last sync: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return device.ErrDeviceNotFound
	}
	return nil
}
