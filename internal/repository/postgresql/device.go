package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/device"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type deviceRepository struct {
	db *database.DB
}

func NewDeviceRepository(db *database.DB) device.DeviceRepository {
	return &deviceRepository{db: db}
}

const deviceColumns = `id, name, model, address, location, status, last_sync, created_at`

func scanDevice(row pgx.Row) (device.Device, error) {
	var (
		d  device.Device
		st string
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Model, &d.Address, &d.Location, &st, &d.LastSync, &d.CreatedAt); err != nil {
		return device.Device{}, err
	}
	d.Status = device.Status(st)
	return d, nil
}

// Create implements device.DeviceRepository.
func (r *deviceRepository) Create(ctx context.Context, d device.Device) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	d.CreatedAt = nowOr(d.CreatedAt)
	_, err := q.Exec(ctx,
		`INSERT INTO fingerprint_devices (`+deviceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.Name, d.Model, d.Address, d.Location, string(d.Status), d.LastSync, d.CreatedAt,
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
	q := GetQuerier(ctx, r.db)

	d, err := scanDevice(q.QueryRow(ctx, `SELECT `+deviceColumns+` FROM fingerprint_devices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return device.Device{}, device.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

// List implements device.DeviceRepository.
func (r *deviceRepository) List(ctx context.Context, st *device.Status) ([]device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + deviceColumns + ` FROM fingerprint_devices`
	var args []interface{}
	if st != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*st))
	}
	query += ` ORDER BY name`

	rows, err := q.Query(ctx, query, args...)
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
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE fingerprint_devices SET last_sync = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update device last sync: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return device.ErrDeviceNotFound
	}
	return nil
}
