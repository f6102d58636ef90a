// Package postgresql implements the domain repositories on PostgreSQL via pgx.
package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
	"github.com/cmlabs-hris/attendance-engine/internal/repository"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql/migrations"
)

// Open connects to dsn and applies the embedded migrations.
func Open(ctx context.Context, dsn string, pool database.PoolOptions) (*database.DB, error) {
	db, err := database.NewPostgreSQLDB(ctx, dsn, pool)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := database.ApplyPostgresMigrations(ctx, db, migrations.FS, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == foreignKeyViolation
}

func nowOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// toPgDate strips the clock so DATE columns hold the calendar day only.
func toPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: interval.Date(t), Valid: true}
}

func toPgNullDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return toPgDate(*t)
}

func fromPgDate(d pgtype.Date) time.Time {
	return interval.Date(d.Time)
}

func fromPgNullDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := fromPgDate(d)
	return &t
}

func toPgTime(t timeofday.Time) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * int64(time.Second/time.Microsecond), Valid: true}
}

func toPgNullTime(t *timeofday.Time) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return toPgTime(*t)
}

func fromPgTime(t pgtype.Time) timeofday.Time {
	return timeofday.Time(t.Microseconds / int64(time.Second/time.Microsecond))
}

func fromPgNullTime(t pgtype.Time) *timeofday.Time {
	if !t.Valid {
		return nil
	}
	v := fromPgTime(t)
	return &v
}

func fromNullInt4(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

func toNullInt4(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

// NewRepositories builds every repository over db.
func NewRepositories(db *database.DB) repository.Set {
	return repository.Set{
		Transactor:        NewTransactor(db),
		Employees:         NewEmployeeRepository(db),
		Departments:       NewDepartmentRepository(db),
		Transfers:         NewTransferRepository(db),
		Overrides:         NewOverrideRepository(db),
		Roles:             NewRoleRepository(db),
		ShiftTypes:        NewShiftTypeRepository(db),
		ShiftAssignments:  NewShiftAssignmentRepository(db),
		StatusTypes:       NewStatusTypeRepository(db),
		StatusAssignments: NewStatusAssignmentRepository(db),
		Attendance:        NewAttendanceRepository(db),
		Devices:           NewDeviceRepository(db),
	}
}
