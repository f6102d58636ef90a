// Package sqlite implements the domain repositories on the embedded SQLite store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/interval"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeofday"
	"github.com/cmlabs-hris/attendance-engine/internal/repository"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/sqlite/migrations"
)

// Open opens the store at path and applies the embedded migrations.
func Open(ctx context.Context, path string) (*database.SQLiteDB, error) {
	db, err := database.NewSQLiteDB(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := database.ApplySQLiteMigrations(ctx, db.DB, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

type txKey struct{}

type transactor struct {
	db *database.SQLiteDB
}

func NewTransactor(db *database.SQLiteDB) database.Transactor {
	return &transactor{db: db}
}

// WithinTransaction implements database.Transactor.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback error during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// getQuerier returns the transaction carried by ctx, or the pool.
func getQuerier(ctx context.Context, db *database.SQLiteDB) database.SQLQuerier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func nowOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func toDate(t time.Time) string {
	return interval.Date(t).Format(interval.DateLayout)
}

func fromDate(s string) (time.Time, error) {
	t, err := time.Parse(interval.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toDate(*t)
}

func fromNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := fromDate(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toMillis(*t)
}

func fromNullMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func nullTimeOfDay(t *timeofday.Time) any {
	if t == nil {
		return nil
	}
	return t.String()
}

func fromNullTimeOfDay(s sql.NullString) (*timeofday.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := timeofday.Parse(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func fromNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func constraintCode(err error) (int, bool) {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}

func isUniqueViolation(err error) bool {
	if code, ok := constraintCode(err); ok {
		switch code {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if code, ok := constraintCode(err); ok && code == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

// affected returns the number of rows changed by res.
func affected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// NewRepositories builds every repository over db.
func NewRepositories(db *database.SQLiteDB) repository.Set {
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
