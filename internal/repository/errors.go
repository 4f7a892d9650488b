// Package repository holds the MySQL data access code.  Unknown keys are
// reported with errors wrapping booking.ErrNotFound so every layer above
// can map them the same way.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hotel-reservation/internal/booking"
)

// ErrConflict is returned when an insert or update violates a unique key,
// e.g. a second room with the same number.  Handlers translate it to 409.
var ErrConflict = errors.New("conflict")

// DBTX is satisfied by *sql.DB and *sql.Tx so repositories work inside or
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const mysqlDuplicateEntry = 1062

// mapErr converts driver errors into the package's sentinels.
func mapErr(err error, kind string, key any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", kind, key, booking.ErrNotFound)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%s %v: %w", kind, key, ErrConflict)
	}
	return err
}

func affectedOne(res sql.Result, kind string, key any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", kind, key, booking.ErrNotFound)
	}
	return nil
}

func nullString(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}
