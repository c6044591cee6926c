package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/portfoliocms/backend/internal/apperrors"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	pingTimeout     = 10 * time.Second

	// mysqlDuplicateEntry is ER_DUP_ENTRY
	mysqlDuplicateEntry = 1062
)

// Open connects to MySQL and configures the connection pool.
// The caller owns the returned pool and must Close it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("database host is not configured")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// isDuplicateKey reports whether err is a unique constraint violation
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// writeError classifies a failed INSERT or UPDATE
func writeError(err error, conflictMessage, upstreamMessage string) error {
	if isDuplicateKey(err) {
		return apperrors.Conflict(conflictMessage)
	}
	return apperrors.Upstream(upstreamMessage, err)
}

// rowsAffectedOrNotFound turns a zero-row write into a not found error
func rowsAffectedOrNotFound(result sql.Result, notFoundMessage string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Upstream("failed to read affected rows", err)
	}
	if n == 0 {
		return apperrors.NotFound(notFoundMessage)
	}
	return nil
}

// nullString maps an empty string to SQL NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime maps a nil time to SQL NULL
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// timePtr converts a scanned nullable time
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// intPtr converts a scanned nullable int
func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// nullInt maps a nil int to SQL NULL
func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// queryList runs a list statement and scans every row with scan
func queryList[T any](ctx context.Context, db *sql.DB, logger *zap.Logger, what, query string, args []any, scan func(rowScanner) (*T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("failed to list "+what, zap.Error(err))
		return nil, apperrors.Upstream("failed to list "+what, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			logger.Error("failed to scan "+what, zap.Error(err))
			return nil, apperrors.Upstream("failed to scan "+what, err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		logger.Error("error iterating "+what, zap.Error(err))
		return nil, apperrors.Upstream("error iterating "+what, err)
	}
	return items, nil
}

// queryStrings runs a single-column statement
func queryStrings(ctx context.Context, db *sql.DB, logger *zap.Logger, what, query string, args ...any) ([]string, error) {
	return queryList(ctx, db, logger, what, query, args, func(row rowScanner) (*string, error) {
		var s string
		if err := row.Scan(&s); err != nil {
			return nil, err
		}
		return &s, nil
	})
}

// deleteByID hard deletes a row; the table name is always a code constant
func deleteByID(ctx context.Context, db *sql.DB, logger *zap.Logger, table string, id int, notFoundMessage string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		logger.Error("failed to delete row", zap.Error(err), zap.String("table", table), zap.Int("id", id))
		return apperrors.Upstream("failed to delete from "+table, err)
	}
	return rowsAffectedOrNotFound(result, notFoundMessage)
}

// execByID runs a single-row UPDATE and reports a missing row as not found
func execByID(ctx context.Context, db *sql.DB, logger *zap.Logger, what, query string, notFoundMessage string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error("failed to "+what, zap.Error(err))
		return apperrors.Upstream("failed to "+what, err)
	}
	return rowsAffectedOrNotFound(result, notFoundMessage)
}

// getOne scans a single row, mapping no rows to not found
func getOne[T any](ctx context.Context, db *sql.DB, logger *zap.Logger, what, query string, notFoundMessage string, scan func(rowScanner) (*T, error), args ...any) (*T, error) {
	item, err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound(notFoundMessage)
	}
	if err != nil {
		logger.Error("failed to get "+what, zap.Error(err))
		return nil, apperrors.Upstream("failed to get "+what, err)
	}
	return item, nil
}
