package pgxdb

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/marcodd23/go-todo-service/pkg/errorx"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/pkg/errors"
)

// QueryAndMap executes a query and maps every row to T by its `db` tags.
//
// The returned slice is never nil, so an empty result serializes as [].
//
// Example Usage:
//
//	users, err := pgxdb.QueryAndMap[userRow](ctx, conn, "SELECT id, first_name, last_name FROM todo_user")
func QueryAndMap[T any](ctx context.Context, conn extconn.Conn, query string, args ...any) ([]T, error) {
	results := make([]T, 0)

	if err := pgxscan.Select(ctx, conn, &results, query, args...); err != nil {
		return nil, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", query)
	}

	return results, nil
}

// QueryOne executes a query expected to return at most one row.
//
// Returns:
//   - T: The mapped row, or the zero value when nothing matched.
//   - bool: Whether a row was found.
//   - error: Any error encountered during query execution or row scanning.
func QueryOne[T any](ctx context.Context, conn extconn.Conn, query string, args ...any) (T, bool, error) {
	var result T

	err := pgxscan.Get(ctx, conn, &result, query, args...)
	if err != nil {
		var zero T
		if pgxscan.NotFound(err) {
			return zero, false, nil
		}

		return zero, false, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", query)
	}

	return result, true, nil
}

// QueryScalar scans a single column of a single row, e.g. RETURNING id or SELECT EXISTS(...).
func QueryScalar[T any](ctx context.Context, conn extconn.Conn, query string, args ...any) (T, error) {
	var value T

	if err := conn.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, errors.WithStack(err)
		}

		return zero, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", query)
	}

	return value, nil
}

// Exec - Executes a command query and returns the number of rows affected.
func Exec(ctx context.Context, conn extconn.Conn, execQuery string, args ...any) (int64, error) {
	result, err := conn.Exec(ctx, execQuery, args...)
	if err != nil {
		return 0, errorx.NewDatabaseErrorWrapper(err, "Error executing query '%s'", execQuery)
	}

	return result.RowsAffected(), nil
}

// ExecBatch - queues the statements of batch and executes them in one round trip.
// The first failing statement aborts the batch and its error is returned.
func ExecBatch(ctx context.Context, conn extconn.Conn, batch *pgx.Batch) error {
	results := conn.SendBatch(ctx, batch)

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return errorx.NewDatabaseErrorWrapper(err, "Error executing batch statement %d", i)
		}
	}

	if err := results.Close(); err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "Error closing batch")
	}

	return nil
}
