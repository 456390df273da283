package extconn

import (
	"context"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// ErrHandleReleased is the panic value raised when a ConnectionHandle, or a Conn
// borrowed from it, is used after its DatabaseCxn scope ended.
var ErrHandleReleased = errors.New("extconn: connection handle used after its scope ended")

type scopedHandle struct {
	conn     Conn
	released atomic.Bool
}

func (h *scopedHandle) BorrowConnection() Conn {
	h.mustBeLive()
	return guardedConn{handle: h}
}

func (h *scopedHandle) mustBeLive() {
	if h.released.Load() {
		panic(ErrHandleReleased)
	}
}

// guardedConn re-checks the owning handle on every call, so a Conn retained
// past its scope cannot reach the underlying connection.
type guardedConn struct {
	handle *scopedHandle
}

func (g guardedConn) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	g.handle.mustBeLive()
	return g.handle.conn.Exec(ctx, sql, arguments...)
}

func (g guardedConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	g.handle.mustBeLive()
	return g.handle.conn.Query(ctx, sql, args...)
}

func (g guardedConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	g.handle.mustBeLive()
	return g.handle.conn.QueryRow(ctx, sql, args...)
}

func (g guardedConn) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	g.handle.mustBeLive()
	return g.handle.conn.SendBatch(ctx, b)
}

// RunScoped lends conn to fn through a ConnectionHandle that is valid only
// while fn runs. Implementations of ExternalConnectivity build DatabaseCxn on it.
func RunScoped(ctx context.Context, conn Conn, fn func(ctx context.Context, handle ConnectionHandle) error) error {
	handle := &scopedHandle{conn: conn}
	defer handle.released.Store(true)

	return fn(ctx, handle)
}

// WithConnection runs fn with a borrowed connection from ext and returns its result.
//
// Example:
//
//	count, err := extconn.WithConnection(ctx, ext, func(ctx context.Context, conn extconn.Conn) (int64, error) {
//	    var n int64
//	    err := conn.QueryRow(ctx, "SELECT count(*) FROM todo_user").Scan(&n)
//	    return n, err
//	})
func WithConnection[T any](ctx context.Context, ext ExternalConnectivity, fn func(ctx context.Context, conn Conn) (T, error)) (T, error) {
	var result T

	err := ext.DatabaseCxn(ctx, func(ctx context.Context, handle ConnectionHandle) error {
		var err error
		result, err = fn(ctx, handle.BorrowConnection())
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
