package extconn_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/extconn/extconntest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingConn records the statements executed through it.
type countingConn struct {
	statements []string
}

func (c *countingConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.statements = append(c.statements, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (c *countingConn) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	c.statements = append(c.statements, sql)
	return nil, errors.New("not supported")
}

func (c *countingConn) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	c.statements = append(c.statements, sql)
	return nil
}

func (c *countingConn) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	return nil
}

func TestRunScoped_LendsConnectionWhileInScope(t *testing.T) {
	conn := &countingConn{}

	err := extconn.RunScoped(context.Background(), conn, func(ctx context.Context, handle extconn.ConnectionHandle) error {
		tag, err := handle.BorrowConnection().Exec(ctx, "INSERT INTO todo_user(first_name, last_name) VALUES ($1, $2)", "John", "Doe")
		require.NoError(t, err)
		assert.Equal(t, int64(1), tag.RowsAffected())
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, conn.statements, 1)
}

func TestRunScoped_HandleCannotEscape(t *testing.T) {
	conn := &countingConn{}
	var escapedHandle extconn.ConnectionHandle
	var escapedConn extconn.Conn

	err := extconn.RunScoped(context.Background(), conn, func(ctx context.Context, handle extconn.ConnectionHandle) error {
		escapedHandle = handle
		escapedConn = handle.BorrowConnection()
		return nil
	})
	require.NoError(t, err)

	assert.PanicsWithValue(t, extconn.ErrHandleReleased, func() { escapedHandle.BorrowConnection() })
	assert.PanicsWithValue(t, extconn.ErrHandleReleased, func() {
		_, _ = escapedConn.Exec(context.Background(), "DELETE FROM todo_item")
	})
	assert.PanicsWithValue(t, extconn.ErrHandleReleased, func() {
		escapedConn.QueryRow(context.Background(), "SELECT 1")
	})
	assert.Empty(t, conn.statements)
}

func TestRunScoped_PropagatesCallbackError(t *testing.T) {
	err := extconn.RunScoped(context.Background(), &countingConn{}, func(ctx context.Context, handle extconn.ConnectionHandle) error {
		return errSample
	})

	assert.ErrorIs(t, err, errSample)
}

func TestWithConnection_ReturnsValue(t *testing.T) {
	ext := extconntest.New()
	conn := &countingConn{}
	ext.Conn = conn

	rows, err := extconn.WithConnection(context.Background(), ext, func(ctx context.Context, c extconn.Conn) (int64, error) {
		tag, err := c.Exec(ctx, "UPDATE todo_item SET item_desc = $1 WHERE id = $2", "x", 1)
		return tag.RowsAffected(), err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, []string{"UPDATE todo_item SET item_desc = $1 WHERE id = $2"}, conn.statements)
}

func TestWithConnection_AcquireFailureSkipsCallback(t *testing.T) {
	ext := extconntest.New()
	ext.ConnectErr = errors.New("pool exhausted")
	called := false

	value, err := extconn.WithConnection(context.Background(), ext, func(ctx context.Context, c extconn.Conn) (string, error) {
		called = true
		return "never", nil
	})

	assert.ErrorIs(t, err, ext.ConnectErr)
	assert.Empty(t, value)
	assert.False(t, called)
}

func TestWithConnection_ZeroValueOnError(t *testing.T) {
	ext := extconntest.New()
	ext.Conn = &countingConn{}

	value, err := extconn.WithConnection(context.Background(), ext, func(ctx context.Context, c extconn.Conn) (int, error) {
		return 7, errSample
	})

	assert.ErrorIs(t, err, errSample)
	assert.Zero(t, value)
}

func TestFakeConnectionRefusesRealQueries(t *testing.T) {
	ext := extconntest.New()

	err := ext.DatabaseCxn(context.Background(), func(ctx context.Context, handle extconn.ConnectionHandle) error {
		assert.Panics(t, func() {
			_, _ = handle.BorrowConnection().Exec(ctx, "SELECT 1")
		})
		return nil
	})

	require.NoError(t, err)
}
