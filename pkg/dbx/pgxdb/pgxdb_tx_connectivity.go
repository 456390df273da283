package pgxdb

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/marcodd23/go-todo-service/pkg/errorx"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/httpx"
	"github.com/marcodd23/go-todo-service/pkg/logx"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type txState int32

const (
	txStarted txState = iota
	txCommitted
	txAbandoned
)

// TxConnectivity - transactional ExternalConnectivity over a single pgx transaction.
// It Implements extconn.TransactionalConnectivity.
//
// Commit may be called once. Release rolls back unless Commit was called and is
// a no-op afterwards. Every DatabaseCxn lends the same transaction connection,
// one scope at a time.
type TxConnectivity struct {
	tx         pgx.Tx
	txID       int64
	httpClient *httpx.Client
	span       trace.Span
	state      atomic.Int32
	borrowed   atomic.Bool
}

var _ extconn.TransactionalConnectivity = (*TxConnectivity)(nil)

func newTxConnectivity(tx pgx.Tx, txID int64, httpClient *httpx.Client, span trace.Span) *TxConnectivity {
	return &TxConnectivity{
		tx:         tx,
		txID:       txID,
		httpClient: httpClient,
		span:       span,
	}
}

// ID - random id of the transaction, used in logs and spans.
func (t *TxConnectivity) ID() int64 {
	return t.txID
}

func (t *TxConnectivity) DatabaseCxn(ctx context.Context, fn func(ctx context.Context, handle extconn.ConnectionHandle) error) error {
	if txState(t.state.Load()) != txStarted {
		return extconn.ErrTransactionFinished
	}

	if !t.borrowed.CompareAndSwap(false, true) {
		return extconn.ErrHandleInUse
	}
	defer t.borrowed.Store(false)

	return extconn.RunScoped(ctx, t.tx, fn)
}

func (t *TxConnectivity) HTTPClient() *httpx.Client {
	return t.httpClient
}

// Commit - commits the transaction and returns its connection to the pool.
func (t *TxConnectivity) Commit(ctx context.Context) error {
	if !t.state.CompareAndSwap(int32(txStarted), int32(txCommitted)) {
		return extconn.ErrTransactionFinished
	}
	defer t.span.End()

	if err := t.tx.Commit(ctx); err != nil {
		t.span.RecordError(err)
		t.span.SetStatus(codes.Error, "commit failed")
		t.span.SetAttributes(attribute.String("tx.outcome", "commit_failed"))

		return errorx.NewDatabaseErrorWrapper(err, "error during transaction commit")
	}

	t.span.SetAttributes(attribute.String("tx.outcome", "committed"))

	return nil
}

// Release - rolls the transaction back if it was not committed. Rollback failures
// are logged: the connection is closed by pgx in that case and nothing is left to undo.
func (t *TxConnectivity) Release(ctx context.Context) {
	if !t.state.CompareAndSwap(int32(txStarted), int32(txAbandoned)) {
		return
	}
	defer t.span.End()

	t.span.SetAttributes(attribute.String("tx.outcome", "rolled_back"))

	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		t.span.RecordError(err)
		logx.GetLogger().LogError(ctx, fmt.Sprintf("error Rolling Back transaction: %d", t.txID), err)

		return
	}

	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("Rollback transaction: %d", t.txID))
}
