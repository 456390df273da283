package extconn

import (
	"context"
	"time"

	"github.com/marcodd23/go-todo-service/pkg/httpx"
)

// releaseTimeout bounds the rollback issued when the transaction is abandoned.
const releaseTimeout = 5 * time.Second

// UnitOfWork is the caller-supplied work executed inside a transaction. The
// ExternalConnectivity it receives is backed by that transaction.
type UnitOfWork[R any] func(ctx context.Context, ext ExternalConnectivity) (R, error)

// WithTransaction starts a transaction from source, runs work exactly once and
// commits if and only if work succeeded.
//
// Outcomes:
//   - begin fails: returns *TxOrSourceError[R]{Kind: TxErrorBegin}; work is not invoked.
//   - work fails: the transaction is rolled back; returns {Kind: TxErrorSource, Err: workErr}.
//   - commit fails: returns {Kind: TxErrorCommit, SuccessfulResult: value, Err: commitErr}.
//   - otherwise: returns work's value and nil.
//
// The transaction is released on every path, including a panic in work (the
// panic propagates unchanged) and cancellation of ctx. Release runs on a
// context detached from ctx's cancellation, bounded by releaseTimeout, so
// rollback is still attempted without blocking forever.
// Nothing is logged or retried here.
//
// Example:
//
//	id, err := extconn.WithTransaction(ctx, ext, func(ctx context.Context, tx extconn.ExternalConnectivity) (int32, error) {
//	    if err := verifyOwner(ctx, tx, userID); err != nil {
//	        return 0, err
//	    }
//	    return insertTask(ctx, tx, userID, description)
//	})
func WithTransaction[R any](ctx context.Context, source Transactable, work UnitOfWork[R]) (R, error) {
	var zero R

	tx, err := source.StartTransaction(ctx)
	if err != nil {
		return zero, &TxOrSourceError[R]{Kind: TxErrorBegin, Err: err}
	}
	defer release(ctx, tx)

	value, err := work(ctx, transactionView{tx: tx})
	if err != nil {
		return zero, &TxOrSourceError[R]{Kind: TxErrorSource, Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, &TxOrSourceError[R]{Kind: TxErrorCommit, Err: err, SuccessfulResult: value}
	}

	return value, nil
}

func release(ctx context.Context, tx TransactionalConnectivity) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	tx.Release(releaseCtx)
}

// transactionView hides Commit and Release from the unit of work.
type transactionView struct {
	tx TransactionalConnectivity
}

func (v transactionView) DatabaseCxn(ctx context.Context, fn func(ctx context.Context, handle ConnectionHandle) error) error {
	return v.tx.DatabaseCxn(ctx, fn)
}

func (v transactionView) HTTPClient() *httpx.Client {
	return v.tx.HTTPClient()
}
