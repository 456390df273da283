// Package extconntest provides an in-memory ExternalConnectivity for tests of
// code that depends on the extconn facades without a database.
package extconntest

import (
	"context"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/httpx"
)

// observations is shared between a fake source and every transaction started
// from it, so tests can inspect a transaction after it was consumed.
type observations struct {
	started    atomic.Int32
	committed  atomic.Bool
	commits    atomic.Int32
	abandoned  atomic.Bool
	borrowings atomic.Int32
}

// FakeExternalConnectivity is both the pool-like source and, once started,
// the transaction-like facade. Errors configured on the source are inherited
// by the transactions it starts.
type FakeExternalConnectivity struct {
	// BeginErr makes StartTransaction fail.
	BeginErr error
	// CommitErr makes Commit fail.
	CommitErr error
	// ConnectErr makes DatabaseCxn fail.
	ConnectErr error
	// Conn is lent by DatabaseCxn. When nil, any query panics.
	Conn extconn.Conn

	transacting bool
	finished    atomic.Bool
	borrowed    atomic.Bool
	obs         *observations
	httpClient  *httpx.Client
}

// New - FakeExternalConnectivity constructor.
func New() *FakeExternalConnectivity {
	return &FakeExternalConnectivity{
		obs:        &observations{},
		httpClient: httpx.NewClient(nil),
	}
}

// NewWithHTTPClient - FakeExternalConnectivity lending the given HTTP client.
func NewWithHTTPClient(client *httpx.Client) *FakeExternalConnectivity {
	f := New()
	f.httpClient = client

	return f
}

var (
	_ extconn.TransactableExternalConnectivity = (*FakeExternalConnectivity)(nil)
	_ extconn.TransactionalConnectivity        = (*FakeExternalConnectivity)(nil)
)

// IsTransacting reports whether this instance was produced by StartTransaction.
func (f *FakeExternalConnectivity) IsTransacting() bool {
	return f.transacting
}

// DidTransactionCommit reports whether any transaction started from this source committed.
func (f *FakeExternalConnectivity) DidTransactionCommit() bool {
	return f.obs.committed.Load()
}

// DidTransactionAbandon reports whether any transaction was released without commit.
func (f *FakeExternalConnectivity) DidTransactionAbandon() bool {
	return f.obs.abandoned.Load()
}

// TransactionsStarted returns how many transactions were successfully started.
func (f *FakeExternalConnectivity) TransactionsStarted() int {
	return int(f.obs.started.Load())
}

// CommitCalls returns how many times Commit was attempted.
func (f *FakeExternalConnectivity) CommitCalls() int {
	return int(f.obs.commits.Load())
}

// Borrowings returns how many DatabaseCxn scopes were opened.
func (f *FakeExternalConnectivity) Borrowings() int {
	return int(f.obs.borrowings.Load())
}

func (f *FakeExternalConnectivity) DatabaseCxn(ctx context.Context, fn func(ctx context.Context, handle extconn.ConnectionHandle) error) error {
	if f.ConnectErr != nil {
		return f.ConnectErr
	}
	if f.transacting {
		if f.finished.Load() {
			return extconn.ErrTransactionFinished
		}
		// A transaction lends its single connection to one scope at a time.
		if !f.borrowed.CompareAndSwap(false, true) {
			return extconn.ErrHandleInUse
		}
		defer f.borrowed.Store(false)
	}

	f.obs.borrowings.Add(1)

	conn := f.Conn
	if conn == nil {
		conn = noDatabaseConn{}
	}

	return extconn.RunScoped(ctx, conn, fn)
}

func (f *FakeExternalConnectivity) HTTPClient() *httpx.Client {
	return f.httpClient
}

func (f *FakeExternalConnectivity) StartTransaction(ctx context.Context) (extconn.TransactionalConnectivity, error) {
	if f.BeginErr != nil {
		return nil, f.BeginErr
	}

	f.obs.started.Add(1)

	return &FakeExternalConnectivity{
		CommitErr:   f.CommitErr,
		ConnectErr:  f.ConnectErr,
		Conn:        f.Conn,
		transacting: true,
		obs:         f.obs,
		httpClient:  f.httpClient,
	}, nil
}

func (f *FakeExternalConnectivity) Commit(ctx context.Context) error {
	if !f.transacting {
		panic("extconntest: tried to commit when we weren't in a transaction")
	}
	if !f.finished.CompareAndSwap(false, true) {
		return extconn.ErrTransactionFinished
	}

	f.obs.commits.Add(1)
	if f.CommitErr != nil {
		return f.CommitErr
	}

	f.obs.committed.Store(true)
	return nil
}

func (f *FakeExternalConnectivity) Release(ctx context.Context) {
	if !f.transacting {
		return
	}
	if f.finished.CompareAndSwap(false, true) {
		f.obs.abandoned.Store(true)
	}
}

// noDatabaseConn stands in for a real connection in tests that must not query.
type noDatabaseConn struct{}

const noDatabaseMsg = "extconntest: you cannot acquire a real database connection in a test"

func (noDatabaseConn) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic(noDatabaseMsg)
}

func (noDatabaseConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic(noDatabaseMsg)
}

func (noDatabaseConn) QueryRow(context.Context, string, ...any) pgx.Row {
	panic(noDatabaseMsg)
}

func (noDatabaseConn) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic(noDatabaseMsg)
}
