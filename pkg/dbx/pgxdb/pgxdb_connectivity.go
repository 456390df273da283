package pgxdb

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcodd23/go-todo-service/pkg/dbx"
	"github.com/marcodd23/go-todo-service/pkg/errorx"
	"github.com/marcodd23/go-todo-service/pkg/extconn"
	"github.com/marcodd23/go-todo-service/pkg/httpx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/marcodd23/go-todo-service/pkg/dbx/pgxdb")

// connSource is the part of the pool the connectivity needs.
type connSource interface {
	acquire(ctx context.Context) (extconn.Conn, func(), error)
	begin(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	close()
}

type poolSource struct {
	pool *pgxpool.Pool
}

func (s poolSource) acquire(ctx context.Context) (extconn.Conn, func(), error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}

	return conn, conn.Release, nil
}

func (s poolSource) begin(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	return s.pool.BeginTx(ctx, opts)
}

func (s poolSource) close() {
	s.pool.Close()
}

// Option - Connectivity functional option.
type Option func(*Connectivity)

// WithTxOptions - options used by every transaction started from the Connectivity.
func WithTxOptions(opts dbx.TxOptions) Option {
	return func(c *Connectivity) {
		c.txOptions = opts
	}
}

// WithAcquireTimeout - bounds the wait for a pooled connection. Zero waits as long as ctx allows.
func WithAcquireTimeout(timeout time.Duration) Option {
	return func(c *Connectivity) {
		c.acquireTimeout = timeout
	}
}

// Connectivity - pooled ExternalConnectivity backed by a pgx pool.
// It Implements extconn.TransactableExternalConnectivity.
type Connectivity struct {
	source         connSource
	httpClient     *httpx.Client
	txOptions      dbx.TxOptions
	acquireTimeout time.Duration
}

var _ extconn.TransactableExternalConnectivity = (*Connectivity)(nil)

// NewConnectivity - Connectivity constructor. httpClient is shared with every transaction started from it.
func NewConnectivity(pool *pgxpool.Pool, httpClient *httpx.Client, opts ...Option) *Connectivity {
	return newConnectivity(poolSource{pool: pool}, httpClient, opts...)
}

func newConnectivity(source connSource, httpClient *httpx.Client, opts ...Option) *Connectivity {
	if httpClient == nil {
		httpClient = httpx.NewClient(nil)
	}

	c := &Connectivity{
		source:     source,
		httpClient: httpClient,
		txOptions:  dbx.DefaultTxOptions,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// DatabaseCxn - borrows a pooled connection for the duration of fn and returns it to the pool afterwards.
func (c *Connectivity) DatabaseCxn(ctx context.Context, fn func(ctx context.Context, handle extconn.ConnectionHandle) error) error {
	acquireCtx, cancel := c.acquireContext(ctx)
	conn, release, err := c.source.acquire(acquireCtx)
	cancel()
	if err != nil {
		return errorx.NewDatabaseErrorWrapper(err, "Error acquiring connection from pool")
	}
	defer release()

	return extconn.RunScoped(ctx, conn, fn)
}

func (c *Connectivity) HTTPClient() *httpx.Client {
	return c.httpClient
}

// StartTransaction - acquires a connection and begins a transaction on it. The connection
// goes back to the pool when the transaction is committed or released.
func (c *Connectivity) StartTransaction(ctx context.Context) (extconn.TransactionalConnectivity, error) {
	txID := dbx.GenerateRandomInt64Id()

	ctx, span := tracer.Start(ctx, "db.transaction",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int64("tx.id", txID),
			attribute.String("tx.isolation", string(c.txOptions.IsoLevel)),
			attribute.String("tx.access_mode", string(c.txOptions.AccessMode)),
		))

	beginCtx, cancel := c.acquireContext(ctx)
	tx, err := c.source.begin(beginCtx, toPgxTxOptions(c.txOptions))
	cancel()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin failed")
		span.End()

		return nil, errorx.NewDatabaseErrorWrapper(err, "error starting transaction")
	}

	return newTxConnectivity(tx, txID, c.httpClient, span), nil
}

// Close - closes the underlying pool.
func (c *Connectivity) Close() {
	c.source.close()
}

func (c *Connectivity) acquireContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.acquireTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.acquireTimeout)
}

func toPgxTxOptions(opts dbx.TxOptions) pgx.TxOptions {
	pgxOpts := pgx.TxOptions{
		IsoLevel:   pgx.TxIsoLevel(opts.IsoLevel),
		AccessMode: pgx.TxAccessMode(opts.AccessMode),
	}

	if opts.Deferrable {
		pgxOpts.DeferrableMode = pgx.Deferrable
	}

	return pgxOpts
}

// Ping - health probe. Runs SELECT 1 on a connection borrowed from ext.
func Ping(ctx context.Context, ext extconn.ExternalConnectivity) error {
	_, err := extconn.WithConnection(ctx, ext, func(ctx context.Context, conn extconn.Conn) (int, error) {
		var one int
		if err := conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
			return 0, errorx.NewDatabaseErrorWrapper(err, "database ping failed")
		}

		return one, nil
	})

	return err
}
