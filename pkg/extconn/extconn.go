// Package extconn defines how business logic reaches external systems.
//
// Persistence adapters depend on ExternalConnectivity only, so the same adapter
// runs unchanged against a pooled connection or inside an open transaction.
// Code that needs atomicity depends on Transactable and runs its unit of work
// through WithTransaction, which commits if and only if the work succeeded and
// classifies failures as TxBegin, Source or TxCommit.
//
// Connection handles are scoped: DatabaseCxn lends a handle to a callback and
// invalidates it when the callback returns. A handle, or the Conn it lent out,
// used after its scope panics with ErrHandleReleased.
package extconn

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marcodd23/go-todo-service/pkg/httpx"
)

// Conn is the raw connection surface queries are issued against.
// Both *pgxpool.Conn and pgx.Tx satisfy it.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// ConnectionHandle proves the holder may issue queries for the lifetime of the
// DatabaseCxn scope that produced it. It performs no work itself.
type ConnectionHandle interface {
	BorrowConnection() Conn
}

// ExternalConnectivity is the facade business logic depends on.
//
// DatabaseCxn acquires a connection, hands a ConnectionHandle to fn and
// releases the connection when fn returns. If acquisition fails fn is not
// invoked and the acquisition error is returned; no retry is attempted.
//
// HTTPClient returns the outbound client. Transactional implementations return
// the same client as their source, so non-database systems stay reachable
// while a transaction is open.
type ExternalConnectivity interface {
	DatabaseCxn(ctx context.Context, fn func(ctx context.Context, handle ConnectionHandle) error) error
	HTTPClient() *httpx.Client
}

// TransactionHandle is the one-shot commit capability of an open transaction.
//
// Commit makes every write issued through the transaction durable. A failed
// commit means the transaction is presumed rolled back. Calling Commit a second
// time returns ErrTransactionFinished.
type TransactionHandle interface {
	Commit(ctx context.Context) error
}

// TransactionalConnectivity is an ExternalConnectivity backed by an open
// transaction. It deliberately does not implement Transactable: nested
// transactions are a type error.
//
// Release abandons the transaction if it was not committed (rollback) and
// frees its connection. It is a no-op after Commit and never commits.
type TransactionalConnectivity interface {
	ExternalConnectivity
	TransactionHandle
	Release(ctx context.Context)
}

// Transactable can start independent transactions. Starting one does not
// mutate or invalidate the source.
type Transactable interface {
	StartTransaction(ctx context.Context) (TransactionalConnectivity, error)
}

// TransactableExternalConnectivity is a pool-backed facade: it serves one-shot
// operations directly and can start transactions.
type TransactableExternalConnectivity interface {
	ExternalConnectivity
	Transactable
}
