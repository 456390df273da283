package extconn

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrTransactionFinished is returned when a committed or abandoned
	// transaction is committed again or asked for a connection.
	ErrTransactionFinished = errors.New("extconn: transaction already finished")

	// ErrHandleInUse is returned when a transaction is asked for a connection
	// while a previous DatabaseCxn scope on it is still open.
	ErrHandleInUse = errors.New("extconn: transaction connection already borrowed")
)

// TxErrorKind tells which stage of WithTransaction failed.
type TxErrorKind int

const (
	// TxErrorSource - the unit of work returned an error. Nothing was committed.
	TxErrorSource TxErrorKind = iota + 1
	// TxErrorBegin - the transaction could not be started. The unit of work never ran.
	TxErrorBegin
	// TxErrorCommit - the unit of work succeeded but the commit failed.
	TxErrorCommit
)

func (k TxErrorKind) String() string {
	switch k {
	case TxErrorSource:
		return "source"
	case TxErrorBegin:
		return "tx_begin"
	case TxErrorCommit:
		return "tx_commit"
	}

	return fmt.Sprintf("TxErrorKind(%d)", int(k))
}

// TxOrSourceError is the error returned by WithTransaction.
//
// Exactly one Kind applies. For TxErrorCommit, SuccessfulResult holds the value
// the unit of work returned: the work happened in application terms even
// though it did not durably land. For the other kinds it is the zero value.
type TxOrSourceError[R any] struct {
	Kind             TxErrorKind
	Err              error
	SuccessfulResult R
}

func (e *TxOrSourceError[R]) Error() string {
	switch e.Kind {
	case TxErrorBegin:
		return fmt.Sprintf("failed to start the transaction: %v", e.Err)
	case TxErrorCommit:
		return fmt.Sprintf("got a successful result, but the database transaction failed: %v", e.Err)
	}

	return e.Err.Error()
}

func (e *TxOrSourceError[R]) Unwrap() error {
	return e.Err
}

// TxKind reports the failed stage without knowing R.
func (e *TxOrSourceError[R]) TxKind() TxErrorKind {
	return e.Kind
}

type txKinded interface {
	TxKind() TxErrorKind
}

// KindOf returns the stage that failed if err (or anything it wraps) came from WithTransaction.
func KindOf(err error) (TxErrorKind, bool) {
	var kinded txKinded
	if errors.As(err, &kinded) {
		return kinded.TxKind(), true
	}

	return 0, false
}

// IsTxBegin reports whether err is a transaction begin failure.
func IsTxBegin(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == TxErrorBegin
}

// IsSource reports whether err is a failure of the unit of work.
func IsSource(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == TxErrorSource
}

// IsTxCommit reports whether err is a commit failure after a successful unit of work.
func IsTxCommit(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == TxErrorCommit
}

// AsTxError extracts the typed error, giving access to SuccessfulResult.
func AsTxError[R any](err error) (*TxOrSourceError[R], bool) {
	var txErr *TxOrSourceError[R]
	if errors.As(err, &txErr) {
		return txErr, true
	}

	return nil, false
}
