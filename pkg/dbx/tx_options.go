package dbx

// IsoLevel is the transaction isolation level.
type IsoLevel string

const (
	Serializable    IsoLevel = "serializable"
	RepeatableRead  IsoLevel = "repeatable read"
	ReadCommitted   IsoLevel = "read committed"
	ReadUncommitted IsoLevel = "read uncommitted"
)

// AccessMode is the transaction access mode.
type AccessMode string

const (
	ReadWrite AccessMode = "read write"
	ReadOnly  AccessMode = "read only"
)

// TxOptions describes how a transaction is opened. Empty fields fall back to
// the server defaults.
type TxOptions struct {
	IsoLevel   IsoLevel
	AccessMode AccessMode
	Deferrable bool
}

var (
	// DefaultTxOptions - read committed, read write.
	DefaultTxOptions = TxOptions{IsoLevel: ReadCommitted, AccessMode: ReadWrite}
	// ReadOnlyTxOptions - repeatable read snapshot, no writes allowed.
	ReadOnlyTxOptions = TxOptions{IsoLevel: RepeatableRead, AccessMode: ReadOnly}
	// SerializableTxOptions - full serializability. Commits may fail with a serialization error.
	SerializableTxOptions = TxOptions{IsoLevel: Serializable, AccessMode: ReadWrite}
)
