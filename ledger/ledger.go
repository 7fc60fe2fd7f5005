// Package ledger provides the view of ledger state the hook core runs
// against: serialized entries addressed by keylet, hook-state rows, the
// owner and emitted-transaction directories, fee settings and the
// transaction master. The surrounding processor owns consensus and
// ordering; this package only models what host calls and the commit engine
// touch.
package ledger

import (
	"github.com/eatozee/xrpld-hooks/keylet"
)

// AccountID is a 20-byte ledger account identifier.
type AccountID = [20]byte

// TxnID is a 32-byte transaction hash.
type TxnID = [32]byte

// Fees carries the fee and reserve schedule of the current ledger.
type Fees struct {
	// Base is the reference transaction cost in drops.
	Base uint64
	// ReserveBase is the account reserve with zero owned objects.
	ReserveBase uint64
	// ReserveIncrement is the additional reserve per owned object.
	ReserveIncrement uint64
}

// AccountReserve returns the reserve requirement for an account owning
// ownerCount objects.
func (f Fees) AccountReserve(ownerCount uint32) uint64 {
	return f.ReserveBase + uint64(ownerCount)*f.ReserveIncrement
}

// View is the read/write surface the execution core needs. Reads see writes
// made through the same view.
type View interface {
	// Peek returns the serialized entry at kl, or ok=false.
	Peek(kl keylet.Keylet) ([]byte, bool, error)

	// Insert creates or replaces the entry at kl.
	Insert(kl keylet.Keylet, blob []byte) error

	// Erase removes the entry at kl.
	Erase(kl keylet.Keylet) error

	// DirAdd links key into the directory rooted at dir and returns the
	// page it landed on.
	DirAdd(dir keylet.Keylet, key keylet.Keylet) (uint64, error)

	// DirRemove unlinks key from the directory. Reports whether the key
	// was present.
	DirRemove(dir keylet.Keylet, page uint64, key keylet.Keylet) (bool, error)

	// FetchTxn resolves a transaction id through the transaction master.
	FetchTxn(id TxnID) ([]byte, bool, error)

	// Seq is the sequence the next validated ledger will carry.
	Seq() uint32

	// Fees is the current fee schedule.
	Fees() Fees
}
