package host

import (
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/ledger"
	"github.com/eatozee/xrpld-hooks/sha512h"
	"github.com/eatozee/xrpld-hooks/state"
	"github.com/eatozee/xrpld-hooks/sto"
)

// Invocation describes one hook run: which account's hook, which
// transaction triggered it, and whether this is the emission callback.
type Invocation struct {
	Account      ledger.AccountID
	HookHash     [32]byte
	HookSetTxnID [32]byte
	Hook         []byte // wasm bytecode
	OtxnBlob     []byte // serialized originating transaction
	Callback     bool
}

// Context owns all mutable state of a single hook execution. It is touched
// only by the driver goroutine; host calls borrow it synchronously.
type Context struct {
	cfg  Config
	view *ledger.ApplyView

	account      ledger.AccountID
	otxn         []byte
	otxnID       ledger.TxnID
	hookHash     [32]byte
	hookSetTxnID [32]byte
	callback     bool

	owner state.Owner

	slots       map[uint32]*slotEntry
	slotFree    []uint32
	slotCounter uint32

	stateCache *state.Cache

	emitted           []emittedTxn
	noncesUsed        map[[32]byte]bool
	nonceCounter      uint64
	expectedEtxnCount int64
	feeBase           int64

	burden     uint64
	generation uint64

	guards map[uint32]uint32

	exited     bool
	exitType   hookapi.ExitType
	exitCode   int64
	exitReason string

	hostCalls uint64
}

type emittedTxn struct {
	id   ledger.TxnID
	blob []byte
}

// NewContext builds the invocation context for one run.
func NewContext(view *ledger.ApplyView, inv Invocation, cfg *Config) *Context {
	return &Context{
		cfg:               cfg.withDefaults(),
		view:              view,
		account:           inv.Account,
		otxn:              append([]byte(nil), inv.OtxnBlob...),
		otxnID:            sha512h.HalfPrefixed(sha512h.PrefixTxnID, inv.OtxnBlob),
		hookHash:          inv.HookHash,
		hookSetTxnID:      inv.HookSetTxnID,
		callback:          inv.Callback,
		owner:             state.OwnerFor(inv.Account),
		slots:             make(map[uint32]*slotEntry),
		slotCounter:       1,
		stateCache:        state.NewCache(),
		noncesUsed:        make(map[[32]byte]bool),
		expectedEtxnCount: -1,
		guards:            make(map[uint32]uint32),
		exitType:          hookapi.ExitRollback,
		exitCode:          -1,
	}
}

// OtxnID returns the originating transaction's id.
func (c *Context) OtxnID() ledger.TxnID { return c.otxnID }

// ExitType returns the recorded disposition.
func (c *Context) ExitType() hookapi.ExitType { return c.exitType }

// ExitReason returns the recorded accept/rollback reason.
func (c *Context) ExitReason() string { return c.exitReason }

// ExitCode returns the guest-supplied exit code.
func (c *Context) ExitCode() int64 { return c.exitCode }

// EmittedCount returns the number of queued emitted transactions.
func (c *Context) EmittedCount() int { return len(c.emitted) }

// otxnBurden derives and caches the burden of the originating txn: 1
// unless it was itself emitted.
func (c *Context) otxnBurden() int64 {
	if c.burden != 0 {
		return int64(c.burden)
	}
	burden := uint64(1)
	if off, length, err := sto.Subfield(c.otxn, hookapi.SfEmitDetails); err == nil {
		if b, err := sto.GetUInt64(c.otxn[off:off+length], hookapi.SfEmitBurden); err == nil {
			burden = b &^ (3 << 62)
		} else {
			Logger().Warn("EmitDetails without EmitBurden on originating txn")
		}
	}
	if burden == 0 {
		burden = 1
	}
	c.burden = burden
	return int64(burden)
}

// otxnGeneration derives and caches the generation of the originating txn.
func (c *Context) otxnGeneration() int64 {
	if c.generation != 0 {
		return int64(c.generation)
	}
	gen := uint64(1)
	if off, length, err := sto.Subfield(c.otxn, hookapi.SfEmitDetails); err == nil {
		if g, err := sto.GetUInt32(c.otxn[off:off+length], hookapi.SfEmitGeneration); err == nil {
			gen = uint64(g) + 1
		} else {
			Logger().Warn("EmitDetails without EmitGeneration on originating txn")
		}
	}
	c.generation = gen
	return int64(gen)
}

// IsEmitted reports whether a serialized transaction carries EmitDetails,
// ie. was produced by a hook.
func IsEmitted(txn []byte) bool {
	return sto.Has(txn, hookapi.SfEmitDetails)
}

// CanHook reports whether a transaction type triggers a hook under its
// HookOn mask. Every bit is active low except the hook-set type, so an
// all-zero mask triggers on everything but hook installs.
func CanHook(txType uint32, hookOn uint64) bool {
	hookOn ^= 1 << hookapi.TtHookSet
	hookOn = ^hookOn
	return hookOn>>txType&1 == 1
}
