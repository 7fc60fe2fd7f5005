package host

import (
	"sync/atomic"

	"github.com/eatozee/xrpld-hooks/errors"
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/keylet"
	"github.com/eatozee/xrpld-hooks/ledger"
	"github.com/eatozee/xrpld-hooks/state"
	"github.com/eatozee/xrpld-hooks/sto"
)

// commitMode is the two-bit (REMOVE, APPLY) selector for the commit
// phase. Mode zero records metadata only, which is what a rollback or a
// wasm error leaves behind.
type commitMode uint8

const (
	// ModeApply writes staged state changes and inserts emitted txns.
	ModeApply commitMode = 1 << iota
	// ModeRemove unlinks the originating txn from the emitted directory,
	// the tail of an emitted transaction's lifecycle.
	ModeRemove
)

// execIndex orders HookExecution records within one ledger round.
var execIndex atomic.Uint32

// ResetExecIndex restarts metadata numbering, called at round boundaries.
func ResetExecIndex() { execIndex.Store(0) }

// Commit applies or discards the run's staged effects per mode and builds
// the HookExecution metadata record.
func Commit(c *Context, mode commitMode) (Result, error) {
	log := Logger().Sugar()
	res := Result{
		ExitType:         c.exitType,
		ExitCode:         c.exitCode,
		ExitReason:       c.exitReason,
		InstructionCount: c.hostCalls,
		HookHash:         c.hookHash,
		Account:          c.account,
		CommitResult:     errors.TesSUCCESS,
	}

	changeCount := 0
	if mode&ModeApply != 0 {
		n, ter := state.CommitAll(c.view, c.owner, c.stateCache)
		changeCount = n
		if !ter.Success() {
			// pre-write invariants were checked when staging; a failure
			// here means the ledger itself is inconsistent
			log.Warnf("HookError[%x]: state write-back failed: %v", c.account, ter)
			res.CommitResult = ter
		}
	}

	emitCount := 0
	if mode&ModeApply != 0 && res.CommitResult.Success() {
		for _, etx := range c.emitted {
			klEmitted := keylet.Emitted(etx.id)
			if _, ok, _ := c.view.Peek(klEmitted); ok {
				continue // already inserted, nothing to do
			}
			page, err := c.view.DirAdd(keylet.EmittedDir(), klEmitted)
			if err != nil {
				log.Warnf("HookError[%x]: emission directory full inserting %x", c.account, etx.id)
				break
			}
			entry := ledger.EmittedTxnEntry(etx.blob, page)
			if err := c.view.Insert(klEmitted, entry); err != nil {
				res.CommitResult = errors.TefINTERNAL
				break
			}
			log.Debugf("HookEmit[%x]: %x", c.account, etx.id)
			emitCount++
		}
	}

	if mode&ModeRemove != 0 {
		removeEmittedEntry(c)
	}

	if !res.CommitResult.Success() {
		c.view.Discard()
	} else if mode&ModeApply != 0 {
		if err := c.view.Apply(); err != nil {
			res.CommitResult = errors.TefINTERNAL
			c.view.Discard()
		}
	} else {
		// rollback and error paths leave the ledger untouched
		c.view.Discard()
	}

	res.EmitCount = uint16(emitCount)
	res.StateChangeCount = uint16(changeCount)
	res.Meta = buildMeta(c, res, uint16(execIndex.Add(1)-1))
	return res, nil
}

// removeEmittedEntry drops the originating transaction from the emitted
// directory when it was itself hook-emitted.
func removeEmittedEntry(c *Context) {
	log := Logger().Sugar()
	if !IsEmitted(c.otxn) {
		return
	}
	kl := keylet.Emitted(c.otxnID)
	entry, ok, err := c.view.Peek(kl)
	if err != nil || !ok {
		log.Warnf("HookError[%x]: tried to remove already removed emitted txn", c.account)
		return
	}
	node, _ := sto.GetUInt64(entry, hookapi.SfOwnerNode)
	removed, err := c.view.DirRemove(keylet.EmittedDir(), node, kl)
	if err != nil || !removed {
		log.Errorf("HookError[%x]: emitted directory unlink failed (bad ledger)", c.account)
		return
	}
	if err := c.view.Erase(kl); err != nil {
		log.Errorf("HookError[%x]: emitted entry erase failed", c.account)
	}
	// the removal must survive even when the hook rolled back
	_ = c.view.Apply()
}

// buildMeta serializes the HookExecution record. Negative exit codes bias
// into the top bit so the unsigned field preserves them.
func buildMeta(c *Context, res Result, index uint16) []byte {
	code := uint64(res.ExitCode)
	if res.ExitCode < 0 {
		code = 1<<63 + uint64(-res.ExitCode)
	}

	b := sto.NewBuilder()
	b.Object(hookapi.SfHookExecution, func(b *sto.Builder) {
		b.UInt16(hookapi.SfHookResult, uint16(res.ExitType))
		b.UInt16(hookapi.SfHookEmitCount, res.EmitCount)
		b.UInt16(hookapi.SfHookExecutionIndex, index)
		b.UInt16(hookapi.SfHookStateChangeCount, res.StateChangeCount)
		b.UInt64(hookapi.SfHookInstructionCount, res.InstructionCount)
		b.UInt64(hookapi.SfHookReturnCode, code)
		b.Hash256(hookapi.SfHookHash, c.hookSetTxnID)
		b.VL(hookapi.SfHookReturnString, []byte(res.ExitReason))
		b.AccountID(hookapi.SfHookAccount, c.account)
	})
	return b.Bytes()
}
