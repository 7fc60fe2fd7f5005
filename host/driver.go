package host

import (
	"context"
	stderrors "errors"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/sys"

	"github.com/eatozee/xrpld-hooks/errors"
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/ledger"
)

// Result is what one hook run produced: the verdict, the metadata inputs
// and the commit outcome when a commit ran.
type Result struct {
	ExitType   hookapi.ExitType
	ExitCode   int64
	ExitReason string

	InstructionCount uint64
	EmitCount        uint16
	StateChangeCount uint16

	HookHash     [32]byte
	Account      ledger.AccountID
	CommitResult errors.TER
	Meta         []byte
}

// Apply runs a hook against the view: instantiate the guest, call its
// hook (or cbak) export with the reserved zero argument, observe the
// verdict, then commit. The view is mutated only by the commit phase.
func Apply(ctx context.Context, view *ledger.ApplyView, inv Invocation, cfg *Config) (Result, error) {
	hookCtx := NewContext(view, inv, cfg)
	log := Logger().Sugar()

	runCtx, cancel := context.WithTimeout(ctx, hookCtx.cfg.ExecutionTimeout)
	defer cancel()

	rt := wazero.NewRuntimeWithConfig(runCtx, wazero.NewRuntimeConfig().
		WithMemoryLimitPages(hookCtx.cfg.MemoryLimitPages).
		WithCloseOnContextDone(true))
	defer rt.Close(context.Background())

	if err := hookCtx.RegisterHostFunctions(runCtx, rt); err != nil {
		return Result{}, errors.Execute("register host functions", err)
	}

	log.Debugf("HookInfo[%x]: creating wasm instance", inv.Account)

	mod, err := rt.Instantiate(runCtx, inv.Hook)
	if err != nil {
		hookCtx.exitType = hookapi.ExitWasmError
		return finishRun(hookCtx, inv)
	}
	defer mod.Close(context.Background())

	export := "hook"
	if inv.Callback {
		export = "cbak"
	}
	fn := mod.ExportedFunction(export)
	if fn == nil {
		hookCtx.exitType = hookapi.ExitWasmError
		return finishRun(hookCtx, inv)
	}

	_, callErr := fn.Call(runCtx, 0)
	if callErr != nil && !hookCtx.exited {
		// a trap, OOM or timeout rather than a deliberate exit
		var exitErr *sys.ExitError
		if !stderrors.As(callErr, &exitErr) || exitErr.ExitCode() != 0 {
			log.Warnf("HookError[%x]: wasm error %v", inv.Account, callErr)
			hookCtx.exitType = hookapi.ExitWasmError
		}
	}

	log.Debugf("HookInfo[%x]: %s RS: '%s' RC: %d",
		inv.Account, hookCtx.exitType, hookCtx.exitReason, hookCtx.exitCode)

	return finishRun(hookCtx, inv)
}

// finishRun selects the commit mode for this invocation and runs the
// commit engine. Callbacks always remove their emitted-directory entry and
// only apply on accept.
func finishRun(c *Context, inv Invocation) (Result, error) {
	mode := commitMode(0)
	switch {
	case inv.Callback:
		mode = ModeRemove
		if c.exitType == hookapi.ExitAccept {
			mode |= ModeApply
		}
	case c.exitType == hookapi.ExitAccept:
		mode = ModeApply
	}

	return Commit(c, mode)
}
