// Command hookrun executes a hook wasm module against a fixture ledger and
// reports the execution result: exit disposition, staged effects and the
// HookExecution metadata. Useful for developing hooks without a running
// ledger node.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/eatozee/xrpld-hooks/addr"
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/host"
	"github.com/eatozee/xrpld-hooks/keylet"
	"github.com/eatozee/xrpld-hooks/ledger"
	"github.com/eatozee/xrpld-hooks/sha512h"
	"github.com/eatozee/xrpld-hooks/sto"
)

func main() {
	var (
		hookFile    = flag.String("hook", "", "Path to hook wasm file")
		accountArg  = flag.String("account", "", "Hook account (r-address or 40 hex chars; fixed fixture account if empty)")
		otxnFile    = flag.String("otxn", "", "Serialized originating txn (hex file; synthetic payment if empty)")
		fromArg     = flag.String("from", "", "Account the synthetic payment comes from")
		dbDir       = flag.String("db", "", "GoLevelDB fixture directory (in-memory if empty)")
		seq         = flag.Uint("seq", 10, "Next ledger sequence")
		callback    = flag.Bool("cbak", false, "Invoke the cbak export instead of hook")
		list        = flag.Bool("list", false, "List module imports/exports and exit")
		verbose     = flag.Bool("v", false, "Enable hook trace output")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *hookFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: hookrun -hook <file.wasm> [-account r...] [-otxn txn.hex]")
		fmt.Fprintln(os.Stderr, "       hookrun -hook <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       hookrun -hook <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(*hookFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*hookFile, *accountArg, *otxnFile, *fromArg, *dbDir, uint32(*seq), *callback, *list, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(hookFile, accountArg, otxnFile, fromArg, dbDir string, seq uint32, callback, listOnly, verbose bool) error {
	ctx := context.Background()

	wasm, err := os.ReadFile(hookFile)
	if err != nil {
		return fmt.Errorf("read hook: %w", err)
	}

	if listOnly {
		return listModule(ctx, hookFile, wasm)
	}

	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		host.SetLogger(logger)
		defer logger.Sync()
	}

	account, err := parseAccount(accountArg, ledger.AccountID{0xA0, 0x01})
	if err != nil {
		return fmt.Errorf("parse -account: %w", err)
	}
	from, err := parseAccount(fromArg, ledger.AccountID{0xB0, 0x02})
	if err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}

	var store *ledger.Store
	if dbDir != "" {
		store, err = ledger.OpenStore("hookrun", dbDir)
		if err != nil {
			return err
		}
	} else {
		store = ledger.NewMemStore()
	}
	defer store.Close()

	otxn, err := loadOtxn(otxnFile, from, account)
	if err != nil {
		return err
	}

	fees := ledger.Fees{Base: 10, ReserveBase: 10_000_000, ReserveIncrement: 2_000_000}
	if err := seedFixture(store, seq, fees, account, wasm); err != nil {
		return err
	}

	view := ledger.NewApplyView(store, seq, fees)
	res, err := host.Apply(ctx, view, host.Invocation{
		Account:  account,
		HookHash: sha512h.Half(wasm),
		Hook:     wasm,
		OtxnBlob: otxn,
		Callback: callback,
	}, nil)
	if err != nil {
		return err
	}

	printResult(res, account)
	return nil
}

func listModule(ctx context.Context, name string, wasm []byte) error {
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	fmt.Printf("Module: %s\n", name)
	fmt.Println("\nImported functions:")
	for _, def := range compiled.ImportedFunctions() {
		mod, fn, _ := def.Import()
		fmt.Printf("  [%s] %s\n", mod, fn)
	}
	fmt.Println("\nExported functions:")
	for export := range compiled.ExportedFunctions() {
		fmt.Printf("  %s\n", export)
	}
	return nil
}

func parseAccount(arg string, fallback ledger.AccountID) (ledger.AccountID, error) {
	if arg == "" {
		return fallback, nil
	}
	if strings.HasPrefix(arg, "r") {
		return addr.Decode(arg)
	}
	raw, err := hex.DecodeString(arg)
	if err != nil || len(raw) != 20 {
		return ledger.AccountID{}, fmt.Errorf("want an r-address or 40 hex chars")
	}
	var id ledger.AccountID
	copy(id[:], raw)
	return id, nil
}

func loadOtxn(file string, from, to ledger.AccountID) ([]byte, error) {
	if file == "" {
		return syntheticPayment(from, to), nil
	}
	text, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read otxn: %w", err)
	}
	blob, err := hex.DecodeString(strings.TrimSpace(string(text)))
	if err != nil {
		return nil, fmt.Errorf("decode otxn hex: %w", err)
	}
	return blob, nil
}

// syntheticPayment builds a plain 1 XRP payment for runs without a
// provided originating transaction.
func syntheticPayment(from, to ledger.AccountID) []byte {
	b := sto.NewBuilder()
	b.UInt16(hookapi.SfTransactionType, hookapi.TtPayment)
	b.UInt32(hookapi.SfSequence, 1)
	b.Drops(hookapi.SfAmount, 1_000_000)
	b.Drops(hookapi.SfFee, 12)
	b.VL(hookapi.SfSigningPubKey, make([]byte, 33))
	b.AccountID(hookapi.SfAccount, from)
	b.AccountID(hookapi.SfDestination, to)
	return b.Bytes()
}

// seedFixture makes sure the hook account and its hook entry exist so
// state writes and reserve accounting behave as on a real ledger.
func seedFixture(store *ledger.Store, seq uint32, fees ledger.Fees, account ledger.AccountID, wasm []byte) error {
	view := ledger.NewApplyView(store, seq, fees)
	if _, ok, err := view.Peek(keylet.Account(account)); err != nil {
		return err
	} else if !ok {
		if err := view.Insert(keylet.Account(account), ledger.AccountRoot(account, 1_000_000_000, 0, 1)); err != nil {
			return err
		}
	}
	if _, ok, err := view.Peek(keylet.Hook(account)); err != nil {
		return err
	} else if !ok {
		if err := view.Insert(keylet.Hook(account), ledger.HookEntry(account, sha512h.Half(wasm), 0, 128)); err != nil {
			return err
		}
	}
	return view.Apply()
}

func printResult(res host.Result, account ledger.AccountID) {
	raddr, _ := addr.Encode(account[:])
	fmt.Printf("Account:      %s\n", raddr)
	fmt.Printf("Exit:         %s\n", res.ExitType)
	fmt.Printf("Exit code:    %d\n", res.ExitCode)
	if res.ExitReason != "" {
		fmt.Printf("Exit reason:  %q\n", res.ExitReason)
	}
	fmt.Printf("Host calls:   %d\n", res.InstructionCount)
	fmt.Printf("State writes: %d\n", res.StateChangeCount)
	fmt.Printf("Emitted txns: %d\n", res.EmitCount)
	fmt.Printf("Commit:       %s\n", res.CommitResult)
	fmt.Printf("Metadata:     %s\n", hex.EncodeToString(res.Meta))

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	fmt.Println("\nRun with -v for hook trace output, -i for interactive mode.")
}
