package testbed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/host"
	"github.com/eatozee/xrpld-hooks/keylet"
	"github.com/eatozee/xrpld-hooks/ledger"
	"github.com/eatozee/xrpld-hooks/sto"
)

var (
	hookAccount  = ledger.AccountID{0xA0, 0x01}
	otherAccount = ledger.AccountID{0xB0, 0x02}
)

func testFees() ledger.Fees {
	return ledger.Fees{Base: 10, ReserveBase: 10_000_000, ReserveIncrement: 2_000_000}
}

func seededStore(t *testing.T) *ledger.Store {
	t.Helper()
	store := ledger.NewMemStore()
	t.Cleanup(func() { store.Close() })

	view := ledger.NewApplyView(store, 42, testFees())
	require.NoError(t, view.Insert(keylet.Account(hookAccount), ledger.AccountRoot(hookAccount, 100_000_000, 0, 7)))
	require.NoError(t, view.Insert(keylet.Hook(hookAccount), ledger.HookEntry(hookAccount, [32]byte{1}, 0, 128)))
	require.NoError(t, view.Apply())
	return store
}

func payment(from, to ledger.AccountID) []byte {
	b := sto.NewBuilder()
	b.UInt16(hookapi.SfTransactionType, hookapi.TtPayment)
	b.UInt32(hookapi.SfSequence, 5)
	b.Drops(hookapi.SfAmount, 1_000_000)
	b.Drops(hookapi.SfFee, 12)
	b.VL(hookapi.SfSigningPubKey, make([]byte, 33))
	b.AccountID(hookapi.SfAccount, from)
	b.AccountID(hookapi.SfDestination, to)
	return b.Bytes()
}

func runHook(t *testing.T, store *ledger.Store, wasm, otxn []byte) host.Result {
	t.Helper()
	view := ledger.NewApplyView(store, 42, testFees())
	res, err := host.Apply(context.Background(), view, host.Invocation{
		Account:  hookAccount,
		HookHash: [32]byte{0x77},
		Hook:     wasm,
		OtxnBlob: otxn,
	}, nil)
	require.NoError(t, err)
	return res
}

// notaryGuest mirrors the outgoing-bypass pattern: read hook_account and
// the otxn account, compare, accept when they match, roll back otherwise.
func notaryGuest() []byte {
	g := &guest{
		types: []funcType{
			{params: []byte{i32, i32, i64}, results: []byte{i64}}, // accept/rollback
			{params: []byte{i64}, results: []byte{i64}},           // hook
			{params: []byte{i32, i32}, results: []byte{i64}},      // hook_account
			{params: []byte{i32, i32, i32}, results: []byte{i64}}, // otxn_field
		},
		imports: []hostImport{
			{name: "hook_account", typ: 2},
			{name: "otxn_field", typ: 3},
			{name: "accept", typ: 0},
			{name: "rollback", typ: 0},
		},
		hookTyp: 1,
	}

	var b []byte
	b = append(b, i32c(0)...)
	b = append(b, i32c(20)...)
	b = append(b, call(0)...) // hook_account -> mem[0..20)
	b = append(b, opDrop)

	b = append(b, i32c(64)...)
	b = append(b, i32c(32)...)
	b = append(b, i32c(int32(hookapi.SfAccount))...)
	b = append(b, call(1)...) // otxn_field(sfAccount) -> mem[64..84)
	b = append(b, opDrop)

	// compare the leading eight bytes of the two accounts
	b = append(b, i32c(0)...)
	b = append(b, i64load()...)
	b = append(b, i32c(64)...)
	b = append(b, i64load()...)
	b = append(b, opI64Eq)

	b = append(b, ifEmpty()...)
	b = append(b, i32c(0)...)
	b = append(b, i32c(0)...)
	b = append(b, i64c(20)...)
	b = append(b, call(2)...) // accept
	b = append(b, opDrop)
	b = append(b, opElse)
	b = append(b, i32c(0)...)
	b = append(b, i32c(0)...)
	b = append(b, i64c(10)...)
	b = append(b, call(3)...) // rollback
	b = append(b, opDrop)
	b = append(b, opEnd)

	b = append(b, i64c(0)...)
	g.body = b
	return g.build()
}

func TestOutgoingBypassAccepts(t *testing.T) {
	store := seededStore(t)
	res := runHook(t, store, notaryGuest(), payment(hookAccount, otherAccount))

	require.Equal(t, hookapi.ExitAccept, res.ExitType)
	require.EqualValues(t, 20, res.ExitCode)
	require.Zero(t, res.StateChangeCount)
	require.Zero(t, res.EmitCount)
	require.True(t, res.CommitResult.Success())
	require.NotEmpty(t, res.Meta)
	require.True(t, sto.Validate(res.Meta))
}

func TestIncomingRollsBack(t *testing.T) {
	store := seededStore(t)
	res := runHook(t, store, notaryGuest(), payment(otherAccount, hookAccount))

	require.Equal(t, hookapi.ExitRollback, res.ExitType)
	require.EqualValues(t, 10, res.ExitCode)
}

// stateGuest stores a three-byte value under key "K" and accepts.
func stateGuest() []byte {
	g := &guest{
		types: []funcType{
			{params: []byte{i32, i32, i64}, results: []byte{i64}},      // accept
			{params: []byte{i64}, results: []byte{i64}},                // hook
			{params: []byte{i32, i32, i32, i32}, results: []byte{i64}}, // state_set
		},
		imports: []hostImport{
			{name: "state_set", typ: 2},
			{name: "accept", typ: 0},
		},
		hookTyp: 1,
		data:    []byte{'K', 0, 0, 0, 0, 0, 0, 0, 0xCA, 0xFE, 0x42},
	}

	var b []byte
	b = append(b, i32c(8)...) // value at mem[8..11)
	b = append(b, i32c(3)...)
	b = append(b, i32c(0)...) // key "K" at mem[0]
	b = append(b, i32c(1)...)
	b = append(b, call(0)...)
	b = append(b, opDrop)

	b = append(b, i32c(0)...)
	b = append(b, i32c(0)...)
	b = append(b, i64c(0)...)
	b = append(b, call(1)...)
	b = append(b, opDrop)

	b = append(b, i64c(0)...)
	g.body = b
	return g.build()
}

func TestStateWritePersistsOnAccept(t *testing.T) {
	store := seededStore(t)
	res := runHook(t, store, stateGuest(), payment(otherAccount, hookAccount))

	require.Equal(t, hookapi.ExitAccept, res.ExitType)
	require.EqualValues(t, 1, res.StateChangeCount)

	var key [32]byte
	key[31] = 'K'
	row, ok, err := store.GetEntry(keylet.HookState(hookAccount, key))
	require.NoError(t, err)
	require.True(t, ok, "state row missing after accept")

	data, err := sto.GetVL(row, hookapi.SfHookStateData)
	require.NoError(t, err)
	require.Equal(t, []byte{0xCA, 0xFE, 0x42}, data)
}

// guardGuest trips a 2-iteration guard on its third call.
func guardGuest() []byte {
	g := &guest{
		types: []funcType{
			{params: []byte{i32, i32, i64}, results: []byte{i64}}, // accept
			{params: []byte{i64}, results: []byte{i64}},           // hook
			{params: []byte{i32, i32}, results: []byte{i64}},      // _g
		},
		imports: []hostImport{
			{name: "_g", typ: 2},
			{name: "accept", typ: 0},
		},
		hookTyp: 1,
	}

	var b []byte
	for i := 0; i < 3; i++ {
		b = append(b, i32c(1)...)
		b = append(b, i32c(2)...)
		b = append(b, call(0)...)
		b = append(b, opDrop)
	}
	b = append(b, i32c(0)...)
	b = append(b, i32c(0)...)
	b = append(b, i64c(0)...)
	b = append(b, call(1)...)
	b = append(b, opDrop)
	b = append(b, i64c(0)...)
	g.body = b
	return g.build()
}

func TestGuardViolationTerminatesGuest(t *testing.T) {
	store := seededStore(t)
	res := runHook(t, store, guardGuest(), payment(otherAccount, hookAccount))

	require.Equal(t, hookapi.ExitRollback, res.ExitType)
	require.Equal(t, hookapi.GuardViolation, res.ExitCode)
}

// trapGuest hits an unreachable instruction immediately.
func trapGuest() []byte {
	g := &guest{
		types: []funcType{
			{params: []byte{i64}, results: []byte{i64}}, // hook
		},
		hookTyp: 0,
	}
	g.body = append([]byte{opUnreachable}, i64c(0)...)
	return g.build()
}

func TestTrapIsWasmError(t *testing.T) {
	store := seededStore(t)
	res := runHook(t, store, trapGuest(), payment(otherAccount, hookAccount))

	require.Equal(t, hookapi.ExitWasmError, res.ExitType)
}

// reserveGuest reserves an emission slot, derives a nonce and accepts.
func reserveGuest() []byte {
	g := &guest{
		types: []funcType{
			{params: []byte{i32, i32, i64}, results: []byte{i64}}, // accept
			{params: []byte{i64}, results: []byte{i64}},           // hook
			{params: []byte{i32}, results: []byte{i64}},           // etxn_reserve
			{params: []byte{i32, i32}, results: []byte{i64}},      // nonce
		},
		imports: []hostImport{
			{name: "etxn_reserve", typ: 2},
			{name: "nonce", typ: 3},
			{name: "accept", typ: 0},
		},
		hookTyp: 1,
	}

	var b []byte
	b = append(b, i32c(1)...)
	b = append(b, call(0)...)
	b = append(b, opDrop)

	b = append(b, i32c(0)...)
	b = append(b, i32c(32)...)
	b = append(b, call(1)...)
	b = append(b, opDrop)

	b = append(b, i32c(0)...)
	b = append(b, i32c(0)...)
	b = append(b, i64c(0)...)
	b = append(b, call(2)...)
	b = append(b, opDrop)
	b = append(b, i64c(0)...)
	g.body = b
	return g.build()
}

func TestReserveAndNonceThroughGuest(t *testing.T) {
	store := seededStore(t)
	res := runHook(t, store, reserveGuest(), payment(otherAccount, hookAccount))

	require.Equal(t, hookapi.ExitAccept, res.ExitType)
	require.Zero(t, res.EmitCount)
}

func TestMissingCallbackExport(t *testing.T) {
	// a guest without a cbak export run as a callback is a wasm error,
	// not a crash
	g := &guest{
		types:   []funcType{{params: []byte{i64}, results: []byte{i64}}},
		hookTyp: 0,
	}
	g.body = i64c(0)
	wasm := g.build()

	store := seededStore(t)
	view := ledger.NewApplyView(store, 42, testFees())
	res, err := host.Apply(context.Background(), view, host.Invocation{
		Account:  hookAccount,
		Hook:     wasm,
		OtxnBlob: payment(otherAccount, hookAccount),
		Callback: true,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, hookapi.ExitWasmError, res.ExitType)
}
