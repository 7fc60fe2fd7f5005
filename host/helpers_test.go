package host

import (
	"testing"

	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/ledger"
	"github.com/eatozee/xrpld-hooks/state"
	"github.com/eatozee/xrpld-hooks/sto"
)

// fakeMem is a plain-slice guest memory for driving handlers directly.
type fakeMem struct {
	data []byte
}

func newFakeMem(size int) *fakeMem {
	return &fakeMem{data: make([]byte, size)}
}

func (m *fakeMem) Size() uint32 { return uint32(len(m.data)) }

func (m *fakeMem) Read(ptr, length uint32) ([]byte, bool) {
	if uint64(ptr)+uint64(length) > uint64(len(m.data)) {
		return nil, false
	}
	return m.data[ptr : ptr+length], true
}

func (m *fakeMem) Write(ptr uint32, data []byte) bool {
	if uint64(ptr)+uint64(len(data)) > uint64(len(m.data)) {
		return false
	}
	copy(m.data[ptr:], data)
	return true
}

func (m *fakeMem) put(ptr uint32, data []byte) {
	copy(m.data[ptr:], data)
}

var (
	hookAccount = ledger.AccountID{0xA0, 0x01}
	otherAccount = ledger.AccountID{0xB0, 0x02}
)

func paymentTxn(from, to ledger.AccountID, drops uint64) []byte {
	b := sto.NewBuilder()
	b.UInt16(hookapi.SfTransactionType, hookapi.TtPayment)
	b.UInt32(hookapi.SfSequence, 5)
	b.Drops(hookapi.SfAmount, drops)
	b.Drops(hookapi.SfFee, 12)
	b.VL(hookapi.SfSigningPubKey, make([]byte, 33))
	b.AccountID(hookapi.SfAccount, from)
	b.AccountID(hookapi.SfDestination, to)
	return b.Bytes()
}

// testContext seeds a store with the hook account, its hook entry and an
// incoming payment, and returns a ready context.
func testContext(t *testing.T) (*Context, *ledger.Store) {
	t.Helper()
	store := ledger.NewMemStore()
	t.Cleanup(func() { store.Close() })

	view := ledger.NewApplyView(store, 42, ledger.Fees{
		Base:             10,
		ReserveBase:      10_000_000,
		ReserveIncrement: 2_000_000,
	})

	seedAccounts(t, view)
	if err := view.Apply(); err != nil {
		t.Fatalf("seed apply: %v", err)
	}

	inv := Invocation{
		Account:  hookAccount,
		HookHash: [32]byte{0x77},
		OtxnBlob: paymentTxn(otherAccount, hookAccount, 1_000_000),
	}
	return NewContext(ledger.NewApplyView(store, 42, view.Fees()), inv, nil), store
}

func freshView(store *ledger.Store) *ledger.ApplyView {
	return ledger.NewApplyView(store, 42, ledger.Fees{
		Base:             10,
		ReserveBase:      10_000_000,
		ReserveIncrement: 2_000_000,
	})
}

func seedAccounts(t *testing.T, view *ledger.ApplyView) {
	t.Helper()
	owner := state.OwnerFor(hookAccount)
	if err := view.Insert(owner.AccountKl, ledger.AccountRoot(hookAccount, 100_000_000, 0, 7)); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if err := view.Insert(owner.HookKl, ledger.HookEntry(hookAccount, [32]byte{1}, 0, 128)); err != nil {
		t.Fatalf("seed hook: %v", err)
	}
}
