package state

import (
	"bytes"
	"testing"

	"github.com/eatozee/xrpld-hooks/errors"
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/keylet"
	"github.com/eatozee/xrpld-hooks/ledger"
	"github.com/eatozee/xrpld-hooks/sto"
)

func testOwner() (Owner, ledger.AccountID) {
	var acc ledger.AccountID
	acc[0] = 0xA1
	return OwnerFor(acc), acc
}

func seededView(t *testing.T, balance uint64, ownerCount uint32) (*ledger.ApplyView, Owner) {
	t.Helper()
	store := ledger.NewMemStore()
	t.Cleanup(func() { store.Close() })

	owner, acc := testOwner()
	view := ledger.NewApplyView(store, 10, ledger.Fees{
		Base:             10,
		ReserveBase:      10_000_000,
		ReserveIncrement: 2_000_000,
	})
	if err := view.Insert(owner.AccountKl, ledger.AccountRoot(acc, balance, ownerCount, 1)); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	if err := view.Insert(owner.HookKl, ledger.HookEntry(acc, [32]byte{}, 0, 128)); err != nil {
		t.Fatalf("seed hook: %v", err)
	}
	return view, owner
}

func TestMakeKeyPadsLeft(t *testing.T) {
	k, ok := MakeKey([]byte{0xAB})
	if !ok {
		t.Fatal("single byte rejected")
	}
	if k[31] != 0xAB || k[0] != 0 {
		t.Fatalf("padding wrong: % x", k)
	}
	if _, ok := MakeKey(nil); ok {
		t.Fatal("empty key accepted")
	}
	if _, ok := MakeKey(make([]byte, 33)); ok {
		t.Fatal("oversized key accepted")
	}
}

func TestCacheReadYourWrites(t *testing.T) {
	c := NewCache()
	key, _ := MakeKey([]byte("x"))

	c.Set(key, []byte{1, 2, 3})
	e, ok := c.Get(key)
	if !ok || !e.Modified || !bytes.Equal(e.Value, []byte{1, 2, 3}) {
		t.Fatalf("staged write not visible: %+v", e)
	}

	// a later ledger read must not clobber the staged write
	c.StageRead(key, []byte{9})
	e, _ = c.Get(key)
	if !e.Modified || !bytes.Equal(e.Value, []byte{1, 2, 3}) {
		t.Fatalf("StageRead downgraded a write: %+v", e)
	}
}

func TestWriteCreateReadBack(t *testing.T) {
	view, owner := seededView(t, 100_000_000, 0)
	key, _ := MakeKey([]byte("k"))

	if ter := Write(view, owner, key, []byte{0xDE, 0xAD}); ter != errors.TesSUCCESS {
		t.Fatalf("Write: %v", ter)
	}

	row, ok, err := view.Peek(keylet.HookState(owner.Account, key))
	if err != nil || !ok {
		t.Fatalf("state row missing: %v", err)
	}
	data, err := sto.GetVL(row, hookapi.SfHookStateData)
	if err != nil || !bytes.Equal(data, []byte{0xDE, 0xAD}) {
		t.Fatalf("state data % x, %v", data, err)
	}

	// directory linkage
	in, err := view.DirContains(owner.OwnerDir, keylet.HookState(owner.Account, key))
	if err != nil || !in {
		t.Fatalf("state row not in owner dir: %v", err)
	}

	// counts: one entry, one reserve unit charged
	hookBlob, _, _ := view.Peek(owner.HookKl)
	count, _ := sto.GetUInt32(hookBlob, hookapi.SfHookStateCount)
	if count != 1 {
		t.Fatalf("HookStateCount = %d", count)
	}
	acctBlob, _, _ := view.Peek(owner.AccountKl)
	oc, _ := sto.GetUInt32(acctBlob, hookapi.SfOwnerCount)
	if oc != 1 {
		t.Fatalf("OwnerCount = %d", oc)
	}
}

func TestWriteRespectsMaxSize(t *testing.T) {
	view, owner := seededView(t, 100_000_000, 0)
	key, _ := MakeKey([]byte("k"))

	if ter := Write(view, owner, key, make([]byte, 129)); ter != errors.TemHOOK_DATA_TOO_LARGE {
		t.Fatalf("oversized blob: %v", ter)
	}
}

func TestWriteReserveBoundary(t *testing.T) {
	// balance covers the base reserve only; the first state entry needs
	// reserve for ownerCount 1 and must be refused
	view, owner := seededView(t, 10_000_000, 0)
	key, _ := MakeKey([]byte("k"))

	if ter := Write(view, owner, key, []byte{1}); ter != errors.TecINSUFFICIENT_RESERVE {
		t.Fatalf("under-reserved create: %v", ter)
	}
}

func TestWriteFiveEntriesOneUnit(t *testing.T) {
	view, owner := seededView(t, 100_000_000, 0)

	for i := byte(1); i <= 5; i++ {
		key, _ := MakeKey([]byte{i})
		if ter := Write(view, owner, key, []byte{i}); ter != errors.TesSUCCESS {
			t.Fatalf("Write %d: %v", i, ter)
		}
	}

	acctBlob, _, _ := view.Peek(owner.AccountKl)
	oc, _ := sto.GetUInt32(acctBlob, hookapi.SfOwnerCount)
	if oc != 1 {
		t.Fatalf("OwnerCount after 5 entries = %d, want 1", oc)
	}

	// the sixth entry crosses into a second allotment
	key6, _ := MakeKey([]byte{6})
	if ter := Write(view, owner, key6, []byte{6}); ter != errors.TesSUCCESS {
		t.Fatalf("Write 6: %v", ter)
	}
	acctBlob, _, _ = view.Peek(owner.AccountKl)
	oc, _ = sto.GetUInt32(acctBlob, hookapi.SfOwnerCount)
	if oc != 2 {
		t.Fatalf("OwnerCount after 6 entries = %d, want 2", oc)
	}
}

func TestDeleteRemovesRowAndCountQuirk(t *testing.T) {
	view, owner := seededView(t, 100_000_000, 0)
	key, _ := MakeKey([]byte("k"))

	if ter := Write(view, owner, key, []byte{1}); ter != errors.TesSUCCESS {
		t.Fatalf("create: %v", ter)
	}
	if ter := Write(view, owner, key, nil); ter != errors.TesSUCCESS {
		t.Fatalf("delete: %v", ter)
	}

	if _, ok, _ := view.Peek(keylet.HookState(owner.Account, key)); ok {
		t.Fatal("row still present after delete")
	}
	in, _ := view.DirContains(owner.OwnerDir, keylet.HookState(owner.Account, key))
	if in {
		t.Fatal("row still linked after delete")
	}

	// the delete path stores the reserve unit count, not the entry count
	hookBlob, _, _ := view.Peek(owner.HookKl)
	count, _ := sto.GetUInt32(hookBlob, hookapi.SfHookStateCount)
	if count != reserveUnits(0) {
		t.Fatalf("HookStateCount after delete = %d", count)
	}

	// owner count released
	acctBlob, _, _ := view.Peek(owner.AccountKl)
	oc, _ := sto.GetUInt32(acctBlob, hookapi.SfOwnerCount)
	if oc != 0 {
		t.Fatalf("OwnerCount after delete = %d", oc)
	}
}

func TestDeleteMissingRowIsSuccess(t *testing.T) {
	view, owner := seededView(t, 100_000_000, 0)
	key, _ := MakeKey([]byte("nope"))
	if ter := Write(view, owner, key, nil); ter != errors.TesSUCCESS {
		t.Fatalf("delete of missing row: %v", ter)
	}
}

func TestCommitAllAppliesModifiedOnly(t *testing.T) {
	view, owner := seededView(t, 100_000_000, 0)
	c := NewCache()

	k1, _ := MakeKey([]byte{1})
	k2, _ := MakeKey([]byte{2})
	c.Set(k1, []byte{0x11})
	c.StageRead(k2, []byte{0x22}) // cached read, must not be written

	n, ter := CommitAll(view, owner, c)
	if ter != errors.TesSUCCESS || n != 1 {
		t.Fatalf("CommitAll: n=%d ter=%v", n, ter)
	}
	if _, ok, _ := view.Peek(keylet.HookState(owner.Account, k2)); ok {
		t.Fatal("cached read was written back")
	}
}
