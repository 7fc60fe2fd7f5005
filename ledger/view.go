package ledger

import (
	"bytes"
	"sort"

	"github.com/eatozee/xrpld-hooks/errors"
	"github.com/eatozee/xrpld-hooks/keylet"
)

// ApplyView is an overlay over a Store. Writes stage in memory; Apply
// flushes them to the store and Discard drops them, leaving the store
// byte-identical to its pre-invocation state.
type ApplyView struct {
	store *Store
	seq   uint32
	fees  Fees

	// staged changes: nil value marks an erase
	overlay map[[keylet.Size]byte][]byte
}

var _ View = (*ApplyView)(nil)

// NewApplyView builds an overlay reading through to store, pinned at the
// given next-ledger sequence and fee schedule.
func NewApplyView(store *Store, seq uint32, fees Fees) *ApplyView {
	return &ApplyView{
		store:   store,
		seq:     seq,
		fees:    fees,
		overlay: make(map[[keylet.Size]byte][]byte),
	}
}

func klArr(kl keylet.Keylet) (out [keylet.Size]byte) {
	copy(out[:], kl.Bytes())
	return out
}

// Peek returns the staged or stored entry at kl.
func (v *ApplyView) Peek(kl keylet.Keylet) ([]byte, bool, error) {
	if blob, staged := v.overlay[klArr(kl)]; staged {
		if blob == nil {
			return nil, false, nil
		}
		return blob, true, nil
	}
	return v.store.GetEntry(kl)
}

// Insert creates or replaces the entry at kl in the overlay.
func (v *ApplyView) Insert(kl keylet.Keylet, blob []byte) error {
	v.overlay[klArr(kl)] = append([]byte(nil), blob...)
	return nil
}

// Erase stages removal of the entry at kl.
func (v *ApplyView) Erase(kl keylet.Keylet) error {
	v.overlay[klArr(kl)] = nil
	return nil
}

// Directory pages are serialized as consecutive 34-byte keylets.

// DirAdd links key into dir, creating the page on first use.
func (v *ApplyView) DirAdd(dir keylet.Keylet, key keylet.Keylet) (uint64, error) {
	page, _, err := v.Peek(dir)
	if err != nil {
		return 0, err
	}
	kb := key.Bytes()
	for off := 0; off+keylet.Size <= len(page); off += keylet.Size {
		if bytes.Equal(page[off:off+keylet.Size], kb) {
			return 0, nil // already linked
		}
	}
	page = append(append([]byte(nil), page...), kb...)
	if err := v.Insert(dir, page); err != nil {
		return 0, err
	}
	return 0, nil
}

// DirRemove unlinks key from dir.
func (v *ApplyView) DirRemove(dir keylet.Keylet, page uint64, key keylet.Keylet) (bool, error) {
	_ = page // single-page directories
	blob, ok, err := v.Peek(dir)
	if err != nil || !ok {
		return false, err
	}
	kb := key.Bytes()
	for off := 0; off+keylet.Size <= len(blob); off += keylet.Size {
		if bytes.Equal(blob[off:off+keylet.Size], kb) {
			out := append([]byte(nil), blob[:off]...)
			out = append(out, blob[off+keylet.Size:]...)
			if len(out) == 0 {
				return true, v.Erase(dir)
			}
			return true, v.Insert(dir, out)
		}
	}
	return false, nil
}

// DirContains reports whether key is linked in dir.
func (v *ApplyView) DirContains(dir keylet.Keylet, key keylet.Keylet) (bool, error) {
	blob, ok, err := v.Peek(dir)
	if err != nil || !ok {
		return false, err
	}
	kb := key.Bytes()
	for off := 0; off+keylet.Size <= len(blob); off += keylet.Size {
		if bytes.Equal(blob[off:off+keylet.Size], kb) {
			return true, nil
		}
	}
	return false, nil
}

// DirCount returns the number of keys linked in dir.
func (v *ApplyView) DirCount(dir keylet.Keylet) (int, error) {
	blob, _, err := v.Peek(dir)
	if err != nil {
		return 0, err
	}
	return len(blob) / keylet.Size, nil
}

// FetchTxn reads through to the transaction master.
func (v *ApplyView) FetchTxn(id TxnID) ([]byte, bool, error) {
	return v.store.GetTxn(id)
}

// Seq returns the pinned next-ledger sequence.
func (v *ApplyView) Seq() uint32 { return v.seq }

// Fees returns the pinned fee schedule.
func (v *ApplyView) Fees() Fees { return v.fees }

// Dirty reports whether any writes are staged.
func (v *ApplyView) Dirty() bool { return len(v.overlay) > 0 }

// Apply flushes staged changes to the store in key order.
func (v *ApplyView) Apply() error {
	keys := make([][keylet.Size]byte, 0, len(v.overlay))
	for k := range v.overlay {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	for _, k := range keys {
		kl, err := keylet.Parse(k[:])
		if err != nil {
			return errors.Internal(errors.PhaseLedger, "overlay key", err)
		}
		blob := v.overlay[k]
		if blob == nil {
			if err := v.store.DeleteEntry(kl); err != nil {
				return err
			}
			continue
		}
		if err := v.store.SetEntry(kl, blob); err != nil {
			return err
		}
	}
	v.overlay = make(map[[keylet.Size]byte][]byte)
	return nil
}

// Discard drops all staged changes.
func (v *ApplyView) Discard() {
	v.overlay = make(map[[keylet.Size]byte][]byte)
}
