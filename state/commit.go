package state

import (
	"github.com/eatozee/xrpld-hooks/errors"
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/keylet"
	"github.com/eatozee/xrpld-hooks/ledger"
	"github.com/eatozee/xrpld-hooks/sto"
)

// reserveUnits is the owner-count charge for n state entries: one unit per
// five entries, rounded up.
func reserveUnits(n uint32) uint32 {
	return (n + 4) / 5
}

// Owner identifies the account whose hook state is being written.
type Owner struct {
	Account   ledger.AccountID
	AccountKl keylet.Keylet
	HookKl    keylet.Keylet
	OwnerDir  keylet.Keylet
}

// OwnerFor derives the keylets for an account.
func OwnerFor(account ledger.AccountID) Owner {
	return Owner{
		Account:   account,
		AccountKl: keylet.Account(account),
		HookKl:    keylet.Hook(account),
		OwnerDir:  keylet.OwnerDir(account),
	}
}

// Write applies one staged state entry to the ledger view: create,
// overwrite or (for an empty blob) delete the hook-state row, maintaining
// the owner directory, the hook's state count and the owner reserve.
func Write(view *ledger.ApplyView, owner Owner, key Key, data []byte) errors.TER {
	acctBlob, ok, err := view.Peek(owner.AccountKl)
	if err != nil || !ok {
		return errors.TefINTERNAL
	}
	hookBlob, ok, err := view.Peek(owner.HookKl)
	if err != nil || !ok {
		return errors.TefINTERNAL
	}

	maxSize, err := sto.GetUInt32(hookBlob, hookapi.SfHookStateDataMaxSize)
	if err != nil {
		return errors.TefINTERNAL
	}
	if uint32(len(data)) > maxSize {
		return errors.TemHOOK_DATA_TOO_LARGE
	}

	stateCount, err := sto.GetUInt32(hookBlob, hookapi.SfHookStateCount)
	if err != nil {
		return errors.TefINTERNAL
	}
	oldReserve := reserveUnits(stateCount)

	hsKl := keylet.HookState(owner.Account, key)
	oldState, hadOld, err := view.Peek(hsKl)
	if err != nil {
		return errors.TefINTERNAL
	}

	if len(data) == 0 {
		// removing a row that does not exist is defined as success
		if !hadOld {
			return errors.TesSUCCESS
		}

		hint, err := sto.GetUInt64(oldState, hookapi.SfOwnerNode)
		if err != nil {
			return errors.TefINTERNAL
		}
		removed, err := view.DirRemove(owner.OwnerDir, hint, hsKl)
		if err != nil || !removed {
			return errors.TefBAD_LEDGER
		}
		if err := view.Erase(hsKl); err != nil {
			return errors.TefINTERNAL
		}

		if stateCount > 0 {
			stateCount--
		}
		if reserveUnits(stateCount) < oldReserve {
			if ter := adjustOwnerCount(view, owner.AccountKl, acctBlob, -1); ter != errors.TesSUCCESS {
				return ter
			}
		}
		// the delete path stores the reserve unit count, not the entry
		// count; metadata readers depend on seeing that value
		hookBlob, err = ledger.EntrySetU32(hookBlob, hookapi.SfHookStateCount, reserveUnits(stateCount))
		if err != nil {
			return errors.TefINTERNAL
		}
		if err := view.Insert(owner.HookKl, hookBlob); err != nil {
			return errors.TefINTERNAL
		}
		return errors.TesSUCCESS
	}

	if !hadOld {
		stateCount++
		if reserveUnits(stateCount) > oldReserve {
			// a new reserve allotment is needed: charge the owner count
			// if the balance can carry it
			ownerCount, err := sto.GetUInt32(acctBlob, hookapi.SfOwnerCount)
			if err != nil {
				return errors.TefINTERNAL
			}
			balance, err := sto.GetDrops(acctBlob, hookapi.SfBalance)
			if err != nil {
				return errors.TefINTERNAL
			}
			if balance < view.Fees().AccountReserve(ownerCount+1) {
				return errors.TecINSUFFICIENT_RESERVE
			}
			if ter := adjustOwnerCount(view, owner.AccountKl, acctBlob, 1); ter != errors.TesSUCCESS {
				return ter
			}
		}
		var err error
		hookBlob, err = ledger.EntrySetU32(hookBlob, hookapi.SfHookStateCount, stateCount)
		if err != nil {
			return errors.TefINTERNAL
		}
		if err := view.Insert(owner.HookKl, hookBlob); err != nil {
			return errors.TefINTERNAL
		}
	}

	page := uint64(0)
	if hadOld {
		if v, err := sto.GetUInt64(oldState, hookapi.SfOwnerNode); err == nil {
			page = v
		}
	} else {
		p, err := view.DirAdd(owner.OwnerDir, hsKl)
		if err != nil {
			return errors.TecDIR_FULL
		}
		page = p
	}

	row := ledger.HookStateEntry(owner.Account, key, data, page)
	if err := view.Insert(hsKl, row); err != nil {
		return errors.TefINTERNAL
	}
	return errors.TesSUCCESS
}

// CommitAll writes every modified cache entry through Write. Returns the
// number of rows written and the first non-success code, if any.
func CommitAll(view *ledger.ApplyView, owner Owner, cache *Cache) (int, errors.TER) {
	changed := 0
	for _, key := range cache.ModifiedKeys() {
		entry, _ := cache.Get(key)
		changed++
		if ter := Write(view, owner, key, entry.Value); ter != errors.TesSUCCESS {
			return changed, ter
		}
	}
	return changed, errors.TesSUCCESS
}

func adjustOwnerCount(view *ledger.ApplyView, acctKl keylet.Keylet, acctBlob []byte, delta int32) errors.TER {
	ownerCount, err := sto.GetUInt32(acctBlob, hookapi.SfOwnerCount)
	if err != nil {
		return errors.TefINTERNAL
	}
	next := int64(ownerCount) + int64(delta)
	if next < 0 {
		next = 0
	}
	updated, err := ledger.EntrySetU32(acctBlob, hookapi.SfOwnerCount, uint32(next))
	if err != nil {
		return errors.TefINTERNAL
	}
	if err := view.Insert(acctKl, updated); err != nil {
		return errors.TefINTERNAL
	}
	return errors.TesSUCCESS
}
