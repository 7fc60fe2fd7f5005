package ledger

import (
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/sto"
)

// Serialized-entry field helpers. Entries are stored in their wire form, so
// updates splice the field in place rather than re-encoding the object.

// EntrySetU32 returns blob with the given u32 field created or replaced.
func EntrySetU32(blob []byte, fieldID uint32, v uint32) ([]byte, error) {
	field := sto.NewBuilder().UInt32(fieldID, v).Bytes()
	return entryEmplace(blob, field, fieldID)
}

// EntrySetU64 returns blob with the given u64 field created or replaced.
func EntrySetU64(blob []byte, fieldID uint32, v uint64) ([]byte, error) {
	field := sto.NewBuilder().UInt64(fieldID, v).Bytes()
	return entryEmplace(blob, field, fieldID)
}

// EntrySetDrops returns blob with a native amount field created or
// replaced.
func EntrySetDrops(blob []byte, fieldID uint32, drops uint64) ([]byte, error) {
	field := sto.NewBuilder().Drops(fieldID, drops).Bytes()
	return entryEmplace(blob, field, fieldID)
}

func entryEmplace(blob, field []byte, fieldID uint32) ([]byte, error) {
	dst := make([]byte, len(blob)+len(field))
	n, err := sto.Emplace(dst, blob, field, fieldID)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// AccountRoot builds a minimal serialized account root entry.
func AccountRoot(id AccountID, balance uint64, ownerCount uint32, seq uint32) []byte {
	b := sto.NewBuilder()
	b.UInt32(hookapi.SfSequence, seq)
	b.UInt32(hookapi.SfOwnerCount, ownerCount)
	b.Drops(hookapi.SfBalance, balance)
	b.AccountID(hookapi.SfAccount, id)
	return b.Bytes()
}

// HookEntry builds the hook object installed on an account: trigger mask,
// state accounting and the hook bytecode hash.
func HookEntry(owner AccountID, hookHash [32]byte, hookOn uint64, stateDataMax uint32) []byte {
	b := sto.NewBuilder()
	b.UInt32(hookapi.SfHookStateCount, 0)
	b.UInt32(hookapi.SfHookStateDataMaxSize, stateDataMax)
	b.UInt64(hookapi.SfHookOn, hookOn)
	b.Hash256(hookapi.SfHookHash, hookHash)
	b.AccountID(hookapi.SfAccount, owner)
	return b.Bytes()
}

// HookStateEntry builds one hook-state row.
func HookStateEntry(owner AccountID, key [32]byte, data []byte, ownerNode uint64) []byte {
	b := sto.NewBuilder()
	b.UInt64(hookapi.SfOwnerNode, ownerNode)
	b.Hash256(hookapi.SfHookStateKey, key)
	b.VL(hookapi.SfHookStateData, data)
	b.AccountID(hookapi.SfAccount, owner)
	return b.Bytes()
}

// SignerListEntry builds a signer list with the given accounts and weights.
func SignerListEntry(owner AccountID, signers []AccountID, weights []uint16) []byte {
	b := sto.NewBuilder()
	b.AccountID(hookapi.SfAccount, owner)
	b.Array(hookapi.SfSignerEntries, func(b *sto.Builder) {
		for i, s := range signers {
			b.Object(hookapi.SfSignerEntry, func(b *sto.Builder) {
				b.UInt16(hookapi.SfSignerWeight, weights[i])
				b.AccountID(hookapi.SfAccount, s)
			})
		}
	})
	return b.Bytes()
}

// EmittedTxnEntry wraps a serialized emitted transaction in its ledger
// object form.
func EmittedTxnEntry(txnBlob []byte, ownerNode uint64) []byte {
	b := sto.NewBuilder()
	b.UInt64(hookapi.SfOwnerNode, ownerNode)
	b.Object(hookapi.SfEmittedTxn, func(b *sto.Builder) {
		b.Raw(txnBlob)
	})
	return b.Bytes()
}
