package host

import (
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/keylet"
	"github.com/eatozee/xrpld-hooks/state"
	"github.com/eatozee/xrpld-hooks/sto"
)

// StateSet stages a hook-state write: key is left-zero-padded to 32 bytes,
// the blob is capped by the hook's HookStateDataMaxSize, and a zero-length
// blob deletes on commit. Returns the staged length.
func (c *Context) StateSet(mem Memory, readPtr, readLen, kreadPtr, kreadLen uint32) int64 {
	if notInBounds(mem, kreadPtr, 32) {
		return hookapi.OutOfBounds
	}
	deleting := readPtr == 0 && readLen == 0
	if !deleting && notInBounds(mem, readPtr, readLen) {
		return hookapi.OutOfBounds
	}
	if kreadLen > 32 {
		return hookapi.TooBig
	}
	if kreadLen < 1 {
		return hookapi.TooSmall
	}

	hookBlob, ok, err := c.view.Peek(c.owner.HookKl)
	if err != nil || !ok {
		return hookapi.InternalError
	}
	maxSize, err := sto.GetUInt32(hookBlob, hookapi.SfHookStateDataMaxSize)
	if err != nil {
		return hookapi.InternalError
	}
	if readLen > maxSize {
		return hookapi.TooBig
	}

	keySrc, ok := mem.Read(kreadPtr, kreadLen)
	if !ok {
		return hookapi.OutOfBounds
	}
	key, ok := state.MakeKey(keySrc)
	if !ok {
		return hookapi.InvalidArgument
	}

	var data []byte
	if !deleting {
		data, ok = mem.Read(readPtr, readLen)
		if !ok {
			return hookapi.OutOfBounds
		}
	}
	c.stateCache.Set(key, data)
	return int64(readLen)
}

// State reads local hook state for a key.
func (c *Context) State(mem Memory, writePtr, writeLen, kreadPtr, kreadLen uint32) int64 {
	return c.StateForeign(mem, writePtr, writeLen, kreadPtr, kreadLen, 0, 0)
}

// StateForeign serves both local and foreign state reads; a zero account
// pointer means local. Local misses are cached; foreign values never are.
func (c *Context) StateForeign(mem Memory, writePtr, writeLen, kreadPtr, kreadLen, areadPtr, areadLen uint32) int64 {
	isForeign := areadPtr > 0

	if notInBounds(mem, kreadPtr, kreadLen) ||
		notInBounds(mem, areadPtr, areadLen) ||
		notInBounds(mem, writePtr, writeLen) {
		return hookapi.OutOfBounds
	}
	if kreadLen > 32 {
		return hookapi.TooBig
	}
	if isForeign && areadLen != 20 {
		return hookapi.InvalidAccount
	}

	keySrc, ok := mem.Read(kreadPtr, kreadLen)
	if !ok {
		return hookapi.OutOfBounds
	}
	key, ok := state.MakeKey(keySrc)
	if !ok {
		return hookapi.InvalidArgument
	}

	// local reads go through the cache first
	if !isForeign {
		if entry, hit := c.stateCache.Get(key); hit {
			if writePtr == 0 {
				return dataAsInt64(entry.Value)
			}
			if len(entry.Value) > int(writeLen) {
				return hookapi.TooSmall
			}
			return writeOut(mem, writePtr, writeLen, entry.Value)
		}
	}

	account := c.account
	if isForeign {
		acc, ok := mem.Read(areadPtr, 20)
		if !ok {
			return hookapi.OutOfBounds
		}
		copy(account[:], acc)
	}

	row, ok, err := c.view.Peek(keylet.HookState(account, key))
	if err != nil {
		return hookapi.InternalError
	}
	if !ok {
		return hookapi.DoesntExist
	}
	blob, err := sto.GetVL(row, hookapi.SfHookStateData)
	if err != nil {
		return hookapi.InternalError
	}

	if !isForeign {
		c.stateCache.StageRead(key, blob)
	}

	if writePtr == 0 {
		return dataAsInt64(blob)
	}
	if len(blob) > int(writeLen) {
		return hookapi.TooSmall
	}
	return writeOut(mem, writePtr, writeLen, blob)
}
