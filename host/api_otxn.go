package host

import (
	"fmt"

	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/sto"
	"github.com/eatozee/xrpld-hooks/xfl"
)

// OtxnIDWrite writes the originating transaction's id.
func (c *Context) OtxnIDWrite(mem Memory, writePtr, writeLen uint32) int64 {
	if int(writeLen) < len(c.otxnID) {
		return hookapi.TooSmall
	}
	if notInBounds(mem, writePtr, uint32(len(c.otxnID))) {
		return hookapi.OutOfBounds
	}
	return writeOut(mem, writePtr, writeLen, c.otxnID[:])
}

// OtxnType returns the numeric transaction type of the originating txn.
func (c *Context) OtxnType() int64 {
	tt, err := sto.GetUInt16(c.otxn, hookapi.SfTransactionType)
	if err != nil {
		return hookapi.InternalError
	}
	return int64(tt)
}

// OtxnBurden returns the burden of the originating transaction.
func (c *Context) OtxnBurden() int64 { return c.otxnBurden() }

// OtxnGeneration returns the generation of the originating transaction.
func (c *Context) OtxnGeneration() int64 { return c.otxnGeneration() }

// OtxnField writes a field of the originating transaction in serialized
// form. Account fields lose their one-byte VL prefix; with writePtr 0 the
// value packs into the return code.
func (c *Context) OtxnField(mem Memory, writePtr, writeLen, fieldID uint32) int64 {
	if writePtr != 0 && notInBounds(mem, writePtr, writeLen) {
		return hookapi.OutOfBounds
	}
	if hookapi.FieldType(fieldID) < 1 {
		return hookapi.InvalidField
	}

	value, rc := fieldValue(c.otxn, fieldID)
	if rc < 0 {
		return rc
	}
	if writePtr == 0 {
		return dataAsInt64(value)
	}
	if len(value) > int(writeLen) {
		return hookapi.TooSmall
	}
	return writeOut(mem, writePtr, writeLen, value)
}

// OtxnFieldText writes a human-readable rendering of a field, for guests
// that log rather than parse.
func (c *Context) OtxnFieldText(mem Memory, writePtr, writeLen, fieldID uint32) int64 {
	if notInBounds(mem, writePtr, writeLen) {
		return hookapi.OutOfBounds
	}

	value, rc := fieldValue(c.otxn, fieldID)
	if rc < 0 {
		return rc
	}

	var text string
	switch hookapi.FieldType(fieldID) {
	case hookapi.TypeUInt8, hookapi.TypeUInt16, hookapi.TypeUInt32, hookapi.TypeUInt64:
		var v uint64
		for _, b := range value {
			v = v<<8 | uint64(b)
		}
		text = fmt.Sprintf("%d", v)
	case hookapi.TypeAmount:
		f := amountToFloat(value)
		if f < 0 {
			text = "<invalid amount>"
		} else {
			text = fmt.Sprintf("%d*10^(%d)", xfl.Mantissa(f), xfl.Exponent(f))
		}
	default:
		text = fmt.Sprintf("%X", value)
	}

	if len(text) > int(writeLen) {
		return hookapi.TooSmall
	}
	return writeOut(mem, writePtr, writeLen, []byte(text))
}

// fieldValue extracts a field's serialized value: payload bytes with the
// VL prefix kept for blobs but stripped for account ids, arrays fully
// wrapped.
func fieldValue(obj []byte, fieldID uint32) ([]byte, int64) {
	var out []byte
	found := false
	err := sto.Each(obj, func(f sto.Field) bool {
		if f.ID() != fieldID {
			return true
		}
		found = true
		switch {
		case f.Type == hookapi.TypeArray:
			out = obj[f.Start : f.Start+f.Total]
		case f.Type == hookapi.TypeAccountID:
			out = obj[f.PayloadOff : f.PayloadOff+f.PayloadLen]
		case isVLType(f.Type):
			// keep the VL prefix: skip only the preamble
			_, _, n, perr := sto.PreambleOf(obj[f.Start:])
			if perr != nil {
				out = nil
				return false
			}
			out = obj[f.Start+n : f.Start+f.Total]
		default:
			out = obj[f.PayloadOff : f.PayloadOff+f.PayloadLen]
		}
		return false
	})
	if err != nil {
		return nil, hookapi.ParseError
	}
	if !found || out == nil {
		return nil, hookapi.DoesntExist
	}
	return out, 0
}

// LedgerSeq returns the sequence the next validated ledger will carry.
func (c *Context) LedgerSeq() int64 {
	return int64(c.view.Seq())
}

// HookAccount writes the account the executing hook is installed on.
func (c *Context) HookAccount(mem Memory, writePtr, writeLen uint32) int64 {
	_ = writeLen // the ABI always writes the full 20 bytes
	if notInBounds(mem, writePtr, 20) {
		return hookapi.OutOfBounds
	}
	return writeOut(mem, writePtr, 20, c.account[:])
}

// HookHash writes the hash of the executing hook's bytecode.
func (c *Context) HookHash(mem Memory, writePtr, writeLen uint32) int64 {
	if writeLen < 32 {
		return hookapi.TooSmall
	}
	if notInBounds(mem, writePtr, writeLen) {
		return hookapi.OutOfBounds
	}
	return writeOut(mem, writePtr, writeLen, c.hookHash[:])
}
