package host

import (
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/xfl"
)

// amountToFloat converts a serialized amount payload (8-byte native or
// 48-byte issued) to a packed float. Native drops normalize at 10^-6.
func amountToFloat(payload []byte) int64 {
	switch len(payload) {
	case 8, 48:
		return xfl.StoSet(payload[:8])
	default:
		return hookapi.NotAnAmount
	}
}

// FloatSto serializes a float in amount form into guest memory. The
// currency and issuer windows are required for issued amounts only.
func (c *Context) FloatSto(mem Memory, writePtr, writeLen, creadPtr, creadLen, ireadPtr, ireadLen uint32, f int64, fieldCode uint32) int64 {
	if notInBounds(mem, writePtr, writeLen) {
		return hookapi.OutOfBounds
	}

	isXRP := fieldCode == xfl.StoNative
	isShort := fieldCode == xfl.StoShort

	var currency, issuer []byte
	if !isXRP && !isShort {
		if creadPtr == 0 && creadLen == 0 && ireadPtr == 0 && ireadLen == 0 {
			return hookapi.InvalidArgument
		}
		if notInBounds(mem, creadPtr, creadLen) || notInBounds(mem, ireadPtr, ireadLen) {
			return hookapi.OutOfBounds
		}
		if creadLen != 20 || ireadLen != 20 {
			return hookapi.InvalidArgument
		}
		var ok bool
		currency, ok = mem.Read(creadPtr, creadLen)
		if !ok {
			return hookapi.OutOfBounds
		}
		issuer, ok = mem.Read(ireadPtr, ireadLen)
		if !ok {
			return hookapi.OutOfBounds
		}
	}

	out, rc := xfl.Sto(nil, currency, issuer, f, fieldCode)
	if rc < 0 {
		return rc
	}
	if len(out) > int(writeLen) {
		return hookapi.TooSmall
	}
	return writeOut(mem, writePtr, writeLen, out)
}

// FloatStoSet parses an amount encoding from guest memory back into a
// packed float.
func (c *Context) FloatStoSet(mem Memory, readPtr, readLen uint32) int64 {
	if notInBounds(mem, readPtr, readLen) {
		return hookapi.OutOfBounds
	}
	buf, ok := mem.Read(readPtr, readLen)
	if !ok {
		return hookapi.OutOfBounds
	}
	return xfl.StoSet(buf)
}
