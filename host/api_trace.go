package host

import (
	"encoding/hex"
	"fmt"

	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/xfl"
)

// traceText reads and sanitizes a guest string for logging: truncated to
// the trace cap, UTF-16LE downcast when detected.
func traceText(mem Memory, ptr, length, cap uint32) (string, int64) {
	if notInBounds(mem, ptr, length) {
		return "", hookapi.OutOfBounds
	}
	if length > cap {
		length = cap
	}
	if ptr == 0 && length == 0 {
		return "", 0
	}
	buf, ok := mem.Read(ptr, length)
	if !ok {
		return "", hookapi.OutOfBounds
	}
	if isUTF16LE(buf) {
		buf = downcastUTF16(buf)
	}
	return string(buf), 0
}

func (c *Context) traceLine(msg string) {
	Logger().Sugar().Debugf("HookTrace[%x-%x]: %s", c.account, c.otxnAccountForLog(), msg)
}

func (c *Context) otxnAccountForLog() []byte {
	if acc, rc := fieldValue(c.otxn, hookapi.SfAccount); rc == 0 {
		return acc
	}
	return nil
}

// Trace logs a message plus a data buffer, hex-dumped when asHex is set.
func (c *Context) Trace(mem Memory, mreadPtr, mreadLen, dreadPtr, dreadLen, asHex uint32) int64 {
	if notInBounds(mem, mreadPtr, mreadLen) || notInBounds(mem, dreadPtr, dreadLen) {
		return hookapi.OutOfBounds
	}

	msg, rc := traceText(mem, mreadPtr, mreadLen, hookapi.MaxTraceMessage)
	if rc < 0 {
		return rc
	}

	if dreadLen > hookapi.MaxTraceData {
		dreadLen = hookapi.MaxTraceData
	}
	var data string
	if dreadLen > 0 {
		buf, ok := mem.Read(dreadPtr, dreadLen)
		if !ok {
			return hookapi.OutOfBounds
		}
		if asHex != 0 {
			data = hex.EncodeToString(buf)
		} else if isUTF16LE(buf) {
			data = string(downcastUTF16(buf))
		} else {
			data = string(buf)
		}
	}

	c.traceLine(msg + " " + data)
	return 0
}

// TraceNum logs a message and an integer.
func (c *Context) TraceNum(mem Memory, readPtr, readLen uint32, number int64) int64 {
	msg, rc := traceText(mem, readPtr, readLen, hookapi.MaxTraceData)
	if rc < 0 {
		return rc
	}
	c.traceLine(fmt.Sprintf("%s %d", msg, number))
	return 0
}

// TraceFloat logs a message and a packed float in mantissa/exponent form.
func (c *Context) TraceFloat(mem Memory, readPtr, readLen uint32, f int64) int64 {
	msg, rc := traceText(mem, readPtr, readLen, hookapi.MaxTraceData)
	if rc < 0 {
		return rc
	}
	switch {
	case f == 0:
		c.traceLine(msg + " Float 0*10^(0) <ZERO>")
	case xfl.Mantissa(f) < 0 || xfl.Exponent(f) == hookapi.InvalidFloat:
		c.traceLine(msg + " Float <INVALID>")
	default:
		man := xfl.Mantissa(f)
		if xfl.IsNegative(f) {
			man = -man
		}
		c.traceLine(fmt.Sprintf("%s Float %d*10^(%d)", msg, man, xfl.Exponent(f)))
	}
	return 0
}

// TraceSlot logs a slot's binding id in hex.
func (c *Context) TraceSlot(mem Memory, readPtr, readLen, slotNo uint32) int64 {
	entry, ok := c.slots[slotNo]
	if !ok {
		return hookapi.DoesntExist
	}
	msg, rc := traceText(mem, readPtr, readLen, hookapi.MaxTraceData)
	if rc < 0 {
		return rc
	}
	id := entry.id
	if len(id) > 32 {
		id = id[:32]
	}
	c.traceLine(fmt.Sprintf("%s Slot %d - %X", msg, slotNo, id))
	return 0
}
