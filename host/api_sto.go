package host

import (
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/sto"
)

// StoSubfield locates a field inside a serialized object in guest memory
// and returns (offset << 32 | length) relative to the input.
func (c *Context) StoSubfield(mem Memory, readPtr, readLen, fieldID uint32) int64 {
	if notInBounds(mem, readPtr, readLen) {
		return hookapi.OutOfBounds
	}
	if readLen < 1 {
		return hookapi.TooSmall
	}
	buf, ok := mem.Read(readPtr, readLen)
	if !ok {
		return hookapi.OutOfBounds
	}
	off, length, err := sto.Subfield(buf, fieldID)
	switch err {
	case nil:
		return hookapi.PackSub(uint32(off), uint32(length))
	case sto.ErrNotFound:
		return hookapi.DoesntExist
	default:
		return hookapi.ParseError
	}
}

// StoSubarray indexes into a serialized array in guest memory, returning
// the packed offset/length of the element.
func (c *Context) StoSubarray(mem Memory, readPtr, readLen, index uint32) int64 {
	if notInBounds(mem, readPtr, readLen) {
		return hookapi.OutOfBounds
	}
	if readLen < 1 {
		return hookapi.TooSmall
	}
	buf, ok := mem.Read(readPtr, readLen)
	if !ok {
		return hookapi.OutOfBounds
	}
	off, length, err := sto.Subarray(buf, index)
	switch err {
	case nil:
		return hookapi.PackSub(uint32(off), uint32(length))
	case sto.ErrNotFound:
		return hookapi.DoesntExist
	default:
		return hookapi.ParseError
	}
}

// StoValidate reports 1 when the guest buffer parses as a serialized
// object, 0 when it does not.
func (c *Context) StoValidate(mem Memory, readPtr, readLen uint32) int64 {
	if notInBounds(mem, readPtr, readLen) {
		return hookapi.OutOfBounds
	}
	if readLen < 1 {
		return hookapi.TooSmall
	}
	buf, ok := mem.Read(readPtr, readLen)
	if !ok {
		return hookapi.OutOfBounds
	}
	if sto.Validate(buf) {
		return 1
	}
	return 0
}

// StoEmplace writes the source object with a field injected at its
// canonical position into the output buffer.
func (c *Context) StoEmplace(mem Memory, writePtr, writeLen, sreadPtr, sreadLen, freadPtr, freadLen, fieldID uint32) int64 {
	if notInBounds(mem, writePtr, writeLen) ||
		notInBounds(mem, sreadPtr, sreadLen) ||
		notInBounds(mem, freadPtr, freadLen) {
		return hookapi.OutOfBounds
	}
	if writeLen < sreadLen+freadLen {
		return hookapi.TooSmall
	}
	if sreadLen > hookapi.MaxEmplaceSource {
		return hookapi.TooBig
	}
	if freadLen > hookapi.MaxFieldBlob {
		return hookapi.TooBig
	}

	src, ok1 := mem.Read(sreadPtr, sreadLen)
	field, ok2 := mem.Read(freadPtr, freadLen)
	if !ok1 || !ok2 {
		return hookapi.OutOfBounds
	}

	dst := make([]byte, sreadLen+freadLen)
	n, err := sto.Emplace(dst, src, field, fieldID)
	if err != nil {
		return hookapi.ParseError
	}
	return writeOut(mem, writePtr, writeLen, dst[:n])
}

// StoErase writes the source object with the field removed.
func (c *Context) StoErase(mem Memory, writePtr, writeLen, readPtr, readLen, fieldID uint32) int64 {
	if notInBounds(mem, writePtr, writeLen) || notInBounds(mem, readPtr, readLen) {
		return hookapi.OutOfBounds
	}
	if readLen > hookapi.MaxEmplaceSource {
		return hookapi.TooBig
	}
	if writeLen < readLen {
		return hookapi.TooSmall
	}

	src, ok := mem.Read(readPtr, readLen)
	if !ok {
		return hookapi.OutOfBounds
	}
	dst := make([]byte, readLen)
	n, err := sto.Erase(dst, src, fieldID)
	switch err {
	case nil:
		return writeOut(mem, writePtr, writeLen, dst[:n])
	case sto.ErrNotFound:
		return hookapi.DoesntExist
	default:
		return hookapi.ParseError
	}
}
