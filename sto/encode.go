package sto

import "github.com/eatozee/xrpld-hooks/hookapi"

// AppendPreamble writes the 1-3 byte field header for the given combined
// field id.
func AppendPreamble(dst []byte, fieldID uint32) []byte {
	typ := hookapi.FieldType(fieldID)
	code := hookapi.FieldCode(fieldID)
	switch {
	case typ < 16 && code < 16:
		return append(dst, byte(typ<<4|code))
	case typ < 16:
		return append(dst, byte(typ<<4), byte(code))
	case code < 16:
		return append(dst, byte(code), byte(typ))
	default:
		return append(dst, 0, byte(typ), byte(code))
	}
}

// AppendVL writes a variable-length prefix for a payload of n bytes.
func AppendVL(dst []byte, n int) []byte {
	switch {
	case n <= 192:
		return append(dst, byte(n))
	case n <= 12480:
		n -= 193
		return append(dst, byte(193+n/256), byte(n%256))
	default:
		n -= 12481
		return append(dst, byte(241+n/65536), byte(n>>8), byte(n))
	}
}

// Builder assembles a serialized object field by field. Fields must be
// appended in canonical order (ascending combined id); the builder does not
// sort.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// Bytes returns the serialized form built so far.
func (b *Builder) Bytes() []byte { return b.buf }

// UInt8 appends a one-byte scalar field.
func (b *Builder) UInt8(fieldID uint32, v uint8) *Builder {
	b.buf = AppendPreamble(b.buf, fieldID)
	b.buf = append(b.buf, v)
	return b
}

// UInt16 appends a two-byte big-endian scalar field.
func (b *Builder) UInt16(fieldID uint32, v uint16) *Builder {
	b.buf = AppendPreamble(b.buf, fieldID)
	b.buf = append(b.buf, byte(v>>8), byte(v))
	return b
}

// UInt32 appends a four-byte big-endian scalar field.
func (b *Builder) UInt32(fieldID uint32, v uint32) *Builder {
	b.buf = AppendPreamble(b.buf, fieldID)
	b.buf = append(b.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	return b
}

// UInt64 appends an eight-byte big-endian scalar field.
func (b *Builder) UInt64(fieldID uint32, v uint64) *Builder {
	b.buf = AppendPreamble(b.buf, fieldID)
	b.buf = append(b.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	return b
}

// Hash256 appends a 32-byte fixed field.
func (b *Builder) Hash256(fieldID uint32, v [32]byte) *Builder {
	b.buf = AppendPreamble(b.buf, fieldID)
	b.buf = append(b.buf, v[:]...)
	return b
}

// VL appends a variable-length field (blob, account id, etc).
func (b *Builder) VL(fieldID uint32, payload []byte) *Builder {
	b.buf = AppendPreamble(b.buf, fieldID)
	b.buf = AppendVL(b.buf, len(payload))
	b.buf = append(b.buf, payload...)
	return b
}

// AccountID appends a 20-byte account field in its VL-wrapped wire form.
func (b *Builder) AccountID(fieldID uint32, id [20]byte) *Builder {
	return b.VL(fieldID, id[:])
}

// Amount appends a preformed amount payload (8 or 48 bytes).
func (b *Builder) Amount(fieldID uint32, enc []byte) *Builder {
	b.buf = AppendPreamble(b.buf, fieldID)
	b.buf = append(b.buf, enc...)
	return b
}

// Drops appends a native amount of n drops.
func (b *Builder) Drops(fieldID uint32, n uint64) *Builder {
	enc := [8]byte{}
	v := n | 1<<62 // native flag, positive
	for i := 0; i < 8; i++ {
		enc[i] = byte(v >> (56 - 8*i))
	}
	return b.Amount(fieldID, enc[:])
}

// Object appends a nested object field: preamble, the inner fields built by
// fn, and the object terminator.
func (b *Builder) Object(fieldID uint32, fn func(*Builder)) *Builder {
	b.buf = AppendPreamble(b.buf, fieldID)
	fn(b)
	b.buf = append(b.buf, 0xE1)
	return b
}

// Array appends a nested array field with the elements built by fn and the
// array terminator.
func (b *Builder) Array(fieldID uint32, fn func(*Builder)) *Builder {
	b.buf = AppendPreamble(b.buf, fieldID)
	fn(b)
	b.buf = append(b.buf, 0xF1)
	return b
}

// Raw appends preformed bytes verbatim.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}
