package sto

import "github.com/eatozee/xrpld-hooks/hookapi"

// Typed field readers over a serialized object. All return ErrNotFound when
// the field is absent and ErrTruncated when the payload width is wrong for
// the requested type.

// GetUInt16 reads a two-byte big-endian scalar field.
func GetUInt16(buf []byte, fieldID uint32) (uint16, error) {
	p, err := payload(buf, fieldID, 2)
	if err != nil {
		return 0, err
	}
	return uint16(p[0])<<8 | uint16(p[1]), nil
}

// GetUInt32 reads a four-byte big-endian scalar field.
func GetUInt32(buf []byte, fieldID uint32) (uint32, error) {
	p, err := payload(buf, fieldID, 4)
	if err != nil {
		return 0, err
	}
	return uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3]), nil
}

// GetUInt64 reads an eight-byte big-endian scalar field.
func GetUInt64(buf []byte, fieldID uint32) (uint64, error) {
	p, err := payload(buf, fieldID, 8)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range p {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// GetHash256 reads a 32-byte fixed field.
func GetHash256(buf []byte, fieldID uint32) ([32]byte, error) {
	var out [32]byte
	p, err := payload(buf, fieldID, 32)
	if err != nil {
		return out, err
	}
	copy(out[:], p)
	return out, nil
}

// GetVL reads a variable-length field's payload.
func GetVL(buf []byte, fieldID uint32) ([]byte, error) {
	return payload(buf, fieldID, -1)
}

// GetAccountID reads a VL-wrapped 20-byte account field.
func GetAccountID(buf []byte, fieldID uint32) ([20]byte, error) {
	var out [20]byte
	p, err := payload(buf, fieldID, 20)
	if err != nil {
		return out, err
	}
	copy(out[:], p)
	return out, nil
}

// GetDrops reads a native amount field and returns its drop count.
// ErrUnknownType if the amount is not native.
func GetDrops(buf []byte, fieldID uint32) (uint64, error) {
	p, err := payload(buf, fieldID, -1)
	if err != nil {
		return 0, err
	}
	if len(p) != 8 || p[0]>>6 != 1 {
		return 0, ErrUnknownType
	}
	var v uint64
	for _, b := range p {
		v = v<<8 | uint64(b)
	}
	return v &^ (3 << 62), nil
}

// Has reports whether fieldID is present among the top-level fields.
func Has(buf []byte, fieldID uint32) bool {
	_, _, err := Subfield(buf, fieldID)
	return err == nil
}

func payload(buf []byte, fieldID uint32, want int) ([]byte, error) {
	off, length, err := Subfield(buf, fieldID)
	if err != nil {
		return nil, err
	}
	// arrays come back wrapped; strip to contents for the typed readers
	if hookapi.FieldType(fieldID) == hookapi.TypeArray {
		f, err := scanField(buf[off:off+length], 0)
		if err != nil {
			return nil, err
		}
		off, length = off+f.PayloadOff, f.PayloadLen
	}
	if want >= 0 && length != want {
		return nil, ErrTruncated
	}
	return buf[off : off+length], nil
}
