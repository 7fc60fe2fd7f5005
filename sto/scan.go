package sto

import (
	"errors"

	"github.com/eatozee/xrpld-hooks/hookapi"
)

// Scan errors. Callers translate these to ABI sentinels; they are ordinary
// Go errors inside the host.
var (
	ErrTruncated    = errors.New("sto: unexpected end of input")
	ErrUnknownType  = errors.New("sto: unknown serialized type")
	ErrNesting      = errors.New("sto: nesting too deep")
	ErrTooManyItems = errors.New("sto: array or object too large")
	ErrNotFound     = errors.New("sto: field not present")
	ErrTooSmall     = errors.New("sto: destination too small")
	ErrTooBig       = errors.New("sto: input too big")
)

// Field describes one serialized field located by the scanner. Offsets are
// relative to the buffer handed to the scan.
type Field struct {
	Type       int
	Code       int
	Start      int // first byte of the preamble
	Total      int // preamble + payload (+ terminator for containers)
	PayloadOff int // first byte of the payload
	PayloadLen int
}

// ID returns the combined (type << 16) | code identifier.
func (f Field) ID() uint32 { return hookapi.FieldID(f.Type, f.Code) }

// decodePreamble reads the 1-3 byte field header. Returns type, field code
// and the number of header bytes consumed.
func decodePreamble(buf []byte) (typ, code, n int, err error) {
	if len(buf) < 2 {
		return 0, 0, 0, ErrTruncated
	}
	high := int(buf[0] >> 4)
	low := int(buf[0] & 0xF)
	n = 1
	switch {
	case high > 0 && low > 0:
		typ, code = high, low
	case high > 0:
		typ, code = high, int(buf[n])
		n++
	case low > 0:
		code, typ = low, int(buf[n])
		n++
	default:
		if len(buf) < 3 {
			return 0, 0, 0, ErrTruncated
		}
		typ = int(buf[n])
		code = int(buf[n+1])
		n += 2
	}
	return typ, code, n, nil
}

// decodeVL reads a variable-length prefix. Returns the payload length and
// the number of prefix bytes consumed.
func decodeVL(buf []byte) (length, n int, err error) {
	if len(buf) < 1 {
		return 0, 0, ErrTruncated
	}
	b1 := int(buf[0])
	switch {
	case b1 < 193:
		return b1, 1, nil
	case b1 < 241:
		if len(buf) < 2 {
			return 0, 0, ErrTruncated
		}
		return 193 + (b1-193)*256 + int(buf[1]), 2, nil
	default:
		if len(buf) < 3 {
			return 0, 0, ErrTruncated
		}
		return 12481 + (b1-241)*65536 + int(buf[1])*256 + int(buf[2]), 3, nil
	}
}

func isVL(typ int) bool {
	return typ == hookapi.TypeBlob || typ == hookapi.TypeAccountID ||
		typ == hookapi.TypeVector || typ == hookapi.TypeIssue
}

func fixedLen(typ int) int {
	switch typ {
	case hookapi.TypeUInt16:
		return 2
	case hookapi.TypeUInt32:
		return 4
	case hookapi.TypeUInt64:
		return 8
	case hookapi.TypeUInt128:
		return 16
	case hookapi.TypeUInt256:
		return 32
	case hookapi.TypeUInt8:
		return 1
	case hookapi.TypeUInt160:
		return 20
	}
	return -1
}

// scanField measures the field starting at buf[0]. Containers are measured
// recursively up to MaxNesting levels and MaxScanChildren children each.
func scanField(buf []byte, depth int) (Field, error) {
	if depth > hookapi.MaxNesting {
		return Field{}, ErrNesting
	}

	typ, code, n, err := decodePreamble(buf)
	if err != nil {
		return Field{}, err
	}
	if typ < 1 || typ > 19 || (typ >= 9 && typ <= 13) {
		return Field{}, ErrUnknownType
	}
	f := Field{Type: typ, Code: code}

	switch {
	case isVL(typ):
		length, vn, err := decodeVL(buf[n:])
		if err != nil {
			return Field{}, err
		}
		n += vn
		f.PayloadOff, f.PayloadLen = n, length
	case fixedLen(typ) >= 0:
		f.PayloadOff, f.PayloadLen = n, fixedLen(typ)
	case typ == hookapi.TypeAmount:
		if n >= len(buf) {
			return Field{}, ErrTruncated
		}
		// top bits 01 mean native: the short 8-byte form
		if buf[n]>>6 == 1 {
			f.PayloadOff, f.PayloadLen = n, 8
		} else {
			f.PayloadOff, f.PayloadLen = n, 48
		}
	case typ == hookapi.TypeObject || typ == hookapi.TypeArray:
		terminator := byte(0xE1)
		if typ == hookapi.TypeArray {
			terminator = 0xF1
		}
		f.PayloadOff = n
		upto := n
		for i := 0; i < hookapi.MaxScanChildren; i++ {
			if upto >= len(buf) {
				return Field{}, ErrTruncated
			}
			if buf[upto] == terminator {
				f.PayloadLen = upto - f.PayloadOff
				f.Total = upto + 1
				return f, nil
			}
			sub, err := scanField(buf[upto:], depth+1)
			if err != nil {
				return Field{}, err
			}
			upto += sub.Total
		}
		return Field{}, ErrTooManyItems
	default:
		return Field{}, ErrUnknownType
	}

	if f.PayloadOff+f.PayloadLen > len(buf) {
		return Field{}, ErrTruncated
	}
	f.Total = f.PayloadOff + f.PayloadLen
	return f, nil
}

// walk iterates the top-level fields of buf, calling fn for each. Iteration
// stops when fn returns false or the buffer is exhausted.
func walk(buf []byte, fn func(Field) bool) error {
	upto := 0
	for i := 0; i < hookapi.MaxScanChildren && upto < len(buf); i++ {
		f, err := scanField(buf[upto:], 0)
		if err != nil {
			return err
		}
		f.Start += upto
		f.PayloadOff += upto
		if !fn(f) {
			return nil
		}
		upto += f.Total
	}
	return nil
}
