// Package sto reads and writes the ledger's field-tagged binary object
// form: a 1-3 byte type/field preamble per field, variable-length prefixes
// for blob-like types, and terminator bytes for nested objects (0xE1) and
// arrays (0xF1).
package sto

import (
	"github.com/eatozee/xrpld-hooks/hookapi"
)

// Subfield locates fieldID among the top-level fields of buf. For arrays
// the returned window covers the whole field, preamble and terminator
// included; for everything else it covers the payload only.
func Subfield(buf []byte, fieldID uint32) (offset, length int, err error) {
	found := false
	err = walk(buf, func(f Field) bool {
		if f.ID() != fieldID {
			return true
		}
		found = true
		if f.Type == hookapi.TypeArray {
			offset, length = f.Start, f.Total
		} else {
			offset, length = f.PayloadOff, f.PayloadLen
		}
		return false
	})
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return 0, 0, ErrNotFound
	}
	return offset, length, nil
}

// Subarray locates the index-th element of the array in buf. The buffer may
// be the fully wrapped array (as Subfield returns) or its bare contents.
// The returned window covers the whole element.
func Subarray(buf []byte, index uint32) (offset, length int, err error) {
	base := 0
	if len(buf) > 0 && buf[0]&0xF0 == 0xF0 {
		base = 1
	}
	upto := base
	for i := uint32(0); int(i) < hookapi.MaxScanChildren && upto < len(buf); i++ {
		if buf[upto] == 0xF1 {
			break
		}
		f, err := scanField(buf[upto:], 0)
		if err != nil {
			return 0, 0, err
		}
		if i == index {
			return upto, f.Total, nil
		}
		upto += f.Total
	}
	return 0, 0, ErrNotFound
}

// Validate reports whether buf parses cleanly as a sequence of fields.
func Validate(buf []byte) bool {
	return walk(buf, func(Field) bool { return true }) == nil
}

// Emplace copies src into dst with field (a fully wrapped single field)
// inserted at its canonical position, replacing any existing field with the
// same id. Returns the number of bytes written.
func Emplace(dst, src, field []byte, fieldID uint32) (int, error) {
	if len(src) > hookapi.MaxEmplaceSource {
		return 0, ErrTooBig
	}
	if len(field) > hookapi.MaxFieldBlob {
		return 0, ErrTooBig
	}
	if len(dst) < len(src)+len(field) {
		return 0, ErrTooSmall
	}

	injectStart, injectEnd := len(src), len(src)
	err := walk(src, func(f Field) bool {
		switch {
		case f.ID() == fieldID:
			injectStart, injectEnd = f.Start, f.Start+f.Total
			return false
		case f.ID() > fieldID:
			injectStart, injectEnd = f.Start, f.Start
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}

	n := copy(dst, src[:injectStart])
	n += copy(dst[n:], field)
	n += copy(dst[n:], src[injectEnd:])
	return n, nil
}

// Erase copies src into dst with fieldID removed. ErrNotFound if the field
// is not present.
func Erase(dst, src []byte, fieldID uint32) (int, error) {
	if len(src) > hookapi.MaxEmplaceSource {
		return 0, ErrTooBig
	}
	if len(dst) < len(src) {
		return 0, ErrTooSmall
	}

	eraseStart, eraseEnd := -1, -1
	err := walk(src, func(f Field) bool {
		if f.ID() == fieldID {
			eraseStart, eraseEnd = f.Start, f.Start+f.Total
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if eraseStart < 0 {
		return 0, ErrNotFound
	}

	n := copy(dst, src[:eraseStart])
	n += copy(dst[n:], src[eraseEnd:])
	return n, nil
}

// Each calls fn for every top-level field of buf.
func Each(buf []byte, fn func(Field) bool) error {
	return walk(buf, fn)
}

// Locate measures the single field starting at buf[0].
func Locate(buf []byte) (Field, error) {
	return scanField(buf, 0)
}

// PreambleOf decodes just the field header at buf[0], returning the type,
// field code and header width.
func PreambleOf(buf []byte) (typ, code, n int, err error) {
	return decodePreamble(buf)
}
