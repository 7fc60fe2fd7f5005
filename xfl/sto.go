package xfl

import (
	"github.com/eatozee/xrpld-hooks/hookapi"
	"github.com/eatozee/xrpld-hooks/sto"
)

// Field code pseudo-values accepted by Sto: 0 means native (XRP) encoding,
// ^0 means an issued amount without preamble, currency or issuer.
const (
	StoNative = uint32(0)
	StoShort  = ^uint32(0)
)

// Sto serializes f in the ledger amount form, appending to dst. Native
// amounts are 8 bytes; issued amounts are 8 bytes followed by the 20-byte
// currency and issuer unless the short form is requested. Any fieldCode
// other than StoNative and StoShort prefixes the output with the field
// preamble.
func Sto(dst []byte, currency, issuer []byte, f int64, fieldCode uint32) ([]byte, int64) {
	if rc := checkValid(f); rc < 0 {
		return dst, rc
	}
	start := len(dst)

	isXRP := fieldCode == StoNative
	isShort := fieldCode == StoShort

	if !isXRP && !isShort {
		if len(currency) != 20 || len(issuer) != 20 {
			return dst, hookapi.InvalidArgument
		}
		dst = sto.AppendPreamble(dst, fieldCode)
	}

	man := uint64(Mantissa(f))
	exp := int32(Exponent(f))
	neg := IsNegative(f)

	var out [8]byte
	switch {
	case isXRP:
		// native form carries drops: renormalize the mantissa to 10^-6
		for exp < -6 {
			man /= 10
			exp++
		}
		for exp > -6 {
			man *= 10
			exp--
		}
		if neg {
			out[0] = 0
		} else {
			out[0] = 0x40
		}
		out[0] |= byte(man >> 56 & 0x3F)
		for i := 1; i < 8; i++ {
			out[i] = byte(man >> (56 - 8*i))
		}
	case man == 0:
		out[0] = 0xC0
	default:
		biased := uint32(exp + 97)
		if neg {
			out[0] = 0x80
		} else {
			out[0] = 0xC0
		}
		out[0] |= byte(biased >> 2)
		out[1] = byte(biased&3)<<6 | byte(man>>48&0x3F)
		for i := 2; i < 8; i++ {
			out[i] = byte(man >> (56 - 8*i))
		}
	}
	dst = append(dst, out[:]...)

	if !isXRP && !isShort {
		dst = append(dst, currency...)
		dst = append(dst, issuer...)
	}
	return dst, int64(len(dst) - start)
}

// StoSet parses a ledger amount encoding back into a packed float. The
// input may carry a field preamble; native and issued forms are both
// accepted.
func StoSet(buf []byte) int64 {
	if len(buf) < 8 {
		return hookapi.NotAnObject
	}

	upto := 0
	if len(buf) > 8 {
		hi := buf[0] >> 4
		lo := buf[0] & 0xF
		switch {
		case hi == 0 && lo == 0:
			if len(buf) < 11 {
				return hookapi.NotAnObject
			}
			upto = 3
		case hi == 0 || lo == 0:
			if len(buf) < 10 {
				return hookapi.NotAnObject
			}
			upto = 2
		default:
			upto = 1
		}
	}

	b := buf[upto:]
	if len(b) < 8 {
		return hookapi.NotAnObject
	}

	if b[0]&0x80 == 0 {
		// native form: low 62 bits are drops
		var drops uint64
		for i := 0; i < 8; i++ {
			drops = drops<<8 | uint64(b[i])
		}
		neg := b[0]&0x40 == 0
		drops &^= uint64(3) << 62
		if drops == 0 {
			return 0
		}
		man := int64(drops)
		if neg {
			man = -man
		}
		return FloatSet(-6, man)
	}

	neg := b[0]&0x40 == 0
	exp := int32(b[0]&0x3F)<<2 + int32(b[1]>>6) - 97
	man := uint64(b[1]&0x3F) << 48
	for i := 2; i < 8; i++ {
		man |= uint64(b[i]) << (8 * (7 - i))
	}

	if man == 0 {
		return 0
	}
	sman := int64(man)
	if neg {
		sman = -sman
	}
	return FloatSet(exp, sman)
}
