// Package xfl implements the packed decimal floating point form used by the
// hook API: a tagged i64 holding sign, biased exponent and a 16-digit
// mantissa. All arithmetic is integer arithmetic; the native float types
// never touch these values. Negative return values are the ABI error
// sentinels, so results pass straight through host calls.
package xfl

import "github.com/eatozee/xrpld-hooks/hookapi"

const (
	minMantissa = int64(1000000000000000)
	maxMantissa = int64(9999999999999999)
	minExponent = int32(-96)
	maxExponent = int32(80)
)

// Zero is the canonical zero value: the integer 0, not a packed form.
const Zero = int64(0)

// Exponent extracts the unbiased exponent. INVALID_FLOAT for negative
// (sentinel) inputs, 0 for zero.
func Exponent(f int64) int64 {
	if f < 0 {
		return hookapi.InvalidFloat
	}
	if f == 0 {
		return 0
	}
	return int64(int32(uint64(f)>>54&0xFF) - 97)
}

// Mantissa extracts the mantissa digits.
func Mantissa(f int64) int64 {
	if f < 0 {
		return hookapi.InvalidFloat
	}
	if f == 0 {
		return 0
	}
	return f & (1<<54 - 1)
}

// IsNegative reports the sign bit. Bit 62 clear means negative for nonzero
// values.
func IsNegative(f int64) bool {
	return uint64(f)>>62&1 == 0
}

func invertSign(f int64) int64 {
	return int64(uint64(f) ^ 1<<62)
}

func setSign(f int64, negative bool) int64 {
	if IsNegative(f) == negative {
		return f
	}
	return invertSign(f)
}

func setMantissa(f int64, mantissa int64) int64 {
	if mantissa > maxMantissa {
		return hookapi.MantissaOversized
	}
	return f - Mantissa(f) + mantissa
}

func setExponent(f int64, exponent int32) int64 {
	if exponent > maxExponent {
		return hookapi.ExponentOversized
	}
	if exponent < minExponent {
		return hookapi.ExponentUndersized
	}
	f &^= 0xFF << 54
	return f + int64(exponent+97)<<54
}

// makeFloat packs an already-normalized mantissa and exponent. The sign is
// taken from the mantissa.
func makeFloat(mantissa int64, exponent int32) int64 {
	if mantissa == 0 {
		return 0
	}
	if mantissa > maxMantissa || -mantissa > maxMantissa {
		return hookapi.MantissaOversized
	}
	if exponent > maxExponent {
		return hookapi.ExponentOversized
	}
	if exponent < minExponent {
		return hookapi.ExponentUndersized
	}
	neg := mantissa < 0
	if neg {
		mantissa = -mantissa
	}
	out := setMantissa(0, mantissa)
	out = setExponent(out, exponent)
	out = setSign(out, neg)
	return out
}

// FloatSet builds a float from an arbitrary exponent and mantissa,
// normalizing the mantissa into range. INVALID_FLOAT when the exponent
// falls outside the valid range, before or after normalization.
func FloatSet(exp int32, mantissa int64) int64 {
	if mantissa == 0 {
		return 0
	}
	neg := mantissa < 0
	if neg {
		mantissa = -mantissa
	}

	for mantissa < minMantissa {
		mantissa *= 10
		exp--
		if exp < minExponent {
			return hookapi.InvalidFloat
		}
	}
	for mantissa > maxMantissa {
		mantissa /= 10
		exp++
		if exp > maxExponent {
			return hookapi.InvalidFloat
		}
	}
	if exp > maxExponent || exp < minExponent {
		return hookapi.InvalidFloat
	}

	if neg {
		mantissa = -mantissa
	}
	return makeFloat(mantissa, exp)
}

// checkValid verifies f is zero or a well-formed packed value. Returns a
// sentinel (negative) or 0.
func checkValid(f int64) int64 {
	if f < 0 {
		return hookapi.InvalidFloat
	}
	if f == 0 {
		return 0
	}
	m := Mantissa(f)
	e := int32(Exponent(f))
	if m < minMantissa || m > maxMantissa || e > maxExponent || e < minExponent {
		return hookapi.InvalidFloat
	}
	return 0
}

// Negate flips the sign of a nonzero float.
func Negate(f int64) int64 {
	if f == 0 {
		return 0
	}
	if rc := checkValid(f); rc < 0 {
		return rc
	}
	return invertSign(f)
}

// SignSet forces the sign bit.
func SignSet(f int64, negative bool) int64 {
	if rc := checkValid(f); rc < 0 {
		return rc
	}
	if f == 0 {
		return 0
	}
	return setSign(f, negative)
}

// Sign returns 1 for negative values, 0 otherwise.
func Sign(f int64) int64 {
	if rc := checkValid(f); rc < 0 {
		return rc
	}
	if f == 0 {
		return 0
	}
	if IsNegative(f) {
		return 1
	}
	return 0
}

// MantissaSet replaces the mantissa. MANTISSA_OVERSIZED if out of range for
// the packed form; a zero mantissa collapses the value to zero.
func MantissaSet(f int64, mantissa int64) int64 {
	if rc := checkValid(f); rc < 0 {
		return rc
	}
	if mantissa == 0 {
		return 0
	}
	return setMantissa(f, mantissa)
}

// ExponentSet replaces the exponent, returning EXPONENT_OVERSIZED or
// EXPONENT_UNDERSIZED when out of range.
func ExponentSet(f int64, exponent int32) int64 {
	if rc := checkValid(f); rc < 0 {
		return rc
	}
	if f == 0 {
		return 0
	}
	return setExponent(f, exponent)
}

// One is the constant 1.0 in packed form.
func One() int64 {
	return makeFloat(minMantissa, -15)
}

// Int coerces the value to an integer with the decimal point shifted
// decimalPlaces to the left. CANT_RETURN_NEGATIVE for negative inputs
// unless absolute is set.
func Int(f int64, decimalPlaces uint32, absolute bool) int64 {
	if rc := checkValid(f); rc < 0 {
		return rc
	}
	if f == 0 {
		return 0
	}
	if decimalPlaces > 15 {
		return hookapi.InvalidArgument
	}

	man := Mantissa(f)
	exp := int32(Exponent(f))
	if IsNegative(f) && !absolute {
		return hookapi.CantReturnNegative
	}

	dp := -int32(decimalPlaces)
	for exp > dp {
		if man > maxInt64/10 {
			return hookapi.InvalidFloat
		}
		man *= 10
		exp--
	}
	for exp < dp {
		man /= 10
		exp++
	}
	return man
}

const maxInt64 = int64(^uint64(0) >> 1)
