package xfl

import (
	"math/bits"

	"github.com/eatozee/xrpld-hooks/hookapi"
)

// Multiply computes f1 * f2. The mantissa product is taken at full 128-bit
// width, shifted down to 64 bits while counting the shifts, decimated into
// range, then corrected by 2^shifts via ratio multiplication.
func Multiply(f1, f2 int64) int64 {
	if rc := checkValid(f1); rc < 0 {
		return rc
	}
	if rc := checkValid(f2); rc < 0 {
		return rc
	}
	if f1 == 0 || f2 == 0 {
		return 0
	}

	man1, exp1, neg1 := uint64(Mantissa(f1)), int32(Exponent(f1)), IsNegative(f1)
	man2, exp2, neg2 := uint64(Mantissa(f2)), int32(Exponent(f2)), IsNegative(f2)

	expOut := exp1 + exp2

	hi, lo := bits.Mul64(man1, man2)

	// divide by 2 until the product fits in one word
	var shifted uint
	for hi > 0 {
		lo = lo>>1 | hi<<63
		hi >>= 1
		shifted++
	}

	for lo > uint64(maxMantissa) {
		if expOut > maxExponent {
			return hookapi.Overflow
		}
		lo /= 10
		expOut++
	}

	neg := neg1 != neg2
	out := iou{man: int64(lo), exp: expOut}
	if neg {
		out.man = -out.man
	}

	// undo the binary shifts: multiply by 2^shifted in <=32 bit chunks
	var err error
	if shifted >= 32 {
		shifted -= 32
		if out, err = out.mulRatio(false, 1<<16, 1); err != nil {
			return hookapi.Overflow
		}
		if out, err = out.mulRatio(false, 1<<16, 1); err != nil {
			return hookapi.Overflow
		}
	}
	if out, err = out.mulRatio(false, uint32(1)<<shifted, 1); err != nil {
		return hookapi.Overflow
	}

	return out.pack()
}

// Divide computes f1 / f2 by aligned long division, one decimal digit per
// round, to the full mantissa width.
func Divide(f1, f2 int64) int64 {
	if rc := checkValid(f1); rc < 0 {
		return rc
	}
	if rc := checkValid(f2); rc < 0 {
		return rc
	}
	if f2 == 0 {
		return hookapi.DivisionByZero
	}
	if f1 == 0 {
		return 0
	}

	man1, exp1, neg1 := uint64(Mantissa(f1)), int32(Exponent(f1)), IsNegative(f1)
	man2, exp2, neg2 := uint64(Mantissa(f2)), int32(Exponent(f2)), IsNegative(f2)

	for man1 > uint64(maxMantissa) {
		man1 /= 10
		exp1++
		if exp1 > maxExponent {
			return hookapi.InvalidFloat
		}
	}
	for man1 < uint64(minMantissa) {
		man1 *= 10
		exp1--
		if exp1 < minExponent {
			return 0
		}
	}

	for man2 > man1 {
		man2 /= 10
		exp2++
	}
	if man2 == 0 {
		return hookapi.DivisionByZero
	}
	for man2 < man1 {
		if man2*10 > man1 {
			break
		}
		man2 *= 10
		exp2--
	}

	var man3 uint64
	exp3 := exp1 - exp2
	for man2 > 0 {
		i := uint64(0)
		for ; man1 >= man2; man1 -= man2 {
			i++
		}
		man3 = man3*10 + i
		man2 /= 10
		if man2 == 0 {
			break
		}
		exp3--
	}

	for man3 < uint64(minMantissa) {
		man3 *= 10
		exp3--
		if exp3 < minExponent {
			return 0
		}
	}
	for man3 > uint64(maxMantissa) {
		man3 /= 10
		exp3++
		if exp3 > maxExponent {
			return hookapi.InvalidFloat
		}
	}

	neg := neg1 != neg2
	out := setSign(0, neg)
	out = setExponent(out, exp3)
	out = setMantissa(out, int64(man3))
	return out
}

// Sum adds two floats through the normalized decimal helper.
func Sum(f1, f2 int64) int64 {
	if rc := checkValid(f1); rc < 0 {
		return rc
	}
	if rc := checkValid(f2); rc < 0 {
		return rc
	}
	if f1 == 0 {
		return f2
	}
	if f2 == 0 {
		return f1
	}

	out, err := unpack(f1).add(unpack(f2))
	if err != nil {
		return hookapi.Overflow
	}
	return out.pack()
}

// Compare evaluates f1 against f2 under a bitmask of
// CompareEqual/CompareLess/CompareGreater. Less|Greater means not-equal.
// Returns 1 when the relation holds, 0 when it does not.
func Compare(f1, f2 int64, mode uint32) int64 {
	if rc := checkValid(f1); rc < 0 {
		return rc
	}
	if rc := checkValid(f2); rc < 0 {
		return rc
	}

	equal := mode&hookapi.CompareEqual != 0
	less := mode&hookapi.CompareLess != 0
	greater := mode&hookapi.CompareGreater != 0
	notEqual := less && greater

	if (equal && less && greater) || mode == 0 {
		return hookapi.InvalidArgument
	}

	c := unpack(f1).cmp(unpack(f2))
	switch {
	case notEqual && c != 0:
		return 1
	case equal && c == 0:
		return 1
	case greater && c > 0:
		return 1
	case less && c < 0:
		return 1
	}
	return 0
}

// MulRatio multiplies by numerator/denominator with the rounding direction
// chosen by roundUp.
func MulRatio(f1 int64, roundUp bool, numerator, denominator uint32) int64 {
	if rc := checkValid(f1); rc < 0 {
		return rc
	}
	if f1 == 0 {
		return 0
	}
	if denominator == 0 {
		return hookapi.DivisionByZero
	}

	out, err := unpack(f1).mulRatio(roundUp, numerator, denominator)
	if err != nil {
		return hookapi.Overflow
	}
	return out.pack()
}

// Invert computes 1 / f.
func Invert(f int64) int64 {
	if f == 0 {
		return hookapi.DivisionByZero
	}
	return Divide(One(), f)
}
