package xfl

import "github.com/holiman/uint256"

// iou is the host-side normalized decimal the arithmetic routines lean on:
// a signed 16-digit mantissa and an exponent in the issued-currency range.
// Mirrors the ledger's IOU amount type.
type iou struct {
	man int64 // signed, zero or |man| in [minMantissa, maxMantissa]
	exp int32
}

var errOverflow = &overflowError{}

type overflowError struct{}

func (*overflowError) Error() string { return "xfl: amount overflow" }

// normalize brings an arbitrary signed mantissa into range. Underflow
// collapses to zero; overflow is an error.
func (a iou) normalize() (iou, error) {
	if a.man == 0 {
		return iou{}, nil
	}
	neg := a.man < 0
	m := a.man
	if neg {
		m = -m
	}
	for m < minMantissa {
		m *= 10
		a.exp--
		if a.exp < minExponent {
			return iou{}, nil
		}
	}
	for m > maxMantissa {
		m /= 10
		a.exp++
		if a.exp > maxExponent {
			return iou{}, errOverflow
		}
	}
	if neg {
		m = -m
	}
	return iou{man: m, exp: a.exp}, nil
}

// magnitude returns |man| scaled by 10^shift as a wide integer.
func magnitude(man int64, shift int32) *uint256.Int {
	m := man
	if m < 0 {
		m = -m
	}
	v := uint256.NewInt(uint64(m))
	ten := uint256.NewInt(10)
	for i := int32(0); i < shift; i++ {
		v.Mul(v, ten)
	}
	return v
}

// reduce folds a wide magnitude back into a signed int64 mantissa, bumping
// the exponent for every dropped digit.
func reduce(v *uint256.Int, exp int32, neg bool) (iou, error) {
	ten := uint256.NewInt(10)
	limit := uint256.NewInt(uint64(maxMantissa))
	for v.Gt(limit) {
		v.Div(v, ten)
		exp++
		if exp > maxExponent {
			return iou{}, errOverflow
		}
	}
	man := int64(v.Uint64())
	if neg {
		man = -man
	}
	return iou{man: man, exp: exp}.normalize()
}

// add computes a + b exactly in wide arithmetic, then renormalizes.
func (a iou) add(b iou) (iou, error) {
	if a.man == 0 {
		return b, nil
	}
	if b.man == 0 {
		return a, nil
	}

	exp := a.exp
	if b.exp < exp {
		exp = b.exp
	}
	// a 16-digit mantissa shifted more than 32 decimal places dwarfs the
	// other operand beyond representable precision; cap the shift
	if a.exp-exp > 32 {
		return a, nil
	}
	if b.exp-exp > 32 {
		return b, nil
	}

	ma := magnitude(a.man, a.exp-exp)
	mb := magnitude(b.man, b.exp-exp)
	negA, negB := a.man < 0, b.man < 0

	if negA == negB {
		sum := new(uint256.Int).Add(ma, mb)
		return reduce(sum, exp, negA)
	}

	switch ma.Cmp(mb) {
	case 0:
		return iou{}, nil
	case 1:
		diff := new(uint256.Int).Sub(ma, mb)
		return reduce(diff, exp, negA)
	default:
		diff := new(uint256.Int).Sub(mb, ma)
		return reduce(diff, exp, negB)
	}
}

// cmp returns -1, 0 or 1 for a < b, a == b, a > b.
func (a iou) cmp(b iou) int {
	negA, negB := a.man < 0, b.man < 0
	switch {
	case a.man == 0 && b.man == 0:
		return 0
	case a.man == 0:
		if negB {
			return 1
		}
		return -1
	case b.man == 0:
		if negA {
			return -1
		}
		return 1
	case negA != negB:
		if negA {
			return -1
		}
		return 1
	}

	// same sign: compare magnitudes by exponent then mantissa
	mag := 0
	switch {
	case a.exp != b.exp:
		if a.exp > b.exp {
			mag = 1
		} else {
			mag = -1
		}
	default:
		ma, mb := a.man, b.man
		if ma < 0 {
			ma, mb = -ma, -mb
		}
		switch {
		case ma > mb:
			mag = 1
		case ma < mb:
			mag = -1
		}
	}
	if negA {
		return -mag
	}
	return mag
}

// mulRatio scales by numerator/denominator, rounding toward zero or away
// from it as directed.
func (a iou) mulRatio(roundUp bool, numerator, denominator uint32) (iou, error) {
	if denominator == 0 {
		return iou{}, errOverflow
	}
	if a.man == 0 || numerator == 0 {
		return iou{}, nil
	}
	neg := a.man < 0

	prod := magnitude(a.man, 0)
	prod.Mul(prod, uint256.NewInt(uint64(numerator)))
	den := uint256.NewInt(uint64(denominator))

	quo, rem := new(uint256.Int), new(uint256.Int)
	quo.DivMod(prod, den, rem)
	if roundUp && !rem.IsZero() {
		quo.AddUint64(quo, 1)
	}

	return reduce(quo, a.exp, neg)
}

// unpack converts a packed float (already validated) to an iou.
func unpack(f int64) iou {
	if f == 0 {
		return iou{}
	}
	man := Mantissa(f)
	if IsNegative(f) {
		man = -man
	}
	return iou{man: man, exp: int32(Exponent(f))}
}

// pack converts back to the guest form.
func (a iou) pack() int64 {
	return makeFloat(a.man, a.exp)
}
