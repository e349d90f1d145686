// Package fixed provides a Q47.16 fixed-point numeric type.
//
// Everything that participates in simulation state uses Fixed instead of
// float64: binary floating point rounds differently across architectures and
// compiler optimization levels, which would break save/replay determinism.
// There is deliberately no construction path from float64.
package fixed

import (
	"errors"
	"math"
	"math/bits"
	"strconv"
)

// Shift is the number of fractional bits.
const Shift = 16

// Scale is the raw-value representation of 1.0.
const Scale = 1 << Shift

// ErrDivisionByZero is returned by Div when the divisor is zero. A
// deterministic simulation has no Inf or NaN to fall back on, so the
// condition must surface as an error rather than a sentinel value.
var ErrDivisionByZero = errors.New("fixed: division by zero")

// ErrNegativeSqrt is returned by Sqrt for negative inputs.
var ErrNegativeSqrt = errors.New("fixed: square root of negative value")

// Fixed is a rational value stored as raw/Scale in a signed 64-bit integer.
// Values are copied freely; all operations are pure.
type Fixed int64

// FromInt converts an integer to its fixed-point representation.
func FromInt(n int) Fixed {
	return Fixed(int64(n) << Shift)
}

// Zero returns the fixed-point zero value.
func Zero() Fixed { return 0 }

// One returns the fixed-point representation of 1.
func One() Fixed { return Scale }

// Half returns the fixed-point representation of 1/2.
func Half() Fixed { return Scale / 2 }

// FromRaw wraps a raw scaled integer. Used by persistence and by callers
// that precompute constants (e.g. FromRaw(3*Scale/2) for 1.5).
func FromRaw(raw int64) Fixed { return Fixed(raw) }

// Raw returns the underlying scaled integer.
func (f Fixed) Raw() int64 { return int64(f) }

// Int returns the integer part, truncated toward zero.
func (f Fixed) Int() int {
	if f < 0 {
		return -int(-f >> Shift)
	}
	return int(f >> Shift)
}

// Add returns f + other.
func (f Fixed) Add(other Fixed) Fixed { return f + other }

// Sub returns f - other.
func (f Fixed) Sub(other Fixed) Fixed { return f - other }

// Neg returns -f.
func (f Fixed) Neg() Fixed { return -f }

// Mul returns f * other. The product is computed in 128 bits before
// rescaling, so intermediate overflow cannot occur; a result outside the
// representable range saturates.
func (f Fixed) Mul(other Fixed) Fixed {
	if f == 0 || other == 0 {
		return 0
	}
	negative := (f < 0) != (other < 0)
	ua := absU64(int64(f))
	ub := absU64(int64(other))

	hi, lo := bits.Mul64(ua, ub)
	// Q47.16 * Q47.16 = Q94.32, shift right 16 for Q47.16.
	if hi>>(Shift-1) != 0 {
		// Magnitude exceeds 2^47: saturate.
		if negative {
			return Fixed(math.MinInt64)
		}
		return Fixed(math.MaxInt64)
	}
	result := int64(hi<<(64-Shift) | lo>>Shift)

	if negative {
		return Fixed(-result)
	}
	return Fixed(result)
}

// Div returns f / other. The dividend is widened to 128 bits before the
// divide, so precision never depends on magnitude. Division by zero is an
// error, never an Inf-like sentinel.
func (f Fixed) Div(other Fixed) (Fixed, error) {
	if other == 0 {
		return 0, ErrDivisionByZero
	}
	if f == 0 {
		return 0, nil
	}
	negative := (f < 0) != (other < 0)
	ua := absU64(int64(f))
	ub := absU64(int64(other))

	// f << Shift as a 128-bit value.
	hi := ua >> (64 - Shift)
	lo := ua << Shift

	// Quotient would not fit in 64 bits: saturate.
	if hi >= ub {
		if negative {
			return Fixed(math.MinInt64), nil
		}
		return Fixed(math.MaxInt64), nil
	}

	quo, _ := bits.Div64(hi, lo, ub)
	if quo > math.MaxInt64 {
		if negative {
			return Fixed(math.MinInt64), nil
		}
		return Fixed(math.MaxInt64), nil
	}

	if negative {
		return Fixed(-int64(quo)), nil
	}
	return Fixed(quo), nil
}

// Cmp returns -1 if f < other, 0 if equal, and 1 if f > other. The
// ordering is total; there are no unordered values.
func (f Fixed) Cmp(other Fixed) int {
	switch {
	case f < other:
		return -1
	case f > other:
		return 1
	default:
		return 0
	}
}

// Abs returns the absolute value of f.
func (f Fixed) Abs() Fixed {
	if f < 0 {
		return -f
	}
	return f
}

// Clamp returns f limited to the range [lo, hi].
func (f Fixed) Clamp(lo, hi Fixed) Fixed {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// Lerp returns the linear interpolation between a and b at parameter t,
// where t=Zero() yields a and t=One() yields b. t is not clamped.
func Lerp(a, b, t Fixed) Fixed {
	return a.Add(b.Sub(a).Mul(t))
}

// Sqrt returns the square root of f using integer Newton iteration. The
// result is exact to the representable precision and identical on every
// platform; no hardware sqrt instruction is involved.
func (f Fixed) Sqrt() (Fixed, error) {
	if f < 0 {
		return 0, ErrNegativeSqrt
	}
	if f == 0 {
		return 0, nil
	}

	// sqrt(raw / Scale) in fixed point is isqrt(raw << Shift).
	if uint64(f) > math.MaxUint64>>Shift {
		// Shifting would overflow; sqrt(raw<<16) == sqrt(raw)<<8 exactly in
		// integer terms, and at this magnitude the fractional bits of the
		// radicand are negligible anyway.
		return Fixed(isqrt(uint64(f)) << (Shift / 2)), nil
	}
	return Fixed(isqrt(uint64(f) << Shift)), nil
}

// isqrt returns the integer square root of n via Newton iteration.
func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	// Initial guess: 2^(ceil(bits/2)), always >= isqrt(n).
	x := uint64(1) << ((bits.Len64(n) + 1) / 2)
	for {
		next := (x + n/x) / 2
		if next >= x {
			break
		}
		x = next
	}
	return x
}

// String renders a decimal approximation, for logs and UI only. The
// rendered form is not a round-trippable representation.
func (f Fixed) String() string {
	raw := int64(f)
	sign := ""
	if raw < 0 {
		sign = "-"
		raw = -raw
	}
	whole := raw >> Shift
	// Fractional part in 1/10000ths, rounded.
	frac := ((raw & (Scale - 1)) * 10000) >> Shift
	return sign + strconv.FormatInt(whole, 10) + "." + pad4(frac)
}

func pad4(n int64) string {
	s := strconv.FormatInt(n, 10)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

func absU64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}
