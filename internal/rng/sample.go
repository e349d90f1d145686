package rng

import (
	"math"

	"github.com/samdwyer/warband/internal/fixed"
)

// Range returns a uniformly distributed integer in [min, max], both bounds
// inclusive. Uniformity is guaranteed for every span size by rejection
// sampling: raw draws that would map unevenly onto the span are discarded
// and redrawn, instead of the modulo reduction that biases small ranges.
func (s *Source) Range(min, max int64) (int64, error) {
	if min > max {
		return 0, ErrInvalidRange
	}
	if min == max {
		return min, nil
	}

	span := uint64(max) - uint64(min) + 1
	if span == 0 {
		// Full int64 range; every 64-bit draw is already uniform.
		return min + int64(s.nextUint64()), nil
	}

	if span <= math.MaxUint32 {
		bound := uint32(span)
		// Smallest residue of 2^32 mod bound; draws below it are rejected.
		threshold := uint32(-bound) % bound
		for {
			r := s.NextUint32()
			if r >= threshold {
				return min + int64((r-threshold)%bound), nil
			}
		}
	}

	bound := span
	threshold := (-bound) % bound
	for {
		r := s.nextUint64()
		if r >= threshold {
			return min + int64((r-threshold)%bound), nil
		}
	}
}

// Check returns true with probability percent/100. It always consumes
// exactly one Range(1,100) draw, so replacing a Check with a logged value
// never shifts the call sequence of a replay. Percent 0 never passes and
// 100 always passes, but both still consume the draw.
func (s *Source) Check(percent int) (bool, error) {
	if percent < 0 || percent > 100 {
		return false, ErrInvalidPercent
	}
	roll, err := s.Range(1, 100)
	if err != nil {
		return false, err
	}
	return roll <= int64(percent), nil
}

// Roll rolls count dice with the given number of sides and returns the sum.
func (s *Source) Roll(count, sides int) (int64, error) {
	if count <= 0 || sides <= 0 {
		return 0, ErrInvalidDiceSpec
	}
	total := int64(0)
	for i := 0; i < count; i++ {
		v, err := s.Range(1, int64(sides))
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// Choose selects one item with probability proportional to its weight.
// Weights must be non-negative, match the items in length, and sum to a
// positive total. Selection uses the same bias-free Range primitive.
func Choose[T any](s *Source, items []T, weights []int64) (T, error) {
	var zero T
	if len(items) == 0 || len(items) != len(weights) {
		return zero, ErrInvalidWeights
	}
	total := int64(0)
	for _, w := range weights {
		if w < 0 {
			return zero, ErrInvalidWeights
		}
		total += w
	}
	if total <= 0 {
		return zero, ErrInvalidWeights
	}

	roll, err := s.Range(0, total-1)
	if err != nil {
		return zero, err
	}
	cumulative := int64(0)
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return items[i], nil
		}
	}
	// Unreachable: roll < total and the cumulative sum ends at total.
	return items[len(items)-1], nil
}

// FixedUnit returns a fixed-point value uniformly distributed in [0, 1).
// The fractional resolution is a power of two, so a single masked draw is
// already unbiased.
func (s *Source) FixedUnit() fixed.Fixed {
	return fixed.FromRaw(int64(s.NextUint32() & (fixed.Scale - 1)))
}

// FixedBetween returns a fixed-point value uniformly distributed in
// [lo, hi], at full fractional resolution.
func (s *Source) FixedBetween(lo, hi fixed.Fixed) (fixed.Fixed, error) {
	raw, err := s.Range(lo.Raw(), hi.Raw())
	if err != nil {
		return fixed.Zero(), err
	}
	return fixed.FromRaw(raw), nil
}
