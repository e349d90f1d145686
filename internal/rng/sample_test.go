package rng

import (
	"testing"

	"github.com/samdwyer/warband/internal/fixed"
)

func TestRangeBounds(t *testing.T) {
	s := New(1)
	for i := 0; i < 10000; i++ {
		v, err := s.Range(-3, 7)
		if err != nil {
			t.Fatalf("Range: %v", err)
		}
		if v < -3 || v > 7 {
			t.Fatalf("Range(-3,7) produced %d", v)
		}
	}
}

func TestRangeInclusiveEndpoints(t *testing.T) {
	// Both endpoints of a tiny span must actually occur.
	s := New(2)
	seen := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		v, err := s.Range(10, 11)
		if err != nil {
			t.Fatalf("Range: %v", err)
		}
		seen[v] = true
	}
	if !seen[10] || !seen[11] {
		t.Fatalf("Range(10,11) endpoints seen: %v", seen)
	}
}

func TestRangeDegenerate(t *testing.T) {
	s := New(3)
	v, err := s.Range(5, 5)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if v != 5 {
		t.Fatalf("Range(5,5) = %d", v)
	}
	if _, err := s.Range(6, 5); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestRangeUnbiasedD6(t *testing.T) {
	// The classic modulo-bias case: 6 does not divide 2^32. 600k rolls with
	// seed 42 must land each face within ±2% of the expected 100k.
	s := New(42)
	counts := make(map[int64]int)
	const rolls = 600000
	for i := 0; i < rolls; i++ {
		v, err := s.Range(1, 6)
		if err != nil {
			t.Fatalf("Range: %v", err)
		}
		counts[v]++
	}
	const expected = rolls / 6
	const tolerance = expected * 2 / 100
	for face := int64(1); face <= 6; face++ {
		n := counts[face]
		if n < expected-tolerance || n > expected+tolerance {
			t.Errorf("face %d rolled %d times, want %d ±%d", face, n, expected, tolerance)
		}
	}
}

func TestRangeUnbiasedNonPowerOfTwoSpans(t *testing.T) {
	spans := []struct{ min, max int64 }{
		{0, 2},
		{1, 10},
		{-50, 49},
	}
	for _, span := range spans {
		s := New(7)
		width := span.max - span.min + 1
		const samples = 100000
		counts := make([]int, width)
		for i := 0; i < samples; i++ {
			v, err := s.Range(span.min, span.max)
			if err != nil {
				t.Fatalf("Range(%d,%d): %v", span.min, span.max, err)
			}
			counts[v-span.min]++
		}
		expected := samples / int(width)
		// 20% tolerance: several standard deviations even for the
		// 100-bucket span.
		tolerance := expected / 5
		for i, n := range counts {
			if n < expected-tolerance || n > expected+tolerance {
				t.Errorf("span [%d,%d] bucket %d: %d samples, want %d ±%d",
					span.min, span.max, i, n, expected, tolerance)
			}
		}
	}
}

func TestRangeLargeSpan(t *testing.T) {
	// Spans wider than 32 bits take the two-draw path.
	s := New(9)
	min, max := int64(-1<<40), int64(1<<40)
	for i := 0; i < 1000; i++ {
		v, err := s.Range(min, max)
		if err != nil {
			t.Fatalf("Range: %v", err)
		}
		if v < min || v > max {
			t.Fatalf("Range large span produced %d", v)
		}
	}
}

func TestCheck(t *testing.T) {
	s := New(5)
	for i := 0; i < 200; i++ {
		hit, err := s.Check(0)
		if err != nil {
			t.Fatalf("Check(0): %v", err)
		}
		if hit {
			t.Fatal("Check(0) passed")
		}
		hit, err = s.Check(100)
		if err != nil {
			t.Fatalf("Check(100): %v", err)
		}
		if !hit {
			t.Fatal("Check(100) failed")
		}
	}
}

func TestCheckProbability(t *testing.T) {
	s := New(6)
	const trials = 100000
	hits := 0
	for i := 0; i < trials; i++ {
		hit, err := s.Check(30)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if hit {
			hits++
		}
	}
	if hits < 29000 || hits > 31000 {
		t.Errorf("Check(30) hit %d of %d, want ~30000", hits, trials)
	}
}

func TestCheckInvalidPercent(t *testing.T) {
	s := New(1)
	for _, p := range []int{-1, 101, 1000} {
		if _, err := s.Check(p); err != ErrInvalidPercent {
			t.Errorf("Check(%d): expected ErrInvalidPercent, got %v", p, err)
		}
	}
}

func TestChooseProportions(t *testing.T) {
	s := New(11)
	items := []string{"common", "uncommon", "rare"}
	weights := []int64{70, 25, 5}
	const trials = 100000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		item, err := Choose(s, items, weights)
		if err != nil {
			t.Fatalf("Choose: %v", err)
		}
		counts[item]++
	}
	checks := []struct {
		item string
		want int
	}{
		{"common", 70000},
		{"uncommon", 25000},
		{"rare", 5000},
	}
	for _, c := range checks {
		got := counts[c.item]
		tolerance := trials * 2 / 100
		if got < c.want-tolerance || got > c.want+tolerance {
			t.Errorf("%s selected %d times, want %d ±%d", c.item, got, c.want, tolerance)
		}
	}
}

func TestChooseZeroWeightNeverSelected(t *testing.T) {
	s := New(12)
	items := []string{"possible", "impossible"}
	weights := []int64{1, 0}
	for i := 0; i < 1000; i++ {
		item, err := Choose(s, items, weights)
		if err != nil {
			t.Fatalf("Choose: %v", err)
		}
		if item == "impossible" {
			t.Fatal("zero-weight item selected")
		}
	}
}

func TestChooseInvalidWeights(t *testing.T) {
	s := New(13)
	tests := []struct {
		name    string
		items   []string
		weights []int64
	}{
		{"empty", nil, nil},
		{"length mismatch", []string{"a", "b"}, []int64{1}},
		{"negative weight", []string{"a", "b"}, []int64{1, -1}},
		{"all zero", []string{"a", "b"}, []int64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Choose(s, tt.items, tt.weights); err != ErrInvalidWeights {
				t.Errorf("expected ErrInvalidWeights, got %v", err)
			}
		})
	}
}

func TestRoll(t *testing.T) {
	s := New(14)
	for i := 0; i < 1000; i++ {
		total, err := s.Roll(2, 6)
		if err != nil {
			t.Fatalf("Roll: %v", err)
		}
		if total < 2 || total > 12 {
			t.Fatalf("2d6 rolled %d", total)
		}
	}
	if _, err := s.Roll(0, 6); err != ErrInvalidDiceSpec {
		t.Errorf("Roll(0,6): expected ErrInvalidDiceSpec, got %v", err)
	}
	if _, err := s.Roll(1, 0); err != ErrInvalidDiceSpec {
		t.Errorf("Roll(1,0): expected ErrInvalidDiceSpec, got %v", err)
	}
}

func TestFixedUnit(t *testing.T) {
	s := New(15)
	for i := 0; i < 10000; i++ {
		v := s.FixedUnit()
		if v.Cmp(fixed.Zero()) < 0 || v.Cmp(fixed.One()) >= 0 {
			t.Fatalf("FixedUnit produced %v", v)
		}
	}
}

func TestFixedBetween(t *testing.T) {
	s := New(16)
	lo, hi := fixed.FromInt(1), fixed.FromInt(3)
	for i := 0; i < 10000; i++ {
		v, err := s.FixedBetween(lo, hi)
		if err != nil {
			t.Fatalf("FixedBetween: %v", err)
		}
		if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
			t.Fatalf("FixedBetween produced %v", v)
		}
	}
}
