// Package turnqueue provides the time-ordered actor scheduler that drives
// turn-based play.
//
// The queue has no combat flag. Exploration and combat are derived states:
// one tracked actor (the player) means exploration, two or more means
// combat. Every consumer that cares about the mode asks IsInCombat() at the
// moment it needs the answer; the predicate is recomputed, never cached, so
// it cannot drift out of sync with the schedule itself.
package turnqueue

import "strconv"

// TimeUnits is elapsed in-combat time. It is relative to a combat session,
// not to absolute game time: when combat ends, the clock resets to zero.
// The representation is unsigned, so the "never negative" invariant holds by
// construction; addition and comparison are the only operations.
type TimeUnits uint64

// ZeroTime is the start of a combat session.
const ZeroTime TimeUnits = 0

// TimeFromInt converts a non-negative integer duration, clamping nothing:
// negative input is a caller bug and reports as zero with ok=false.
func TimeFromInt(n int) (TimeUnits, bool) {
	if n < 0 {
		return ZeroTime, false
	}
	return TimeUnits(n), true
}

// Add returns t advanced by delta.
func (t TimeUnits) Add(delta TimeUnits) TimeUnits {
	return t + delta
}

// Before reports whether t sorts strictly earlier than other.
func (t TimeUnits) Before(other TimeUnits) bool {
	return t < other
}

// String renders the time for logs and the UI status line.
func (t TimeUnits) String() string {
	return strconv.FormatUint(uint64(t), 10)
}
