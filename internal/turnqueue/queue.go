package turnqueue

import (
	"bytes"
	"errors"
	"sort"

	"github.com/google/uuid"
)

var (
	// ErrQueueEmpty is returned by PopNext on an empty queue. With the
	// player scheduled at initialization this is unreachable in normal
	// operation; it guards against popping before setup or double-popping
	// within one action cycle.
	ErrQueueEmpty = errors.New("turnqueue: queue is empty")
	// ErrDuplicateSchedule reports an insert that bypassed the
	// update-in-place rule. Schedule never returns it; it exists to keep
	// the at-most-one-entry-per-actor invariant checkable internally.
	ErrDuplicateSchedule = errors.New("turnqueue: actor already scheduled")
	// ErrActorNotFound is returned by Reschedule for an untracked actor.
	ErrActorNotFound = errors.New("turnqueue: actor not scheduled")
)

// ScheduledActor is one entry in the queue.
type ScheduledActor struct {
	ActorID        uuid.UUID
	NextActionTime TimeUnits
	IsPlayer       bool
}

// Queue is the priority-ordered actor scheduler. Entries sort by
// (NextActionTime, player-first, ActorID): lower times act sooner, the
// player wins exact time ties, and the actor ID breaks enemy-vs-enemy ties
// so the order never depends on insertion order or map iteration.
//
// A Queue is owned by a single simulation session and is not safe for
// concurrent use; the session's event loop is its only caller.
type Queue struct {
	entries  []ScheduledActor
	playerID uuid.UUID
}

// New creates a queue with the player scheduled at time zero. The player
// entry exists for the queue's whole lifetime; Remove will not take it out.
func New(playerID uuid.UUID) *Queue {
	return &Queue{
		entries:  []ScheduledActor{{ActorID: playerID, NextActionTime: ZeroTime, IsPlayer: true}},
		playerID: playerID,
	}
}

// less is the total ordering over entries.
func less(a, b ScheduledActor) bool {
	if a.NextActionTime != b.NextActionTime {
		return a.NextActionTime < b.NextActionTime
	}
	if a.IsPlayer != b.IsPlayer {
		return a.IsPlayer
	}
	return bytes.Compare(a.ActorID[:], b.ActorID[:]) < 0
}

// Len returns the number of tracked actors.
func (q *Queue) Len() int {
	return len(q.entries)
}

// IsInCombat reports whether the queue holds anyone besides the player.
// This derived predicate is the single source of truth for the
// exploration/combat mode; callers must not cache it.
func (q *Queue) IsInCombat() bool {
	return len(q.entries) > 1
}

// Contains reports whether the actor is currently tracked.
func (q *Queue) Contains(actorID uuid.UUID) bool {
	return q.indexOf(actorID) >= 0
}

// PlayerID returns the identity the queue was initialized with.
func (q *Queue) PlayerID() uuid.UUID {
	return q.playerID
}

// PlayerTime returns the player's current next-action time. A hostile that
// appears mid-combat is scheduled here, joining at the current clock rather
// than waiting out a full cycle.
func (q *Queue) PlayerTime() TimeUnits {
	if i := q.indexOf(q.playerID); i >= 0 {
		return q.entries[i].NextActionTime
	}
	// Player is mid-action (popped, not yet rescheduled); combat time is
	// whatever the head of the queue says, or zero if nothing is queued.
	if len(q.entries) > 0 {
		return q.entries[0].NextActionTime
	}
	return ZeroTime
}

// Schedule inserts the actor at the given time, or reschedules it if it is
// already tracked. The queue holds at most one entry per actor.
func (q *Queue) Schedule(actorID uuid.UUID, at TimeUnits, isPlayer bool) {
	if i := q.indexOf(actorID); i >= 0 {
		entry := q.entries[i]
		entry.NextActionTime = at
		q.removeAt(i)
		q.insert(entry)
		return
	}
	q.insert(ScheduledActor{ActorID: actorID, NextActionTime: at, IsPlayer: isPlayer})
}

// Reschedule updates a tracked actor's next-action time. Unlike Schedule it
// refuses to create an entry, so it cannot mask a lost actor.
func (q *Queue) Reschedule(actorID uuid.UUID, at TimeUnits) error {
	i := q.indexOf(actorID)
	if i < 0 {
		return ErrActorNotFound
	}
	entry := q.entries[i]
	entry.NextActionTime = at
	q.removeAt(i)
	q.insert(entry)
	return nil
}

// PopNext removes and returns the entry that acts next. The caller is
// expected to resolve the action and Schedule/Reschedule the actor back in
// before yielding to the next event.
func (q *Queue) PopNext() (ScheduledActor, error) {
	if len(q.entries) == 0 {
		return ScheduledActor{}, ErrQueueEmpty
	}
	head := q.entries[0]
	q.removeAt(0)
	return head, nil
}

// PeekNext returns the entry that acts next without removing it, or false
// if the queue is empty.
func (q *Queue) PeekNext() (ScheduledActor, bool) {
	if len(q.entries) == 0 {
		return ScheduledActor{}, false
	}
	return q.entries[0], true
}

// Remove deletes an actor's entry (death, flight, vanished from sight) and
// reports whether an entry was removed. The player entry is never removed;
// it belongs to the session itself.
//
// Removing the last non-player entry resets the player's next-action time
// to zero in the same step. That reset is the only path back to exploration
// mode, and doing it atomically here means there is no observable state
// where combat has ended but the clock is stale.
func (q *Queue) Remove(actorID uuid.UUID) bool {
	if actorID == q.playerID {
		return false
	}
	i := q.indexOf(actorID)
	if i < 0 {
		return false
	}
	q.removeAt(i)

	if !q.IsInCombat() {
		if pi := q.indexOf(q.playerID); pi >= 0 {
			entry := q.entries[pi]
			entry.NextActionTime = ZeroTime
			q.removeAt(pi)
			q.insert(entry)
		}
	}
	return true
}

// RemoveAllHostiles deletes every non-player entry, returning how many were
// removed. Used when the last visible hostile disappears; the exploration
// reset fires through the same path as a single removal.
func (q *Queue) RemoveAllHostiles() int {
	removed := 0
	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.IsPlayer {
			kept = append(kept, e)
		} else {
			removed++
		}
	}
	q.entries = kept
	if removed > 0 {
		if pi := q.indexOf(q.playerID); pi >= 0 {
			q.entries[pi].NextActionTime = ZeroTime
		}
	}
	return removed
}

// insert places an entry at its sorted position.
func (q *Queue) insert(entry ScheduledActor) {
	i := sort.Search(len(q.entries), func(i int) bool {
		return less(entry, q.entries[i])
	})
	q.entries = append(q.entries, ScheduledActor{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = entry
}

func (q *Queue) indexOf(actorID uuid.UUID) int {
	for i := range q.entries {
		if q.entries[i].ActorID == actorID {
			return i
		}
	}
	return -1
}

func (q *Queue) removeAt(i int) {
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
}
