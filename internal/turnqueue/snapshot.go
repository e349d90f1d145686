package turnqueue

import "github.com/google/uuid"

// Snapshot is a lossless capture of the queue for persistence. Entries are
// stored in queue order; the surrounding save layer owns the encoding.
type Snapshot struct {
	PlayerID uuid.UUID
	Entries  []ScheduledActor
}

// Snapshot captures the queue. The returned entry slice is a copy; mutating
// it does not touch the live queue.
func (q *Queue) Snapshot() Snapshot {
	entries := make([]ScheduledActor, len(q.entries))
	copy(entries, q.entries)
	return Snapshot{PlayerID: q.playerID, Entries: entries}
}

// Restore reconstructs a queue from a snapshot. The restored queue pops in
// exactly the order the captured one would have. A snapshot that violates
// the queue's invariants (a duplicate actor, a missing or duplicated
// player entry) is rejected rather than repaired.
func RestoreSnapshot(snap Snapshot) (*Queue, error) {
	q := &Queue{playerID: snap.PlayerID}
	players := 0
	for _, e := range snap.Entries {
		if q.Contains(e.ActorID) {
			return nil, ErrDuplicateSchedule
		}
		if e.IsPlayer {
			players++
			if e.ActorID != snap.PlayerID || players > 1 {
				return nil, ErrDuplicateSchedule
			}
		}
		q.insert(e)
	}
	if players != 1 {
		return nil, ErrQueueEmpty
	}
	return q, nil
}
