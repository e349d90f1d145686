// Package save defines the lossless snapshot boundary for a session.
//
// The core does not own a file format; encoding belongs to the
// persistence layer above. What it owns is the guarantee that everything
// behind this aggregate restores exactly: a session resumed from a
// snapshot produces the same pops and the same draws as one that never
// stopped.
package save

import (
	"errors"

	"github.com/google/uuid"

	"github.com/samdwyer/warband/internal/fixed"
	"github.com/samdwyer/warband/internal/rng"
	"github.com/samdwyer/warband/internal/turnqueue"
)

// ErrMissingStream reports a snapshot without a required rng stream.
var ErrMissingStream = errors.New("save: snapshot missing rng stream")

// ActorState is the persisted slice of one actor. Speed is stored as the
// raw fixed-point integer; nothing in a snapshot is ever a float.
type ActorState struct {
	ID       uuid.UUID
	Label    string
	DefID    string
	X, Y     int
	HP       int
	SpeedRaw int64
	Hostile  bool
}

// Speed returns the actor's fixed-point speed multiplier.
func (a ActorState) Speed() fixed.Fixed {
	return fixed.FromRaw(a.SpeedRaw)
}

// Session is the complete persistable state of the simulation core: the
// turn queue, every named rng stream, and the actor roster. The dungeon
// itself is not stored; it regenerates from the "world" stream snapshot.
type Session struct {
	Queue   turnqueue.Snapshot
	Streams map[string]rng.Snapshot
	Actors  []ActorState
}

// RestoreQueue rebuilds the turn queue from the session.
func (s *Session) RestoreQueue() (*turnqueue.Queue, error) {
	return turnqueue.RestoreSnapshot(s.Queue)
}

// RestoreStream rebuilds one named rng stream, failing loudly if the
// snapshot never captured it; a silently fresh stream would desync the
// run while looking healthy.
func (s *Session) RestoreStream(name string) (*rng.Source, error) {
	snap, ok := s.Streams[name]
	if !ok {
		return nil, ErrMissingStream
	}
	return rng.Restore(snap), nil
}
