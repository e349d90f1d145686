// Package vision defines the visibility events the scheduler consumes.
//
// The field-of-view algorithm itself lives outside the simulation core;
// this package is the contract between whatever computes visibility and the
// scheduling coordinator. Events are delivered one at a time, in a
// deterministic order, and handled to completion before the next one.
package vision

import "github.com/google/uuid"

// Event is a visibility notification. The two concrete kinds below are the
// only ones the coordinator reacts to.
type Event interface {
	visibilityEvent()
}

// ActorBecameVisible reports that the observer can now see the actor.
type ActorBecameVisible struct {
	ObserverID uuid.UUID
	ActorID    uuid.UUID
	IsHostile  bool
}

func (ActorBecameVisible) visibilityEvent() {}

// NoHostilesVisible reports that the observer no longer sees any hostile
// actor at all.
type NoHostilesVisible struct {
	ObserverID uuid.UUID
}

func (NoHostilesVisible) visibilityEvent() {}
