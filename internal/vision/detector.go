package vision

import (
	"bytes"
	"sort"

	"github.com/google/uuid"

	"github.com/samdwyer/warband/internal/entity"
)

// DefaultSightRadius is the demo shell's detection range in tiles.
const DefaultSightRadius = 8

// Detector is a stand-in visibility producer: plain radius checks with no
// occlusion. It tracks which hostiles the observer saw last scan and emits
// only the deltas, in actor-ID order so the event sequence is reproducible.
type Detector struct {
	Radius  int
	visible map[uuid.UUID]bool
}

// NewDetector creates a detector with the given sight radius in tiles.
func NewDetector(radius int) *Detector {
	return &Detector{
		Radius:  radius,
		visible: make(map[uuid.UUID]bool),
	}
}

// Scan compares the current positions against the previous scan and returns
// the visibility events that changed, newly-visible hostiles first. The
// squared-distance check keeps the radius test in integers.
func (d *Detector) Scan(observer *entity.Actor, actors []*entity.Actor) []Event {
	var events []Event

	current := make(map[uuid.UUID]bool)
	var appeared []*entity.Actor
	for _, a := range actors {
		if !a.Hostile || !a.IsAlive() {
			continue
		}
		dx := a.X - observer.X
		dy := a.Y - observer.Y
		if dx*dx+dy*dy > d.Radius*d.Radius {
			continue
		}
		current[a.ID] = true
		if !d.visible[a.ID] {
			appeared = append(appeared, a)
		}
	}

	// Sorting by ID keeps the event order independent of the caller's
	// actor-slice order and of map iteration.
	sort.Slice(appeared, func(i, j int) bool {
		return bytes.Compare(appeared[i].ID[:], appeared[j].ID[:]) < 0
	})
	for _, a := range appeared {
		events = append(events, ActorBecameVisible{
			ObserverID: observer.ID,
			ActorID:    a.ID,
			IsHostile:  true,
		})
	}

	if len(current) == 0 && len(d.visible) > 0 {
		events = append(events, NoHostilesVisible{ObserverID: observer.ID})
	}

	d.visible = current
	return events
}

// Forget drops a single actor from the seen set (death mid-scan) and
// reports whether that was the last visible hostile.
func (d *Detector) Forget(actorID uuid.UUID) (wasLast bool) {
	if !d.visible[actorID] {
		return false
	}
	delete(d.visible, actorID)
	return len(d.visible) == 0
}
