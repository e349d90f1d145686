package game

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/warband/internal/movement"
	"github.com/samdwyer/warband/internal/telemetry"
	"github.com/samdwyer/warband/internal/turnqueue"
	"github.com/samdwyer/warband/internal/vision"
)

// Coordinator bridges visibility events to turn-queue mutations.
//
// It is deliberately stateless about the mode: whether the session is in
// combat is always re-derived from the queue, never mirrored into a field
// here. A cached copy is exactly the kind of thing that drifts out of sync
// with the schedule and produces bugs that only reproduce in long replays.
//
// Events are handled one at a time on the session's thread of control; the
// coordinator never re-enters the queue concurrently with itself.
type Coordinator struct {
	queue *turnqueue.Queue
	log   zerolog.Logger

	// Cancellation handle for the in-flight auto-path walk, if any.
	// Owned here so the exploration→combat transition can fire it.
	movementHandle *movement.CancelToken
}

// NewCoordinator creates a coordinator for the given queue.
func NewCoordinator(queue *turnqueue.Queue, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		queue: queue,
		log:   log.With().Str("component", "coordinator").Logger(),
	}
}

// SetMovementHandle registers the cancellation token of a newly started
// auto-path walk. Pass nil when the walk finishes on its own.
func (c *Coordinator) SetMovementHandle(token *movement.CancelToken) {
	c.movementHandle = token
}

// HandleEvent dispatches one visibility event.
func (c *Coordinator) HandleEvent(ctx context.Context, ev vision.Event) {
	switch ev := ev.(type) {
	case vision.ActorBecameVisible:
		c.handleActorVisible(ctx, ev)
	case vision.NoHostilesVisible:
		c.handleNoHostiles(ctx, ev)
	default:
		c.log.Warn().Type("event", ev).Msg("unknown visibility event dropped")
	}
}

// handleActorVisible schedules a newly seen hostile. The actor joins at
// the player's current next-action time; a reinforcement arriving
// mid-fight acts promptly instead of waiting out a full cycle from zero.
// Re-sightings of an already tracked actor are ignored, which makes
// duplicate detection events harmless.
func (c *Coordinator) handleActorVisible(ctx context.Context, ev vision.ActorBecameVisible) {
	if !ev.IsHostile {
		return
	}
	if c.queue.Contains(ev.ActorID) {
		return
	}

	wasInCombat := c.queue.IsInCombat()
	joinAt := c.queue.PlayerTime()
	c.queue.Schedule(ev.ActorID, joinAt, false)

	c.log.Info().
		Stringer("actor", ev.ActorID).
		Stringer("join_at", joinAt).
		Bool("reinforcement", wasInCombat).
		Msg("hostile scheduled")

	if !wasInCombat && c.queue.IsInCombat() {
		c.enterCombat(ctx)
	}
}

// handleNoHostiles drops every non-player entry. The queue resets the
// player's clock to zero in the same step, which is what ends combat.
func (c *Coordinator) handleNoHostiles(ctx context.Context, ev vision.NoHostilesVisible) {
	if !c.queue.IsInCombat() {
		return
	}
	removed := c.queue.RemoveAllHostiles()

	tracer := telemetry.Tracer("scheduler")
	_, span := tracer.Start(ctx, "combat.end")
	span.SetAttributes(attribute.Int("hostiles_removed", removed))
	span.End()

	c.log.Info().Int("removed", removed).Msg("no hostiles visible, back to exploration")
}

// HandleActorRemoved takes a dead or fled actor out of the schedule.
// A miss is only a warning: visibility events legitimately race with
// deaths, so "not found" here is noise, not corruption.
func (c *Coordinator) HandleActorRemoved(ctx context.Context, actorID uuid.UUID) {
	wasInCombat := c.queue.IsInCombat()
	if !c.queue.Remove(actorID) {
		c.log.Warn().Stringer("actor", actorID).Msg("actor not found on remove")
		return
	}
	if wasInCombat && !c.queue.IsInCombat() {
		tracer := telemetry.Tracer("scheduler")
		_, span := tracer.Start(ctx, "combat.end")
		span.SetAttributes(attribute.String("cause", "last_hostile_removed"))
		span.End()
		c.log.Info().Msg("last hostile removed, back to exploration")
	}
}

// InCombat re-derives the mode from the queue. Everything mode-dependent
// above the core (movement granularity, input routing) asks this.
func (c *Coordinator) InCombat() bool {
	return c.queue.IsInCombat()
}

// enterCombat runs the exploration→combat transition: any in-flight
// auto-path walk is cancelled at its next tile boundary.
func (c *Coordinator) enterCombat(ctx context.Context) {
	tracer := telemetry.Tracer("scheduler")
	_, span := tracer.Start(ctx, "combat.start")
	defer span.End()

	cancelled := false
	if c.movementHandle != nil {
		c.movementHandle.Cancel()
		c.movementHandle = nil
		cancelled = true
	}
	span.SetAttributes(attribute.Bool("movement_cancelled", cancelled))

	c.log.Info().Bool("movement_cancelled", cancelled).Msg("combat started")
}
