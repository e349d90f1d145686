package game

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/samdwyer/warband/internal/entity"
	"github.com/samdwyer/warband/internal/movement"
	"github.com/samdwyer/warband/internal/turnqueue"
	"github.com/samdwyer/warband/internal/vision"
)

func newTestCoordinator() (*Coordinator, *turnqueue.Queue) {
	queue := turnqueue.New(entity.ActorIDFor("player"))
	return NewCoordinator(queue, zerolog.Nop()), queue
}

func sighting(label string) vision.ActorBecameVisible {
	return vision.ActorBecameVisible{
		ObserverID: entity.ActorIDFor("player"),
		ActorID:    entity.ActorIDFor(label),
		IsHostile:  true,
	}
}

func TestSightingSchedulesAtPlayerTime(t *testing.T) {
	c, queue := newTestCoordinator()
	if err := queue.Reschedule(queue.PlayerID(), 7); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	c.HandleEvent(context.Background(), sighting("goblin#1"))

	if !queue.IsInCombat() {
		t.Fatal("sighting a hostile should start combat")
	}
	if !queue.Contains(entity.ActorIDFor("goblin#1")) {
		t.Fatal("hostile not scheduled")
	}
	// The hostile joins at the player's clock, not at zero. Player wins the
	// tie, so the hostile is second in the queue at time 7.
	first, _ := queue.PopNext()
	if !first.IsPlayer {
		t.Fatalf("player should act first on a tie, got %v", first.ActorID)
	}
	second, _ := queue.PopNext()
	if second.NextActionTime != 7 {
		t.Fatalf("hostile joined at %v, want 7", second.NextActionTime)
	}
}

func TestDuplicateSightingIgnored(t *testing.T) {
	c, queue := newTestCoordinator()
	ctx := context.Background()

	c.HandleEvent(ctx, sighting("goblin#1"))
	c.HandleEvent(ctx, sighting("goblin#1"))

	if queue.Len() != 2 {
		t.Fatalf("queue len = %d after duplicate sighting, want 2", queue.Len())
	}
}

func TestNonHostileSightingIgnored(t *testing.T) {
	c, queue := newTestCoordinator()
	ev := sighting("villager#1")
	ev.IsHostile = false

	c.HandleEvent(context.Background(), ev)

	if queue.IsInCombat() {
		t.Fatal("non-hostile sighting must not start combat")
	}
}

func TestTransitionCancelsMovement(t *testing.T) {
	c, _ := newTestCoordinator()
	token := movement.NewCancelToken()
	c.SetMovementHandle(token)

	c.HandleEvent(context.Background(), sighting("goblin#1"))

	if !token.Cancelled() {
		t.Fatal("entering combat must cancel the in-flight auto-path")
	}
}

func TestReinforcementDoesNotCancelAgain(t *testing.T) {
	c, queue := newTestCoordinator()
	ctx := context.Background()
	c.HandleEvent(ctx, sighting("goblin#1"))

	// Combat already running; a new token belongs to nothing that should be
	// cancelled by a second sighting.
	token := movement.NewCancelToken()
	c.SetMovementHandle(token)
	c.HandleEvent(ctx, sighting("orc#2"))

	if token.Cancelled() {
		t.Fatal("reinforcement sighting must not fire the cancel token")
	}
	if queue.Len() != 3 {
		t.Fatalf("queue len = %d, want 3", queue.Len())
	}
}

func TestNoHostilesVisibleEndsCombat(t *testing.T) {
	c, queue := newTestCoordinator()
	ctx := context.Background()
	c.HandleEvent(ctx, sighting("goblin#1"))
	c.HandleEvent(ctx, sighting("orc#2"))
	if err := queue.Reschedule(queue.PlayerID(), 30); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	c.HandleEvent(ctx, vision.NoHostilesVisible{ObserverID: queue.PlayerID()})

	if queue.IsInCombat() {
		t.Fatal("combat should end when no hostiles are visible")
	}
	head, ok := queue.PeekNext()
	if !ok || !head.IsPlayer || head.NextActionTime != turnqueue.ZeroTime {
		t.Fatalf("player clock not reset: %+v", head)
	}
}

func TestRemoveUnknownActorIsHarmless(t *testing.T) {
	c, queue := newTestCoordinator()
	ctx := context.Background()
	c.HandleEvent(ctx, sighting("goblin#1"))

	c.HandleActorRemoved(ctx, entity.ActorIDFor("never-scheduled"))

	if queue.Len() != 2 {
		t.Fatalf("queue len = %d after unknown removal, want 2", queue.Len())
	}
	if !queue.IsInCombat() {
		t.Fatal("combat state must survive an unknown removal")
	}
}

func TestRemoveLastHostileEndsCombat(t *testing.T) {
	c, queue := newTestCoordinator()
	ctx := context.Background()
	c.HandleEvent(ctx, sighting("goblin#1"))

	c.HandleActorRemoved(ctx, entity.ActorIDFor("goblin#1"))

	if queue.IsInCombat() {
		t.Fatal("removing the last hostile should end combat")
	}
	if c.InCombat() {
		t.Fatal("coordinator must re-derive the same answer as the queue")
	}
}
