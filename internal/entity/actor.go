// Package entity provides the actors that inhabit the dungeon.
package entity

import (
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/samdwyer/warband/internal/fixed"
	"github.com/samdwyer/warband/internal/gamedata"
	"github.com/samdwyer/warband/internal/turnqueue"
)

// idNamespace is the fixed UUID namespace for actor identity. Actor IDs are
// SHA1 name-based UUIDs, not random ones: the same spawn label always yields
// the same ID, so saves and replays agree on who is who across runs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("warband.samdwyer.dev"))

// ActorIDFor derives the deterministic ID for a stable spawn label such as
// "player" or "goblin#3".
func ActorIDFor(label string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(label))
}

// baseActionCost is the time an average-speed actor pays per action.
const baseActionCost = 10

// Actor is any creature tracked by the simulation: the player avatar or a
// hostile. Position is always a whole tile; movement that spans multiple
// tiles settles on a tile boundary before anything else observes it.
type Actor struct {
	ID      uuid.UUID
	Label   string // stable spawn label the ID derives from
	DefID   string // gamedata definition ID; empty for the player
	Name    string
	Glyph   rune
	Color   tcell.Color
	X, Y    int
	HP      int
	MaxHP   int
	Attack  int
	Defense int
	Speed   fixed.Fixed // action-rate multiplier; 1.0 is average
	Hostile bool
}

// NewPlayer creates the player avatar at the given position.
func NewPlayer(x, y int) *Actor {
	return &Actor{
		ID:    ActorIDFor("player"),
		Label: "player",
		Name:  "You",
		Glyph: '@',
		Color: tcell.ColorYellow,
		X:     x,
		Y:     y,
		HP:    30,
		MaxHP: 30,
		Attack:  5,
		Defense: 2,
		Speed:   fixed.One(),
	}
}

// NewFromDef creates a hostile actor from a data-driven definition. The
// label must be unique per spawn (e.g. "goblin#2") and stable across runs.
func NewFromDef(def *gamedata.EnemyDef, label string, x, y int) *Actor {
	return &Actor{
		ID:      ActorIDFor(label),
		Label:   label,
		DefID:   def.ID,
		Name:    def.Name,
		Glyph:   def.GlyphRune(),
		Color:   def.TCellColor(),
		X:       x,
		Y:       y,
		HP:      def.HP,
		MaxHP:   def.HP,
		Attack:  def.Attack,
		Defense: def.Defense,
		Speed:   def.SpeedFixed(),
		Hostile: true,
	}
}

// GetName returns the display name. Part of the combat.Combatant surface.
func (a *Actor) GetName() string { return a.Name }

// GetAttack returns the attack stat.
func (a *Actor) GetAttack() int { return a.Attack }

// GetDefense returns the defense stat.
func (a *Actor) GetDefense() int { return a.Defense }

// IsAlive reports whether the actor still has hit points.
func (a *Actor) IsAlive() bool {
	return a.HP > 0
}

// Position returns the actor's current tile.
func (a *Actor) Position() (int, int) {
	return a.X, a.Y
}

// MoveTo places the actor on a tile. Callers step one whole tile at a time.
func (a *Actor) MoveTo(x, y int) {
	a.X, a.Y = x, y
}

// TakeDamage applies damage and returns the amount actually taken.
func (a *Actor) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > a.HP {
		amount = a.HP
	}
	a.HP -= amount
	return amount
}

// ActionCost returns the time-unit cost of one action for this actor:
// the base cost divided by speed, never below one. A speed of 2.0 acts
// twice as often as a speed of 1.0.
func (a *Actor) ActionCost() turnqueue.TimeUnits {
	speed := a.Speed
	if speed.Cmp(fixed.Zero()) <= 0 {
		speed = fixed.One()
	}
	cost, err := fixed.FromInt(baseActionCost).Div(speed)
	if err != nil {
		// Unreachable: speed was just forced positive.
		return baseActionCost
	}
	n := cost.Int()
	if n < 1 {
		n = 1
	}
	return turnqueue.TimeUnits(n)
}
