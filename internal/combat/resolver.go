// Package combat provides attack resolution for tactical combat.
//
// Resolution is intentionally thin; the interesting rules live above the
// simulation core. What matters here is the discipline: every roll comes
// from an explicitly owned rng stream and every multiplier is fixed-point,
// so a fight resolves identically on every platform and in every replay.
package combat

import (
	"github.com/samdwyer/warband/internal/fixed"
	"github.com/samdwyer/warband/internal/rng"
)

// Base chances in percent. Damage variance is a fixed-point multiplier
// drawn from [0.8, 1.2]; crits double the result.
const (
	baseHitChance  = 85
	baseCritChance = 10
)

var (
	varianceLo = fixed.FromRaw(4 * fixed.Scale / 5) // 0.8
	varianceHi = fixed.FromRaw(6 * fixed.Scale / 5) // 1.2
)

// Combatant is the interface for anything that can trade blows.
type Combatant interface {
	GetName() string
	IsAlive() bool
	GetAttack() int
	GetDefense() int
	TakeDamage(amount int) int // Returns actual damage taken
}

// AttackResult describes one resolved attack.
type AttackResult struct {
	Hit      bool
	Critical bool
	Damage   int // Actual damage dealt; 0 on a miss
	Message  string
}

// Resolver resolves attacks using a dedicated rng stream, usually the
// session's "combat" fork.
type Resolver struct {
	stream *rng.Source
}

// NewResolver creates a resolver drawing from the given stream.
func NewResolver(stream *rng.Source) *Resolver {
	return &Resolver{stream: stream}
}

// ResolveAttack rolls to-hit, then variance and crit on a hit, and applies
// the damage. A miss consumes exactly one draw and a hit exactly three, so
// a logged outcome pins down the stream position either way.
func (r *Resolver) ResolveAttack(attacker, target Combatant) (AttackResult, error) {
	hit, err := r.stream.Check(baseHitChance)
	if err != nil {
		return AttackResult{}, err
	}
	if !hit {
		return AttackResult{
			Message: attacker.GetName() + " misses " + target.GetName() + "!",
		}, nil
	}

	base := attacker.GetAttack() - target.GetDefense()
	if base < 1 {
		base = 1
	}

	variance, err := r.stream.FixedBetween(varianceLo, varianceHi)
	if err != nil {
		return AttackResult{}, err
	}
	damage := fixed.FromInt(base).Mul(variance)

	crit, err := r.stream.Check(baseCritChance)
	if err != nil {
		return AttackResult{}, err
	}
	if crit {
		damage = damage.Mul(fixed.FromInt(2))
	}

	amount := damage.Int()
	if amount < 1 {
		amount = 1
	}
	actual := target.TakeDamage(amount)

	result := AttackResult{
		Hit:      true,
		Critical: crit,
		Damage:   actual,
		Message:  attacker.GetName() + " hits " + target.GetName() + "!",
	}
	if crit {
		result.Message = attacker.GetName() + " critically hits " + target.GetName() + "!"
	}
	return result, nil
}
