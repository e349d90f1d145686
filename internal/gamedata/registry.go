package gamedata

import (
	"errors"

	"github.com/samdwyer/warband/internal/rng"
)

// EnemyRegistry holds loaded enemy definitions and provides spawning
// utilities. Spawn selection draws from an explicitly owned rng stream, so
// populating a dungeon is part of the determinism contract: the same seed
// produces the same monsters in the same order.
type EnemyRegistry struct {
	enemies []EnemyDef
	weights []int64
}

// NewEnemyRegistry creates a registry from loaded enemy definitions.
func NewEnemyRegistry(enemies []EnemyDef) *EnemyRegistry {
	weights := make([]int64, len(enemies))
	for i, e := range enemies {
		weights[i] = e.SpawnWeight
	}
	return &EnemyRegistry{
		enemies: enemies,
		weights: weights,
	}
}

// LoadEnemyRegistry loads and creates a registry from the embedded enemies.json.
func LoadEnemyRegistry() (*EnemyRegistry, error) {
	enemies, err := LoadEnemies()
	if err != nil {
		return nil, err
	}
	if len(enemies) == 0 {
		return nil, errors.New("no enemies loaded from enemies.json")
	}
	return NewEnemyRegistry(enemies), nil
}

// MustLoadEnemyRegistry loads a registry, panicking on error.
func MustLoadEnemyRegistry() *EnemyRegistry {
	registry, err := LoadEnemyRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// SpawnRandom selects an enemy definition using weighted probability.
// Definitions with higher spawnWeight are more likely to be selected.
func (r *EnemyRegistry) SpawnRandom(stream *rng.Source) (*EnemyDef, error) {
	indices := make([]int, len(r.enemies))
	for i := range indices {
		indices[i] = i
	}
	idx, err := rng.Choose(stream, indices, r.weights)
	if err != nil {
		return nil, err
	}
	return &r.enemies[idx], nil
}

// GetByID returns the enemy definition with the given ID, or nil if not found.
func (r *EnemyRegistry) GetByID(id string) *EnemyDef {
	for i := range r.enemies {
		if r.enemies[i].ID == id {
			return &r.enemies[i]
		}
	}
	return nil
}

// All returns all enemy definitions.
func (r *EnemyRegistry) All() []EnemyDef {
	return r.enemies
}

// Count returns the number of enemy types in the registry.
func (r *EnemyRegistry) Count() int {
	return len(r.enemies)
}
