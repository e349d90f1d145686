// Package game wires the simulation core into a playable session.
package game

import (
	"github.com/caarlos0/env/v11"
)

// Config holds game configuration options, parsed from the environment
// (usually via a .env file loaded by the entry point).
type Config struct {
	// Seed for all random streams. Used for reproducible dungeon
	// generation, spawns, and combat. A seed of 0 means the entry point
	// substitutes a random one before the session starts.
	Seed uint64 `env:"WARBAND_SEED"`

	// Dungeon dimensions in tiles.
	Width  int `env:"WARBAND_WIDTH" envDefault:"80"`
	Height int `env:"WARBAND_HEIGHT" envDefault:"24"`

	// Hostiles placed at generation time.
	EnemyCount int `env:"WARBAND_ENEMIES" envDefault:"6"`

	// Detection radius in tiles for the demo visibility producer.
	SightRadius int `env:"WARBAND_SIGHT_RADIUS" envDefault:"8"`

	// LogFile receives zerolog output. Empty discards logs entirely;
	// stdout and stderr belong to the terminal UI while it is running.
	LogFile string `env:"WARBAND_LOG_FILE"`
}

// LoadConfig parses configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Width < 20 {
		cfg.Width = 20
	}
	if cfg.Height < 12 {
		cfg.Height = 12
	}
	return cfg, nil
}
