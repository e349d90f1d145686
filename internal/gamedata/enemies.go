package gamedata

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/warband/internal/fixed"
)

// EnemyDef defines a hostile actor type loaded from JSON.
type EnemyDef struct {
	ID          string `json:"id"`          // Unique identifier (e.g., "goblin")
	Name        string `json:"name"`        // Display name (e.g., "Goblin")
	Glyph       string `json:"glyph"`       // Single character for rendering (e.g., "g")
	Color       string `json:"color"`       // Hex color code (e.g., "#00FF00")
	HP          int    `json:"hp"`          // Base hit points
	Attack      int    `json:"attack"`      // Base attack power
	Defense     int    `json:"defense"`     // Base defense value
	SpeedPct    int    `json:"speedPct"`    // Action rate as a percentage; 100 is average
	SpawnWeight int64  `json:"spawnWeight"` // Relative spawn frequency (higher = more common)
}

// GlyphRune returns the glyph as a rune for rendering.
func (e *EnemyDef) GlyphRune() rune {
	if len(e.Glyph) == 0 {
		return '?'
	}
	return rune(e.Glyph[0])
}

// TCellColor returns the color as a tcell.Color.
func (e *EnemyDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(e.Color)
	if err != nil {
		return tcell.ColorWhite // fallback
	}
	return color
}

// SpeedFixed converts the percentage speed to the fixed-point multiplier
// the scheduler works in. Speeds stay out of float territory end to end.
func (e *EnemyDef) SpeedFixed() fixed.Fixed {
	pct := e.SpeedPct
	if pct <= 0 {
		pct = 100
	}
	speed, err := fixed.FromInt(pct).Div(fixed.FromInt(100))
	if err != nil {
		// Unreachable: the divisor is a constant 100.
		return fixed.One()
	}
	return speed
}

// EnemiesFile represents the structure of enemies.json.
type EnemiesFile struct {
	Enemies []EnemyDef `json:"enemies"`
}

// LoadEnemies loads enemy definitions from the embedded enemies.json file.
func LoadEnemies() ([]EnemyDef, error) {
	file, err := Load[EnemiesFile]("enemies.json")
	if err != nil {
		return nil, err
	}
	return file.Enemies, nil
}

// MustLoadEnemies loads enemy definitions, panicking on error.
func MustLoadEnemies() []EnemyDef {
	enemies, err := LoadEnemies()
	if err != nil {
		panic(err)
	}
	return enemies
}
