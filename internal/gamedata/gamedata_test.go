package gamedata

import (
	"testing"

	"github.com/samdwyer/warband/internal/fixed"
	"github.com/samdwyer/warband/internal/rng"
)

func TestLoadEnemies(t *testing.T) {
	enemies, err := LoadEnemies()
	if err != nil {
		t.Fatalf("Failed to load enemies: %v", err)
	}

	if len(enemies) != 4 {
		t.Errorf("Expected 4 enemies, got %d", len(enemies))
	}

	// Verify expected enemies exist
	expectedIDs := map[string]bool{"rat": false, "goblin": false, "orc": false, "skeleton": false}
	for _, e := range enemies {
		if _, ok := expectedIDs[e.ID]; ok {
			expectedIDs[e.ID] = true
		}
	}

	for id, found := range expectedIDs {
		if !found {
			t.Errorf("Expected enemy %q not found", id)
		}
	}
}

func TestEnemyDefFields(t *testing.T) {
	registry := MustLoadEnemyRegistry()
	for _, e := range registry.All() {
		if e.HP <= 0 {
			t.Errorf("%s: non-positive HP %d", e.ID, e.HP)
		}
		if e.SpawnWeight <= 0 {
			t.Errorf("%s: non-positive spawn weight %d", e.ID, e.SpawnWeight)
		}
		if e.SpeedPct <= 0 {
			t.Errorf("%s: non-positive speed %d", e.ID, e.SpeedPct)
		}
		if len(e.Glyph) != 1 {
			t.Errorf("%s: glyph %q is not a single character", e.ID, e.Glyph)
		}
		if _, err := ParseHexColor(e.Color); err != nil {
			t.Errorf("%s: bad color %q: %v", e.ID, e.Color, err)
		}
	}
}

func TestEnemyRegistry(t *testing.T) {
	registry, err := LoadEnemyRegistry()
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	if registry.Count() != 4 {
		t.Errorf("Expected 4 enemy types, got %d", registry.Count())
	}

	goblin := registry.GetByID("goblin")
	if goblin == nil {
		t.Fatal("Goblin not found by ID")
	}
	if goblin.Name != "Goblin" {
		t.Errorf("Expected name 'Goblin', got %q", goblin.Name)
	}

	if registry.GetByID("dragon") != nil {
		t.Error("Unknown ID returned a definition")
	}
}

func TestSpawnRandomIsDeterministic(t *testing.T) {
	registry := MustLoadEnemyRegistry()

	spawn := func() []string {
		stream := rng.New(12345)
		ids := make([]string, 20)
		for i := range ids {
			def, err := registry.SpawnRandom(stream)
			if err != nil {
				t.Fatalf("SpawnRandom: %v", err)
			}
			ids[i] = def.ID
		}
		return ids
	}

	a, b := spawn(), spawn()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("spawn sequence diverged at %d: %s != %s", i, a[i], b[i])
		}
	}
}

func TestSpawnRandomRespectsWeights(t *testing.T) {
	registry := MustLoadEnemyRegistry()
	stream := rng.New(7)

	counts := map[string]int{}
	const trials = 10000
	for i := 0; i < trials; i++ {
		def, err := registry.SpawnRandom(stream)
		if err != nil {
			t.Fatalf("SpawnRandom: %v", err)
		}
		counts[def.ID]++
	}

	// goblin (weight 40) must clearly outnumber skeleton (weight 10).
	if counts["goblin"] < counts["skeleton"]*2 {
		t.Errorf("weights ignored: goblin=%d skeleton=%d", counts["goblin"], counts["skeleton"])
	}
	for _, e := range registry.All() {
		if counts[e.ID] == 0 {
			t.Errorf("%s never spawned in %d trials", e.ID, trials)
		}
	}
}

func TestSpeedFixed(t *testing.T) {
	def := EnemyDef{SpeedPct: 150}
	want := fixed.One().Add(fixed.Half())
	if got := def.SpeedFixed(); got != want {
		t.Errorf("SpeedFixed(150) = %v, want %v", got, want)
	}

	// Zero or missing speed falls back to average rather than dividing to zero.
	def = EnemyDef{}
	if got := def.SpeedFixed(); got != fixed.One() {
		t.Errorf("SpeedFixed(0) = %v, want 1", got)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"#FF0000", false},
		{"00CC44", false},
		{"#GGGGGG", true},
		{"#FFF", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := ParseHexColor(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
