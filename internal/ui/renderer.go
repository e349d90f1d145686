package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/warband/internal/entity"
	"github.com/samdwyer/warband/internal/world"
)

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Frame is everything one redraw needs.
type Frame struct {
	Dungeon  *world.Dungeon
	Player   *entity.Actor
	Actors   []*entity.Actor
	InCombat bool
	Message  string
}

// Render draws a full frame: dungeon, living actors, player on top, then
// the status line below the map.
func (r *Renderer) Render(f Frame) {
	r.screen.Clear()

	for y := 0; y < f.Dungeon.Height; y++ {
		for x := 0; x < f.Dungeon.Width; x++ {
			tile := f.Dungeon.GetTile(x, y)
			r.screen.SetContent(x, y, tile.Rune(), r.getTileStyle(tile))
		}
	}

	for _, a := range f.Actors {
		if !a.IsAlive() {
			continue
		}
		style := tcell.StyleDefault.Foreground(a.Color)
		r.screen.SetContent(a.X, a.Y, a.Glyph, style)
	}

	playerStyle := tcell.StyleDefault.
		Foreground(f.Player.Color).
		Bold(true)
	r.screen.SetContent(f.Player.X, f.Player.Y, f.Player.Glyph, playerStyle)

	r.renderStatus(f)

	r.screen.Show()
}

// renderStatus draws the HP readout, the current mode, and the latest
// message on the two lines below the map.
func (r *Renderer) renderStatus(f Frame) {
	mode := "Exploring"
	if f.InCombat {
		mode = "COMBAT"
	}
	status := fmt.Sprintf("HP %d/%d  [%s]", f.Player.HP, f.Player.MaxHP, mode)
	r.renderLine(status, f.Dungeon.Height)
	if f.Message != "" {
		r.renderLine(f.Message, f.Dungeon.Height+1)
	}
}

// getTileStyle returns the appropriate style for a tile type.
func (r *Renderer) getTileStyle(tile world.Tile) tcell.Style {
	switch tile {
	case world.TileWall:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case world.TileFloor:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	default:
		return tcell.StyleDefault
	}
}

// renderLine displays a line of text at the given row.
func (r *Renderer) renderLine(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, ch := range msg {
		r.screen.SetContent(i, y, ch, style)
	}
}
