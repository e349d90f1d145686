package world

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/warband/internal/rng"
	"github.com/samdwyer/warband/internal/telemetry"
)

const (
	// Default dungeon dimensions
	DefaultWidth  = 80
	DefaultHeight = 24

	// BSP parameters
	minRoomSize = 6  // Minimum room dimension
	maxRoomSize = 14 // Maximum room dimension
	minLeafSize = 8  // Minimum BSP leaf size before stopping split
)

// Dungeon represents the game map. Generation draws exclusively from the
// injected rng stream, so the map is a pure function of the world seed:
// two sessions with the same seed walk identical corridors.
type Dungeon struct {
	Width  int
	Height int
	Tiles  [][]Tile
	Rooms  []Room
	stream *rng.Source
}

// NewDungeon creates a new dungeon filled with walls. The stream is
// typically a fork of the session's root stream under a "world" context.
func NewDungeon(width, height int, stream *rng.Source) *Dungeon {
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = TileWall
		}
	}

	return &Dungeon{
		Width:  width,
		Height: height,
		Tiles:  tiles,
		Rooms:  make([]Room, 0),
		stream: stream,
	}
}

// Generate creates the dungeon layout using BSP partitioning: split the map
// into leaves, place one room per leaf, then tunnel sibling subtrees
// together bottom-up.
func (d *Dungeon) Generate(ctx context.Context) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "dungeon.generate")
	defer span.End()

	startTime := time.Now()

	root := &node{x: 1, y: 1, w: d.Width - 2, h: d.Height - 2}
	d.split(root)
	d.placeRooms(root)
	d.link(root)

	span.SetAttributes(
		attribute.Int("dungeon.width", d.Width),
		attribute.Int("dungeon.height", d.Height),
		attribute.Int("dungeon.room_count", len(d.Rooms)),
		attribute.Int64("dungeon.generation_ms", time.Since(startTime).Milliseconds()),
	)
}

// IsPassable returns true if the given position can be walked on.
func (d *Dungeon) IsPassable(x, y int) bool {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return false
	}
	return d.Tiles[y][x].IsPassable()
}

// GetTile returns the tile at the given position.
func (d *Dungeon) GetTile(x, y int) Tile {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return TileWall
	}
	return d.Tiles[y][x]
}

// RoomIndexAt returns the index of the room containing the position, or -1
// if the position is in a corridor or wall.
func (d *Dungeon) RoomIndexAt(x, y int) int {
	for i, room := range d.Rooms {
		if room.Contains(x, y) {
			return i
		}
	}
	return -1
}

// RandomPointInRoom returns a random passable point within the specified
// room, falling back to the room center.
func (d *Dungeon) RandomPointInRoom(roomIndex int) (int, int) {
	if roomIndex < 0 || roomIndex >= len(d.Rooms) {
		return -1, -1
	}
	room := d.Rooms[roomIndex]

	for i := 0; i < 100; i++ {
		x := room.X + d.intn(room.Width)
		y := room.Y + d.intn(room.Height)
		if d.IsPassable(x, y) {
			return x, y
		}
	}
	return room.Center()
}

// intn returns a uniform value in [0, n) from the dungeon's stream.
func (d *Dungeon) intn(n int) int {
	v, err := d.stream.Range(0, int64(n-1))
	if err != nil {
		// Only reachable for n < 1, which the callers never pass.
		return 0
	}
	return int(v)
}

// node is one rectangle in the BSP tree.
type node struct {
	x, y, w, h  int
	left, right *node
	room        *Room
}

func (n *node) leaf() bool { return n.left == nil && n.right == nil }

// split recursively partitions a node until its children fall below the
// minimum leaf size. Wide nodes split vertically, tall ones horizontally.
func (d *Dungeon) split(n *node) {
	horizontal := false
	switch {
	case n.w > n.h && n.w >= minLeafSize*2:
	case n.h >= minLeafSize*2:
		horizontal = true
	case n.w >= minLeafSize*2:
	default:
		return
	}

	if horizontal {
		lo, hi := minLeafSize, n.h-minLeafSize
		if hi <= lo {
			return
		}
		at := lo + d.intn(hi-lo+1)
		n.left = &node{x: n.x, y: n.y, w: n.w, h: at}
		n.right = &node{x: n.x, y: n.y + at, w: n.w, h: n.h - at}
	} else {
		lo, hi := minLeafSize, n.w-minLeafSize
		if hi <= lo {
			return
		}
		at := lo + d.intn(hi-lo+1)
		n.left = &node{x: n.x, y: n.y, w: at, h: n.h}
		n.right = &node{x: n.x + at, y: n.y, w: n.w - at, h: n.h}
	}

	d.split(n.left)
	d.split(n.right)
}

// placeRooms carves one room into every leaf that can hold one.
func (d *Dungeon) placeRooms(n *node) {
	if n == nil {
		return
	}
	if !n.leaf() {
		d.placeRooms(n.left)
		d.placeRooms(n.right)
		return
	}

	w := minRoomSize + d.intn(min(maxRoomSize-minRoomSize+1, n.w-minRoomSize+1))
	h := minRoomSize + d.intn(min(maxRoomSize-minRoomSize+1, n.h-minRoomSize+1))
	if w > n.w-2 {
		w = n.w - 2
	}
	if h > n.h-2 {
		h = n.h - 2
	}
	if w < minRoomSize || h < minRoomSize {
		return
	}

	room := Room{
		X:      n.x + 1 + d.intn(n.w-w-1),
		Y:      n.y + 1 + d.intn(n.h-h-1),
		Width:  w,
		Height: h,
	}
	n.room = &room
	d.Rooms = append(d.Rooms, room)
	d.carveRoom(room)
}

// link connects each node's subtrees with a corridor, bottom-up.
func (d *Dungeon) link(n *node) {
	if n == nil || n.leaf() {
		return
	}
	d.link(n.left)
	d.link(n.right)

	a := anyRoom(n.left)
	b := anyRoom(n.right)
	if a != nil && b != nil {
		d.carveCorridor(*a, *b)
	}
}

// anyRoom returns some room from the subtree, or nil if it holds none.
func anyRoom(n *node) *Room {
	if n == nil {
		return nil
	}
	if n.room != nil {
		return n.room
	}
	if room := anyRoom(n.left); room != nil {
		return room
	}
	return anyRoom(n.right)
}

func (d *Dungeon) carveRoom(room Room) {
	for y := room.Y; y < room.Y+room.Height; y++ {
		for x := room.X; x < room.X+room.Width; x++ {
			d.carveFloor(x, y)
		}
	}
}

// carveCorridor tunnels between two room centers with one L-shaped bend,
// the bend direction chosen by the stream.
func (d *Dungeon) carveCorridor(room1, room2 Room) {
	x1, y1 := room1.Center()
	x2, y2 := room2.Center()

	if d.intn(2) == 0 {
		d.carveHorizontal(x1, x2, y1)
		d.carveVertical(y1, y2, x2)
	} else {
		d.carveVertical(y1, y2, x1)
		d.carveHorizontal(x1, x2, y2)
	}
}

func (d *Dungeon) carveHorizontal(x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		d.carveFloor(x, y)
	}
}

func (d *Dungeon) carveVertical(y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		d.carveFloor(x, y)
	}
}

// carveFloor sets a tile to floor, leaving the outer border intact.
func (d *Dungeon) carveFloor(x, y int) {
	if x > 0 && x < d.Width-1 && y > 0 && y < d.Height-1 {
		d.Tiles[y][x] = TileFloor
	}
}
