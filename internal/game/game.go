package game

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/warband/internal/combat"
	"github.com/samdwyer/warband/internal/entity"
	"github.com/samdwyer/warband/internal/gamedata"
	"github.com/samdwyer/warband/internal/movement"
	"github.com/samdwyer/warband/internal/rng"
	"github.com/samdwyer/warband/internal/save"
	"github.com/samdwyer/warband/internal/telemetry"
	"github.com/samdwyer/warband/internal/turnqueue"
	"github.com/samdwyer/warband/internal/ui"
	"github.com/samdwyer/warband/internal/vision"
	"github.com/samdwyer/warband/internal/world"
)

// Stream names forked from the session root. Each consumer owns exactly
// one stream, so draws in one subsystem never shift another's sequence.
const (
	streamWorld  = "world"
	streamSpawn  = "spawn"
	streamCombat = "combat"
)

// Game is one simulation session: the dungeon, the actor roster, the turn
// queue, and the named rng streams, plus the terminal shell around them.
type Game struct {
	cfg Config
	log zerolog.Logger

	screen   *ui.Screen
	renderer *ui.Renderer

	dungeon  *world.Dungeon
	player   *entity.Actor
	hostiles []*entity.Actor
	byID     map[uuid.UUID]*entity.Actor

	queue       *turnqueue.Queue
	coordinator *Coordinator
	detector    *vision.Detector
	resolver    *combat.Resolver

	root    *rng.Source
	streams map[string]*rng.Source

	autoPath *movement.AutoPath
	message  string
	running  bool
}

// New creates a full session with a live terminal screen.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Game, error) {
	g, err := NewHeadless(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	g.screen = screen
	g.renderer = ui.NewRenderer(screen)
	return g, nil
}

// NewHeadless creates a session without a terminal. The simulation core is
// fully functional; only rendering and input polling are absent. Used by
// tests and by anything that drives the session programmatically.
func NewHeadless(ctx context.Context, cfg Config, log zerolog.Logger) (*Game, error) {
	root := rng.New(cfg.Seed)
	streams := make(map[string]*rng.Source)
	for _, name := range []string{streamWorld, streamSpawn, streamCombat} {
		s, err := root.Fork(name)
		if err != nil {
			return nil, fmt.Errorf("fork %q stream: %w", name, err)
		}
		streams[name] = s
	}

	dungeon := world.NewDungeon(cfg.Width, cfg.Height, streams[streamWorld])
	dungeon.Generate(ctx)
	if len(dungeon.Rooms) == 0 {
		return nil, fmt.Errorf("dungeon %dx%d generated no rooms", cfg.Width, cfg.Height)
	}

	px, py := dungeon.RandomPointInRoom(0)
	player := entity.NewPlayer(px, py)

	g := &Game{
		cfg:      cfg,
		log:      log.With().Str("component", "game").Logger(),
		dungeon:  dungeon,
		player:   player,
		byID:     map[uuid.UUID]*entity.Actor{player.ID: player},
		queue:    turnqueue.New(player.ID),
		detector: vision.NewDetector(cfg.SightRadius),
		resolver: combat.NewResolver(streams[streamCombat]),
		root:     root,
		streams:  streams,
		running:  true,
	}
	g.coordinator = NewCoordinator(g.queue, log)

	if err := g.spawnHostiles(); err != nil {
		return nil, err
	}

	g.log.Info().
		Uint64("seed", cfg.Seed).
		Int("rooms", len(dungeon.Rooms)).
		Int("hostiles", len(g.hostiles)).
		Msg("session created")
	return g, nil
}

// spawnHostiles populates the dungeon from the enemy registry. Spawn
// labels are numbered in placement order so actor identity is a pure
// function of the seed.
func (g *Game) spawnHostiles() error {
	registry, err := gamedata.LoadEnemyRegistry()
	if err != nil {
		return fmt.Errorf("load enemy registry: %w", err)
	}
	spawn := g.streams[streamSpawn]

	playerRoom := g.dungeon.RoomIndexAt(g.player.X, g.player.Y)
	for i := 1; i <= g.cfg.EnemyCount; i++ {
		def, err := registry.SpawnRandom(spawn)
		if err != nil {
			return fmt.Errorf("spawn roll: %w", err)
		}

		roomIdx, err := spawn.Range(0, int64(len(g.dungeon.Rooms)-1))
		if err != nil {
			return fmt.Errorf("room roll: %w", err)
		}
		// Keep the starting room clear so the session opens in exploration.
		if int(roomIdx) == playerRoom && len(g.dungeon.Rooms) > 1 {
			roomIdx = (roomIdx + 1) % int64(len(g.dungeon.Rooms))
		}

		x, y := g.dungeon.RandomPointInRoom(int(roomIdx))
		if g.actorAt(x, y) != nil {
			continue
		}

		label := def.ID + "#" + strconv.Itoa(i)
		actor := entity.NewFromDef(def, label, x, y)
		g.hostiles = append(g.hostiles, actor)
		g.byID[actor.ID] = actor
	}
	return nil
}

// Run drives the session until the player quits or dies. The terminal
// event loop is the only thread of control; everything in the core runs
// inside it.
func (g *Game) Run(ctx context.Context) error {
	if g.screen == nil {
		return fmt.Errorf("headless session cannot run the terminal loop")
	}
	defer g.screen.Close()

	g.scanAndDispatch(ctx)
	for g.running {
		g.render()

		ev := g.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			g.handleKey(ctx, ev)
		case *tcell.EventMouse:
			g.handleMouse(ctx, ev)
		case *tcell.EventResize:
			g.screen.Sync()
		}
	}
	return nil
}

func (g *Game) render() {
	if g.renderer == nil {
		return
	}
	g.renderer.Render(ui.Frame{
		Dungeon:  g.dungeon,
		Player:   g.player,
		Actors:   g.hostiles,
		InCombat: g.queue.IsInCombat(),
		Message:  g.message,
	})
}

func (g *Game) handleKey(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		g.running = false
		return
	case tcell.KeyUp:
		g.playerMove(ctx, 0, -1)
		return
	case tcell.KeyDown:
		g.playerMove(ctx, 0, 1)
		return
	case tcell.KeyLeft:
		g.playerMove(ctx, -1, 0)
		return
	case tcell.KeyRight:
		g.playerMove(ctx, 1, 0)
		return
	}

	switch ev.Rune() {
	case 'q':
		g.running = false
	case 'h':
		g.playerMove(ctx, -1, 0)
	case 'j':
		g.playerMove(ctx, 0, 1)
	case 'k':
		g.playerMove(ctx, 0, -1)
	case 'l':
		g.playerMove(ctx, 1, 0)
	case '.':
		// Wait in place. In combat this still costs a turn.
		if g.queue.IsInCombat() {
			g.playerCombatAction(ctx, func() {})
		}
	}
}

// handleMouse starts an auto-path walk toward a clicked floor tile.
// Auto-path is exploration-only; in combat a click is ignored.
func (g *Game) handleMouse(ctx context.Context, ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	if g.queue.IsInCombat() {
		return
	}
	x, y := ev.Position()
	if !g.dungeon.IsPassable(x, y) {
		return
	}
	g.runAutoPath(ctx, x, y)
}

// runAutoPath walks the player toward the destination one tile at a time,
// scanning for hostiles after every step. The coordinator holds the
// token; a sighting cancels the walk at the next tile boundary.
func (g *Game) runAutoPath(ctx context.Context, destX, destY int) {
	token := movement.NewCancelToken()
	g.autoPath = movement.NewAutoPath(destX, destY, token)
	g.coordinator.SetMovementHandle(token)

	for {
		status := g.autoPath.Step(occupiedTerrain{g}, g.player)
		switch status {
		case movement.StepMoved:
			g.scanAndDispatch(ctx)
			g.render()
		case movement.StepArrived:
			g.scanAndDispatch(ctx)
			g.finishAutoPath("")
			return
		case movement.StepBlocked:
			g.finishAutoPath("The way is blocked.")
			return
		case movement.StepCancelled:
			g.finishAutoPath("")
			return
		}
	}
}

func (g *Game) finishAutoPath(msg string) {
	g.autoPath = nil
	g.coordinator.SetMovementHandle(nil)
	if msg != "" {
		g.message = msg
	}
}

// playerMove is one directional input. In exploration it is a free move;
// in combat it is the player's turn, and stepping into a hostile attacks.
func (g *Game) playerMove(ctx context.Context, dx, dy int) {
	nx, ny := g.player.X+dx, g.player.Y+dy

	if !g.queue.IsInCombat() {
		if g.dungeon.IsPassable(nx, ny) && g.actorAt(nx, ny) == nil {
			g.player.MoveTo(nx, ny)
			g.scanAndDispatch(ctx)
		}
		return
	}

	if target := g.actorAt(nx, ny); target != nil && target.Hostile {
		g.playerCombatAction(ctx, func() { g.attack(ctx, g.player, target) })
		return
	}
	if g.dungeon.IsPassable(nx, ny) {
		g.playerCombatAction(ctx, func() {
			g.player.MoveTo(nx, ny)
			g.scanAndDispatch(ctx)
		})
	}
}

// playerCombatAction runs one full combat round: the player's action, the
// player's reschedule at their action cost, then every enemy whose turn
// comes before the player's next one.
//
// The player entry stays in the queue for the whole round. Popping it
// would make the derived mode lie while the action resolves: with the
// player out, a one-enemy queue looks like exploration to IsInCombat.
func (g *Game) playerCombatAction(ctx context.Context, action func()) {
	head, ok := g.queue.PeekNext()
	if !ok {
		g.log.Error().Msg("combat round with empty queue")
		return
	}
	if head.ActorID != g.player.ID {
		// Enemies owed turns before the player; run them first.
		g.runEnemyTurns(ctx)
		if !g.running || !g.queue.IsInCombat() {
			return
		}
		head, _ = g.queue.PeekNext()
	}

	action()

	if !g.queue.IsInCombat() {
		// Combat ended during the action; the clock is already reset.
		return
	}
	next := head.NextActionTime.Add(g.player.ActionCost())
	if err := g.queue.Reschedule(g.player.ID, next); err != nil {
		g.log.Error().Err(err).Msg("player reschedule failed")
		return
	}
	g.runEnemyTurns(ctx)
}

// runEnemyTurns pops and resolves enemy turns until the player is next or
// combat ends.
func (g *Game) runEnemyTurns(ctx context.Context) {
	for g.running && g.queue.IsInCombat() {
		head, ok := g.queue.PeekNext()
		if !ok || head.ActorID == g.player.ID {
			return
		}

		entry, err := g.queue.PopNext()
		if err != nil {
			return
		}
		actor := g.byID[entry.ActorID]
		if actor == nil || !actor.IsAlive() {
			// Died between scheduling and acting; the entry just expires.
			continue
		}

		g.enemyAct(ctx, actor)

		if actor.IsAlive() {
			next := entry.NextActionTime.Add(actor.ActionCost())
			g.queue.Schedule(actor.ID, next, false)
		}
	}
}

// enemyAct is the hostile turn: attack the player if adjacent, otherwise
// take one greedy step closer.
func (g *Game) enemyAct(ctx context.Context, actor *entity.Actor) {
	dx := g.player.X - actor.X
	dy := g.player.Y - actor.Y
	if abs(dx)+abs(dy) == 1 {
		g.attack(ctx, actor, g.player)
		return
	}

	step := movement.NewAutoPath(g.player.X, g.player.Y, nil)
	step.Step(occupiedTerrain{g}, actor)
}

// attack resolves one swing and handles death on either side.
func (g *Game) attack(ctx context.Context, attacker, target *entity.Actor) {
	tracer := telemetry.Tracer("combat")
	_, span := tracer.Start(ctx, "combat.attack")
	defer span.End()

	result, err := g.resolver.ResolveAttack(attacker, target)
	if err != nil {
		g.log.Error().Err(err).Msg("attack resolution failed")
		return
	}
	g.message = result.Message
	span.SetAttributes(
		attribute.String("attacker", attacker.Name),
		attribute.String("target", target.Name),
		attribute.Bool("hit", result.Hit),
		attribute.Bool("critical", result.Critical),
		attribute.Int("damage", result.Damage),
	)

	if target.IsAlive() {
		return
	}

	if target == g.player {
		g.message = "You die..."
		g.running = false
		g.log.Info().Msg("player died")
		return
	}

	g.message = target.Name + " dies!"
	g.coordinator.HandleActorRemoved(ctx, target.ID)
	g.detector.Forget(target.ID)
	g.log.Info().Str("name", target.Name).Stringer("id", target.ID).Msg("hostile died")
}

// scanAndDispatch runs the visibility producer and feeds every event to
// the scheduling coordinator.
func (g *Game) scanAndDispatch(ctx context.Context) {
	for _, ev := range g.detector.Scan(g.player, g.hostiles) {
		g.coordinator.HandleEvent(ctx, ev)
	}
}

// actorAt returns the living actor on a tile, the player included.
func (g *Game) actorAt(x, y int) *entity.Actor {
	if g.player.X == x && g.player.Y == y {
		return g.player
	}
	for _, a := range g.hostiles {
		if a.IsAlive() && a.X == x && a.Y == y {
			return a
		}
	}
	return nil
}

// Snapshot captures the complete persistable state of the session.
func (g *Game) Snapshot() save.Session {
	streams := make(map[string]rng.Snapshot, len(g.streams)+1)
	streams["root"] = g.root.Snapshot()
	for name, s := range g.streams {
		streams[name] = s.Snapshot()
	}

	actors := make([]save.ActorState, 0, len(g.hostiles)+1)
	actors = append(actors, actorState(g.player))
	for _, a := range g.hostiles {
		if a.IsAlive() {
			actors = append(actors, actorState(a))
		}
	}

	return save.Session{
		Queue:   g.queue.Snapshot(),
		Streams: streams,
		Actors:  actors,
	}
}

func actorState(a *entity.Actor) save.ActorState {
	return save.ActorState{
		ID:       a.ID,
		Label:    a.Label,
		DefID:    a.DefID,
		X:        a.X,
		Y:        a.Y,
		HP:       a.HP,
		SpeedRaw: a.Speed.Raw(),
		Hostile:  a.Hostile,
	}
}

// occupiedTerrain layers living actors over the dungeon's passability so
// enemies path around each other instead of stacking.
type occupiedTerrain struct {
	g *Game
}

func (t occupiedTerrain) IsPassable(x, y int) bool {
	return t.g.dungeon.IsPassable(x, y) && t.g.actorAt(x, y) == nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
