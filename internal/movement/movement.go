// Package movement provides exploration-mode auto-path movement with
// cooperative cancellation.
//
// An auto-path is a long-running command: "walk to that tile". It must be
// interruptible the instant combat starts, but never mid-step; the actor's
// logical position is always a whole tile, because positions feed back into
// action costs and a fractional position would poison the determinism of
// everything downstream. So cancellation is a token the walker polls at
// each tile boundary, not an interrupt.
package movement

import "sync/atomic"

// CancelToken is a cooperative cancellation handle. The scheduling
// coordinator holds and fires it; the walker polls it between steps. A
// token fires at most once and is never reset; each auto-path gets a
// fresh one.
type CancelToken struct {
	cancelled atomic.Bool
}

// NewCancelToken creates an unfired token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel fires the token. Safe to call more than once.
func (t *CancelToken) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether the token has fired.
func (t *CancelToken) Cancelled() bool {
	return t.cancelled.Load()
}

// Terrain is the minimal map query the walker needs.
type Terrain interface {
	IsPassable(x, y int) bool
}

// Mover is whatever the walker moves: it reads the current tile and is
// placed on the next one. entity.Actor satisfies this.
type Mover interface {
	Position() (x, y int)
	MoveTo(x, y int)
}

// Status is the outcome of one Step call.
type Status int

const (
	// StepMoved: advanced one tile, destination not yet reached.
	StepMoved Status = iota
	// StepArrived: advanced onto the destination tile.
	StepArrived
	// StepBlocked: the next tile is impassable; the walk ends here.
	StepBlocked
	// StepCancelled: the token fired; the walk ends on the current tile.
	StepCancelled
)

// AutoPath walks a mover toward a destination one tile per Step call.
// Steps are greedy: close the larger axis gap first, sliding along the
// other axis when blocked. It is not a shortest-path search; the real
// pathfinder lives outside the core and hands its routes to the same
// stepping discipline.
type AutoPath struct {
	destX, destY int
	token        *CancelToken
}

// NewAutoPath creates a walk toward (destX, destY) governed by token.
func NewAutoPath(destX, destY int, token *CancelToken) *AutoPath {
	return &AutoPath{destX: destX, destY: destY, token: token}
}

// Token returns the walk's cancellation handle.
func (p *AutoPath) Token() *CancelToken {
	return p.token
}

// Destination returns the walk's target tile.
func (p *AutoPath) Destination() (x, y int) {
	return p.destX, p.destY
}

// Step checks the token, then advances the mover by exactly one tile.
// Whatever the outcome, the mover ends on a whole tile.
func (p *AutoPath) Step(terrain Terrain, m Mover) Status {
	if p.token != nil && p.token.Cancelled() {
		return StepCancelled
	}

	x, y := m.Position()
	if x == p.destX && y == p.destY {
		return StepArrived
	}

	dx := sign(p.destX - x)
	dy := sign(p.destY - y)

	// Prefer the axis with the larger remaining distance.
	first, second := [2]int{dx, 0}, [2]int{0, dy}
	if abs(p.destY-y) > abs(p.destX-x) {
		first, second = second, first
	}

	for _, step := range [][2]int{first, second} {
		if step[0] == 0 && step[1] == 0 {
			continue
		}
		nx, ny := x+step[0], y+step[1]
		if terrain.IsPassable(nx, ny) {
			m.MoveTo(nx, ny)
			if nx == p.destX && ny == p.destY {
				return StepArrived
			}
			return StepMoved
		}
	}
	return StepBlocked
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
