package focus

import (
	"fmt"
	"math"
)

// MinOffset is how far (in layout pixels) a candidate's center must lie in
// the travel direction before it counts as being "in" that direction.
const MinOffset = 10.0

// spreadFactor bounds the perpendicular offset: a candidate is only reachable
// while its cross-axis distance stays under spreadFactor times its own size
// on that axis.
const spreadFactor = 2.0

// Direction is a D-PAD direction.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "up", "down", "left" or "right".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Rect is a bounding box in layout pixels.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the center point of r.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Bottom returns the y coordinate of r's lower edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Element is a focusable UI element on the active screen.
type Element struct {
	ID       string
	Bounds   Rect
	Disabled bool
	Group    string
}

// ResolveNext finds the element that should receive focus when moving from
// current in direction dir. Candidates are compared center to center; among
// the valid ones the nearest wins, and ties keep the candidates' order.
// The second return value is false when nothing qualifies, in which case
// focus must stay where it is.
func ResolveNext(current Element, dir Direction, candidates []Element) (Element, bool) {
	cx, cy := current.Bounds.Center()

	best := -1
	bestDist := math.Inf(1)

	for i, cand := range candidates {
		if cand.ID == current.ID || cand.Disabled {
			continue
		}

		x, y := cand.Bounds.Center()
		dx := x - cx
		dy := y - cy

		if !inDirection(dir, dx, dy, cand.Bounds) {
			continue
		}

		dist := math.Hypot(dx, dy)
		if dist < bestDist {
			best = i
			bestDist = dist
		}
	}

	if best < 0 {
		return Element{}, false
	}
	return candidates[best], true
}

func inDirection(dir Direction, dx, dy float64, r Rect) bool {
	switch dir {
	case Up:
		return dy < -MinOffset && math.Abs(dx) < r.W*spreadFactor
	case Down:
		return dy > MinOffset && math.Abs(dx) < r.W*spreadFactor
	case Left:
		return dx < -MinOffset && math.Abs(dy) < r.H*spreadFactor
	case Right:
		return dx > MinOffset && math.Abs(dy) < r.H*spreadFactor
	}
	return false
}
