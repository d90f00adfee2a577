package components

import "github.com/pthm-cable/homestead/grid"

// Position is an entity's virtual grid position. Project it through a
// grid.Geometry before indexing.
type Position struct {
	X, Y int
}

// Coords returns the position as virtual coordinates.
func (p Position) Coords() grid.Coords {
	return grid.Coords{X: p.X, Y: p.Y}
}

// Set overwrites the position.
func (p *Position) Set(c grid.Coords) {
	p.X, p.Y = c.X, c.Y
}

// PositionAt returns a Position for c.
func PositionAt(c grid.Coords) Position {
	return Position{X: c.X, Y: c.Y}
}
