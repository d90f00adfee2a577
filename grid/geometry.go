// Package grid defines world coordinates, topology projection and the
// cell-to-entity spatial index shared by the simulation systems.
package grid

import "fmt"

// Topology selects how virtual coordinates are projected onto the grid.
type Topology uint8

const (
	// Wrapped wraps both axes (torus).
	Wrapped Topology = iota
	// Bounded clamps both axes (flat earth).
	Bounded
	// WrappedVertical clamps x and wraps y.
	WrappedVertical
	// WrappedHorizontal wraps x and clamps y.
	WrappedHorizontal
)

var topologyNames = [...]string{
	Wrapped:           "torus",
	Bounded:           "flat",
	WrappedVertical:   "ring_vertical",
	WrappedHorizontal: "ring_horizontal",
}

// String returns the configuration name of the topology.
func (t Topology) String() string {
	if int(t) < len(topologyNames) {
		return topologyNames[t]
	}
	return fmt.Sprintf("topology(%d)", uint8(t))
}

// ParseTopology converts a configuration name into a Topology.
func ParseTopology(s string) (Topology, error) {
	for i, name := range topologyNames {
		if name == s {
			return Topology(i), nil
		}
	}
	return 0, fmt.Errorf("unknown topology %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Topology) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Topology) UnmarshalText(b []byte) error {
	parsed, err := ParseTopology(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// WrapsX reports whether the horizontal axis wraps.
func (t Topology) WrapsX() bool {
	return t == Wrapped || t == WrappedHorizontal
}

// WrapsY reports whether the vertical axis wraps.
func (t Topology) WrapsY() bool {
	return t == Wrapped || t == WrappedVertical
}

// Coords is a virtual position. It may lie outside the grid and is only
// meaningful after projection through a Geometry.
type Coords struct {
	X, Y int
}

// Add returns c offset by d.
func (c Coords) Add(d Coords) Coords {
	return Coords{X: c.X + d.X, Y: c.Y + d.Y}
}

// Sub returns the displacement from o to c.
func (c Coords) Sub(o Coords) Coords {
	return Coords{X: c.X - o.X, Y: c.Y - o.Y}
}

// Cell is a real grid position, always inside [0,W) x [0,H).
type Cell struct {
	X, Y int
}

// Coords returns the cell as a virtual coordinate.
func (c Cell) Coords() Coords {
	return Coords{X: c.X, Y: c.Y}
}

// Wrap adds delta to origin modulo max, always yielding [0, max).
func Wrap(origin, delta, max int) int {
	return ((origin+delta)%max + max) % max
}

// Clamp adds delta to origin, saturating to [min, max-1].
func Clamp(origin, delta, min, max int) int {
	v := origin + delta
	if v < min {
		return min
	}
	if v > max-1 {
		return max - 1
	}
	return v
}

// Geometry maps virtual coordinates onto real cells for a given topology.
// It is the only place coordinate semantics are defined.
type Geometry struct {
	Width    int
	Height   int
	Topology Topology
}

// NewGeometry returns a geometry for a width x height grid.
func NewGeometry(width, height int, topology Topology) Geometry {
	return Geometry{Width: width, Height: height, Topology: topology}
}

// Real projects virtual coordinates onto a real cell.
func (g Geometry) Real(c Coords) Cell {
	var cell Cell
	if g.Topology.WrapsX() {
		cell.X = Wrap(c.X, 0, g.Width)
	} else {
		cell.X = Clamp(c.X, 0, 0, g.Width)
	}
	if g.Topology.WrapsY() {
		cell.Y = Wrap(c.Y, 0, g.Height)
	} else {
		cell.Y = Clamp(c.Y, 0, 0, g.Height)
	}
	return cell
}

// Cells returns the number of real cells.
func (g Geometry) Cells() int {
	return g.Width * g.Height
}

// neighbourOffsets lists the 8-neighbourhood, row by row.
var neighbourOffsets = [8]Coords{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Neighbours returns the virtual coordinates of the 8-neighbourhood of c.
// Offsets projecting onto c's own cell, or onto a cell already listed, are
// skipped, so small or bounded worlds never yield self pairs or duplicates.
func (g Geometry) Neighbours(c Coords) []Coords {
	return g.AppendNeighbours(make([]Coords, 0, 8), c)
}

// AppendNeighbours is Neighbours appending into dst.
func (g Geometry) AppendNeighbours(dst []Coords, c Coords) []Coords {
	self := g.Real(c)
	var seen [8]Cell
	n := 0
outer:
	for _, off := range neighbourOffsets {
		v := c.Add(off)
		r := g.Real(v)
		if r == self {
			continue
		}
		for i := 0; i < n; i++ {
			if seen[i] == r {
				continue outer
			}
		}
		seen[n] = r
		n++
		dst = append(dst, v)
	}
	return dst
}

// Manhattan returns the Manhattan distance between two virtual coordinates.
func Manhattan(a, b Coords) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
