package grid

import (
	"testing"
	"testing/quick"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name                string
		origin, delta, max  int
		want                int
	}{
		{"below zero", 0, -1, 10, 9},
		{"past end", 9, 1, 10, 0},
		{"inside", 3, 4, 10, 7},
		{"far negative", 2, -25, 10, 7},
		{"far positive", 5, 37, 10, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Wrap(tt.origin, tt.delta, tt.max); got != tt.want {
				t.Errorf("Wrap(%d, %d, %d) = %d, want %d", tt.origin, tt.delta, tt.max, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name                     string
		origin, delta, min, max  int
		want                     int
	}{
		{"below min", 0, -1, 0, 10, 0},
		{"at max", 9, 1, 0, 10, 9},
		{"inside", 3, 4, 0, 10, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.origin, tt.delta, tt.min, tt.max); got != tt.want {
				t.Errorf("Clamp = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRealPerTopology(t *testing.T) {
	c := Coords{X: -1, Y: 12}
	tests := []struct {
		topology Topology
		want     Cell
	}{
		{Wrapped, Cell{9, 2}},
		{Bounded, Cell{0, 9}},
		{WrappedVertical, Cell{0, 2}},
		{WrappedHorizontal, Cell{9, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.topology.String(), func(t *testing.T) {
			g := NewGeometry(10, 10, tt.topology)
			if got := g.Real(c); got != tt.want {
				t.Errorf("Real(%v) = %v, want %v", c, got, tt.want)
			}
		})
	}
}

func TestRealInBoundsAndDeterministic(t *testing.T) {
	for _, topo := range []Topology{Wrapped, Bounded, WrappedVertical, WrappedHorizontal} {
		g := NewGeometry(7, 5, topo)
		f := func(x, y int32) bool {
			c := Coords{X: int(x), Y: int(y)}
			r := g.Real(c)
			if r != g.Real(c) {
				return false
			}
			return r.X >= 0 && r.X < g.Width && r.Y >= 0 && r.Y < g.Height
		}
		if err := quick.Check(f, nil); err != nil {
			t.Errorf("%s: %v", topo, err)
		}
	}
}

func TestNeighbours(t *testing.T) {
	t.Run("torus interior", func(t *testing.T) {
		g := NewGeometry(10, 10, Wrapped)
		if n := len(g.Neighbours(Coords{5, 5})); n != 8 {
			t.Errorf("got %d neighbours, want 8", n)
		}
	})

	t.Run("flat corner", func(t *testing.T) {
		g := NewGeometry(10, 10, Bounded)
		ns := g.Neighbours(Coords{0, 0})
		if len(ns) != 3 {
			t.Fatalf("got %d neighbours, want 3", len(ns))
		}
		for _, n := range ns {
			if g.Real(n) == (Cell{0, 0}) {
				t.Errorf("neighbour %v projects onto origin", n)
			}
		}
	})

	t.Run("tiny torus has no duplicates", func(t *testing.T) {
		g := NewGeometry(2, 2, Wrapped)
		ns := g.Neighbours(Coords{0, 0})
		seen := make(map[Cell]bool)
		for _, n := range ns {
			r := g.Real(n)
			if seen[r] {
				t.Errorf("duplicate neighbour cell %v", r)
			}
			seen[r] = true
		}
		if len(ns) != 3 {
			t.Errorf("got %d neighbours, want 3", len(ns))
		}
	})

	t.Run("single cell world", func(t *testing.T) {
		g := NewGeometry(1, 1, Wrapped)
		if n := len(g.Neighbours(Coords{0, 0})); n != 0 {
			t.Errorf("got %d neighbours, want 0", n)
		}
	})
}

func TestParseTopology(t *testing.T) {
	for _, topo := range []Topology{Wrapped, Bounded, WrappedVertical, WrappedHorizontal} {
		got, err := ParseTopology(topo.String())
		if err != nil || got != topo {
			t.Errorf("ParseTopology(%q) = %v, %v", topo.String(), got, err)
		}
	}
	if _, err := ParseTopology("sphere"); err == nil {
		t.Error("expected error for unknown topology")
	}
}

func TestManhattan(t *testing.T) {
	if d := Manhattan(Coords{1, 2}, Coords{-2, 6}); d != 7 {
		t.Errorf("Manhattan = %d, want 7", d)
	}
}
