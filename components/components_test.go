package components

import (
	"testing"

	"github.com/pthm-cable/homestead/grid"
)

func TestStockHalve(t *testing.T) {
	tests := []struct {
		name     string
		in       Stock
		wantHalf Stock
		wantLeft Stock
	}{
		{"even", Stock{10, 10}, Stock{5, 5}, Stock{5, 5}},
		{"odd", Stock{7, 3}, Stock{3, 1}, Stock{4, 2}},
		{"empty", Stock{}, Stock{}, Stock{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.in
			half := s.Halve()
			if half != tt.wantHalf || s != tt.wantLeft {
				t.Errorf("Halve(%v) = %v leaving %v, want %v leaving %v", tt.in, half, s, tt.wantHalf, tt.wantLeft)
			}
		})
	}
}

func TestHungerReduceFloorsAtZero(t *testing.T) {
	h := Hunger{Apples: 0.5, Oranges: 2}
	h.Reduce(Apple, 1)
	h.Reduce(Orange, 1)
	if h.Apples != 0 || h.Oranges != 1 {
		t.Errorf("got %+v, want {0 1}", h)
	}
}

func TestFoodSourceCapacity(t *testing.T) {
	f := FoodSource{Type: Apple}
	for i := 0; i < 5; i++ {
		f.Grow()
	}
	if f.Stock != MaxFoodStock {
		t.Errorf("stock = %d, want %d", f.Stock, MaxFoodStock)
	}
	for i := 0; i < 5; i++ {
		f.Harvest()
	}
	if f.Stock != 0 {
		t.Errorf("stock = %d, want 0", f.Stock)
	}
}

func TestBehaviourTransitions(t *testing.T) {
	var b Behaviour
	if !b.Alive() || b.State != StateIdle {
		t.Fatal("zero behaviour should be idle and alive")
	}

	b.MoveTo(grid.Coords{X: 3, Y: 4})
	if !b.MovingTo() || b.Dest != (grid.Coords{X: 3, Y: 4}) {
		t.Errorf("MoveTo did not set destination: %+v", b)
	}

	b.Arrive()
	if b.State != StateForaging || b.MovingTo() {
		t.Errorf("Arrive: %+v", b)
	}

	b.Die(5, CauseStarvation)
	if b.Alive() || b.TTL != 5 || b.Cause != CauseStarvation {
		t.Errorf("Die: %+v", b)
	}
}

func TestMemoryBounded(t *testing.T) {
	m := Memory{Cap: 2}
	m.Remember(Site{At: grid.Coords{X: 1}})
	m.Remember(Site{At: grid.Coords{X: 2}})
	m.Remember(Site{At: grid.Coords{X: 1}, Type: Orange})
	m.Remember(Site{At: grid.Coords{X: 3}})

	if len(m.Sites) != 2 {
		t.Fatalf("len = %d, want 2", len(m.Sites))
	}
	if m.Sites[0].At.X != 1 || m.Sites[0].Type != Orange || m.Sites[1].At.X != 3 {
		t.Errorf("unexpected sites %+v", m.Sites)
	}

	m.Forget(grid.Coords{X: 1})
	if len(m.Sites) != 1 || m.Sites[0].At.X != 3 {
		t.Errorf("Forget: %+v", m.Sites)
	}
}
