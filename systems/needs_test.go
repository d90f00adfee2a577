package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/grid"
)

func TestDecideWinningNeed(t *testing.T) {
	full := components.Stock{Apples: 20, Oranges: 20}
	tests := []struct {
		name   string
		hunger components.Hunger
		stock  components.Stock
		moving bool
		want   components.Need
	}{
		{"hungry beats everything", components.Hunger{Oranges: 1.01}, components.Stock{}, true, components.NeedHunger},
		{"hunger at exactly one is not hungry", components.Hunger{Apples: 1}, full, false, components.NeedNone},
		{"empty larder seeks food", components.Hunger{}, components.Stock{}, false, components.NeedSeekFood},
		{"walking continues as explore", components.Hunger{}, components.Stock{}, true, components.NeedExplore},
		{"well stocked idles", components.Hunger{}, full, false, components.NeedNone},
		{"half stocked idles", components.Hunger{}, components.Stock{Apples: 6, Oranges: 6}, false, components.NeedNone},
		{"one type short seeks food", components.Hunger{}, components.Stock{Apples: 20, Oranges: 1}, false, components.NeedSeekFood},
	}

	cfg := config.Default()
	cfg.ComputeDerived()
	d := NewDecider(cfg, cfg.Derived.Geometry, FoodSites{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := AgentSnapshot{Hunger: tt.hunger, Stock: tt.stock}
			if tt.moving {
				s.Behaviour.MoveTo(grid.Coords{X: 3})
			}
			if got := d.Decide(&s).Need; got != tt.want {
				t.Errorf("Decide() need = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeekFoodScore(t *testing.T) {
	cfg := config.Default()
	cfg.AI.FoodAmountGoal = 10
	cfg.AI.FoodAmountThreshold = 0.3
	cfg.ComputeDerived()
	d := NewDecider(cfg, cfg.Derived.Geometry, nil)

	tests := []struct {
		stock components.Stock
		want  float64
	}{
		{components.Stock{}, 1},
		{components.Stock{Apples: 5, Oranges: 10}, 0.8},
		{components.Stock{Apples: 10, Oranges: 10}, 0.3},
		{components.Stock{Apples: 30, Oranges: 30}, 0},
	}
	for _, tt := range tests {
		s := AgentSnapshot{Stock: tt.stock}
		if got := scoreSeekFood(d, &s); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("score(%+v) = %v, want %v", tt.stock, got, tt.want)
		}
	}
}

func TestPlanPicksBestSite(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.World.Width = 20
		c.World.Height = 20
	})
	f.addTree(8, 5, components.Apple, 3)  // east, distance 3
	f.addTree(5, 3, components.Orange, 1) // north, distance 2
	f.addTree(9, 9, components.Apple, 3)  // off every ray
	p := f.addPerson(5, 5, components.Male, components.Stock{})

	d := NewDecider(f.env.Cfg, f.env.Geom, f.foodSites())
	s := f.snapshot(p)
	dec := d.Decide(&s)
	if dec.Need != components.NeedSeekFood || !dec.HasDest {
		t.Fatalf("decision = %+v", dec)
	}
	if dec.Dest != (grid.Coords{X: 8, Y: 5}) {
		t.Errorf("dest = %v, want (8,5)", dec.Dest)
	}
}

func TestPlanPrefersScarceType(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.World.Width = 20
		c.World.Height = 20
	})
	f.addTree(6, 5, components.Apple, 3)  // distance 1
	f.addTree(3, 5, components.Orange, 2) // distance 2
	p := f.addPerson(5, 5, components.Female, components.Stock{Apples: 10})

	d := NewDecider(f.env.Cfg, f.env.Geom, f.foodSites())
	s := f.snapshot(p)
	dec := d.Decide(&s)
	if dec.Dest != (grid.Coords{X: 3, Y: 5}) {
		t.Errorf("dest = %v, want the orange tree at (3,5)", dec.Dest)
	}
	if got := d.Preference(components.Apple, s.Stock); got != 1 {
		t.Errorf("apple preference = %v, want 1", got)
	}
	if got := d.Preference(components.Orange, s.Stock); got != 2 {
		t.Errorf("orange preference = %v, want 2", got)
	}
}

func TestPlanRespectsVisionRange(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.World.Width = 30
		c.World.Height = 30
		c.AI.VisionRange = 3
	})
	f.addTree(10, 5, components.Apple, 3)
	p := f.addPerson(5, 5, components.Male, components.Stock{})

	d := NewDecider(f.env.Cfg, f.env.Geom, f.foodSites())
	s := f.snapshot(p)
	dec := d.Decide(&s)
	if dec.Need != components.NeedSeekFood {
		t.Fatalf("need = %v", dec.Need)
	}
	if dec.HasDest {
		t.Errorf("tree out of range was planned: %v", dec.Dest)
	}
}

func TestPlanStopsAtBoundedEdge(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.World.Topology = grid.Bounded
		c.AI.RememberSites = true
	})
	f.addTree(0, 1, components.Apple, 1)
	p := f.addPerson(1, 1, components.Male, components.Stock{})

	d := NewDecider(f.env.Cfg, f.env.Geom, f.foodSites())
	s := f.snapshot(p)
	dec := d.Decide(&s)
	if len(dec.Seen) != 1 {
		t.Errorf("seen %d sites, want 1: the ray must stop at the edge", len(dec.Seen))
	}
	if dec.Dest != (grid.Coords{X: 0, Y: 1}) {
		t.Errorf("dest = %v", dec.Dest)
	}
}

func TestPlanFallsBackToMemory(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.World.Width = 40
		c.World.Height = 40
		c.AI.RememberSites = true
		c.AI.VisionRange = 2
	})
	p := f.addPerson(5, 5, components.Male, components.Stock{})

	d := NewDecider(f.env.Cfg, f.env.Geom, f.foodSites())
	s := f.snapshot(p)
	s.Memory = []components.Site{
		{At: grid.Coords{X: 20, Y: 20}, Type: components.Apple},
		{At: grid.Coords{X: 7, Y: 6}, Type: components.Orange},
	}
	dec := d.Decide(&s)
	if !dec.HasDest || dec.Dest != (grid.Coords{X: 7, Y: 6}) {
		t.Errorf("decision = %+v, want the nearer remembered site", dec)
	}
}

func TestPlanRecordsSeenSites(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.AI.RememberSites = true })
	f.addTree(7, 5, components.Orange, 0)
	f.addTree(5, 7, components.Apple, 2)
	p := f.addPerson(5, 5, components.Male, components.Stock{})

	d := NewDecider(f.env.Cfg, f.env.Geom, f.foodSites())
	s := f.snapshot(p)
	dec := d.Decide(&s)
	// each tree is seen again from the opposite ray on the 10x10 torus
	if len(dec.Seen) != 4 {
		t.Errorf("seen %d sites, want 4", len(dec.Seen))
	}
}

func TestCleanAndClamp(t *testing.T) {
	if clean(math.NaN()) != 0 || clean(math.Inf(1)) != 0 || clean(0.5) != 0.5 {
		t.Error("clean mishandles values")
	}
	if clamp01(-1) != 0 || clamp01(2) != 1 || clamp01(0.25) != 0.25 {
		t.Error("clamp01 mishandles values")
	}
}
