package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/grid"
)

// fixture is a small hand-built world for system tests.
type fixture struct {
	t     *testing.T
	world *ecs.World
	env   *Env

	people *ecs.Map5[
		components.Position,
		components.Person,
		components.Hunger,
		components.Stock,
		components.Behaviour,
	]
	trees *ecs.Map2[components.Position, components.FoodSource]

	pos    *ecs.Map[components.Position]
	person *ecs.Map[components.Person]
	hunger *ecs.Map[components.Hunger]
	stock  *ecs.Map[components.Stock]
	beh    *ecs.Map[components.Behaviour]
	food   *ecs.Map[components.FoodSource]
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.World.Width = 10
	cfg.World.Height = 10
	cfg.Game.StartingPeople = 0
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	cfg.ComputeDerived()

	w := ecs.NewWorld()
	return &fixture{
		t:     t,
		world: w,
		env: &Env{
			Cfg:    cfg,
			Geom:   cfg.Derived.Geometry,
			People: grid.NewLookup(),
			Food:   grid.NewLookup(),
			Rng:    rand.New(rand.NewSource(7)),
			IDs:    NewIDAllocator(0),
			Tick:   1,
		},
		people: ecs.NewMap5[
			components.Position,
			components.Person,
			components.Hunger,
			components.Stock,
			components.Behaviour,
		](w),
		trees:  ecs.NewMap2[components.Position, components.FoodSource](w),
		pos:    ecs.NewMap[components.Position](w),
		person: ecs.NewMap[components.Person](w),
		hunger: ecs.NewMap[components.Hunger](w),
		stock:  ecs.NewMap[components.Stock](w),
		beh:    ecs.NewMap[components.Behaviour](w),
		food:   ecs.NewMap[components.FoodSource](w),
	}
}

// addPerson places a living person and indexes it.
func (f *fixture) addPerson(x, y int, sex components.Sex, stock components.Stock) ecs.Entity {
	f.t.Helper()
	cell := f.env.Geom.Real(grid.Coords{X: x, Y: y})
	if f.env.People.Occupied(cell) {
		f.t.Fatalf("cell %v already occupied", cell)
	}
	pos := components.Position{X: x, Y: y}
	person := components.Person{ID: f.env.IDs.Next(), Sex: sex}
	hunger := components.Hunger{}
	beh := components.Behaviour{}
	e := f.people.NewEntity(&pos, &person, &hunger, &stock, &beh)
	f.env.People.Insert(cell, e)
	return e
}

// addTree places a tree and indexes it.
func (f *fixture) addTree(x, y int, t components.FoodType, stock int) ecs.Entity {
	pos := components.Position{X: x, Y: y}
	src := components.FoodSource{Type: t, Stock: stock}
	e := f.trees.NewEntity(&pos, &src)
	f.env.Food.Insert(f.env.Geom.Real(grid.Coords{X: x, Y: y}), e)
	return e
}

// foodSites snapshots all trees.
func (f *fixture) foodSites() FoodSites {
	sites := make(FoodSites)
	f.env.Food.Each(func(c grid.Cell, e ecs.Entity) {
		sites[c] = *f.food.Get(e)
	})
	return sites
}

// snapshot builds the scoring view of a person.
func (f *fixture) snapshot(e ecs.Entity) AgentSnapshot {
	return AgentSnapshot{
		Entity:    e,
		Pos:       f.pos.Get(e).Coords(),
		Hunger:    *f.hunger.Get(e),
		Stock:     *f.stock.Get(e),
		Behaviour: *f.beh.Get(e),
	}
}

func (f *fixture) setFertile(es ...ecs.Entity) {
	for _, e := range es {
		f.person.Get(e).Fertile = true
	}
}
