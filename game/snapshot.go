package game

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/grid"
	"github.com/pthm-cable/homestead/systems"
	"github.com/pthm-cable/homestead/telemetry"
)

// Snapshot builds a snapshot of the current state. bookmark may be nil.
func (g *Game) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Seed:     g.seed,
		Width:    g.env.Geom.Width,
		Height:   g.env.Geom.Height,
		Topology: g.env.Geom.Topology,
		Tick:     g.clock.Tick(),
		NextID:   g.env.IDs.Last(),
		Bookmark: bookmark,
		Lifetime: make(map[uint32]*telemetry.LifetimeStats, g.lifetimeTracker.Count()),
	}
	for id, ls := range g.lifetimeTracker.All() {
		cp := *ls
		snapshot.Lifetime[id] = &cp
	}

	trees := g.treeFilter.Query()
	for trees.Next() {
		pos, src := trees.Get()
		snapshot.Trees = append(snapshot.Trees, telemetry.TreeState{
			X:     pos.X,
			Y:     pos.Y,
			Type:  src.Type,
			Stock: src.Stock,
		})
	}

	query := g.personFilter.Query()
	for query.Next() {
		pos, person, hunger, stock, beh := query.Get()
		state := telemetry.PersonState{
			ID:            person.ID,
			Sex:           person.Sex,
			Age:           person.Age,
			BirthTick:     person.BirthTick,
			FatherID:      person.FatherID,
			MotherID:      person.MotherID,
			X:             pos.X,
			Y:             pos.Y,
			HungerApples:  hunger.Apples,
			HungerOranges: hunger.Oranges,
			Apples:        stock.Apples,
			Oranges:       stock.Oranges,
			State:         beh.State,
			Dest:          beh.Dest,
			TTL:           beh.TTL,
			Cause:         beh.Cause,
			LastNeed:      beh.LastNeed,
		}
		if e := query.Entity(); g.memoryMap.Has(e) {
			state.Memory = append([]components.Site(nil), g.memoryMap.Get(e).Sites...)
		}
		snapshot.People = append(snapshot.People, state)
	}

	return snapshot
}

// Restore creates a game from a snapshot. The snapshot's world shape
// overrides the configured one. The RNG is reseeded with seed + tick, so
// two restores of the same snapshot evolve identically.
func Restore(snapshot *telemetry.Snapshot, opts Options) (*Game, error) {
	if snapshot.Version != telemetry.SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, telemetry.SnapshotVersion)
	}

	base := opts.Config
	if base == nil {
		base = config.Cfg()
	}
	cfg := base.Clone()
	cfg.World.Width = snapshot.Width
	cfg.World.Height = snapshot.Height
	cfg.World.Topology = snapshot.Topology
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot world: %w", err)
	}
	cfg.ComputeDerived()

	opts.Config = cfg
	opts.Seed = snapshot.Seed
	g := newGame(opts)

	g.rng = rand.New(rand.NewSource(snapshot.Seed + int64(snapshot.Tick)))
	g.env.Rng = g.rng
	g.clock.Set(snapshot.Tick)
	g.env.Tick = snapshot.Tick
	g.env.IDs = systems.NewIDAllocator(snapshot.NextID)
	g.collector.SetWindowStart(snapshot.Tick)

	for _, t := range snapshot.Trees {
		cell := g.env.Geom.Real(grid.Coords{X: t.X, Y: t.Y})
		if g.env.Food.Occupied(cell) {
			g.Close()
			return nil, fmt.Errorf("two trees at %v", cell)
		}
		if t.Stock < 0 || t.Stock > components.MaxFoodStock {
			g.Close()
			return nil, fmt.Errorf("tree at %v has stock %d", cell, t.Stock)
		}
		g.plantTree(cell, t.Type, t.Stock)
	}

	for i := range snapshot.People {
		if err := g.restorePerson(&snapshot.People[i]); err != nil {
			g.Close()
			return nil, err
		}
	}

	g.lifetimeTracker.Restore(snapshot.Lifetime)
	for _, p := range snapshot.People {
		if g.lifetimeTracker.Get(p.ID) == nil {
			g.lifetimeTracker.Register(p.ID, p.BirthTick, p.FatherID, p.MotherID)
		}
	}

	return g, nil
}

// restorePerson recreates one person at its saved virtual position.
func (g *Game) restorePerson(p *telemetry.PersonState) error {
	at := grid.Coords{X: p.X, Y: p.Y}
	cell := g.env.Geom.Real(at)
	if g.env.People.Occupied(cell) {
		return fmt.Errorf("person %d: two people in one place at %v", p.ID, cell)
	}
	if p.ID > g.env.IDs.Last() {
		return fmt.Errorf("person %d: id beyond next id %d", p.ID, g.env.IDs.Last())
	}

	pos := components.PositionAt(at)
	person := components.Person{
		ID:        p.ID,
		Sex:       p.Sex,
		Age:       p.Age,
		BirthTick: p.BirthTick,
		FatherID:  p.FatherID,
		MotherID:  p.MotherID,
	}
	hunger := components.Hunger{Apples: p.HungerApples, Oranges: p.HungerOranges}
	stock := components.Stock{Apples: p.Apples, Oranges: p.Oranges}
	beh := components.Behaviour{
		State:    p.State,
		Dest:     p.Dest,
		TTL:      p.TTL,
		Cause:    p.Cause,
		LastNeed: p.LastNeed,
	}
	if beh.Alive() {
		person.Fertile = g.fertile(person.Sex, person.Age)
	}

	e := g.personMapper.NewEntity(&pos, &person, &hunger, &stock, &beh)
	if g.cfg.AI.RememberSites {
		mem := components.Memory{Cap: g.cfg.AI.MemorySize}
		for _, site := range p.Memory {
			mem.Remember(site)
		}
		g.memoryMap.Add(e, &mem)
	}
	g.env.People.Insert(cell, e)
	return nil
}
