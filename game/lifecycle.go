package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/grid"
	"github.com/pthm-cable/homestead/systems"
	"github.com/pthm-cable/homestead/telemetry"
)

// spawnPerson creates a newborn at cell, registers it for lifetime tracking
// and indexes it.
func (g *Game) spawnPerson(cell grid.Cell, sex components.Sex, stock components.Stock) ecs.Entity {
	pos := components.PositionAt(cell.Coords())
	person := components.Person{
		ID:        g.env.IDs.Next(),
		Sex:       sex,
		BirthTick: g.clock.Tick(),
	}
	person.Fertile = g.fertile(person.Sex, person.Age)
	hunger := components.Hunger{}
	beh := components.Behaviour{}

	e := g.personMapper.NewEntity(&pos, &person, &hunger, &stock, &beh)
	if g.cfg.AI.RememberSites {
		g.memoryMap.Add(e, &components.Memory{Cap: g.cfg.AI.MemorySize})
	}
	g.env.People.Insert(cell, e)
	g.lifetimeTracker.Register(person.ID, person.BirthTick, 0, 0)
	return e
}

func (g *Game) fertile(sex components.Sex, age int) bool {
	return systems.Fertile(g.cfg.Fertility, g.cfg.Derived.FertilityRefAge, sex, age)
}

// record feeds one event to the window collector and the lifetime tracker.
func (g *Game) record(ev telemetry.Event) {
	g.collector.Record(ev)
	g.lifetimeTracker.Apply(ev)
}

// recordActions turns the commit phase outcome into events.
func (g *Game) recordActions(res systems.ActionResult) {
	tick := g.env.Tick
	for _, h := range res.Harvests {
		g.record(telemetry.NewHarvestEvent(tick, h.ID, h.Type))
	}
	for _, d := range res.Starved {
		g.record(telemetry.NewDeathEvent(tick, d.ID, d.Cause, d.Age))
		g.logDeath(d)
	}
}

// recordBirths registers children and credits their parents.
func (g *Game) recordBirths(births []systems.Birth) {
	for _, b := range births {
		g.record(telemetry.NewBirthEvent(g.env.Tick, b.ChildID, b.FatherID, b.MotherID))
		g.logBirth(b)
	}
}

// recordTrades credits both parties of every executed barter.
func (g *Game) recordTrades(trades []systems.TradeRecord) {
	for _, tr := range trades {
		g.record(telemetry.NewTradeEvent(tr.Tick, tr.From, tr.To, tr.Apples, tr.Oranges))
	}
}

// recordLifecycle handles old-age deaths and despawns. A despawned person's
// lifetime stats are finalised and offered to the hall of fame.
func (g *Game) recordLifecycle(res systems.LifecycleResult) {
	tick := g.env.Tick
	for _, d := range res.Deaths {
		g.record(telemetry.NewDeathEvent(tick, d.ID, d.Cause, d.Age))
		g.logDeath(d)
	}
	for _, d := range res.Despawned {
		g.record(telemetry.NewDespawnEvent(tick, d.ID, d.HeirID, d.Inherited))
		if stats := g.lifetimeTracker.Remove(d.ID); stats != nil {
			g.hallOfFame.Consider(d.ID, stats, tick)
		}
	}
}
