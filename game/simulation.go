package game

import (
	"github.com/pthm-cable/homestead/systems"
	"github.com/pthm-cable/homestead/telemetry"
)

// Step advances the settlement by one tick. Phases run in a fixed order and
// each has a single writer; only decision scoring may run on the worker pool.
//
// Step panics when validation is enabled and a consistency check fails.
func (g *Game) Step() {
	perf := g.perfCollector
	perf.StartTick()

	perf.StartPhase(telemetry.PhaseSeason)
	g.env.Tick = g.clock.Advance()

	perf.StartPhase(telemetry.PhaseGrowth)
	g.growth.Update(g.env)

	perf.StartPhase(telemetry.PhaseDecide)
	g.decide()

	perf.StartPhase(telemetry.PhaseAct)
	acted := g.actions.Apply(g.env, g.parallel.snapshots, g.parallel.decisions)
	if g.cfg.Validation.Enabled {
		mustHold(g.invariants.Occupancy(g.env))
	}

	perf.StartPhase(telemetry.PhaseInteractions)
	g.interactionBuf = g.interactions.Detect(g.env, g.interactionBuf)
	if g.cfg.Validation.Enabled {
		mustHold(systems.CheckInteractions(g.interactionBuf, g.env.Tick))
	}

	perf.StartPhase(telemetry.PhaseBreeding)
	births := g.breeding.Update(g.env, g.interactionBuf)

	perf.StartPhase(telemetry.PhaseTrade)
	g.trades = g.trade.Update(g.env, g.interactionBuf)
	g.interactionBuf = g.interactionBuf[:0]

	perf.StartPhase(telemetry.PhaseLifecycle)
	life := g.lifecycle.Update(g.env)

	perf.StartPhase(telemetry.PhaseValidate)
	if g.cfg.Validation.Enabled {
		mustHold(g.invariants.Occupancy(g.env))
		mustHold(g.invariants.IndexSize(g.env))
	}

	perf.StartPhase(telemetry.PhaseTelemetry)
	g.recordActions(acted)
	g.recordBirths(births)
	g.recordTrades(g.trades)
	g.recordLifecycle(life)
	g.recordTick(len(births), len(acted.Starved)+len(life.Deaths))

	perf.EndTick()
}

// Run steps the game n times.
func (g *Game) Run(n int) {
	for i := 0; i < n; i++ {
		g.Step()
	}
}

// decide snapshots every living person and the trees, then scores needs.
func (g *Game) decide() {
	clear(g.foodSites)
	trees := g.treeFilter.Query()
	for trees.Next() {
		pos, src := trees.Get()
		g.foodSites[g.env.Geom.Real(pos.Coords())] = *src
	}

	p := g.parallel
	p.snapshots = p.snapshots[:0]
	query := g.personFilter.Query()
	for query.Next() {
		pos, _, hunger, stock, beh := query.Get()
		if !beh.Alive() {
			continue
		}
		e := query.Entity()

		snap := systems.AgentSnapshot{
			Entity:    e,
			Pos:       pos.Coords(),
			Hunger:    *hunger,
			Stock:     *stock,
			Behaviour: *beh,
		}
		if g.memoryMap.Has(e) {
			snap.Memory = g.memoryMap.Get(e).Sites
		}
		p.snapshots = append(p.snapshots, snap)
	}

	p.score(g.decider)
}

// mustHold panics on a consistency violation.
func mustHold(err error) {
	if err != nil {
		panic(err)
	}
}
