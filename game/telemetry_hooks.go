package game

import (
	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/systems"
	"github.com/pthm-cable/homestead/telemetry"
)

// census is a cheap per-tick count of people and food.
type census struct {
	living, dead            int
	treeApples, treeOranges int
	heldApples, heldOranges int
}

func (g *Game) census() census {
	var c census

	trees := g.treeFilter.Query()
	for trees.Next() {
		_, src := trees.Get()
		if src.Type == components.Apple {
			c.treeApples += src.Stock
		} else {
			c.treeOranges += src.Stock
		}
	}

	query := g.personFilter.Query()
	for query.Next() {
		_, _, _, stock, beh := query.Get()
		if !beh.Alive() {
			c.dead++
			continue
		}
		c.living++
		c.heldApples += stock.Apples
		c.heldOranges += stock.Oranges
	}

	return c
}

// recordTick appends the history row for this tick and flushes the stats
// window when it is due.
func (g *Game) recordTick(births, deaths int) {
	c := g.census()
	volume := 0
	for _, tr := range g.trades {
		volume += tr.Apples + tr.Oranges
	}

	row := telemetry.TickStats{
		Tick:        g.env.Tick,
		TreeApples:  c.treeApples,
		TreeOranges: c.treeOranges,
		HeldApples:  c.heldApples,
		HeldOranges: c.heldOranges,
		Population:  c.living,
		DeadPending: c.dead,
		Births:      births,
		Deaths:      deaths,
		Trades:      len(g.trades),
		TradeVolume: volume,
	}
	g.history.Append(row, g.trades)

	if g.tickCallback != nil {
		g.tickCallback(row, g.trades)
	}

	g.flushTelemetry()
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	tick := g.env.Tick
	if !g.collector.ShouldFlush(tick) {
		return
	}

	stats := g.collector.Flush(tick, g.sample())
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats, perfStats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if g.bookmarkCallback != nil {
			g.bookmarkCallback(bm)
		}
	}
}

// sample collects the end-of-window state of the settlement.
func (g *Game) sample() telemetry.Sample {
	var s telemetry.Sample

	trees := g.treeFilter.Query()
	for trees.Next() {
		_, src := trees.Get()
		if src.Type == components.Apple {
			s.TreeApples += src.Stock
		} else {
			s.TreeOranges += src.Stock
		}
	}

	query := g.personFilter.Query()
	for query.Next() {
		_, person, hunger, stock, beh := query.Get()
		if !beh.Alive() {
			s.DeadPending++
			continue
		}

		s.Population++
		if person.Sex == components.Male {
			s.Males++
		} else {
			s.Females++
		}
		if person.Fertile {
			s.Fertile++
		}
		s.HeldApples += stock.Apples
		s.HeldOranges += stock.Oranges

		s.Ages = append(s.Ages, float64(person.Age))
		s.Wealth = append(s.Wealth, float64(stock.Total()))
		s.Utilities = append(s.Utilities, systems.Utility(*stock))
		s.Hunger = append(s.Hunger, float64(max(hunger.Apples, hunger.Oranges)))
	}

	return s
}
