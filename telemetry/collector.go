package telemetry

import "github.com/pthm-cable/homestead/components"

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks uint64

	// Current window tracking
	windowStartTick uint64

	// Event counters for current window
	births           int
	starved          int
	diedOfAge        int
	despawned        int
	trades           int
	tradedApples     int
	tradedOranges    int
	harvestedApples  int
	harvestedOranges int
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window lasts
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: uint64(windowTicks)}
}

// Record counts an event in the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventBirth:
		c.births++
	case EventDeath:
		if ev.Cause == components.CauseOldAge {
			c.diedOfAge++
		} else {
			c.starved++
		}
	case EventDespawn:
		c.despawned++
	case EventTrade:
		c.trades++
		c.tradedApples += ev.Apples
		c.tradedOranges += ev.Oranges
	case EventHarvest:
		if ev.Food == components.Apple {
			c.harvestedApples++
		} else {
			c.harvestedOranges++
		}
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick uint64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Sample is the state of the settlement sampled at the end of a window.
type Sample struct {
	Population  int // living
	DeadPending int
	Males       int
	Females     int
	Fertile     int

	TreeApples  int
	TreeOranges int
	HeldApples  int
	HeldOranges int

	// Per living person
	Ages      []float64
	Wealth    []float64 // apples + oranges held
	Utilities []float64
	Hunger    []float64 // max of the two hungers
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick uint64, s Sample) WindowStats {
	ageMean, ageP10, ageP50, ageP90 := ComputeDistribution(s.Ages)
	wealthMean, wealthStd := MeanStd(s.Wealth)
	_, wealthP10, wealthP50, wealthP90 := ComputeDistribution(s.Wealth)
	utilityMean, _ := MeanStd(s.Utilities)
	hungerMean, _ := MeanStd(s.Hunger)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Population:  s.Population,
		DeadPending: s.DeadPending,
		Males:       s.Males,
		Females:     s.Females,
		Fertile:     s.Fertile,

		Births:        c.births,
		Starved:       c.starved,
		DiedOfAge:     c.diedOfAge,
		Despawned:     c.despawned,
		Trades:        c.trades,
		TradedApples:  c.tradedApples,
		TradedOranges: c.tradedOranges,

		HarvestedApples:  c.harvestedApples,
		HarvestedOranges: c.harvestedOranges,
		TreeApples:       s.TreeApples,
		TreeOranges:      s.TreeOranges,
		HeldApples:       s.HeldApples,
		HeldOranges:      s.HeldOranges,

		AgeMean: ageMean,
		AgeP10:  ageP10,
		AgeP50:  ageP50,
		AgeP90:  ageP90,

		WealthMean: wealthMean,
		WealthStd:  wealthStd,
		WealthP10:  wealthP10,
		WealthP50:  wealthP50,
		WealthP90:  wealthP90,

		UtilityMean: utilityMean,
		HungerMean:  hungerMean,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.starved = 0
	c.diedOfAge = 0
	c.despawned = 0
	c.trades = 0
	c.tradedApples = 0
	c.tradedOranges = 0
	c.harvestedApples = 0
	c.harvestedOranges = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() uint64 {
	return c.windowTicks
}

// SetWindowStart realigns the window, e.g. after restoring a snapshot.
func (c *Collector) SetWindowStart(tick uint64) {
	c.windowStartTick = tick
}
