package telemetry

import (
	"log/slog"
	"sort"
	"time"
)

// Phase names for the simulation step. They match the system registry IDs.
const (
	PhaseSeason       = "season"
	PhaseGrowth       = "growth"
	PhaseDecide       = "decide"
	PhaseAct          = "act"
	PhaseInteractions = "interactions"
	PhaseBreeding     = "breeding"
	PhaseTrade        = "trade"
	PhaseLifecycle    = "lifecycle"
	PhaseValidate     = "validate"
	PhaseTelemetry    = "telemetry"
)

// Phases lists every phase in tick order.
var Phases = []string{
	PhaseSeason, PhaseGrowth, PhaseDecide, PhaseAct, PhaseInteractions,
	PhaseBreeding, PhaseTrade, PhaseLifecycle, PhaseValidate, PhaseTelemetry,
}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks kept in the rolling window.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// SampleCount returns the number of samples in the window.
func (p *PerfCollector) SampleCount() int {
	return p.sampleCount
}

// DurationSummary summarises a set of durations.
type DurationSummary struct {
	Min    time.Duration
	P5     time.Duration
	Median time.Duration
	P95    time.Duration
	Max    time.Duration
	Avg    time.Duration
}

func summarize(ds []time.Duration) DurationSummary {
	if len(ds) == 0 {
		return DurationSummary{}
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
	sorted := make([]float64, len(ds))
	var total time.Duration
	for i, d := range ds {
		sorted[i] = float64(d)
		total += d
	}
	return DurationSummary{
		Min:    ds[0],
		P5:     time.Duration(Percentile(sorted, 0.05)),
		Median: time.Duration(Percentile(sorted, 0.5)),
		P95:    time.Duration(Percentile(sorted, 0.95)),
		Max:    ds[len(ds)-1],
		Avg:    total / time.Duration(len(ds)),
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	Tick DurationSummary

	// Per-phase summaries
	Phase map[string]DurationSummary

	// Phase percentages of total tick time
	PhasePct map[string]float64

	TicksPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		Phase:    make(map[string]DurationSummary),
		PhasePct: make(map[string]float64),
	}
	if p.sampleCount == 0 {
		return stats
	}

	ticks := make([]time.Duration, 0, p.sampleCount)
	phases := make(map[string][]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		ticks = append(ticks, s.TickDuration)
		for phase, dur := range s.Phases {
			phases[phase] = append(phases[phase], dur)
		}
	}

	stats.Tick = summarize(ticks)
	for phase, ds := range phases {
		sum := summarize(ds)
		// phases missing from some ticks count as zero there
		var total time.Duration
		for _, d := range ds {
			total += d
		}
		sum.Avg = total / time.Duration(p.sampleCount)
		stats.Phase[phase] = sum
		if stats.Tick.Avg > 0 {
			stats.PhasePct[phase] = float64(sum.Avg) / float64(stats.Tick.Avg) * 100
		}
	}
	if stats.Tick.Avg > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(stats.Tick.Avg)
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.Tick.Avg.Microseconds(),
		"min_tick_us", s.Tick.Min.Microseconds(),
		"p95_tick_us", s.Tick.P95.Microseconds(),
		"max_tick_us", s.Tick.Max.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.Tick.Avg.Microseconds()),
		slog.Int64("min_tick_us", s.Tick.Min.Microseconds()),
		slog.Int64("median_tick_us", s.Tick.Median.Microseconds()),
		slog.Int64("max_tick_us", s.Tick.Max.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd       uint64  `csv:"window_end"`
	AvgTickUS       int64   `csv:"avg_tick_us"`
	MinTickUS       int64   `csv:"min_tick_us"`
	P5TickUS        int64   `csv:"p5_tick_us"`
	MedianTickUS    int64   `csv:"median_tick_us"`
	P95TickUS       int64   `csv:"p95_tick_us"`
	MaxTickUS       int64   `csv:"max_tick_us"`
	TicksPerSec     float64 `csv:"ticks_per_sec"`
	SeasonPct       float64 `csv:"season_pct"`
	GrowthPct       float64 `csv:"growth_pct"`
	DecidePct       float64 `csv:"decide_pct"`
	ActPct          float64 `csv:"act_pct"`
	InteractionsPct float64 `csv:"interactions_pct"`
	BreedingPct     float64 `csv:"breeding_pct"`
	TradePct        float64 `csv:"trade_pct"`
	LifecyclePct    float64 `csv:"lifecycle_pct"`
	ValidatePct     float64 `csv:"validate_pct"`
	TelemetryPct    float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		AvgTickUS:       s.Tick.Avg.Microseconds(),
		MinTickUS:       s.Tick.Min.Microseconds(),
		P5TickUS:        s.Tick.P5.Microseconds(),
		MedianTickUS:    s.Tick.Median.Microseconds(),
		P95TickUS:       s.Tick.P95.Microseconds(),
		MaxTickUS:       s.Tick.Max.Microseconds(),
		TicksPerSec:     s.TicksPerSecond,
		SeasonPct:       s.PhasePct[PhaseSeason],
		GrowthPct:       s.PhasePct[PhaseGrowth],
		DecidePct:       s.PhasePct[PhaseDecide],
		ActPct:          s.PhasePct[PhaseAct],
		InteractionsPct: s.PhasePct[PhaseInteractions],
		BreedingPct:     s.PhasePct[PhaseBreeding],
		TradePct:        s.PhasePct[PhaseTrade],
		LifecyclePct:    s.PhasePct[PhaseLifecycle],
		ValidatePct:     s.PhasePct[PhaseValidate],
		TelemetryPct:    s.PhasePct[PhaseTelemetry],
	}
}
