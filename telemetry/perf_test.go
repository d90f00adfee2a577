package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseDecide)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseAct)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.Tick.Avg <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.Phase[PhaseDecide]; !ok {
		t.Error("expected decide phase to be tracked")
	}
	if _, ok := stats.Phase[PhaseAct]; !ok {
		t.Error("expected act phase to be tracked")
	}
	if pc.SampleCount() != 5 {
		t.Errorf("SampleCount() = %d, want 5", pc.SampleCount())
	}
}

func TestPerfCollector_Summary(t *testing.T) {
	pc := NewPerfCollector(20)

	for i := 0; i < 20; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseGrowth)
		time.Sleep(time.Duration(i+1) * 50 * time.Microsecond)
		pc.EndTick()
	}

	s := pc.Stats().Tick
	if !(s.Min <= s.P5 && s.P5 <= s.Median && s.Median <= s.P95 && s.P95 <= s.Max) {
		t.Errorf("summary not ordered: %+v", s)
	}
	if s.Min < 50*time.Microsecond {
		t.Errorf("min = %v, want >= 50us", s.Min)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSeason)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if pc.SampleCount() != 5 {
		t.Errorf("SampleCount() = %d, want 5", pc.SampleCount())
	}
	if stats.Tick.Avg <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.Tick.Avg != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.Phase == nil {
		t.Error("expected non-nil Phase map")
	}
	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	stats := PerfStats{
		Tick:     DurationSummary{Avg: 2 * time.Millisecond},
		PhasePct: map[string]float64{PhaseTrade: 12.5, PhaseDecide: 40},
	}
	row := stats.ToCSV(300)
	if row.WindowEnd != 300 || row.AvgTickUS != 2000 {
		t.Errorf("row = %+v", row)
	}
	if row.TradePct != 12.5 || row.DecidePct != 40 || row.GrowthPct != 0 {
		t.Errorf("phase columns = %v/%v/%v", row.TradePct, row.DecidePct, row.GrowthPct)
	}
}
