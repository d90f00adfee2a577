package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/homestead/components"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
	mean, p10, p50, p90 := ComputeDistribution(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
	// input left unsorted
	if values[0] != 1.0 {
		t.Error("ComputeDistribution modified its input")
	}
}

func TestComputeDistributionIgnoresNonFinite(t *testing.T) {
	mean, _, p50, _ := ComputeDistribution([]float64{math.NaN(), 2, math.Inf(1), 4})
	if mean != 3 || p50 != 3 {
		t.Errorf("mean=%v p50=%v, want 3", mean, p50)
	}

	mean, p10, p50, p90 := ComputeDistribution([]float64{})
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestMeanStd(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		mean     float64
		std      float64
		tolerant bool
	}{
		{"empty", nil, 0, 0, false},
		{"single", []float64{7}, 7, 0, false},
		{"pair", []float64{2, 4}, 3, math.Sqrt2, true},
		{"non-finite dropped", []float64{2, math.NaN(), 4}, 3, math.Sqrt2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std := MeanStd(tt.values)
			if math.Abs(mean-tt.mean) > 1e-9 || math.Abs(std-tt.std) > 1e-9 {
				t.Errorf("MeanStd() = %v, %v, want %v, %v", mean, std, tt.mean, tt.std)
			}
		})
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(10)
	if c.ShouldFlush(9) {
		t.Error("flush before window end")
	}
	if !c.ShouldFlush(10) {
		t.Error("no flush at window end")
	}

	c.Record(NewBirthEvent(3, 9, 1, 2))
	c.Record(NewDeathEvent(4, 5, components.CauseStarvation, 100))
	c.Record(NewDeathEvent(4, 6, components.CauseOldAge, 2400))
	c.Record(NewTradeEvent(5, 1, 2, 4, 3))
	c.Record(NewHarvestEvent(6, 1, components.Orange))
	c.Record(NewHarvestEvent(6, 2, components.Apple))
	c.Record(NewHarvestEvent(7, 2, components.Apple))

	stats := c.Flush(10, Sample{Population: 3, Wealth: []float64{1, 2, 3}})
	if stats.Births != 1 || stats.Starved != 1 || stats.DiedOfAge != 1 || stats.Deaths() != 2 {
		t.Errorf("births/deaths = %d/%d/%d", stats.Births, stats.Starved, stats.DiedOfAge)
	}
	if stats.Trades != 1 || stats.TradedApples != 4 || stats.TradedOranges != 3 {
		t.Errorf("trades = %d (%d/%d)", stats.Trades, stats.TradedApples, stats.TradedOranges)
	}
	if stats.HarvestedApples != 2 || stats.HarvestedOranges != 1 {
		t.Errorf("harvested = %d/%d", stats.HarvestedApples, stats.HarvestedOranges)
	}
	if stats.WealthMean != 2 || stats.WindowStartTick != 0 || stats.WindowEndTick != 10 {
		t.Errorf("stats = %+v", stats)
	}

	next := c.Flush(20, Sample{})
	if next.Births != 0 || next.Trades != 0 || next.WindowStartTick != 10 {
		t.Errorf("counters not reset: %+v", next)
	}
}
