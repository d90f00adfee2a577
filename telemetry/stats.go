package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick uint64 `csv:"-"`
	WindowEndTick   uint64 `csv:"window_end"`

	// Population at window end
	Population  int `csv:"population"`
	DeadPending int `csv:"dead_pending"`
	Males       int `csv:"males"`
	Females     int `csv:"females"`
	Fertile     int `csv:"fertile"`

	// Events during window
	Births    int `csv:"births"`
	Starved   int `csv:"starved"`
	DiedOfAge int `csv:"died_of_age"`
	Despawned int `csv:"despawned"`

	// Economy
	Trades        int `csv:"trades"`
	TradedApples  int `csv:"traded_apples"`
	TradedOranges int `csv:"traded_oranges"`

	// Food
	HarvestedApples  int `csv:"harvested_apples"`
	HarvestedOranges int `csv:"harvested_oranges"`
	TreeApples       int `csv:"tree_apples"`
	TreeOranges      int `csv:"tree_oranges"`
	HeldApples       int `csv:"held_apples"`
	HeldOranges      int `csv:"held_oranges"`

	// Age distribution (ticks, sampled at window end)
	AgeMean float64 `csv:"age_mean"`
	AgeP10  float64 `csv:"age_p10"`
	AgeP50  float64 `csv:"age_p50"`
	AgeP90  float64 `csv:"age_p90"`

	// Wealth distribution (food held per person)
	WealthMean float64 `csv:"wealth_mean"`
	WealthStd  float64 `csv:"wealth_std"`
	WealthP10  float64 `csv:"wealth_p10"`
	WealthP50  float64 `csv:"wealth_p50"`
	WealthP90  float64 `csv:"wealth_p90"`

	UtilityMean float64 `csv:"utility_mean"`
	HungerMean  float64 `csv:"hunger_mean"`
}

// Deaths returns all deaths in the window.
func (s WindowStats) Deaths() int {
	return s.Starved + s.DiedOfAge
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// finiteOnly returns the finite values of values in a new slice.
func finiteOnly(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// ComputeDistribution calculates mean and percentiles, ignoring non-finite values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	sorted := finiteOnly(values)
	if len(sorted) == 0 {
		return 0, 0, 0, 0
	}
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// MeanStd calculates the mean and sample standard deviation, ignoring
// non-finite values. The deviation of fewer than two values is 0.
func MeanStd(values []float64) (mean, std float64) {
	clean := finiteOnly(values)
	switch len(clean) {
	case 0:
		return 0, 0
	case 1:
		return clean[0], 0
	}
	return stat.MeanStdDev(clean, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Int("population", s.Population),
		slog.Int("dead_pending", s.DeadPending),
		slog.Int("fertile", s.Fertile),
		slog.Int("births", s.Births),
		slog.Int("starved", s.Starved),
		slog.Int("died_of_age", s.DiedOfAge),
		slog.Int("trades", s.Trades),
		slog.Int("harvested_apples", s.HarvestedApples),
		slog.Int("harvested_oranges", s.HarvestedOranges),
		slog.Int("tree_apples", s.TreeApples),
		slog.Int("tree_oranges", s.TreeOranges),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("wealth_mean", s.WealthMean),
		slog.Float64("wealth_std", s.WealthStd),
		slog.Float64("utility_mean", s.UtilityMean),
		slog.Float64("hunger_mean", s.HungerMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"population", s.Population,
		"dead_pending", s.DeadPending,
		"males", s.Males,
		"females", s.Females,
		"fertile", s.Fertile,
		"births", s.Births,
		"starved", s.Starved,
		"died_of_age", s.DiedOfAge,
		"despawned", s.Despawned,
		"trades", s.Trades,
		"traded_apples", s.TradedApples,
		"traded_oranges", s.TradedOranges,
		"harvested_apples", s.HarvestedApples,
		"harvested_oranges", s.HarvestedOranges,
		"tree_apples", s.TreeApples,
		"tree_oranges", s.TreeOranges,
		"held_apples", s.HeldApples,
		"held_oranges", s.HeldOranges,
		"age_p50", s.AgeP50,
		"wealth_mean", s.WealthMean,
		"wealth_p10", s.WealthP10,
		"wealth_p90", s.WealthP90,
		"utility_mean", s.UtilityMean,
		"hunger_mean", s.HungerMean,
	)
}
