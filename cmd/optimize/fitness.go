package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/game"
	"github.com/pthm-cable/homestead/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   uint64
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastQuality    float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks uint64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// A settlement below minViablePop for extinctionGraceTicks consecutive
// ticks counts as functionally extinct.
const (
	minViablePop         = 2
	extinctionGraceTicks = 360
	warmupTicks          = 50
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks uint64                  // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
	hallOfFame    *telemetry.HallOfFame
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	quality    float64
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks: longer survival = lower (better) fitness.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.configFor(x)
	if err := cfg.Validate(); err != nil {
		slog.Debug("rejected parameters", "error", err)
		fe.mu.Lock()
		fe.lastQuality = 0
		fe.mu.Unlock()
		return 0
	}

	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(cfg, s)
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness:    computeFitness(result.survivalTicks, quality),
				quality:    quality,
				hallOfFame: result.hallOfFame,
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// configFor returns a copy of the base config with x applied.
func (fe *FitnessEvaluator) configFor(x []float64) *config.Config {
	cfg := fe.baseConfig.Clone()
	cfg.Validation.Enabled = false
	fe.params.ApplyToConfig(cfg, x)
	return cfg
}

// runSimulation executes a single headless simulation run.
// Runs until functional extinction or maxTicks, whichever comes first.
// cfg is shared between seeds and only read.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{survivalTicks: fe.maxTicks}

	g := game.NewGameWithOptions(game.Options{
		Seed:   seed,
		Config: cfg,
		StatsCallback: func(stats telemetry.WindowStats, _ telemetry.PerfStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	defer g.Close()

	var belowTicks int
	for g.Tick() < fe.maxTicks {
		g.Step()

		tick := g.Tick()
		pop := g.Population()

		// Hard extinction
		if pop == 0 {
			result.survivalTicks = tick
			break
		}
		if tick < warmupTicks {
			continue
		}

		// Functional extinction: too few to breed for too long
		if pop < minViablePop {
			belowTicks++
		} else {
			belowTicks = 0
		}
		if belowTicks >= extinctionGraceTicks {
			result.survivalTicks = tick
			break
		}
	}

	result.hallOfFame = g.HallOfFame()
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality))
func computeFitness(survivalTicks uint64, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.35
	qualityWeightHunger    = 0.25
	qualityWeightTrade     = 0.20
	qualityWeightWealth    = 0.20

	qualityWarmupWindows = 2 // skip first N windows (warmup)
	qualityMinPop        = 4 // exclude windows below this population
)

// computeQuality computes settlement quality ∈ [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var hungerSum, tradeSum, wealthSum float64
	pops := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Population < qualityMinPop {
			continue
		}
		pops = append(pops, float64(w.Population))

		// Well-fed: mean hunger near zero scores 1
		hungerSum += math.Exp(-math.Pow(w.HungerMean/0.5, 2))

		// Trade participation: trades per head per window, saturating
		tradeSum += 1.0 - math.Exp(-float64(w.Trades)/float64(w.Population))

		// Equality: low wealth CV scores 1
		if w.WealthMean > 0 {
			cv := w.WealthStd / w.WealthMean
			wealthSum += math.Exp(-cv * cv)
		}
	}

	if len(pops) == 0 {
		return 0
	}
	n := float64(len(pops))

	stabilityScore := 0.0
	if len(pops) >= 2 {
		mean, std := telemetry.MeanStd(pops)
		if mean > 0 {
			cv := std / mean
			stabilityScore = math.Exp(-cv * cv)
		}
	}

	quality := qualityWeightStability*stabilityScore +
		qualityWeightHunger*hungerSum/n +
		qualityWeightTrade*tradeSum/n +
		qualityWeightWealth*wealthSum/n

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
