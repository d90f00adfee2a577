package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, def[i], back[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	if len(got) != pv.Dim() {
		t.Fatalf("extracted %d values, want %d", len(got), pv.Dim())
	}
	for i, spec := range pv.Specs {
		if math.Abs(got[i]-spec.Default) > 1e-6 {
			t.Errorf("%s: config default %v, param default %v", spec.Path, got[i], spec.Default)
		}
	}
}

func TestApplyToConfigClampsAndRounds(t *testing.T) {
	pv := NewParamVector()
	values := pv.DefaultVector()
	values[0] = 5   // tree_density above max
	values[4] = 2.6 // food_for_baby rounds
	values[10] = -3 // vision_range below min

	cfg := config.Default()
	pv.ApplyToConfig(cfg, values)

	if cfg.World.TreeDensity != pv.Specs[0].Max {
		t.Errorf("tree_density = %v, want %v", cfg.World.TreeDensity, pv.Specs[0].Max)
	}
	if cfg.Game.FoodForBaby != 3 {
		t.Errorf("food_for_baby = %d, want 3", cfg.Game.FoodForBaby)
	}
	if cfg.AI.VisionRange != 2 {
		t.Errorf("vision_range = %d, want 2", cfg.AI.VisionRange)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("clamped config invalid: %v", err)
	}
}

func TestComputeQuality(t *testing.T) {
	if q := computeQuality(nil); q != 0 {
		t.Errorf("quality of no windows = %v, want 0", q)
	}

	steady := make([]telemetry.WindowStats, 10)
	for i := range steady {
		steady[i] = telemetry.WindowStats{
			Population: 40,
			Trades:     40,
			HungerMean: 0.1,
			WealthMean: 8,
			WealthStd:  1,
		}
	}
	swinging := make([]telemetry.WindowStats, 10)
	copy(swinging, steady)
	for i := range swinging {
		if i%2 == 0 {
			swinging[i].Population = 5
		}
		swinging[i].Trades = 0
	}

	qs, qw := computeQuality(steady), computeQuality(swinging)
	if qs <= qw {
		t.Errorf("steady quality %v not above swinging %v", qs, qw)
	}
	if qs < 0 || qs > 1 {
		t.Errorf("quality %v outside [0, 1]", qs)
	}
}

func TestEvaluateShortRun(t *testing.T) {
	cfg := config.Default()
	cfg.World.Width = 16
	cfg.World.Height = 16
	cfg.Game.StartingPeople = 12
	cfg.Telemetry.StatsWindow = 20
	cfg.ComputeDerived()

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 60, []int64{1, 2}, cfg)
	fitness := fe.Evaluate(pv.DefaultVector())

	if fitness > 0 || fitness < -60*1.2 {
		t.Errorf("fitness = %v, want within [-72, 0]", fitness)
	}
	if fe.BestHallOfFame() == nil {
		t.Error("best hall of fame not recorded")
	}
}
