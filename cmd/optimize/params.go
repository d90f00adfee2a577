// Package main provides CMA-ES optimization for homestead simulation parameters.
package main

import (
	"math"

	"github.com/pthm-cable/homestead/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded before it is applied
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Orchard
			{Name: "tree_density", Path: "world.tree_density", Min: 0.02, Max: 0.25, Default: 0.08},
			{Name: "apple_ratio", Path: "world.apple_ratio", Min: 0.2, Max: 0.8, Default: 0.5},
			// Rules
			{Name: "growth", Path: "game.growth", Min: 0.01, Max: 0.3, Default: 0.05},
			{Name: "hunger_increase", Path: "game.hunger_increase", Min: 0.005, Max: 0.05, Default: 0.02},
			{Name: "food_for_baby", Path: "game.food_for_baby", Min: 1, Max: 8, Default: 3, Integer: true},
			// Fertility windows (min < max enforced by validation)
			{Name: "male_min", Path: "fertility.male_min", Min: 0.05, Max: 0.4, Default: 0.15},
			{Name: "male_max", Path: "fertility.male_max", Min: 0.5, Max: 0.95, Default: 0.85},
			{Name: "female_min", Path: "fertility.female_min", Min: 0.05, Max: 0.4, Default: 0.15},
			{Name: "female_max", Path: "fertility.female_max", Min: 0.45, Max: 0.8, Default: 0.55},
			// Decision engine
			{Name: "need_threshold", Path: "ai.need_threshold", Min: 0.3, Max: 1.0, Default: 0.8},
			{Name: "vision_range", Path: "ai.vision_range", Min: 2, Max: 16, Default: 8, Integer: true},
			{Name: "food_amount_goal", Path: "ai.food_amount_goal", Min: 4, Max: 30, Default: 10, Integer: true},
			{Name: "food_amount_threshold", Path: "ai.food_amount_threshold", Min: 0.05, Max: 0.9, Default: 0.3},
			{Name: "explore_score", Path: "ai.explore_score", Min: 0.05, Max: 0.9, Default: 0.3},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds and rounds integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Min(math.Max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct and recomputes
// derived values. The result may still fail validation.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	i := 0
	next := func() float64 {
		v := clamped[i]
		i++
		return v
	}

	cfg.World.TreeDensity = next()
	cfg.World.AppleRatio = next()

	cfg.Game.Growth = next()
	cfg.Game.HungerIncrease = float32(next())
	cfg.Game.FoodForBaby = int(next())

	cfg.Fertility.MaleMin = next()
	cfg.Fertility.MaleMax = next()
	cfg.Fertility.FemaleMin = next()
	cfg.Fertility.FemaleMax = next()

	cfg.AI.NeedThreshold = next()
	cfg.AI.VisionRange = int(next())
	cfg.AI.FoodAmountGoal = int(next())
	cfg.AI.FoodAmountThreshold = next()
	cfg.AI.ExploreScore = next()

	cfg.ComputeDerived()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.World.TreeDensity,
		cfg.World.AppleRatio,
		cfg.Game.Growth,
		float64(cfg.Game.HungerIncrease),
		float64(cfg.Game.FoodForBaby),
		cfg.Fertility.MaleMin,
		cfg.Fertility.MaleMax,
		cfg.Fertility.FemaleMin,
		cfg.Fertility.FemaleMax,
		cfg.AI.NeedThreshold,
		float64(cfg.AI.VisionRange),
		float64(cfg.AI.FoodAmountGoal),
		cfg.AI.FoodAmountThreshold,
		cfg.AI.ExploreScore,
	}
}
