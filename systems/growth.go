package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
)

// GrowthSystem grows fruit on trees whose row is in season.
type GrowthSystem struct {
	filter ecs.Filter2[components.Position, components.FoodSource]
}

// NewGrowthSystem creates a new growth system.
func NewGrowthSystem(w *ecs.World) *GrowthSystem {
	return &GrowthSystem{
		filter: *ecs.NewFilter2[components.Position, components.FoodSource](w),
	}
}

// Update draws once per tree and grows it by one unit when the draw is below
// the growth rate, the tree is below capacity and its row is in season.
// Returns the number of units grown.
func (s *GrowthSystem) Update(env *Env) int {
	cfg := env.Cfg
	season := SeasonAt(env.Tick, env.Geom.Height, cfg.Game.YearLength, cfg.Game.GrowingSeasonLength)
	rate := cfg.Derived.GrowthThreshold

	grown := 0
	query := s.filter.Query()
	for query.Next() {
		pos, src := query.Get()
		draw := env.Rng.Float64()
		if draw >= rate || src.Stock >= components.MaxFoodStock {
			continue
		}
		if !season.Contains(env.Geom.Real(pos.Coords()).Y) {
			continue
		}
		if src.Grow() {
			grown++
		}
	}
	return grown
}
