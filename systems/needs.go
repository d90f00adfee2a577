package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/grid"
)

// AgentSnapshot is the read-only view of a person used during scoring.
type AgentSnapshot struct {
	Entity    ecs.Entity
	Pos       grid.Coords
	Hunger    components.Hunger
	Stock     components.Stock
	Behaviour components.Behaviour
	Memory    []components.Site
}

// Decision is the outcome of scoring one person.
type Decision struct {
	Need  components.Need
	Score float64

	// Planned destination for seek-food. HasDest is false when the scan
	// found nothing and a random step must be drawn at commit.
	Dest    grid.Coords
	HasDest bool

	// Sites seen during the scan, for memory.
	Seen []components.Site
}

// FoodSites is a per-tick snapshot of trees keyed by cell.
type FoodSites map[grid.Cell]components.FoodSource

// need pairs a need with its scoring function.
type need struct {
	kind  components.Need
	score func(d *Decider, s *AgentSnapshot) float64
}

// needs in priority order. The first one scoring at or above the threshold wins.
var needs = [...]need{
	{components.NeedHunger, scoreHunger},
	{components.NeedSeekFood, scoreSeekFood},
	{components.NeedExplore, scoreExplore},
}

// rays are the scan directions: east, west, south, north.
var rays = [4]grid.Coords{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

// Decider scores needs and plans destinations. It only reads its inputs and
// is safe to share between workers.
type Decider struct {
	cfg  *config.Config
	geom grid.Geometry
	food FoodSites
}

// NewDecider creates a decider over a food snapshot.
func NewDecider(cfg *config.Config, geom grid.Geometry, food FoodSites) *Decider {
	return &Decider{cfg: cfg, geom: geom, food: food}
}

// Decide picks the winning need for a person and plans its action.
func (d *Decider) Decide(s *AgentSnapshot) Decision {
	threshold := d.cfg.AI.NeedThreshold
	for _, n := range needs {
		score := clean(n.score(d, s))
		if score < threshold {
			continue
		}
		dec := Decision{Need: n.kind, Score: score}
		if n.kind == components.NeedSeekFood {
			d.plan(s, &dec)
		}
		return dec
	}
	return Decision{Need: components.NeedNone}
}

func scoreHunger(_ *Decider, s *AgentSnapshot) float64 {
	if s.Hunger.Apples > 1 || s.Hunger.Oranges > 1 {
		return 1
	}
	return 0
}

func scoreSeekFood(d *Decider, s *AgentSnapshot) float64 {
	if s.Behaviour.MovingTo() {
		return 0
	}
	goal := float64(d.cfg.AI.FoodAmountGoal)
	lack := math.Max(goal-float64(s.Stock.Apples), goal-float64(s.Stock.Oranges))
	return clamp01(lack/goal + d.cfg.AI.FoodAmountThreshold)
}

func scoreExplore(d *Decider, s *AgentSnapshot) float64 {
	if s.Behaviour.MovingTo() {
		return 1
	}
	return d.cfg.AI.ExploreScore
}

// Preference weights a food type by how far the held amount falls short of
// half the goal, in [1, 2].
func (d *Decider) Preference(t components.FoodType, held components.Stock) float64 {
	half := d.cfg.Derived.HalfGoal
	if half <= 0 {
		return 1
	}
	return 1 + math.Max(0, half-float64(held.Of(t)))/half
}

// SiteScore rates a site at a Manhattan distance.
func (d *Decider) SiteScore(t components.FoodType, stock int, dist int, held components.Stock) float64 {
	return d.Preference(t, held)*float64(stock) - float64(dist)*float64(d.cfg.Game.HungerIncrease)
}

// plan scans the four cardinal rays for trees and picks the best site.
func (d *Decider) plan(s *AgentSnapshot, dec *Decision) {
	remember := d.cfg.AI.RememberSites
	origin := d.geom.Real(s.Pos)
	best := math.Inf(-1)

	for _, dir := range rays {
		prev := origin
		for k := 1; k <= d.cfg.AI.VisionRange; k++ {
			v := grid.Coords{X: s.Pos.X + dir.X*k, Y: s.Pos.Y + dir.Y*k}
			cell := d.geom.Real(v)
			// stop at a clamped edge or after wrapping back around
			if cell == prev || cell == origin {
				break
			}
			prev = cell

			src, ok := d.food[cell]
			if !ok {
				continue
			}
			if remember {
				dec.Seen = append(dec.Seen, components.Site{At: v, Type: src.Type})
			}
			score := clean(d.SiteScore(src.Type, src.Stock, k, s.Stock))
			if !dec.HasDest || score > best {
				best = score
				dec.Dest = v
				dec.HasDest = true
			}
		}
	}

	if dec.HasDest || !remember {
		return
	}
	for _, site := range s.Memory {
		dist := grid.Manhattan(s.Pos, site.At)
		if dist == 0 {
			continue
		}
		score := clean(d.Preference(site.Type, s.Stock) - float64(dist)*float64(d.cfg.Game.HungerIncrease))
		if !dec.HasDest || score > best {
			best = score
			dec.Dest = site.At
			dec.HasDest = true
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clean maps non-finite values to zero.
func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
