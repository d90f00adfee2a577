package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/grid"
)

// ActionResult summarises one commit phase.
type ActionResult struct {
	Starved   []Death
	Eaten     int
	Moves     int
	Blocked   int
	Harvested int
	Harvests  []Harvest
}

// Harvest records a unit picked from a tree.
type Harvest struct {
	Entity ecs.Entity
	ID     uint32
	Type   components.FoodType
}

// ActionSystem executes decided actions. It runs serially in snapshot order
// and is the only phase that moves people.
type ActionSystem struct {
	world     *ecs.World
	posMap    *ecs.Map[components.Position]
	personMap *ecs.Map[components.Person]
	hungerMap *ecs.Map[components.Hunger]
	stockMap  *ecs.Map[components.Stock]
	behMap    *ecs.Map[components.Behaviour]
	memoryMap *ecs.Map[components.Memory]
	foodMap   *ecs.Map[components.FoodSource]
}

// NewActionSystem creates a new action system.
func NewActionSystem(w *ecs.World) *ActionSystem {
	return &ActionSystem{
		world:     w,
		posMap:    ecs.NewMap[components.Position](w),
		personMap: ecs.NewMap[components.Person](w),
		hungerMap: ecs.NewMap[components.Hunger](w),
		stockMap:  ecs.NewMap[components.Stock](w),
		behMap:    ecs.NewMap[components.Behaviour](w),
		memoryMap: ecs.NewMap[components.Memory](w),
		foodMap:   ecs.NewMap[components.FoodSource](w),
	}
}

// Apply commits decisions[i] for snaps[i], in order.
func (s *ActionSystem) Apply(env *Env, snaps []AgentSnapshot, decisions []Decision) ActionResult {
	var res ActionResult

	for i := range snaps {
		e := snaps[i].Entity
		dec := &decisions[i]
		if !s.world.Alive(e) {
			continue
		}
		beh := s.behMap.Get(e)
		if !beh.Alive() {
			continue
		}
		beh.LastNeed = dec.Need
		pos := s.posMap.Get(e)

		switch dec.Need {
		case components.NeedHunger:
			if s.eat(env, e, beh) {
				res.Eaten++
			} else {
				person := s.personMap.Get(e)
				res.Starved = append(res.Starved, Death{
					Entity: e,
					ID:     person.ID,
					Cause:  components.CauseStarvation,
					Age:    person.Age,
					At:     env.Geom.Real(pos.Coords()),
				})
			}
		case components.NeedSeekFood:
			if dec.HasDest {
				beh.MoveTo(dec.Dest)
			} else {
				beh.MoveTo(randomStep(env, pos.Coords()))
			}
			if len(dec.Seen) > 0 && s.memoryMap.Has(e) {
				mem := s.memoryMap.Get(e)
				for _, site := range dec.Seen {
					mem.Remember(site)
				}
			}
			s.countStep(&res, s.step(env, e, pos, beh))
		case components.NeedExplore:
			if !beh.MovingTo() {
				beh.MoveTo(randomStep(env, pos.Coords()))
			}
			s.countStep(&res, s.step(env, e, pos, beh))
		}

		if beh.State == components.StateForaging {
			if h, ok := s.harvest(env, e, pos); ok {
				res.Harvested++
				res.Harvests = append(res.Harvests, h)
			} else {
				s.forget(env, e, env.Geom.Real(pos.Coords()))
			}
			beh.Rest()
		}
	}

	return res
}

// eat consumes one unit for a type whose hunger exceeds 1, apples first.
// Returns false and marks the person dead when nothing qualifies.
func (s *ActionSystem) eat(env *Env, e ecs.Entity, beh *components.Behaviour) bool {
	hunger := s.hungerMap.Get(e)
	stock := s.stockMap.Get(e)
	dec := env.Cfg.Game.HungerDecrease

	for _, t := range [...]components.FoodType{components.Apple, components.Orange} {
		if hunger.Of(t) > 1 && stock.Of(t) >= 1 {
			stock.Add(t, -1)
			hunger.Reduce(t, dec)
			return true
		}
	}

	beh.Die(env.Cfg.Game.PersonTTL, components.CauseStarvation)
	s.personMap.Get(e).Fertile = false
	return false
}

type stepOutcome uint8

const (
	stepNone stepOutcome = iota
	stepMoved
	stepBlocked
)

func (s *ActionSystem) countStep(res *ActionResult, o stepOutcome) {
	switch o {
	case stepMoved:
		res.Moves++
	case stepBlocked:
		res.Blocked++
	}
}

// step advances one cell toward the destination, horizontal axis first.
// The step is committed only if the target cell is free; a blocked person
// keeps its destination and retries next tick.
func (s *ActionSystem) step(env *Env, e ecs.Entity, pos *components.Position, beh *components.Behaviour) stepOutcome {
	cur := pos.Coords()
	disp := beh.Dest.Sub(cur)
	if disp == (grid.Coords{}) {
		beh.Arrive()
		return stepNone
	}

	var dir grid.Coords
	if disp.X != 0 {
		dir.X = sign(disp.X)
	} else {
		dir.Y = sign(disp.Y)
	}
	target := cur.Add(dir)

	from := env.Geom.Real(cur)
	to := env.Geom.Real(target)
	if to == from {
		// clamped edge, the destination is unreachable
		beh.Rest()
		return stepNone
	}
	if env.People.Occupied(to) {
		return stepBlocked
	}

	env.People.Move(from, to, e)
	pos.Set(target)
	if target == beh.Dest {
		beh.Arrive()
	}
	return stepMoved
}

// harvest takes one unit from the tree under the person, if any.
func (s *ActionSystem) harvest(env *Env, e ecs.Entity, pos *components.Position) (Harvest, bool) {
	fe, ok := env.Food.Get(env.Geom.Real(pos.Coords()))
	if !ok {
		return Harvest{}, false
	}
	src := s.foodMap.Get(fe)
	if !src.Harvest() {
		return Harvest{}, false
	}
	s.stockMap.Get(e).Add(src.Type, 1)
	return Harvest{Entity: e, ID: s.personMap.Get(e).ID, Type: src.Type}, true
}

// forget drops remembered sites that project onto cell.
func (s *ActionSystem) forget(env *Env, e ecs.Entity, cell grid.Cell) {
	if !s.memoryMap.Has(e) {
		return
	}
	mem := s.memoryMap.Get(e)
	for i := len(mem.Sites) - 1; i >= 0; i-- {
		if at := mem.Sites[i].At; env.Geom.Real(at) == cell {
			mem.Forget(at)
		}
	}
}

// randomStep picks an axis uniformly, then a step of -1, 0 or +1 along it.
func randomStep(env *Env, from grid.Coords) grid.Coords {
	horizontal := env.Rng.Intn(2) == 0
	delta := env.Rng.Intn(3) - 1
	if horizontal {
		return grid.Coords{X: from.X + delta, Y: from.Y}
	}
	return grid.Coords{X: from.X, Y: from.Y + delta}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
