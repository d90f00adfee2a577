package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/grid"
)

// Birth describes a child created this tick.
type Birth struct {
	Child    ecs.Entity
	ChildID  uint32
	FatherID uint32
	MotherID uint32
	At       grid.Cell
	Stock    components.Stock
}

// BreedingSystem turns interactions between a fertile man and a fertile
// woman into children.
type BreedingSystem struct {
	world  *ecs.World
	mapper *ecs.Map5[
		components.Position,
		components.Person,
		components.Hunger,
		components.Stock,
		components.Behaviour,
	]
	posMap    *ecs.Map[components.Position]
	personMap *ecs.Map[components.Person]
	stockMap  *ecs.Map[components.Stock]
	behMap    *ecs.Map[components.Behaviour]
	memoryMap *ecs.Map[components.Memory]

	bred    map[ecs.Entity]bool
	scratch []grid.Coords
	free    []grid.Cell
}

// NewBreedingSystem creates a new breeding system.
func NewBreedingSystem(w *ecs.World) *BreedingSystem {
	return &BreedingSystem{
		world: w,
		mapper: ecs.NewMap5[
			components.Position,
			components.Person,
			components.Hunger,
			components.Stock,
			components.Behaviour,
		](w),
		posMap:    ecs.NewMap[components.Position](w),
		personMap: ecs.NewMap[components.Person](w),
		stockMap:  ecs.NewMap[components.Stock](w),
		behMap:    ecs.NewMap[components.Behaviour](w),
		memoryMap: ecs.NewMap[components.Memory](w),
		bred:      make(map[ecs.Entity]bool),
	}
}

// Update tries both orientations of every interaction. Each person takes
// part in at most one birth per tick.
func (s *BreedingSystem) Update(env *Env, interactions []Interaction) []Birth {
	clear(s.bred)
	var births []Birth

	for _, ia := range interactions {
		if b, ok := s.try(env, ia.A, ia.B); ok {
			births = append(births, b)
			continue
		}
		if b, ok := s.try(env, ia.B, ia.A); ok {
			births = append(births, b)
		}
	}

	return births
}

// eligible reports whether e is a living, fertile person of the given sex.
func (s *BreedingSystem) eligible(e ecs.Entity, sex components.Sex) bool {
	if !s.world.Alive(e) || s.bred[e] || !s.behMap.Get(e).Alive() {
		return false
	}
	p := s.personMap.Get(e)
	return p.Sex == sex && p.Fertile
}

func (s *BreedingSystem) try(env *Env, father, mother ecs.Entity) (Birth, bool) {
	if !s.eligible(father, components.Male) || !s.eligible(mother, components.Female) {
		return Birth{}, false
	}

	fs := s.stockMap.Get(father)
	ms := s.stockMap.Get(mother)
	need := 2 * env.Cfg.Game.FoodForBaby
	if fs.Apples+ms.Apples <= need || fs.Oranges+ms.Oranges <= need {
		return Birth{}, false
	}

	motherPos := s.posMap.Get(mother).Coords()
	s.scratch = env.Geom.AppendNeighbours(s.scratch[:0], motherPos)
	s.free = s.free[:0]
	for _, n := range s.scratch {
		cell := env.Geom.Real(n)
		if !env.People.Occupied(cell) {
			s.free = append(s.free, cell)
		}
	}
	if len(s.free) == 0 {
		return Birth{}, false
	}
	cell := s.free[env.Rng.Intn(len(s.free))]

	stock := fs.Halve()
	stock.Merge(ms.Halve())

	fatherID := s.personMap.Get(father).ID
	motherID := s.personMap.Get(mother).ID

	pos := components.PositionAt(cell.Coords())
	person := components.Person{
		ID:        env.IDs.Next(),
		Sex:       components.Sex(env.Rng.Intn(2)),
		BirthTick: env.Tick,
		FatherID:  fatherID,
		MotherID:  motherID,
	}
	hunger := components.Hunger{}
	beh := components.Behaviour{}
	childStock := stock

	// Component pointers obtained above are invalid after this call.
	child := s.mapper.NewEntity(&pos, &person, &hunger, &childStock, &beh)
	if env.Cfg.AI.RememberSites {
		s.memoryMap.Add(child, &components.Memory{Cap: env.Cfg.AI.MemorySize})
	}
	env.People.Insert(cell, child)

	s.bred[father] = true
	s.bred[mother] = true
	s.bred[child] = true

	return Birth{
		Child:    child,
		ChildID:  person.ID,
		FatherID: fatherID,
		MotherID: motherID,
		At:       cell,
		Stock:    stock,
	}, true
}
