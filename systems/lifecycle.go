package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/grid"
)

// Death records a person who died this tick.
type Death struct {
	Entity ecs.Entity
	ID     uint32
	Cause  components.DeathCause
	Age    int
	At     grid.Cell
}

// Despawn records a dead person removed from the world this tick.
type Despawn struct {
	ID        uint32
	Heir      ecs.Entity // zero when nobody inherited
	HeirID    uint32
	Inherited components.Stock
}

// LifecycleResult summarises one lifecycle pass.
type LifecycleResult struct {
	Deaths    []Death
	Despawned []Despawn
}

// LifecycleSystem counts down the dead, then ages and feeds hunger to the living.
type LifecycleSystem struct {
	world  *ecs.World
	filter ecs.Filter5[
		components.Position,
		components.Person,
		components.Hunger,
		components.Stock,
		components.Behaviour,
	]
	posMap    *ecs.Map[components.Position]
	personMap *ecs.Map[components.Person]
	stockMap  *ecs.Map[components.Stock]

	toRemove []ecs.Entity
	living   []ecs.Entity
}

// NewLifecycleSystem creates a new lifecycle system.
func NewLifecycleSystem(w *ecs.World) *LifecycleSystem {
	return &LifecycleSystem{
		world: w,
		filter: *ecs.NewFilter5[
			components.Position,
			components.Person,
			components.Hunger,
			components.Stock,
			components.Behaviour,
		](w),
		posMap:    ecs.NewMap[components.Position](w),
		personMap: ecs.NewMap[components.Person](w),
		stockMap:  ecs.NewMap[components.Stock](w),
	}
}

// Update runs one lifecycle pass.
//
// Dead people count down their TTL and are despawned on the pass after it
// reaches zero. Living people gain hunger, age by one tick, die of old age
// past max_age (when max_age is positive) and have their fertility window
// re-evaluated. Children born this tick keep age 0 until the next pass.
func (s *LifecycleSystem) Update(env *Env) LifecycleResult {
	cfg := env.Cfg
	var res LifecycleResult
	s.toRemove = s.toRemove[:0]
	s.living = s.living[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, person, hunger, _, beh := query.Get()
		e := query.Entity()

		if !beh.Alive() {
			if beh.TTL > 0 {
				beh.TTL--
			} else {
				s.toRemove = append(s.toRemove, e)
			}
			continue
		}

		// born this tick
		if person.Age == 0 && person.BirthTick == env.Tick {
			s.living = append(s.living, e)
			continue
		}

		hunger.Apples += cfg.Game.HungerIncrease
		hunger.Oranges += cfg.Game.HungerIncrease
		person.Age++

		if cfg.Game.MaxAge > 0 && person.Age > cfg.Game.MaxAge {
			beh.Die(cfg.Game.PersonTTL, components.CauseOldAge)
			person.Fertile = false
			res.Deaths = append(res.Deaths, Death{
				Entity: e,
				ID:     person.ID,
				Cause:  components.CauseOldAge,
				Age:    person.Age,
				At:     env.Geom.Real(pos.Coords()),
			})
			continue
		}

		person.Fertile = Fertile(cfg.Fertility, cfg.Derived.FertilityRefAge, person.Sex, person.Age)
		s.living = append(s.living, e)
	}

	// Structural changes happen after the query is closed.
	for _, e := range s.toRemove {
		res.Despawned = append(res.Despawned, s.despawn(env, e))
	}

	return res
}

// despawn removes a dead person from the index and the world. With the
// inheritance lottery on, its stock goes to one random living person.
func (s *LifecycleSystem) despawn(env *Env, e ecs.Entity) Despawn {
	pos := s.posMap.Get(e)
	env.People.RemoveEntity(env.Geom.Real(pos.Coords()), e)

	d := Despawn{ID: s.personMap.Get(e).ID}
	stock := s.stockMap.Get(e)
	if env.Cfg.Economy.InheritanceLottery && len(s.living) > 0 {
		heir := s.living[env.Rng.Intn(len(s.living))]
		d.Heir = heir
		d.HeirID = s.personMap.Get(heir).ID
		d.Inherited = stock.Take()
		s.stockMap.Get(heir).Merge(d.Inherited)
	}

	s.world.RemoveEntity(e)
	return d
}

// Fertile reports whether a person of the given sex and age is inside the
// fertility window, expressed as fractions [min, max) of refAge.
func Fertile(f config.FertilityConfig, refAge int, sex components.Sex, age int) bool {
	if refAge <= 0 {
		return false
	}
	frac := float64(age) / float64(refAge)
	if sex == components.Female {
		return frac >= f.FemaleMin && frac < f.FemaleMax
	}
	return frac >= f.MaleMin && frac < f.MaleMax
}
