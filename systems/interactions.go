package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/grid"
)

// Interaction is an ordered pair of living neighbours. It only exists during
// the tick that created it.
type Interaction struct {
	A, B ecs.Entity
	Tick uint64
}

// InteractionSystem pairs living people with living people in their
// 8-neighbourhood.
type InteractionSystem struct {
	filter  ecs.Filter2[components.Position, components.Behaviour]
	behMap  *ecs.Map[components.Behaviour]
	scratch []grid.Coords
}

// NewInteractionSystem creates a new interaction system.
func NewInteractionSystem(w *ecs.World) *InteractionSystem {
	return &InteractionSystem{
		filter:  *ecs.NewFilter2[components.Position, components.Behaviour](w),
		behMap:  ecs.NewMap[components.Behaviour](w),
		scratch: make([]grid.Coords, 0, 8),
	}
}

// Detect appends this tick's interactions to out[:0]. A mutual pair yields
// two records, one per direction.
func (s *InteractionSystem) Detect(env *Env, out []Interaction) []Interaction {
	out = out[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, beh := query.Get()
		if !beh.Alive() {
			continue
		}
		e := query.Entity()

		s.scratch = env.Geom.AppendNeighbours(s.scratch[:0], pos.Coords())
		for _, n := range s.scratch {
			other, ok := env.People.Get(env.Geom.Real(n))
			if !ok || other == e {
				continue
			}
			if !s.behMap.Get(other).Alive() {
				continue
			}
			out = append(out, Interaction{A: e, B: other, Tick: env.Tick})
		}
	}

	return out
}
