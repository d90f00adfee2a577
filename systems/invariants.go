package systems

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/grid"
)

// ErrInvariant is wrapped by every consistency violation.
var ErrInvariant = errors.New("invariant violated")

// InvariantChecker verifies that the people index matches the world.
type InvariantChecker struct {
	filter ecs.Filter1[components.Position]
	person *ecs.Map[components.Person]
	seen   map[grid.Cell]ecs.Entity
}

// NewInvariantChecker creates a checker over people (entities with a Person).
func NewInvariantChecker(w *ecs.World) *InvariantChecker {
	return &InvariantChecker{
		filter: *ecs.NewFilter1[components.Position](w),
		person: ecs.NewMap[components.Person](w),
		seen:   make(map[grid.Cell]ecs.Entity),
	}
}

// Occupancy checks that no two people share a real cell and that every
// person is indexed at its own cell.
func (c *InvariantChecker) Occupancy(env *Env) error {
	clear(c.seen)

	query := c.filter.Query()
	for query.Next() {
		e := query.Entity()
		if !c.person.Has(e) {
			continue
		}
		pos := query.Get()
		cell := env.Geom.Real(pos.Coords())

		if _, dup := c.seen[cell]; dup {
			query.Close()
			return fmt.Errorf("%w: two people in one place at %v", ErrInvariant, cell)
		}
		c.seen[cell] = e

		if owner, ok := env.People.Get(cell); !ok || owner != e {
			query.Close()
			return fmt.Errorf("%w: person %d not indexed at %v", ErrInvariant, c.person.Get(e).ID, cell)
		}
	}
	return nil
}

// IndexSize checks that the people index holds exactly one entry per living
// or dead-pending person.
func (c *InvariantChecker) IndexSize(env *Env) error {
	count := 0
	query := c.filter.Query()
	for query.Next() {
		if c.person.Has(query.Entity()) {
			count++
		}
	}
	if count != env.People.Len() {
		return fmt.Errorf("%w: index holds %d entries for %d people", ErrInvariant, env.People.Len(), count)
	}
	return nil
}

// CheckInteractions verifies no self pairs and that all records belong to tick.
func CheckInteractions(interactions []Interaction, tick uint64) error {
	for _, ia := range interactions {
		if ia.A == ia.B {
			return fmt.Errorf("%w: self interaction", ErrInvariant)
		}
		if ia.Tick != tick {
			return fmt.Errorf("%w: interaction from tick %d seen at tick %d", ErrInvariant, ia.Tick, tick)
		}
	}
	return nil
}
