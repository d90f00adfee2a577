// Package systems provides ECS systems for the settlement simulation.
package systems

import (
	"math/rand"

	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/grid"
)

// Env carries the shared state a phase reads and writes. It is built by the
// game each tick and passed explicitly to every system.
type Env struct {
	Cfg    *config.Config
	Geom   grid.Geometry
	People *grid.Lookup
	Food   *grid.Lookup
	Rng    *rand.Rand
	IDs    *IDAllocator
	Tick   uint64
}

// IDAllocator hands out sequential person IDs starting at 1.
type IDAllocator struct {
	next uint32
}

// NewIDAllocator creates an allocator whose first ID is start+1.
func NewIDAllocator(start uint32) *IDAllocator {
	return &IDAllocator{next: start}
}

// Next returns a fresh ID.
func (a *IDAllocator) Next() uint32 {
	a.next++
	return a.next
}

// Last returns the most recently issued ID.
func (a *IDAllocator) Last() uint32 {
	return a.next
}
