package grid

import "github.com/mlange-42/ark/ecs"

// Lookup indexes entities by the real cell they occupy. One Lookup is kept
// per entity category; at most one entity of a category per cell.
type Lookup struct {
	cells map[Cell]ecs.Entity
}

// NewLookup creates an empty index.
func NewLookup() *Lookup {
	return &Lookup{cells: make(map[Cell]ecs.Entity)}
}

// Insert records e at cell, replacing any previous occupant.
func (l *Lookup) Insert(cell Cell, e ecs.Entity) {
	l.cells[cell] = e
}

// Remove clears cell.
func (l *Lookup) Remove(cell Cell) {
	delete(l.cells, cell)
}

// RemoveEntity clears cell only if e occupies it. Reports whether anything
// was removed.
func (l *Lookup) RemoveEntity(cell Cell, e ecs.Entity) bool {
	if cur, ok := l.cells[cell]; ok && cur == e {
		delete(l.cells, cell)
		return true
	}
	return false
}

// Get returns the occupant of cell.
func (l *Lookup) Get(cell Cell) (ecs.Entity, bool) {
	e, ok := l.cells[cell]
	return e, ok
}

// Occupied reports whether cell has an occupant.
func (l *Lookup) Occupied(cell Cell) bool {
	_, ok := l.cells[cell]
	return ok
}

// Move relocates e from one cell to another as a single step.
func (l *Lookup) Move(from, to Cell, e ecs.Entity) {
	l.RemoveEntity(from, e)
	l.cells[to] = e
}

// Len returns the number of indexed entities.
func (l *Lookup) Len() int {
	return len(l.cells)
}

// Each calls fn for every indexed cell. Iteration order is unspecified.
func (l *Lookup) Each(fn func(Cell, ecs.Entity)) {
	for c, e := range l.cells {
		fn(c, e)
	}
}

// Clear removes all entries.
func (l *Lookup) Clear() {
	clear(l.cells)
}
