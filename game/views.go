package game

import (
	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/grid"
	"github.com/pthm-cable/homestead/systems"
	"github.com/pthm-cable/homestead/telemetry"
)

// AgentView is a read-only copy of one person's state.
type AgentView struct {
	ID      uint32
	Pos     grid.Coords // virtual
	Cell    grid.Cell   // real
	Age     int
	Sex     components.Sex
	Fertile bool
	Stock   components.Stock
	Hunger  components.Hunger
	State   components.State
	Need    components.Need // last winning need
	Alive   bool
}

// FoodView is a read-only copy of one tree.
type FoodView struct {
	Cell  grid.Cell
	Type  components.FoodType
	Stock int
}

// Agents returns every living and dead-pending person.
func (g *Game) Agents() []AgentView {
	var out []AgentView
	query := g.personFilter.Query()
	for query.Next() {
		pos, person, hunger, stock, beh := query.Get()
		out = append(out, AgentView{
			ID:      person.ID,
			Pos:     pos.Coords(),
			Cell:    g.env.Geom.Real(pos.Coords()),
			Age:     person.Age,
			Sex:     person.Sex,
			Fertile: person.Fertile,
			Stock:   *stock,
			Hunger:  *hunger,
			State:   beh.State,
			Need:    beh.LastNeed,
			Alive:   beh.Alive(),
		})
	}
	return out
}

// FoodSources returns every tree.
func (g *Game) FoodSources() []FoodView {
	var out []FoodView
	query := g.treeFilter.Query()
	for query.Next() {
		pos, src := query.Get()
		out = append(out, FoodView{
			Cell:  g.env.Geom.Real(pos.Coords()),
			Type:  src.Type,
			Stock: src.Stock,
		})
	}
	return out
}

// Trades returns the trades executed in the current tick. The slice must
// not be modified.
func (g *Game) Trades() []systems.TradeRecord {
	return g.trades
}

// History returns the per-tick statistics and trade history.
func (g *Game) History() *telemetry.History {
	return g.history
}

// Population returns the number of living people.
func (g *Game) Population() int {
	return g.census().living
}
