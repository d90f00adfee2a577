package game

import (
	"log/slog"

	"github.com/pthm-cable/homestead/systems"
)

// logBirth logs a birth at debug level.
func (g *Game) logBirth(b systems.Birth) {
	slog.Debug("person_born",
		"tick", g.env.Tick,
		"id", b.ChildID,
		"father", b.FatherID,
		"mother", b.MotherID,
		"x", b.At.X,
		"y", b.At.Y,
		"apples", b.Stock.Apples,
		"oranges", b.Stock.Oranges,
	)
}

// logDeath logs a death at debug level.
func (g *Game) logDeath(d systems.Death) {
	slog.Debug("person_died",
		"tick", g.env.Tick,
		"id", d.ID,
		"cause", d.Cause.String(),
		"age", d.Age,
		"x", d.At.X,
		"y", d.At.Y,
	)
}

// LogWorldState logs a one-line summary of the current world.
func (g *Game) LogWorldState() {
	c := g.census()
	slog.Info("world_state",
		"tick", g.env.Tick,
		"population", c.living,
		"dead_pending", c.dead,
		"tree_apples", c.treeApples,
		"tree_oranges", c.treeOranges,
		"held_apples", c.heldApples,
		"held_oranges", c.heldOranges,
		"trades", len(g.trades),
		"hall_of_fame", g.hallOfFame.Size(),
	)
}
