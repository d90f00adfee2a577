// Package game owns the settlement world and runs the lock-step tick loop.
package game

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/grid"
	"github.com/pthm-cable/homestead/systems"
	"github.com/pthm-cable/homestead/telemetry"
)

// Options configures a game instance.
type Options struct {
	Seed     int64
	Config   *config.Config // nil uses config.Cfg()
	LogStats bool           // log window and perf stats via slog

	// StatsCallback is called every stats window.
	StatsCallback func(telemetry.WindowStats, telemetry.PerfStats)
	// BookmarkCallback is called for every detected bookmark.
	BookmarkCallback func(telemetry.Bookmark)
	// TickCallback is called at the end of every tick with the history row
	// and the tick's trade bucket. The slice is only valid during the call.
	TickCallback func(telemetry.TickStats, []systems.TradeRecord)
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	// Entity mappers
	personMapper *ecs.Map5[
		components.Position,
		components.Person,
		components.Hunger,
		components.Stock,
		components.Behaviour,
	]
	treeMapper *ecs.Map2[components.Position, components.FoodSource]

	personFilter *ecs.Filter5[
		components.Position,
		components.Person,
		components.Hunger,
		components.Stock,
		components.Behaviour,
	]
	treeFilter *ecs.Filter2[components.Position, components.FoodSource]

	// Individual component mappers for lookups
	memoryMap *ecs.Map[components.Memory]

	// Shared per-tick state handed to every system
	env   *systems.Env
	clock systems.SeasonClock

	// Systems
	growth       *systems.GrowthSystem
	actions      *systems.ActionSystem
	interactions *systems.InteractionSystem
	breeding     *systems.BreedingSystem
	trade        *systems.TradeSystem
	lifecycle    *systems.LifecycleSystem
	invariants   *systems.InvariantChecker
	registry     *systems.SystemRegistry

	// Decision scoring
	foodSites systems.FoodSites
	decider   *systems.Decider
	parallel  *parallelState

	interactionBuf []systems.Interaction
	trades         []systems.TradeRecord // current tick's bucket

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	lifetimeTracker  *telemetry.LifetimeTracker
	hallOfFame       *telemetry.HallOfFame
	history          *telemetry.History

	logStats         bool
	statsCallback    func(telemetry.WindowStats, telemetry.PerfStats)
	bookmarkCallback func(telemetry.Bookmark)
	tickCallback     func(telemetry.TickStats, []systems.TradeRecord)
}

// NewGameWithOptions creates a game and generates its world: an orchard of
// trees and the starting population.
func NewGameWithOptions(opts Options) *Game {
	g := newGame(opts)
	g.generateOrchard()
	g.spawnInitialPopulation()
	return g
}

// newGame wires the world, systems and telemetry without populating them.
func newGame(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rng,
		seed:  opts.Seed,
		personMapper: ecs.NewMap5[
			components.Position,
			components.Person,
			components.Hunger,
			components.Stock,
			components.Behaviour,
		](world),
		treeMapper: ecs.NewMap2[components.Position, components.FoodSource](world),
		personFilter: ecs.NewFilter5[
			components.Position,
			components.Person,
			components.Hunger,
			components.Stock,
			components.Behaviour,
		](world),
		treeFilter: ecs.NewFilter2[components.Position, components.FoodSource](world),
		memoryMap:  ecs.NewMap[components.Memory](world),
		env: &systems.Env{
			Cfg:    cfg,
			Geom:   cfg.Derived.Geometry,
			People: grid.NewLookup(),
			Food:   grid.NewLookup(),
			Rng:    rng,
			IDs:    systems.NewIDAllocator(0),
		},

		growth:       systems.NewGrowthSystem(world),
		actions:      systems.NewActionSystem(world),
		interactions: systems.NewInteractionSystem(world),
		breeding:     systems.NewBreedingSystem(world),
		trade:        systems.NewTradeSystem(world),
		lifecycle:    systems.NewLifecycleSystem(world),
		invariants:   systems.NewInvariantChecker(world),
		registry:     systems.NewSystemRegistry(),

		foodSites: make(systems.FoodSites),
		parallel:  newParallelState(cfg.Performance),

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		hallOfFame:       telemetry.NewHallOfFame(cfg.HallOfFame),
		history:          telemetry.NewHistory(),

		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
		bookmarkCallback: opts.BookmarkCallback,
		tickCallback:     opts.TickCallback,
	}
	g.decider = systems.NewDecider(cfg, g.env.Geom, g.foodSites)

	return g
}

// Close stops the scoring worker pool. The game must not be stepped after.
func (g *Game) Close() {
	g.parallel.stopWorkers()
}

// Config returns the configuration the game runs with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Seed returns the seed the game was created with.
func (g *Game) Seed() int64 {
	return g.seed
}

// Tick returns the current tick.
func (g *Game) Tick() uint64 {
	return g.clock.Tick()
}

// Registry returns the system registry, in tick order.
func (g *Game) Registry() *systems.SystemRegistry {
	return g.registry
}

// HallOfFame returns the notable settlers ranked so far.
func (g *Game) HallOfFame() *telemetry.HallOfFame {
	return g.hallOfFame
}

// Lifetimes returns the lifetime tracker.
func (g *Game) Lifetimes() *telemetry.LifetimeTracker {
	return g.lifetimeTracker
}
