// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/homestead/grid"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Game        GameConfig        `yaml:"game"`
	Fertility   FertilityConfig   `yaml:"fertility"`
	AI          AIConfig          `yaml:"ai"`
	Economy     EconomyConfig     `yaml:"economy"`
	Validation  ValidationConfig  `yaml:"validation"`
	Performance PerformanceConfig `yaml:"performance"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Bookmarks   BookmarksConfig   `yaml:"bookmarks"`
	HallOfFame  HallOfFameConfig  `yaml:"hall_of_fame"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and orchard generation parameters.
type WorldConfig struct {
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
	Topology     grid.Topology `yaml:"topology"`
	TreeDensity  float64       `yaml:"tree_density"`  // Fraction of cells holding a tree
	NoiseScale   float64       `yaml:"noise_scale"`   // Orchard noise frequency (0 = uniform random placement)
	NoiseOctaves int           `yaml:"noise_octaves"`
	AppleRatio   float64       `yaml:"apple_ratio"` // Fraction of trees bearing apples
}

// GameConfig holds the core rules of the settlement.
type GameConfig struct {
	Growth              float64 `yaml:"growth"`          // Per-tick growth probability of a tree
	HungerIncrease      float32 `yaml:"hunger_increase"` // Hunger added per tick, per food type
	HungerDecrease      float32 `yaml:"hunger_decrease"` // Hunger removed by eating one unit
	StartingPeople      int     `yaml:"starting_people"`
	InitialApples       int     `yaml:"initial_apples"`
	InitialOranges      int     `yaml:"initial_oranges"`
	MaxAge              int     `yaml:"max_age"`    // Ticks; 0 disables old age
	PersonTTL           int     `yaml:"person_ttl"` // Ticks a dead person lingers before despawn
	FoodForBaby         int     `yaml:"food_for_baby"`
	YearLength          int     `yaml:"year_length"`           // Ticks per year
	GrowingSeasonLength float64 `yaml:"growing_season_length"` // Fraction of the year, [0, 1]
}

// FertilityConfig holds fertility windows as fractions of the reference age.
type FertilityConfig struct {
	MaleMin      float64 `yaml:"male_min"`
	MaleMax      float64 `yaml:"male_max"`
	FemaleMin    float64 `yaml:"female_min"`
	FemaleMax    float64 `yaml:"female_max"`
	ReferenceAge int     `yaml:"reference_age"` // Used when game.max_age is 0
}

// AIConfig holds decision engine parameters.
type AIConfig struct {
	NeedThreshold       float64 `yaml:"need_threshold"` // First need scoring at or above this wins
	VisionRange         int     `yaml:"vision_range"`   // Cells scanned along each cardinal ray
	FoodAmountGoal      int     `yaml:"food_amount_goal"`
	FoodAmountThreshold float64 `yaml:"food_amount_threshold"`
	ExploreScore        float64 `yaml:"explore_score"` // Explore score when no walk is in progress
	RememberSites       bool    `yaml:"remember_sites"`
	MemorySize          int     `yaml:"memory_size"`
}

// EconomyConfig toggles the exchange mechanics.
type EconomyConfig struct {
	TradeEnabled       bool `yaml:"trade_enabled"`
	InheritanceLottery bool `yaml:"inheritance_lottery"`
}

// ValidationConfig controls runtime invariant checks.
type ValidationConfig struct {
	Enabled bool `yaml:"enabled"`
}

// PerformanceConfig holds worker pool parameters.
type PerformanceConfig struct {
	ParallelThreshold int `yaml:"parallel_threshold"` // Minimum living population for parallel scoring
	Workers           int `yaml:"workers"`            // 0 = GOMAXPROCS
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Ticks per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// HallOfFameConfig holds notable-settler ranking parameters.
type HallOfFameConfig struct {
	Size    int               `yaml:"size"`
	Entry   HallOfFameEntry   `yaml:"entry"`
	Fitness HallOfFameFitness `yaml:"fitness"`
}

// HallOfFameEntry holds the criteria for entering the hall.
type HallOfFameEntry struct {
	MinChildren int `yaml:"min_children"` // qualifies on its own
	MinLifespan int `yaml:"min_lifespan"` // ticks, together with MinTrades
	MinTrades   int `yaml:"min_trades"`
}

// HallOfFameFitness holds the fitness weights.
type HallOfFameFitness struct {
	ChildrenWeight float64 `yaml:"children_weight"`
	TradesWeight   float64 `yaml:"trades_weight"`
	HarvestWeight  float64 `yaml:"harvest_weight"`
	LifespanWeight float64 `yaml:"lifespan_weight"` // per tick lived
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	PopulationCrash  PopulationCrashConfig  `yaml:"population_crash"`
	TradeBoom        TradeBoomConfig        `yaml:"trade_boom"`
	StableSettlement StableSettlementConfig `yaml:"stable_settlement"`
}

// PopulationCrashConfig holds population crash detection parameters.
type PopulationCrashConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// TradeBoomConfig holds trade boom detection parameters.
type TradeBoomConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	MinTrades  int     `yaml:"min_trades"`
}

// StableSettlementConfig holds stable settlement detection parameters.
type StableSettlementConfig struct {
	MinPopulation int     `yaml:"min_population"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Geometry        grid.Geometry
	FertilityRefAge int // Age the fertility fractions are applied to
	HalfGoal        float64
	GrowthThreshold float64 // Growth clamped to [0, 1]
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate checks parameter ranges. It returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.World.Width > 0 && c.World.Height > 0, "world size must be positive, got %dx%d", c.World.Width, c.World.Height)
	check(c.World.TreeDensity >= 0 && c.World.TreeDensity <= 1, "world.tree_density must be in [0,1], got %v", c.World.TreeDensity)
	check(c.World.AppleRatio >= 0 && c.World.AppleRatio <= 1, "world.apple_ratio must be in [0,1], got %v", c.World.AppleRatio)
	check(finite(c.Game.Growth) && c.Game.Growth >= 0, "game.growth must be a non-negative number, got %v", c.Game.Growth)
	check(finite(float64(c.Game.HungerIncrease)) && c.Game.HungerIncrease >= 0, "game.hunger_increase must be non-negative, got %v", c.Game.HungerIncrease)
	check(finite(float64(c.Game.HungerDecrease)) && c.Game.HungerDecrease >= 0, "game.hunger_decrease must be non-negative, got %v", c.Game.HungerDecrease)
	check(c.Game.StartingPeople >= 0, "game.starting_people must be non-negative")
	check(c.Game.StartingPeople <= c.World.Width*c.World.Height, "game.starting_people %d exceeds %d cells", c.Game.StartingPeople, c.World.Width*c.World.Height)
	check(c.Game.InitialApples >= 0 && c.Game.InitialOranges >= 0, "initial stock must be non-negative")
	check(c.Game.MaxAge >= 0 && c.Game.PersonTTL >= 0, "game.max_age and game.person_ttl must be non-negative")
	check(c.Game.FoodForBaby >= 0, "game.food_for_baby must be non-negative")
	check(c.Game.YearLength > 0, "game.year_length must be positive, got %d", c.Game.YearLength)
	check(c.Game.GrowingSeasonLength >= 0 && c.Game.GrowingSeasonLength <= 1, "game.growing_season_length must be in [0,1], got %v", c.Game.GrowingSeasonLength)
	check(c.Fertility.MaleMin <= c.Fertility.MaleMax, "fertility.male_min exceeds male_max")
	check(c.Fertility.FemaleMin <= c.Fertility.FemaleMax, "fertility.female_min exceeds female_max")
	check(c.Game.MaxAge > 0 || c.Fertility.ReferenceAge > 0, "fertility.reference_age must be positive when game.max_age is 0")
	check(c.AI.NeedThreshold > 0 && c.AI.NeedThreshold <= 1, "ai.need_threshold must be in (0,1], got %v", c.AI.NeedThreshold)
	check(c.AI.VisionRange >= 0, "ai.vision_range must be non-negative")
	check(c.AI.FoodAmountGoal > 0, "ai.food_amount_goal must be positive")
	check(c.AI.MemorySize >= 0, "ai.memory_size must be non-negative")
	check(c.Telemetry.StatsWindow > 0, "telemetry.stats_window must be positive")
	check(c.HallOfFame.Size >= 0, "hall_of_fame.size must be non-negative")

	return errors.Join(errs...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ComputeDerived calculates values derived from loaded config. Call again
// after modifying a loaded Config in place.
func (c *Config) ComputeDerived() {
	c.Derived.Geometry = grid.NewGeometry(c.World.Width, c.World.Height, c.World.Topology)

	c.Derived.FertilityRefAge = c.Game.MaxAge
	if c.Derived.FertilityRefAge == 0 {
		c.Derived.FertilityRefAge = c.Fertility.ReferenceAge
	}

	c.Derived.HalfGoal = float64(c.AI.FoodAmountGoal) / 2

	c.Derived.GrowthThreshold = math.Min(math.Max(c.Game.Growth, 0), 1)
}

// YAML returns the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
