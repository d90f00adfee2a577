package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pthm-cable/homestead/config"
)

// HallEntry represents a notable settler and their fitness.
type HallEntry struct {
	PersonID  uint32  `json:"person_id"`
	Fitness   float64 `json:"fitness"`
	Children  int     `json:"children"`
	Trades    int     `json:"trades"`
	Harvested int     `json:"harvested"`
	Lifespan  uint64  `json:"lifespan"`
	Cause     string  `json:"cause"`
	FatherID  uint32  `json:"father_id,omitempty"`
	MotherID  uint32  `json:"mother_id,omitempty"`
}

// HallOfFame keeps the most successful settlers, sorted by fitness.
type HallOfFame struct {
	cfg     config.HallOfFameConfig
	entries []HallEntry
}

// NewHallOfFame creates a new hall of fame.
func NewHallOfFame(cfg config.HallOfFameConfig) *HallOfFame {
	return &HallOfFame{
		cfg:     cfg,
		entries: make([]HallEntry, 0, cfg.Size),
	}
}

// Consider evaluates a despawned settler for hall of fame entry.
// Returns true if the settler was added to the hall.
func (hof *HallOfFame) Consider(id uint32, stats *LifetimeStats, now uint64) bool {
	if stats == nil || hof.cfg.Size <= 0 {
		return false
	}

	lifespan := stats.Lifespan(now)
	if !hof.meetsEntryCriteria(stats, lifespan) {
		return false
	}

	entry := HallEntry{
		PersonID:  id,
		Fitness:   hof.calculateFitness(stats, lifespan),
		Children:  stats.Children,
		Trades:    stats.Trades,
		Harvested: stats.Harvested,
		Lifespan:  lifespan,
		Cause:     stats.Cause.String(),
		FatherID:  stats.FatherID,
		MotherID:  stats.MotherID,
	}

	hof.entries = hof.insertEntry(hof.entries, entry)
	return hof.contains(id)
}

func (hof *HallOfFame) meetsEntryCriteria(stats *LifetimeStats, lifespan uint64) bool {
	// Primary criterion: raised children
	if stats.Children >= hof.cfg.Entry.MinChildren {
		return true
	}

	// Secondary criterion: lived long and traded
	return lifespan >= uint64(hof.cfg.Entry.MinLifespan) && stats.Trades >= hof.cfg.Entry.MinTrades
}

func (hof *HallOfFame) calculateFitness(stats *LifetimeStats, lifespan uint64) float64 {
	w := hof.cfg.Fitness
	return float64(stats.Children)*w.ChildrenWeight +
		float64(stats.Trades)*w.TradesWeight +
		float64(stats.Harvested)*w.HarvestWeight +
		float64(lifespan)*w.LifespanWeight
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.cfg.Size && idx >= hof.cfg.Size {
		return hall
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.cfg.Size {
		hall = hall[:hof.cfg.Size]
	}

	return hall
}

func (hof *HallOfFame) contains(id uint32) bool {
	for _, e := range hof.entries {
		if e.PersonID == id {
			return true
		}
	}
	return false
}

// Entries returns the hall, best first.
func (hof *HallOfFame) Entries() []HallEntry {
	return hof.entries
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// TopFitness returns the highest fitness in the hall, or 0 if empty.
func (hof *HallOfFame) TopFitness() float64 {
	if len(hof.entries) == 0 {
		return 0
	}
	return hof.entries[0].Fitness
}

// MarshalJSON serializes the hall of fame to JSON.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.entries, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame JSON file.
func LoadHallOfFameFromFile(path string, cfg config.HallOfFameConfig) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var entries []HallEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	if len(entries) > cfg.Size {
		cfg.Size = len(entries)
	}
	hof := NewHallOfFame(cfg)
	for _, e := range entries {
		hof.entries = hof.insertEntry(hof.entries, e)
	}
	return hof, nil
}
