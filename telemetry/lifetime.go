package telemetry

import "github.com/pthm-cable/homestead/components"

// LifetimeStats tracks per-person statistics over their lifetime.
type LifetimeStats struct {
	BirthTick uint64 `json:"birth_tick"`
	DeathTick uint64 `json:"death_tick,omitempty"` // 0 while alive
	FatherID  uint32 `json:"father_id,omitempty"`
	MotherID  uint32 `json:"mother_id,omitempty"`

	Children  int `json:"children"`
	Trades    int `json:"trades"`
	Harvested int `json:"harvested"`
	Inherited int `json:"inherited"` // units received as heir

	Age   int                   `json:"age,omitempty"` // age at death
	Cause components.DeathCause `json:"cause,omitempty"`
}

// Lifespan returns the ticks lived, up to now for the living.
func (s *LifetimeStats) Lifespan(now uint64) uint64 {
	end := now
	if s.DeathTick != 0 {
		end = s.DeathTick
	}
	if end < s.BirthTick {
		return 0
	}
	return end - s.BirthTick
}

// LifetimeTracker manages per-person lifetime statistics keyed by person ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new person.
func (lt *LifetimeTracker) Register(id uint32, birthTick uint64, fatherID, motherID uint32) {
	lt.stats[id] = &LifetimeStats{
		BirthTick: birthTick,
		FatherID:  fatherID,
		MotherID:  motherID,
	}
}

// Restore replaces the tracked stats, e.g. from a snapshot.
func (lt *LifetimeTracker) Restore(stats map[uint32]*LifetimeStats) {
	lt.stats = make(map[uint32]*LifetimeStats, len(stats))
	for id, s := range stats {
		if s != nil {
			cp := *s
			lt.stats[id] = &cp
		}
	}
}

// Get returns the lifetime stats for a person, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes a person's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// Apply updates the tracked stats from a telemetry event. Births register
// the child. Despawns credit the heir but leave removal to the caller.
func (lt *LifetimeTracker) Apply(ev Event) {
	switch ev.Type {
	case EventBirth:
		lt.Register(ev.PersonID, ev.Tick, ev.FatherID, ev.OtherID)
		lt.recordChild(ev.FatherID)
		lt.recordChild(ev.OtherID)
	case EventDeath:
		if s := lt.stats[ev.PersonID]; s != nil {
			s.DeathTick = ev.Tick
			s.Cause = ev.Cause
			s.Age = ev.Age
		}
	case EventDespawn:
		if s := lt.stats[ev.OtherID]; s != nil && ev.OtherID != 0 {
			s.Inherited += ev.Apples + ev.Oranges
		}
	case EventTrade:
		for _, id := range [2]uint32{ev.PersonID, ev.OtherID} {
			if s := lt.stats[id]; s != nil {
				s.Trades++
			}
		}
	case EventHarvest:
		if s := lt.stats[ev.PersonID]; s != nil {
			s.Harvested++
		}
	}
}

func (lt *LifetimeTracker) recordChild(parentID uint32) {
	if s := lt.stats[parentID]; s != nil {
		s.Children++
	}
}

// All returns all tracked stats (for snapshots).
func (lt *LifetimeTracker) All() map[uint32]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked people.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
