package systems

// SystemInfo describes a simulation system.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "world", "people", "economy")
}

// SystemRegistry holds metadata about all systems in tick order.
// This centralizes system naming so reports and the perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all systems in the order they run each tick.
// Update this when adding new systems.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: "season", Name: "Season", Description: "Advances the tick counter", Category: "world"})
	r.Register(SystemInfo{ID: "growth", Name: "Growth", Description: "Grows fruit on in-season trees", Category: "world"})

	r.Register(SystemInfo{ID: "decide", Name: "Decide", Description: "Scores needs and plans destinations", Category: "people"})
	r.Register(SystemInfo{ID: "act", Name: "Act", Description: "Eats, steps and harvests", Category: "people"})
	r.Register(SystemInfo{ID: "interactions", Name: "Interactions", Description: "Pairs living neighbours", Category: "people"})
	r.Register(SystemInfo{ID: "breeding", Name: "Breeding", Description: "Creates children from fertile pairs", Category: "people"})

	r.Register(SystemInfo{ID: "trade", Name: "Trade", Description: "Barters apples for oranges", Category: "economy"})

	r.Register(SystemInfo{ID: "lifecycle", Name: "Lifecycle", Description: "Ages, starves and despawns people", Category: "people"})
	r.Register(SystemInfo{ID: "validate", Name: "Validate", Description: "Checks index consistency", Category: "internal"})
	r.Register(SystemInfo{ID: "telemetry", Name: "Telemetry", Description: "Records statistics", Category: "internal"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns system info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
