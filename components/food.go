package components

import "github.com/pthm-cable/homestead/grid"

// MaxFoodStock is the capacity of a single tree.
const MaxFoodStock = 3

// FoodSource is a stationary tree bearing one food type.
type FoodSource struct {
	Type  FoodType
	Stock int // [0, MaxFoodStock]
}

// Grow adds one unit if below capacity. Reports whether it grew.
func (f *FoodSource) Grow() bool {
	if f.Stock >= MaxFoodStock {
		return false
	}
	f.Stock++
	return true
}

// Harvest removes one unit if available. Reports whether a unit was taken.
func (f *FoodSource) Harvest() bool {
	if f.Stock <= 0 {
		return false
	}
	f.Stock--
	return true
}

// Site is a remembered food source.
type Site struct {
	At   grid.Coords
	Type FoodType
}

// Memory holds a bounded list of remembered food sites, oldest first.
type Memory struct {
	Sites []Site
	Cap   int
}

// Remember records a site, refreshing it if already known. The oldest entry
// is dropped when full.
func (m *Memory) Remember(s Site) {
	if m.Cap <= 0 {
		return
	}
	for i, known := range m.Sites {
		if known.At == s.At {
			m.Sites = append(m.Sites[:i], m.Sites[i+1:]...)
			break
		}
	}
	if len(m.Sites) >= m.Cap {
		m.Sites = m.Sites[1:]
	}
	m.Sites = append(m.Sites, s)
}

// Forget drops a site.
func (m *Memory) Forget(at grid.Coords) {
	for i, known := range m.Sites {
		if known.At == at {
			m.Sites = append(m.Sites[:i], m.Sites[i+1:]...)
			return
		}
	}
}
