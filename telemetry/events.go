// Package telemetry provides settlement health tracking, history, bookmarking, and snapshots.
package telemetry

import "github.com/pthm-cable/homestead/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventDespawn
	EventTrade
	EventHarvest
)

var eventNames = [...]string{"birth", "death", "despawn", "trade", "harvest"}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type     EventType
	Tick     uint64
	PersonID uint32

	// Optional fields depending on event type
	OtherID  uint32 // mother (birth), heir (despawn), receiving party (trade)
	FatherID uint32 // birth only
	Cause    components.DeathCause
	Food     components.FoodType // harvest only
	Apples   int                 // traded or inherited
	Oranges  int
	Age      int // death only
}

// NewBirthEvent creates a birth event.
func NewBirthEvent(tick uint64, childID, fatherID, motherID uint32) Event {
	return Event{
		Type:     EventBirth,
		Tick:     tick,
		PersonID: childID,
		OtherID:  motherID,
		FatherID: fatherID,
	}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(tick uint64, personID uint32, cause components.DeathCause, age int) Event {
	return Event{
		Type:     EventDeath,
		Tick:     tick,
		PersonID: personID,
		Cause:    cause,
		Age:      age,
	}
}

// NewDespawnEvent creates a despawn event. heirID is zero when nobody inherited.
func NewDespawnEvent(tick uint64, personID, heirID uint32, inherited components.Stock) Event {
	return Event{
		Type:     EventDespawn,
		Tick:     tick,
		PersonID: personID,
		OtherID:  heirID,
		Apples:   inherited.Apples,
		Oranges:  inherited.Oranges,
	}
}

// NewTradeEvent creates a trade event. from gave apples to to for oranges.
func NewTradeEvent(tick uint64, from, to uint32, apples, oranges int) Event {
	return Event{
		Type:     EventTrade,
		Tick:     tick,
		PersonID: from,
		OtherID:  to,
		Apples:   apples,
		Oranges:  oranges,
	}
}

// NewHarvestEvent creates a harvest event (one unit picked from a tree).
func NewHarvestEvent(tick uint64, personID uint32, food components.FoodType) Event {
	return Event{
		Type:     EventHarvest,
		Tick:     tick,
		PersonID: personID,
		Food:     food,
	}
}
