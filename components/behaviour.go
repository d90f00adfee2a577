package components

import "github.com/pthm-cable/homestead/grid"

// State is the explicit per-person behaviour state.
type State uint8

const (
	StateIdle State = iota
	StateForaging
	StateMovingTo
	StateDead
)

var stateNames = [...]string{"idle", "foraging", "moving", "dead"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Need identifies a scored need. Needs are evaluated in declaration order.
type Need uint8

const (
	NeedNone Need = iota
	NeedHunger
	NeedSeekFood
	NeedExplore
)

var needNames = [...]string{"none", "hunger", "seek_food", "explore"}

func (n Need) String() string {
	if int(n) < len(needNames) {
		return needNames[n]
	}
	return "unknown"
}

// DeathCause records why a person died.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarvation
	CauseOldAge
)

func (c DeathCause) String() string {
	switch c {
	case CauseStarvation:
		return "starvation"
	case CauseOldAge:
		return "old_age"
	}
	return "none"
}

// Behaviour holds the state machine of a person. Dest is only meaningful in
// StateMovingTo and TTL only in StateDead.
type Behaviour struct {
	State    State
	Dest     grid.Coords
	TTL      int
	Cause    DeathCause
	LastNeed Need // winning need of the latest decision
}

// Alive reports whether the person has not died.
func (b *Behaviour) Alive() bool {
	return b.State != StateDead
}

// MovingTo reports whether a destination is pending.
func (b *Behaviour) MovingTo() bool {
	return b.State == StateMovingTo
}

// MoveTo sets a pending destination.
func (b *Behaviour) MoveTo(dest grid.Coords) {
	b.State = StateMovingTo
	b.Dest = dest
}

// Arrive clears the destination and starts foraging.
func (b *Behaviour) Arrive() {
	b.State = StateForaging
	b.Dest = grid.Coords{}
}

// Rest returns to idle.
func (b *Behaviour) Rest() {
	b.State = StateIdle
	b.Dest = grid.Coords{}
}

// Die marks the person dead with a despawn countdown.
func (b *Behaviour) Die(ttl int, cause DeathCause) {
	b.State = StateDead
	b.Dest = grid.Coords{}
	b.TTL = ttl
	b.Cause = cause
}
