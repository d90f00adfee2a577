package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/homestead/components"
)

// TradeRecord is one executed barter. From gave apples and received oranges.
type TradeRecord struct {
	Tick    uint64 `json:"tick" csv:"tick" db:"tick"`
	From    uint32 `json:"from" csv:"from" db:"from_id"`
	To      uint32 `json:"to" csv:"to" db:"to_id"`
	Apples  int    `json:"apples" csv:"apples" db:"apples"`
	Oranges int    `json:"oranges" csv:"oranges" db:"oranges"`
}

// Utility is the Cobb-Douglas utility sqrt(apples * oranges).
func Utility(s components.Stock) float64 {
	return math.Sqrt(float64(s.Apples) * float64(s.Oranges))
}

// MRS is the marginal rate of substitution of apples for oranges: the ratio
// of the utility gained from one more apple to one more orange. It is not
// finite when the orange marginal utility is zero.
func MRS(s components.Stock) float64 {
	u := Utility(s)
	muApple := Utility(components.Stock{Apples: s.Apples + 1, Oranges: s.Oranges}) - u
	muOrange := Utility(components.Stock{Apples: s.Apples, Oranges: s.Oranges + 1}) - u
	return muApple / muOrange
}

// Terms are the quantities of a proposed barter.
type Terms struct {
	AppleRichIsA bool
	Apples       int // apples moving from the apple-rich party
	Oranges      int // oranges moving to the apple-rich party
}

// Barter proposes a trade between two holdings. It returns the holdings
// after the trade and ok=false when no trade happens: a non-finite MRS, MRS
// values on the same side of 1, insufficient stock, or a trade that would
// not strictly raise both utilities.
func Barter(a, b components.Stock) (newA, newB components.Stock, terms Terms, ok bool) {
	mrsA, mrsB := MRS(a), MRS(b)
	if !isFinite(mrsA) || !isFinite(mrsB) {
		return a, b, Terms{}, false
	}

	var rich, poor components.Stock
	switch {
	case mrsA < 1 && mrsB > 1:
		rich, poor = a, b
		terms.AppleRichIsA = true
	case mrsB < 1 && mrsA > 1:
		rich, poor = b, a
	default:
		return a, b, Terms{}, false
	}

	terms.Apples = max(1, (rich.Apples-poor.Apples)/2)
	terms.Oranges = max(1, (poor.Oranges-rich.Oranges)/2)
	if rich.Apples < terms.Apples || poor.Oranges < terms.Oranges {
		return a, b, Terms{}, false
	}

	richAfter := components.Stock{Apples: rich.Apples - terms.Apples, Oranges: rich.Oranges + terms.Oranges}
	poorAfter := components.Stock{Apples: poor.Apples + terms.Apples, Oranges: poor.Oranges - terms.Oranges}
	if Utility(richAfter) <= Utility(rich) || Utility(poorAfter) <= Utility(poor) {
		return a, b, Terms{}, false
	}

	if terms.AppleRichIsA {
		return richAfter, poorAfter, terms, true
	}
	return poorAfter, richAfter, terms, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// TradeSystem executes barters across this tick's interactions.
type TradeSystem struct {
	world     *ecs.World
	personMap *ecs.Map[components.Person]
	stockMap  *ecs.Map[components.Stock]
	behMap    *ecs.Map[components.Behaviour]
}

// NewTradeSystem creates a new trade system.
func NewTradeSystem(w *ecs.World) *TradeSystem {
	return &TradeSystem{
		world:     w,
		personMap: ecs.NewMap[components.Person](w),
		stockMap:  ecs.NewMap[components.Stock](w),
		behMap:    ecs.NewMap[components.Behaviour](w),
	}
}

// Update runs a barter attempt for every interaction and returns the
// executed trades. Does nothing when trade is disabled.
func (s *TradeSystem) Update(env *Env, interactions []Interaction) []TradeRecord {
	if !env.Cfg.Economy.TradeEnabled {
		return nil
	}

	var trades []TradeRecord
	for _, ia := range interactions {
		if !s.alive(ia.A) || !s.alive(ia.B) {
			continue
		}
		sa := s.stockMap.Get(ia.A)
		sb := s.stockMap.Get(ia.B)

		newA, newB, terms, ok := Barter(*sa, *sb)
		if !ok {
			continue
		}
		*sa, *sb = newA, newB

		from, to := ia.A, ia.B
		if !terms.AppleRichIsA {
			from, to = ia.B, ia.A
		}
		trades = append(trades, TradeRecord{
			Tick:    env.Tick,
			From:    s.personMap.Get(from).ID,
			To:      s.personMap.Get(to).ID,
			Apples:  terms.Apples,
			Oranges: terms.Oranges,
		})
	}
	return trades
}

func (s *TradeSystem) alive(e ecs.Entity) bool {
	return s.world.Alive(e) && s.behMap.Get(e).Alive()
}
