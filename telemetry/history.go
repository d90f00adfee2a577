package telemetry

import (
	"sort"

	"github.com/pthm-cable/homestead/systems"
)

// TickStats is one row of the per-tick statistics history.
type TickStats struct {
	Tick        uint64 `csv:"tick" json:"tick" db:"tick"`
	TreeApples  int    `csv:"tree_apples" json:"tree_apples" db:"tree_apples"`
	TreeOranges int    `csv:"tree_oranges" json:"tree_oranges" db:"tree_oranges"`
	HeldApples  int    `csv:"held_apples" json:"held_apples" db:"held_apples"`
	HeldOranges int    `csv:"held_oranges" json:"held_oranges" db:"held_oranges"`
	Population  int    `csv:"population" json:"population" db:"population"`
	DeadPending int    `csv:"dead_pending" json:"dead_pending" db:"dead_pending"`
	Births      int    `csv:"births" json:"births" db:"births"`
	Deaths      int    `csv:"deaths" json:"deaths" db:"deaths"`
	Trades      int    `csv:"trades" json:"trades" db:"trades"`
	TradeVolume int    `csv:"trade_volume" json:"trade_volume" db:"trade_volume"` // units exchanged both ways
}

// History is the append-only per-tick statistics and trade log.
// Rows are kept in tick order; each row owns the trades of its tick.
type History struct {
	rows   []TickStats
	trades [][]systems.TradeRecord
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records a tick. The trades slice is copied.
func (h *History) Append(row TickStats, trades []systems.TradeRecord) {
	bucket := make([]systems.TradeRecord, len(trades))
	copy(bucket, trades)
	h.rows = append(h.rows, row)
	h.trades = append(h.trades, bucket)
}

// Len returns the number of recorded ticks.
func (h *History) Len() int {
	return len(h.rows)
}

// Rows returns all recorded rows.
func (h *History) Rows() []TickStats {
	return h.rows
}

// Last returns the latest row and whether there is one.
func (h *History) Last() (TickStats, bool) {
	if len(h.rows) == 0 {
		return TickStats{}, false
	}
	return h.rows[len(h.rows)-1], true
}

// Since returns the rows with a tick greater than tick.
func (h *History) Since(tick uint64) []TickStats {
	i := h.index(tick + 1)
	return h.rows[i:]
}

// TradesAt returns the trade bucket of a tick, or nil if it was not recorded.
func (h *History) TradesAt(tick uint64) []systems.TradeRecord {
	i := h.index(tick)
	if i < len(h.rows) && h.rows[i].Tick == tick {
		return h.trades[i]
	}
	return nil
}

// TradesSince returns the trades of every tick greater than tick, in order.
func (h *History) TradesSince(tick uint64) []systems.TradeRecord {
	var out []systems.TradeRecord
	for _, bucket := range h.trades[h.index(tick+1):] {
		out = append(out, bucket...)
	}
	return out
}

// index returns the position of the first row with Tick >= tick.
func (h *History) index(tick uint64) int {
	return sort.Search(len(h.rows), func(i int) bool {
		return h.rows[i].Tick >= tick
	})
}
