package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/homestead/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationCrash  BookmarkType = "population_crash"
	BookmarkTradeBoom        BookmarkType = "trade_boom"
	BookmarkExtinction       BookmarkType = "extinction"
	BookmarkStableSettlement BookmarkType = "stable_settlement"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type" db:"type"`
	Tick        uint64       `csv:"tick" json:"tick" db:"tick"`
	Description string       `csv:"description" json:"description" db:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the settlement's history.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPeak         int // peak population since the last crash
	stableWindowsCount int // consecutive windows with a stable population
	extinct            bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, cfg config.BookmarksConfig) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable settlement detection
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkExtinction(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkPopulationCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkTradeBoom(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStableSettlement(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.Population > bd.recentPeak {
		bd.recentPeak = stats.Population
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n of the most recent windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if stats.Population > 0 {
		bd.extinct = false
		return nil
	}
	if bd.extinct || (bd.recentPeak == 0 && stats.Deaths() == 0) {
		return nil
	}
	bd.extinct = true
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Settlement died out (peak population %d)", bd.recentPeak),
	}
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	c := bd.cfg.PopulationCrash
	dropPercent := 1.0 - float64(stats.Population)/float64(bd.recentPeak)
	if dropPercent > c.DropPercent && stats.Population <= bd.recentPeak-c.MinDrop {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Population

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Population),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkTradeBoom(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Trades
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	c := bd.cfg.TradeBoom
	if float64(stats.Trades) > avg*c.Multiplier && stats.Trades >= c.MinTrades {
		return &Bookmark{
			Type:        BookmarkTradeBoom,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d trades is %.1fx average (%.1f)", stats.Trades, float64(stats.Trades)/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableSettlement(stats WindowStats) *Bookmark {
	c := bd.cfg.StableSettlement
	if stats.Population < c.MinPopulation {
		bd.stableWindowsCount = 0
		return nil
	}

	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}

	pops := make([]float64, len(window))
	for i, h := range window {
		pops[i] = float64(h.Population)
	}
	mean, std := MeanStd(pops)

	if mean > 0 && std/mean < c.CVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == c.StableWindows { // trigger exactly once per stable run
		return &Bookmark{
			Type:        BookmarkStableSettlement,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable settlement of %d people over %d+ windows", stats.Population, c.StableWindows),
		}
	}

	return nil
}
