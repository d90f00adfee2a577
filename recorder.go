package main

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/homestead/archive"
	"github.com/pthm-cable/homestead/game"
	"github.com/pthm-cable/homestead/systems"
	"github.com/pthm-cable/homestead/telemetry"
)

// flushRows is how many history rows are buffered before they are written.
const flushRows = 256

// recorder routes game callbacks to the output directory, the snapshot
// directory and the run archive. Any of them may be disabled.
type recorder struct {
	game    *game.Game
	output  *telemetry.OutputManager
	db      *archive.DB
	runID   string
	snapDir string
	every   uint64 // periodic snapshot interval, 0 = off

	rows      []telemetry.TickStats
	trades    []systems.TradeRecord
	bookmarks []telemetry.Bookmark
	snapshots int
}

// options returns game options whose callbacks feed the recorder.
func (r *recorder) options(seed int64, logStats bool) game.Options {
	return game.Options{
		Seed:     seed,
		LogStats: logStats,
		StatsCallback: func(ws telemetry.WindowStats, ps telemetry.PerfStats) {
			if err := r.output.WriteTelemetry(ws); err != nil {
				slog.Error("failed to write telemetry", "error", err)
			}
			if err := r.output.WritePerf(ps, ws.WindowEndTick); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		},
		BookmarkCallback: func(b telemetry.Bookmark) {
			r.bookmarks = append(r.bookmarks, b)
		},
		TickCallback: func(row telemetry.TickStats, trades []systems.TradeRecord) {
			r.rows = append(r.rows, row)
			r.trades = append(r.trades, trades...)
		},
	}
}

// afterStep handles everything queued during the last tick. Snapshots are
// taken here rather than in the callbacks so the world is between ticks.
func (r *recorder) afterStep() {
	for i := range r.bookmarks {
		b := r.bookmarks[i]
		if err := r.output.WriteBookmark(b); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if r.db != nil {
			if err := r.db.RecordBookmark(r.runID, b); err != nil {
				slog.Error("failed to archive bookmark", "error", err)
			}
		}
		r.snapshot(&b)
	}
	r.bookmarks = r.bookmarks[:0]

	if r.every > 0 && r.game.Tick()%r.every == 0 {
		r.snapshot(nil)
	}

	if len(r.rows) >= flushRows {
		r.flush()
	}
}

func (r *recorder) snapshot(b *telemetry.Bookmark) {
	if r.snapDir == "" {
		return
	}
	path, err := telemetry.SaveSnapshot(r.game.Snapshot(b), r.snapDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	r.snapshots++
	slog.Info("snapshot saved", "tick", r.game.Tick(), "path", path)
}

// flush writes buffered history rows and trades.
func (r *recorder) flush() {
	if len(r.rows) == 0 && len(r.trades) == 0 {
		return
	}
	err := errors.Join(
		r.output.WriteHistory(r.rows),
		r.output.WriteTrades(r.trades),
	)
	if r.db != nil {
		err = errors.Join(err,
			r.db.RecordTicks(r.runID, r.rows),
			r.db.RecordTrades(r.runID, r.trades),
		)
	}
	if err != nil {
		slog.Error("failed to write history", "error", err)
	}
	r.rows = r.rows[:0]
	r.trades = r.trades[:0]
}

// close flushes what is left and finalizes every sink.
func (r *recorder) close() error {
	r.flush()
	var errs []error
	if r.output != nil {
		errs = append(errs, r.output.WriteHallOfFame(r.game.HallOfFame()), r.output.Close())
	}
	if r.db != nil {
		errs = append(errs, r.db.FinishRun(r.runID, r.game.Tick()), r.db.Close())
	}
	return errors.Join(errs...)
}
