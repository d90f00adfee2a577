package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/homestead/archive"
	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/game"
	"github.com/pthm-cable/homestead/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = until extinction)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	snapshotEvery := flag.Uint64("snapshot-every", 0, "Save a snapshot every N ticks (0 = bookmarks only)")
	archivePath := flag.String("archive", "", "SQLite run archive (empty = disabled)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	resume := flag.String("resume", "", "Resume from a snapshot file")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(*seed, *maxTicks, *outputDir, *snapshotDir, *snapshotEvery, *archivePath, *logStats, *resume); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(seed int64, maxTicks int, outputDir, snapshotDir string, snapshotEvery uint64, archivePath string, logStats bool, resume string) error {
	rngSeed := seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	rec := &recorder{output: output, snapDir: snapshotDir, every: snapshotEvery}

	var g *game.Game
	if resume != "" {
		snapshot, err := telemetry.LoadSnapshot(resume)
		if err != nil {
			output.Close()
			return err
		}
		g, err = game.Restore(snapshot, rec.options(snapshot.Seed, logStats))
		if err != nil {
			output.Close()
			return err
		}
		slog.Info("resumed from snapshot", "path", resume, "tick", snapshot.Tick, "seed", snapshot.Seed)
	} else {
		g = game.NewGameWithOptions(rec.options(rngSeed, logStats))
	}
	defer g.Close()
	rec.game = g

	if err := output.WriteConfig(g.Config()); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if archivePath != "" {
		db, err := archive.Open(archivePath)
		if err != nil {
			output.Close()
			return err
		}
		runID, err := db.BeginRun(g.Seed(), g.Config())
		if err != nil {
			db.Close()
			output.Close()
			return err
		}
		rec.db = db
		rec.runID = runID
	}

	slog.Info("starting simulation",
		"seed", g.Seed(),
		"tick", g.Tick(),
		"max_ticks", maxTicks,
		"population", g.Population(),
		"output_dir", output.Dir(),
	)

	start := time.Now()
	startTick := g.Tick()
	for {
		g.Step()
		rec.afterStep()

		if maxTicks > 0 && g.Tick() >= uint64(maxTicks) {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
		if g.Population() == 0 {
			slog.Info("settlement extinct", "tick", g.Tick())
			break
		}
	}

	g.LogWorldState()
	err = rec.close()
	summarize(g, rec, time.Since(start), g.Tick()-startTick)
	return err
}

// summarize logs a human-readable end-of-run summary.
func summarize(g *game.Game, rec *recorder, elapsed time.Duration, ticks uint64) {
	var births, deaths, trades, volume int
	for _, row := range g.History().Rows() {
		births += row.Births
		deaths += row.Deaths
		trades += row.Trades
		volume += row.TradeVolume
	}

	rate := 0.0
	if s := elapsed.Seconds(); s > 0 {
		rate = float64(ticks) / s
	}

	slog.Info("run finished",
		"ticks", humanize.Comma(int64(ticks)),
		"elapsed", elapsed.Round(time.Millisecond).String(),
		"ticks_per_sec", humanize.CommafWithDigits(rate, 1),
		"population", humanize.Comma(int64(g.Population())),
		"births", humanize.Comma(int64(births)),
		"deaths", humanize.Comma(int64(deaths)),
		"trades", humanize.Comma(int64(trades)),
		"traded_units", humanize.Comma(int64(volume)),
		"snapshots", rec.snapshots,
		"hall_of_fame", g.HallOfFame().Size(),
	)
}
