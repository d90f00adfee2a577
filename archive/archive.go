// Package archive stores run history in a SQLite database so runs can be
// compared after the fact.
package archive

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/systems"
	"github.com/pthm-cable/homestead/telemetry"
)

// Run is one archived simulation run.
type Run struct {
	ID         string         `db:"id"`
	Seed       int64          `db:"seed"`
	StartedAt  string         `db:"started_at"` // RFC 3339
	FinishedAt sql.NullString `db:"finished_at"`
	FinalTick  int64          `db:"final_tick"`
	Width      int            `db:"width"`
	Height     int            `db:"height"`
	Topology   string         `db:"topology"`
	Config     string         `db:"config"` // YAML
}

// Summary aggregates a run's archived history.
type Summary struct {
	Ticks         int64 `db:"ticks"`
	Births        int64 `db:"births"`
	Deaths        int64 `db:"deaths"`
	PeakPop       int64 `db:"peak_population"`
	FinalPop      int64 `db:"final_population"`
	Trades        int64 `db:"trades"`
	TradedApples  int64 `db:"traded_apples"`
	TradedOranges int64 `db:"traded_oranges"`
}

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		final_tick INTEGER NOT NULL DEFAULT 0,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		topology TEXT NOT NULL,
		config TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ticks (
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		tree_apples INTEGER NOT NULL,
		tree_oranges INTEGER NOT NULL,
		held_apples INTEGER NOT NULL,
		held_oranges INTEGER NOT NULL,
		population INTEGER NOT NULL,
		dead_pending INTEGER NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		trades INTEGER NOT NULL,
		trade_volume INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		from_id INTEGER NOT NULL,
		to_id INTEGER NOT NULL,
		apples INTEGER NOT NULL,
		oranges INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_run_tick ON trades(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_bookmarks_run ON bookmarks(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun registers a new run and returns its ID.
func (db *DB) BeginRun(seed int64, cfg *config.Config) (string, error) {
	data, err := cfg.YAML()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = db.conn.Exec(
		`INSERT INTO runs (id, seed, started_at, width, height, topology, config)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, seed, time.Now().UTC().Format(time.RFC3339), cfg.World.Width, cfg.World.Height,
		cfg.World.Topology.String(), string(data),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	slog.Info("archive run started", "run_id", id, "seed", seed)
	return id, nil
}

// FinishRun records the final tick of a run.
func (db *DB) FinishRun(runID string, finalTick uint64) error {
	res, err := db.conn.Exec(
		"UPDATE runs SET finished_at = ?, final_tick = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), int64(finalTick), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}

// RecordTicks appends history rows in one transaction.
func (db *DB) RecordTicks(runID string, rows []telemetry.TickStats) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO ticks
		(run_id, tick, tree_apples, tree_oranges, held_apples, held_oranges,
		 population, dead_pending, births, deaths, trades, trade_volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.Exec(runID, int64(r.Tick), r.TreeApples, r.TreeOranges, r.HeldApples, r.HeldOranges,
			r.Population, r.DeadPending, r.Births, r.Deaths, r.Trades, r.TradeVolume)
		if err != nil {
			return fmt.Errorf("insert tick %d: %w", r.Tick, err)
		}
	}

	return tx.Commit()
}

// RecordTrades appends trade records in one transaction.
func (db *DB) RecordTrades(runID string, trades []systems.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO trades (run_id, tick, from_id, to_id, apples, oranges)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, tr := range trades {
		if _, err := stmt.Exec(runID, int64(tr.Tick), tr.From, tr.To, tr.Apples, tr.Oranges); err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}

	return tx.Commit()
}

// RecordBookmark appends a bookmark.
func (db *DB) RecordBookmark(runID string, b telemetry.Bookmark) error {
	_, err := db.conn.Exec(
		"INSERT INTO bookmarks (run_id, tick, type, description) VALUES (?, ?, ?, ?)",
		runID, int64(b.Tick), string(b.Type), b.Description,
	)
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// Runs returns all runs, newest first.
func (db *DB) Runs() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs, "SELECT * FROM runs ORDER BY started_at DESC, id")
	return runs, err
}

// Ticks returns a run's history rows from tick from onward, in tick order.
func (db *DB) Ticks(runID string, from uint64) ([]telemetry.TickStats, error) {
	var rows []telemetry.TickStats
	err := db.conn.Select(&rows,
		`SELECT tick, tree_apples, tree_oranges, held_apples, held_oranges, population,
			dead_pending, births, deaths, trades, trade_volume
		FROM ticks WHERE run_id = ? AND tick >= ? ORDER BY tick`,
		runID, int64(from),
	)
	return rows, err
}

// Trades returns a run's trades in [from, to], in execution order.
func (db *DB) Trades(runID string, from, to uint64) ([]systems.TradeRecord, error) {
	var trades []systems.TradeRecord
	err := db.conn.Select(&trades,
		`SELECT tick, from_id, to_id, apples, oranges
		FROM trades WHERE run_id = ? AND tick BETWEEN ? AND ? ORDER BY id`,
		runID, int64(from), int64(to),
	)
	return trades, err
}

// Bookmarks returns a run's bookmarks in tick order.
func (db *DB) Bookmarks(runID string) ([]telemetry.Bookmark, error) {
	var bookmarks []telemetry.Bookmark
	err := db.conn.Select(&bookmarks,
		"SELECT type, tick, description FROM bookmarks WHERE run_id = ? ORDER BY tick, id",
		runID,
	)
	return bookmarks, err
}

// Summarize aggregates a run's archived history.
func (db *DB) Summarize(runID string) (Summary, error) {
	var s Summary
	err := db.conn.Get(&s,
		`SELECT
			COUNT(*) AS ticks,
			COALESCE(SUM(births), 0) AS births,
			COALESCE(SUM(deaths), 0) AS deaths,
			COALESCE(MAX(population), 0) AS peak_population,
			COALESCE((SELECT population FROM ticks WHERE run_id = ? ORDER BY tick DESC LIMIT 1), 0) AS final_population,
			(SELECT COUNT(*) FROM trades WHERE run_id = ?) AS trades,
			(SELECT COALESCE(SUM(apples), 0) FROM trades WHERE run_id = ?) AS traded_apples,
			(SELECT COALESCE(SUM(oranges), 0) FROM trades WHERE run_id = ?) AS traded_oranges
		FROM ticks WHERE run_id = ?`,
		runID, runID, runID, runID, runID,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize run: %w", err)
	}
	return s, nil
}
