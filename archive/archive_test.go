package archive

import (
	"path/filepath"
	"testing"

	"github.com/pthm-cable/homestead/config"
	"github.com/pthm-cable/homestead/systems"
	"github.com/pthm-cable/homestead/telemetry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBeginAndFinishRun(t *testing.T) {
	db := openTestDB(t)
	cfg := config.Default()

	id, err := db.BeginRun(42, cfg)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := db.FinishRun(id, 300); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := db.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != id || r.Seed != 42 || r.FinalTick != 300 {
		t.Errorf("run = %+v", r)
	}
	if !r.FinishedAt.Valid {
		t.Error("finished_at not set")
	}
	if r.Width != cfg.World.Width || r.Height != cfg.World.Height {
		t.Errorf("world %dx%d, want %dx%d", r.Width, r.Height, cfg.World.Width, cfg.World.Height)
	}
	if r.Topology != cfg.World.Topology.String() {
		t.Errorf("topology = %q", r.Topology)
	}
	if r.Config == "" {
		t.Error("config not stored")
	}
}

func TestFinishUnknownRun(t *testing.T) {
	db := openTestDB(t)
	if err := db.FinishRun("missing", 1); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestTicksTradesAndSummary(t *testing.T) {
	db := openTestDB(t)
	id, err := db.BeginRun(7, config.Default())
	if err != nil {
		t.Fatal(err)
	}

	rows := []telemetry.TickStats{
		{Tick: 1, Population: 10, Births: 1, TreeApples: 5, TreeOranges: 4},
		{Tick: 2, Population: 12, Births: 2, Trades: 1, TradeVolume: 3},
		{Tick: 3, Population: 9, Deaths: 3},
	}
	if err := db.RecordTicks(id, rows); err != nil {
		t.Fatalf("RecordTicks: %v", err)
	}
	trades := []systems.TradeRecord{
		{Tick: 2, From: 1, To: 2, Apples: 1, Oranges: 2},
		{Tick: 3, From: 4, To: 3, Apples: 2, Oranges: 1},
	}
	if err := db.RecordTrades(id, trades); err != nil {
		t.Fatalf("RecordTrades: %v", err)
	}

	got, err := db.Ticks(id, 2)
	if err != nil {
		t.Fatalf("Ticks: %v", err)
	}
	if len(got) != 2 || got[0] != rows[1] || got[1] != rows[2] {
		t.Errorf("Ticks(2) = %+v", got)
	}

	gotTrades, err := db.Trades(id, 3, 3)
	if err != nil {
		t.Fatalf("Trades: %v", err)
	}
	if len(gotTrades) != 1 || gotTrades[0] != trades[1] {
		t.Errorf("Trades(3, 3) = %+v", gotTrades)
	}

	s, err := db.Summarize(id)
	if err != nil {
		t.Fatal(err)
	}
	want := Summary{
		Ticks:         3,
		Births:        3,
		Deaths:        3,
		PeakPop:       12,
		FinalPop:      9,
		Trades:        2,
		TradedApples:  3,
		TradedOranges: 3,
	}
	if s != want {
		t.Errorf("summary = %+v, want %+v", s, want)
	}
}

func TestDuplicateTickRollsBack(t *testing.T) {
	db := openTestDB(t)
	id, err := db.BeginRun(1, config.Default())
	if err != nil {
		t.Fatal(err)
	}

	rows := []telemetry.TickStats{{Tick: 1}, {Tick: 2}, {Tick: 2}}
	if err := db.RecordTicks(id, rows); err == nil {
		t.Fatal("expected primary key violation")
	}

	got, err := db.Ticks(id, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("partial batch committed: %d rows", len(got))
	}
}

func TestBookmarks(t *testing.T) {
	db := openTestDB(t)
	id, err := db.BeginRun(1, config.Default())
	if err != nil {
		t.Fatal(err)
	}

	marks := []telemetry.Bookmark{
		{Type: telemetry.BookmarkTradeBoom, Tick: 40, Description: "boom"},
		{Type: telemetry.BookmarkExtinction, Tick: 90, Description: "gone"},
	}
	for _, b := range marks {
		if err := db.RecordBookmark(id, b); err != nil {
			t.Fatalf("RecordBookmark: %v", err)
		}
	}

	got, err := db.Bookmarks(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != marks[0] || got[1] != marks[1] {
		t.Errorf("Bookmarks = %+v", got)
	}
}

func TestSummarizeEmptyRun(t *testing.T) {
	db := openTestDB(t)
	id, err := db.BeginRun(1, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	s, err := db.Summarize(id)
	if err != nil {
		t.Fatal(err)
	}
	if s != (Summary{}) {
		t.Errorf("summary = %+v, want zero", s)
	}
}
