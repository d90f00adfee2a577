package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/grid"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Seed:     42,
		Width:    64,
		Height:   48,
		Topology: grid.WrappedVertical,
		Tick:     1000,
		NextID:   17,
		People: []PersonState{
			{
				ID:            3,
				Sex:           components.Female,
				Age:           420,
				BirthTick:     580,
				FatherID:      1,
				MotherID:      2,
				X:             -5,
				Y:             70,
				HungerApples:  0.4,
				HungerOranges: 1.2,
				Apples:        6,
				Oranges:       2,
				State:         components.StateMovingTo,
				Dest:          grid.Coords{X: -3, Y: 71},
				LastNeed:      components.NeedSeekFood,
				Memory:        []components.Site{{At: grid.Coords{X: 1, Y: 2}, Type: components.Orange}},
			},
			{ID: 4, State: components.StateDead, TTL: 3, Cause: components.CauseStarvation},
		},
		Trees: []TreeState{
			{X: 10, Y: 12, Type: components.Orange, Stock: 2},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkTradeBoom,
			Tick:        1000,
			Description: "Test bookmark",
		},
		Lifetime: map[uint32]*LifetimeStats{
			3: {BirthTick: 580, Children: 1, Trades: 4},
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Seed != 42 || loaded.Tick != 1000 || loaded.NextID != 17 {
		t.Errorf("header mismatch: seed=%d tick=%d next=%d", loaded.Seed, loaded.Tick, loaded.NextID)
	}
	if loaded.Topology != grid.WrappedVertical || loaded.Width != 64 || loaded.Height != 48 {
		t.Errorf("world mismatch: %v %dx%d", loaded.Topology, loaded.Width, loaded.Height)
	}
	if len(loaded.People) != 2 || len(loaded.Trees) != 1 {
		t.Fatalf("got %d people, %d trees", len(loaded.People), len(loaded.Trees))
	}
	p := loaded.People[0]
	if p.X != -5 || p.Y != 70 || p.Dest != (grid.Coords{X: -3, Y: 71}) || p.State != components.StateMovingTo {
		t.Errorf("person mismatch: %+v", p)
	}
	if p.HungerOranges != 1.2 || p.Apples != 6 || len(p.Memory) != 1 {
		t.Errorf("person needs mismatch: %+v", p)
	}
	if loaded.People[1].TTL != 3 || loaded.People[1].Cause != components.CauseStarvation {
		t.Errorf("dead person mismatch: %+v", loaded.People[1])
	}
	if loaded.Trees[0] != snapshot.Trees[0] {
		t.Errorf("tree mismatch: %+v", loaded.Trees[0])
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkTradeBoom {
		t.Errorf("bookmark mismatch: %+v", loaded.Bookmark)
	}
	if ls := loaded.Lifetime[3]; ls == nil || ls.Trades != 4 {
		t.Errorf("lifetime mismatch: %+v", ls)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:  SnapshotVersion,
		Tick:     5000,
		Bookmark: &Bookmark{Type: BookmarkPopulationCrash, Tick: 5000},
	}
	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "snapshot_5000_population_crash.json.zst"); path != want {
		t.Errorf("Path mismatch: got %s, want %s", path, want)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "snapshot_3000.json.zst"); path != want {
		t.Errorf("Path mismatch: got %s, want %s", path, want)
	}
}

func TestLoadSnapshotErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := LoadSnapshot(filepath.Join(tmpDir, "missing.json.zst")); err == nil {
		t.Error("expected error for missing file")
	}

	plain := filepath.Join(tmpDir, "plain.json")
	if err := os.WriteFile(plain, []byte(`{"version":1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(plain); err == nil {
		t.Error("expected error for uncompressed file")
	}

	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion + 1}, tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unknown version")
	}
}
