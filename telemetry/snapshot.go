package telemetry

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/pthm-cable/homestead/components"
	"github.com/pthm-cable/homestead/grid"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete settlement state for resuming a run.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`

	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Topology grid.Topology `json:"topology"`

	Tick   uint64 `json:"tick"`
	NextID uint32 `json:"next_id"` // last allocated person ID

	People []PersonState `json:"people"`
	Trees  []TreeState   `json:"trees"`

	Bookmark *Bookmark                 `json:"bookmark,omitempty"`
	Lifetime map[uint32]*LifetimeStats `json:"lifetime,omitempty"`
}

// PersonState holds one person's complete state. Positions are virtual
// coordinates.
type PersonState struct {
	ID        uint32         `json:"id"`
	Sex       components.Sex `json:"sex"`
	Age       int            `json:"age"`
	BirthTick uint64         `json:"birth_tick"`
	FatherID  uint32         `json:"father_id,omitempty"`
	MotherID  uint32         `json:"mother_id,omitempty"`

	X int `json:"x"`
	Y int `json:"y"`

	HungerApples  float32 `json:"hunger_apples"`
	HungerOranges float32 `json:"hunger_oranges"`
	Apples        int     `json:"apples"`
	Oranges       int     `json:"oranges"`

	State    components.State      `json:"state"`
	Dest     grid.Coords           `json:"dest"`
	TTL      int                   `json:"ttl,omitempty"`
	Cause    components.DeathCause `json:"cause,omitempty"`
	LastNeed components.Need       `json:"last_need,omitempty"`

	Memory []components.Site `json:"memory,omitempty"`
}

// TreeState holds one food source.
type TreeState struct {
	X     int                 `json:"x"`
	Y     int                 `json:"y"`
	Type  components.FoodType `json:"type"`
	Stock int                 `json:"stock"`
}

// SnapshotName returns the file name a snapshot is saved under.
func SnapshotName(tick uint64, bookmark *Bookmark) string {
	name := fmt.Sprintf("snapshot_%d", tick)
	if bookmark != nil {
		sanitized := strings.ReplaceAll(string(bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", tick, sanitized)
	}
	return name + ".json.zst"
}

// SaveSnapshot writes a zstd-compressed JSON snapshot to dir.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (path string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path = filepath.Join(dir, SnapshotName(snapshot.Tick, snapshot.Bookmark))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close snapshot: %w", cerr)
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return "", fmt.Errorf("zstd writer: %w", err)
	}

	bw := bufio.NewWriterSize(enc, 256*1024)
	if err := json.NewEncoder(bw).Encode(snapshot); err != nil {
		enc.Close()
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := errors.Join(bw.Flush(), enc.Close()); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	var snapshot Snapshot
	if err := json.NewDecoder(bufio.NewReaderSize(dec, 256*1024)).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
