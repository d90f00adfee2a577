package systems

import (
	"math"
	"testing"
	"testing/quick"
)

func TestSeasonRowCount(t *testing.T) {
	f := func(h, y uint8, tick uint16, frac uint8) bool {
		height := int(h%50) + 1
		year := int(y%200) + 1
		s := float64(frac%101) / 100

		want := int(math.Round(float64(height) * s))
		got := 0
		for row := 0; row < height; row++ {
			if InSeason(row, height, uint64(tick), year, s) {
				got++
			}
		}
		return got == want
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 500}); err != nil {
		t.Error(err)
	}
}

func TestSeasonAdvancesOneRowPerTickWhenYearMatchesHeight(t *testing.T) {
	const height = 12
	for tick := uint64(0); tick < 3*height; tick++ {
		cur := SeasonAt(tick, height, height, 0.25)
		next := SeasonAt(tick+1, height, height, 0.25)
		if want := (cur.StartRow + 1) % height; next.StartRow != want {
			t.Fatalf("tick %d: start %d -> %d, want %d", tick, cur.StartRow, next.StartRow, want)
		}
	}
}

func TestSeasonContains(t *testing.T) {
	tests := []struct {
		name   string
		season Season
		in     []int
		out    []int
	}{
		{
			name:   "no season",
			season: Season{StartRow: 3, Length: 0, Height: 10},
			out:    []int{0, 3, 9},
		},
		{
			name:   "whole year",
			season: Season{StartRow: 7, Length: 10, Height: 10},
			in:     []int{0, 6, 7, 9},
		},
		{
			name:   "plain band",
			season: Season{StartRow: 2, Length: 3, Height: 10},
			in:     []int{2, 3, 4},
			out:    []int{1, 5, 9},
		},
		{
			name:   "wrapping band",
			season: Season{StartRow: 8, Length: 4, Height: 10},
			in:     []int{8, 9, 0, 1},
			out:    []int{2, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, row := range tt.in {
				if !tt.season.Contains(row) {
					t.Errorf("row %d should be in season", row)
				}
			}
			for _, row := range tt.out {
				if tt.season.Contains(row) {
					t.Errorf("row %d should be out of season", row)
				}
			}
		})
	}
}

func TestSeasonClock(t *testing.T) {
	var c SeasonClock
	if c.Tick() != 0 {
		t.Fatalf("new clock at %d", c.Tick())
	}
	for i := uint64(1); i <= 5; i++ {
		if got := c.Advance(); got != i {
			t.Fatalf("Advance() = %d, want %d", got, i)
		}
	}
	c.Set(100)
	if c.Advance() != 101 {
		t.Errorf("clock did not continue after Set")
	}
}
