package systems

import "math"

// SeasonClock counts ticks. It never resets.
type SeasonClock struct {
	tick uint64
}

// Advance moves the clock forward by one tick and returns the new tick.
func (c *SeasonClock) Advance() uint64 {
	c.tick++
	return c.tick
}

// Tick returns the current tick.
func (c *SeasonClock) Tick() uint64 {
	return c.tick
}

// Set restores the clock, e.g. from a snapshot.
func (c *SeasonClock) Set(tick uint64) {
	c.tick = tick
}

// Season is the band of grid rows currently in the growing season. The band
// starts at a row proportional to the position within the year and covers
// round(height * fraction) rows, wrapping past the last row.
type Season struct {
	StartRow int
	Length   int
	Height   int
}

// SeasonAt computes the growing season band for a tick.
func SeasonAt(tick uint64, height, yearLength int, fraction float64) Season {
	if height <= 0 || yearLength <= 0 {
		return Season{Height: height}
	}
	length := int(math.Round(float64(height) * fraction))
	phase := float64(tick%uint64(yearLength)) / float64(yearLength)
	start := int(math.Round(float64(height)*phase)) % height
	return Season{StartRow: start, Length: length, Height: height}
}

// Contains reports whether a row is in season. Start, end and row are
// normalised to [0, 1); the band wraps when end is not after start.
func (s Season) Contains(row int) bool {
	if s.Length <= 0 {
		return false
	}
	if s.Length >= s.Height {
		return true
	}
	h := float64(s.Height)
	start := float64(s.StartRow) / h
	end := float64((s.StartRow+s.Length)%s.Height) / h
	pos := float64(row) / h
	if start < end {
		return start <= pos && pos < end
	}
	return pos >= start || pos < end
}

// InSeason reports whether a row is in the growing season at a tick.
func InSeason(row, height int, tick uint64, yearLength int, fraction float64) bool {
	return SeasonAt(tick, height, yearLength, fraction).Contains(row)
}
