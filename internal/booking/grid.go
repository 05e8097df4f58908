package booking

import (
	"fmt"
	"time"
)

// Grid is the fixed daily slot layout. Open is inclusive, Close exclusive:
// a 09:00-20:00 grid with a 30m step ends at the 19:30 slot.
type Grid struct {
	Open  time.Duration // offset from midnight
	Close time.Duration
	Step  time.Duration
}

const DefaultStep = 30 * time.Minute

func NewGrid(open, close string, step time.Duration) (Grid, error) {
	o, err := parseClock(open)
	if err != nil {
		return Grid{}, err
	}
	c, err := parseClock(close)
	if err != nil {
		return Grid{}, err
	}
	if step <= 0 {
		return Grid{}, fmt.Errorf("grid: step must be positive")
	}
	if c <= o {
		return Grid{}, fmt.Errorf("grid: close %s not after open %s", close, open)
	}
	return Grid{Open: o, Close: c, Step: step}, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("grid: bad clock value %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Slots returns every grid instant of the given day, in order.
func (g Grid) Slots(day time.Time) []time.Time {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var out []time.Time
	for off := g.Open; off < g.Close; off += g.Step {
		out = append(out, midnight.Add(off))
	}
	return out
}

// Aligned reports whether t sits exactly on a slot of its day.
func (g Grid) Aligned(t time.Time) bool {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	off := t.Sub(midnight)
	if off < g.Open || off >= g.Close {
		return false
	}
	return (off-g.Open)%g.Step == 0
}
