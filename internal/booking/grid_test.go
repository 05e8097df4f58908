package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGrid(t *testing.T, open, close string) Grid {
	t.Helper()
	g, err := NewGrid(open, close, DefaultStep)
	require.NoError(t, err)
	return g
}

func TestNewGrid_RejectsBadBounds(t *testing.T) {
	_, err := NewGrid("20:00", "09:00", DefaultStep)
	assert.Error(t, err)

	_, err = NewGrid("9am", "20:00", DefaultStep)
	assert.Error(t, err)

	_, err = NewGrid("09:00", "20:00", 0)
	assert.Error(t, err)
}

func TestSlots_CoversOpenToCloseExclusive(t *testing.T) {
	g := mustGrid(t, "09:00", "20:00")
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	slots := g.Slots(day)

	require.Len(t, slots, 22)
	assert.Equal(t, "09:00", slots[0].Format("15:04"))
	assert.Equal(t, "09:30", slots[1].Format("15:04"))
	assert.Equal(t, "19:30", slots[len(slots)-1].Format("15:04"))
	for _, s := range slots {
		assert.Equal(t, day.Day(), s.Day())
	}
}

func TestAligned(t *testing.T) {
	g := mustGrid(t, "09:00", "20:00")
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, g.Aligned(day.Add(9*time.Hour)))
	assert.True(t, g.Aligned(day.Add(10*time.Hour+30*time.Minute)))
	assert.False(t, g.Aligned(day.Add(10*time.Hour+17*time.Minute)), "off-grid minute")
	assert.False(t, g.Aligned(day.Add(8*time.Hour+30*time.Minute)), "before opening")
	assert.False(t, g.Aligned(day.Add(20*time.Hour)), "at close, exclusive")
}
