package clock

import (
	"testing"
	"time"

	"github.com/deedprotocol/escrow-backend/interfaces"
	"github.com/stretchr/testify/assert"
)

func TestManualClock(t *testing.T) {
	c := NewManual(10)
	assert.Equal(t, interfaces.Timestamp(10), c.Now())

	c.Advance(5)
	assert.Equal(t, interfaces.Timestamp(15), c.Now())

	c.Advance(-3)
	assert.Equal(t, interfaces.Timestamp(15), c.Now(), "clock never goes backwards")

	c.Set(12)
	assert.Equal(t, interfaces.Timestamp(15), c.Now())

	c.Set(42)
	assert.Equal(t, interfaces.Timestamp(42), c.Now())
}

func TestWallClockMonotonic(t *testing.T) {
	c := NewWall(time.Now().Add(-90 * time.Minute))

	first := c.Now()
	assert.Equal(t, interfaces.Timestamp(90), first)

	second := c.Now()
	assert.GreaterOrEqual(t, second, first)
}
