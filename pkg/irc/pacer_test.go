package irc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacerGrowsTowardCap(t *testing.T) {
	p := newPacer(1500*time.Millisecond, 5*time.Second, 1.05, 15*time.Second)

	assert.Equal(t, 1500*time.Millisecond, p.next())
	assert.Equal(t, 1575*time.Millisecond, p.next())

	var last time.Duration
	for i := 0; i < 100; i++ {
		last = p.next()
	}
	assert.Equal(t, 5*time.Second, last)
}

func TestPacerFloodPauseOnceThenReset(t *testing.T) {
	p := newPacer(1500*time.Millisecond, 5*time.Second, 1.05, 15*time.Second)
	p.next()
	p.next()

	assert.True(t, p.flood())
	assert.False(t, p.flood(), "second warning while armed")

	assert.Equal(t, 15*time.Second, p.next())
	assert.Equal(t, 1500*time.Millisecond, p.next())
	assert.True(t, p.flood(), "re-armed after the pause was consumed")
}

func TestPacerReset(t *testing.T) {
	p := newPacer(time.Second, 5*time.Second, 2, 15*time.Second)
	p.next()
	p.next()
	p.flood()

	p.reset()

	current, penalty := p.snapshot()
	assert.Equal(t, time.Second, current)
	assert.False(t, penalty)
}
