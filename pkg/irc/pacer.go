package irc

import (
	"sync"
	"time"
)

// pacer yields the delay observed after each outbound message. Delays grow
// geometrically toward max; a flood warning swaps the next delay for one
// long pause and restarts the sequence.
type pacer struct {
	mu         sync.Mutex
	initial    time.Duration
	max        time.Duration
	growth     float64
	floodPause time.Duration

	current time.Duration
	penalty bool
}

func newPacer(initial, max time.Duration, growth float64, floodPause time.Duration) *pacer {
	return &pacer{
		initial:    initial,
		max:        max,
		growth:     growth,
		floodPause: floodPause,
		current:    initial,
	}
}

func (p *pacer) next() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.penalty {
		p.penalty = false
		p.current = p.initial
		return p.floodPause
	}

	d := p.current
	grown := time.Duration(float64(p.current) * p.growth)
	if grown > p.max {
		grown = p.max
	}
	p.current = grown
	return d
}

// flood arms the penalty and reports whether it was not already armed.
func (p *pacer) flood() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.penalty {
		return false
	}
	p.penalty = true
	return true
}

func (p *pacer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.initial
	p.penalty = false
}

func (p *pacer) snapshot() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.penalty
}
