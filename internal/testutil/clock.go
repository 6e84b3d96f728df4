package testutil

import (
	"sync"

	"github.com/roach88/mirror/internal/executor"
)

// DeterministicClock stamps harness recordings. Reset rewinds it so a
// scenario rerun against a fresh store yields the same trace seqs.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

var _ executor.Sequencer = (*DeterministicClock)(nil)

// NewDeterministicClock returns a clock whose first Next is 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current is the last seq handed out.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
