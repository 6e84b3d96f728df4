package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/mirror/internal/executor"
)

// SequentialIDs generates "<prefix>-0001", "<prefix>-0002", ... so that
// recorded invocations have stable IDs across runs.
//
// Unlike executor.FixedGenerator it never runs out.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

var _ executor.IDGenerator = (*SequentialIDs)(nil)

// NewSequentialIDs creates a generator. An empty prefix defaults to "inv".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "inv"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Reset restarts numbering at 1.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
