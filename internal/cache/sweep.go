package cache

import (
	"context"
	"fmt"
	"time"
)

// EnablePeriodicCleanup starts a background sweep that removes entries idle
// for at least Config.MaxIdle (or interval, if MaxIdle is zero). At most one
// sweep runs per cache; enabling again replaces the running sweep.
func (c *Cache[V]) EnablePeriodicCleanup(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("cache: sweep interval must be positive, got %s", interval)
	}
	maxIdle := c.cfg.MaxIdle
	if maxIdle == 0 {
		maxIdle = interval
	}

	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()
	c.stopSweepLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.sweepCancel = cancel
	c.sweepDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.Sweep(maxIdle); n > 0 {
					c.logger.Debug("cache sweep", "removed", n, "remaining", c.Len())
				}
			}
		}
	}()
	c.logger.Debug("cache sweep enabled", "interval", interval, "max_idle", maxIdle)
	return nil
}

// DisablePeriodicCleanup stops the background sweep and waits for it to exit.
// It is a no-op when no sweep is running.
func (c *Cache[V]) DisablePeriodicCleanup() {
	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()
	c.stopSweepLocked()
}

// SweepEnabled reports whether a background sweep is running.
func (c *Cache[V]) SweepEnabled() bool {
	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()
	return c.sweepCancel != nil
}

// Close stops the background sweep. The cache remains usable.
func (c *Cache[V]) Close() error {
	c.DisablePeriodicCleanup()
	return nil
}

// Sweep removes entries that have not been used for at least maxIdle and
// returns how many were removed.
func (c *Cache[V]) Sweep(maxIdle time.Duration) int {
	cutoff := c.now().Add(-maxIdle).UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for _, key := range c.entries.Keys() {
		e, ok := c.entries.Peek(key)
		if !ok {
			continue
		}
		if e.lastUsed.Load() <= cutoff {
			c.entries.Remove(key)
			removed++
		}
	}
	c.stats.sweeps.Add(1)
	return removed
}

func (c *Cache[V]) stopSweepLocked() {
	if c.sweepCancel == nil {
		return
	}
	c.sweepCancel()
	<-c.sweepDone
	c.sweepCancel = nil
	c.sweepDone = nil
}
