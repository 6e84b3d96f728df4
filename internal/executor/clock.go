package executor

import "sync/atomic"

// Sequencer stamps invocation records. Values must increase strictly so
// that a log sorted by seq replays calls in the order they were made.
type Sequencer interface {
	Next() int64
}

// Clock is the default Sequencer. It counts calls, not time, so two
// recordings of the same call sequence carry the same seq values.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock whose first Next is start+1. Pass the
// store's MaxSeq to append to an existing invocation log.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next stamps one record.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current is the seq of the last stamped record, or the start value.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
