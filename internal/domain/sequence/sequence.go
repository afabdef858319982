// Package sequence provides the monotonic transaction sequence counter.
//
// Every mutating transaction consumes the next value; read paths observe
// the current value without consuming one. The counter stands in for the
// block height the surrounding environment would otherwise supply.
package sequence

import "sync/atomic"

// Counter issues strictly increasing sequence numbers. The zero value is
// ready to use; the first Next returns 1.
type Counter struct {
	n atomic.Uint64
}

// Next consumes and returns the next sequence number.
func (c *Counter) Next() uint64 {
	return c.n.Add(1)
}

// Current returns the most recently issued sequence number without
// consuming one.
func (c *Counter) Current() uint64 {
	return c.n.Load()
}

// Restore fast-forwards the counter to at least seq so new transactions
// continue past a replayed journal head. It never moves the counter
// backwards.
func (c *Counter) Restore(seq uint64) {
	for {
		cur := c.n.Load()
		if cur >= seq || c.n.CompareAndSwap(cur, seq) {
			return
		}
	}
}
