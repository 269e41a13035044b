// Package debounce implements trailing-edge write coalescing: each field
// key holds at most one pending flush, and every new edit inside the
// quiet window cancels and re-arms the timer, so only the last value
// before a quiet period is ever written out.
package debounce

import (
	"sync"
	"time"
)

// FlushFunc runs when a field's quiet window elapses. It receives the
// sequence number assigned to the edit that armed the timer; callers tag
// the remote write with it so a stale flush can be discarded downstream.
type FlushFunc func(seq uint64)

type pendingWrite struct {
	timer *time.Timer
	seq   uint64
	flush FlushFunc
}

type Coordinator struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]*pendingWrite
	seq     map[string]uint64
	wg      sync.WaitGroup
	closed  bool
}

func New(window time.Duration) *Coordinator {
	return &Coordinator{
		window:  window,
		pending: make(map[string]*pendingWrite),
		seq:     make(map[string]uint64),
	}
}

// Schedule records a local edit to the field: the field moves to (or
// stays in) PendingWrite with a freshly armed timer. The returned
// sequence number is strictly increasing per field. Flushes already
// dispatched are not cancelled; writes are fire-and-forget once the
// timer fires.
func (c *Coordinator) Schedule(field string, flush FlushFunc) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.seq[field]
	}

	if prev, ok := c.pending[field]; ok {
		if prev.timer.Stop() {
			c.wg.Done()
		}
		// If Stop lost the race the fired callback sees a newer
		// sequence below and backs out on its own.
	}

	c.seq[field]++
	seq := c.seq[field]

	write := &pendingWrite{seq: seq, flush: flush}
	c.wg.Add(1)
	write.timer = time.AfterFunc(c.window, func() {
		defer c.wg.Done()
		c.mu.Lock()
		if current, ok := c.pending[field]; !ok || current.seq != seq {
			c.mu.Unlock()
			return
		}
		delete(c.pending, field)
		c.mu.Unlock()
		flush(seq)
	})
	c.pending[field] = write
	return seq
}

// Cancel drops the pending write for a field without flushing it.
func (c *Coordinator) Cancel(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if write, ok := c.pending[field]; ok {
		if write.timer.Stop() {
			c.wg.Done()
		}
		delete(c.pending, field)
	}
}

// Pending reports whether the field currently has an armed timer.
func (c *Coordinator) Pending(field string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[field]
	return ok
}

// Flush fires every pending write immediately. Used when a session is
// evicted or the server shuts down, so the last edits are not lost to a
// timer that never gets to fire.
func (c *Coordinator) Flush() {
	c.mu.Lock()
	for field, write := range c.pending {
		if !write.timer.Stop() {
			// The timer already fired; its callback is in flight and
			// does its own bookkeeping.
			continue
		}
		delete(c.pending, field)
		go func(write *pendingWrite) {
			defer c.wg.Done()
			write.flush(write.seq)
		}(write)
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Close flushes pending writes and rejects further scheduling.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.Flush()
}
