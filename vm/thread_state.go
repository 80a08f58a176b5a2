package vm

import "sync"

// ThreadStateContainer owns one per-worker scratch state for a parallel
// opcode fan-out (spec §4.1 "ThreadStateContainer"): each worker gets its
// own aggregation hash table partition, sorter, or similar, merged by the
// caller once every worker finishes.
type ThreadStateContainer struct {
	mu        sync.Mutex
	states    []interface{}
	cancelled bool
}

// Reset allocates n fresh states via factory, discarding any previous ones
// and clearing any prior cancellation.
func (c *ThreadStateContainer) Reset(n int, factory func(workerID int) interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = make([]interface{}, n)
	for i := range c.states {
		c.states[i] = factory(i)
	}
	c.cancelled = false
}

func (c *ThreadStateContainer) State(i int) interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[i]
}

// SetState replaces worker i's state, called once that worker has finished
// computing its share of the parallel work.
func (c *ThreadStateContainer) SetState(i int, state interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[i] = state
}

func (c *ThreadStateContainer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.states)
}

// Cancel marks the container cancelled. An Iterate already in progress, or
// one started afterward, stops visiting further worker states (spec §5:
// cancellation is "checked... per thread-state iterate").
func (c *ThreadStateContainer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = true
}

func (c *ThreadStateContainer) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// Iterate visits every worker's state in order, e.g. for a serial merge
// after a parallel scan finishes. Stops early once Cancel has been called.
func (c *ThreadStateContainer) Iterate(fn func(i int, state interface{})) {
	c.mu.Lock()
	states := append([]interface{}(nil), c.states...)
	c.mu.Unlock()
	for i, s := range states {
		if c.Cancelled() {
			return
		}
		fn(i, s)
	}
}
