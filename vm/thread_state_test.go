package vm

import "testing"

func TestThreadStateContainerResetAndSetState(t *testing.T) {
	c := &ThreadStateContainer{}
	c.Reset(3, func(w int) interface{} { return w * 10 })
	if c.Len() != 3 {
		t.Fatalf("expected 3 states, got %d", c.Len())
	}
	c.SetState(1, 999)
	if v := c.State(1).(int); v != 999 {
		t.Fatalf("expected worker 1's state to be replaced, got %d", v)
	}
	if v := c.State(0).(int); v != 0 {
		t.Fatalf("expected worker 0's factory value unchanged, got %d", v)
	}
}

func TestThreadStateContainerIterateVisitsEveryWorkerInOrder(t *testing.T) {
	c := &ThreadStateContainer{}
	c.Reset(4, func(w int) interface{} { return w })
	var seen []int
	c.Iterate(func(i int, state interface{}) {
		seen = append(seen, state.(int))
	})
	for i, v := range seen {
		if v != i {
			t.Fatalf("expected worker states visited in order, got %v", seen)
		}
	}
	if len(seen) != 4 {
		t.Fatalf("expected all 4 workers visited, got %d", len(seen))
	}
}

func TestThreadStateContainerCancelStopsIterateEarly(t *testing.T) {
	c := &ThreadStateContainer{}
	c.Reset(5, func(w int) interface{} { return w })
	var seen []int
	c.Iterate(func(i int, state interface{}) {
		seen = append(seen, state.(int))
		if i == 1 {
			c.Cancel()
		}
	})
	if len(seen) != 2 {
		t.Fatalf("expected iterate to stop right after cancel, visited %v", seen)
	}
	if !c.Cancelled() {
		t.Fatalf("expected container to report cancelled")
	}

	// Reset clears the cancellation for the container's next use.
	c.Reset(2, func(w int) interface{} { return w })
	if c.Cancelled() {
		t.Fatalf("expected Reset to clear a prior cancellation")
	}
}
