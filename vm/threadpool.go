package vm

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ThreadPool backs the VM's parallel opcode variants (ParallelScanTable,
// AggregationHashTableParallelPartitionedScan, JoinHashTableBuildParallel,
// SorterSortParallel, SorterSortTopKParallel — spec §5) with a bounded
// errgroup fan-out instead of a hand-rolled worker-pool: the OS thread
// pool implementation itself is an external collaborator per spec §1, so
// this only needs to say "run these N closures across the available
// goroutines and join," which is exactly what errgroup.SetLimit gives.
type ThreadPool struct {
	maxWorkers int
}

func NewThreadPool(maxWorkers int) *ThreadPool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &ThreadPool{maxWorkers: maxWorkers}
}

// Run partitions [0, n) across the pool and calls fn once per partition
// index, blocking until every partition finishes or one returns an error.
func (p *ThreadPool) Run(n int, fn func(worker int) error) error {
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(p.maxWorkers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

func (p *ThreadPool) NumWorkers() int { return p.maxWorkers }
