package exec

import (
	"container/heap"
	"sort"

	"relcore/types"
	"relcore/vm"
)

// SortKey is one ORDER BY term's evaluated value plus its direction.
type SortKey struct {
	Values     []types.Value
	Descending []bool
}

// Sorter is the OrderBy pipeline breaker's build side (spec §4.5):
// AllocTuple reserves a row slot during the build phase, Sort finalizes
// ordering once every row has been added, and a topK set at construction
// keeps only the first K rows once all buffered rows have been sorted.
type Sorter struct {
	rows    [][]types.Value
	keyIdx  []int
	desc    []bool
	topK    int // 0 means sort everything
	sorted  bool
}

func NewSorter(keyIdx []int, desc []bool, topK int) *Sorter {
	return &Sorter{keyIdx: keyIdx, desc: desc, topK: topK}
}

// AllocTuple reserves storage for one row and returns it for the caller to
// fill in column by column, mirroring the bytecode's per-row build-phase
// intrinsic call.
func (s *Sorter) AllocTuple(numCols int) []types.Value {
	row := make([]types.Value, numCols)
	s.rows = append(s.rows, row)
	s.sorted = false
	return row
}

func (s *Sorter) less(a, b []types.Value) bool {
	for i, idx := range s.keyIdx {
		c := a[idx].Compare(b[idx])
		if c == 0 {
			continue
		}
		if i < len(s.desc) && s.desc[i] {
			return c > 0
		}
		return c < 0
	}
	return false
}

// Sort orders every buffered row (spec §4.5 "Sort"). If topK was set at
// construction, only the first topK rows are kept.
func (s *Sorter) Sort() {
	sort.Slice(s.rows, func(i, j int) bool { return s.less(s.rows[i], s.rows[j]) })
	if s.topK > 0 && len(s.rows) > s.topK {
		s.rows = s.rows[:s.topK]
	}
	s.sorted = true
}

func (s *Sorter) NumRows() int { return len(s.rows) }

func (s *Sorter) Row(i int) []types.Value { return s.rows[i] }

// Merge appends another sorter's unsorted rows into this one, used to
// combine per-worker partitions after SorterSortParallel (spec §5).
func (s *Sorter) Merge(other *Sorter) {
	s.rows = append(s.rows, other.rows...)
	s.sorted = false
}

// SortParallel is SorterSortParallel (spec §5): it partitions the buffered
// rows across pool's workers, sorts each partition concurrently, then
// k-way merges the sorted partitions back together. Callers gate on row
// count before choosing this over Sort — below vm.Settings'
// MinTableSizeForParallelScan the fan-out and merge overhead isn't worth
// it, so small inputs should still call Sort directly.
func (s *Sorter) SortParallel(pool *vm.ThreadPool) {
	n := len(s.rows)
	workers := pool.NumWorkers()
	if workers < 2 || n < workers*2 {
		s.Sort()
		return
	}

	chunk := (n + workers - 1) / workers
	tsc := &vm.ThreadStateContainer{}
	tsc.Reset(workers, func(w int) interface{} { return [][]types.Value(nil) })
	err := pool.Run(workers, func(w int) error {
		lo := w * chunk
		if lo >= n {
			return nil
		}
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		part := append([][]types.Value(nil), s.rows[lo:hi]...)
		sort.Slice(part, func(i, j int) bool { return s.less(part[i], part[j]) })
		tsc.SetState(w, part)
		return nil
	})
	if err != nil {
		s.Sort()
		return
	}

	partitions := make([][][]types.Value, workers)
	tsc.Iterate(func(i int, state interface{}) {
		if part, ok := state.([][]types.Value); ok {
			partitions[i] = part
		}
	})

	s.rows = mergeSortedPartitions(partitions, s.less)
	if s.topK > 0 && len(s.rows) > s.topK {
		s.rows = s.rows[:s.topK]
	}
	s.sorted = true
}

type mergeItem struct {
	row  []types.Value
	part int
	idx  int
}

type mergeHeap struct {
	items []mergeItem
	less  func(a, b []types.Value) bool
}

func (h *mergeHeap) Len() int            { return len(h.items) }
func (h *mergeHeap) Less(i, j int) bool  { return h.less(h.items[i].row, h.items[j].row) }
func (h *mergeHeap) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *mergeHeap) Push(x interface{})  { h.items = append(h.items, x.(mergeItem)) }
func (h *mergeHeap) Pop() interface{} {
	n := len(h.items)
	it := h.items[n-1]
	h.items = h.items[:n-1]
	return it
}

// mergeSortedPartitions k-way merges already-sorted partitions using a
// binary heap keyed by less, the same comparator SortParallel's per-worker
// sorts and Sort itself use.
func mergeSortedPartitions(partitions [][][]types.Value, less func(a, b []types.Value) bool) [][]types.Value {
	total := 0
	h := &mergeHeap{less: less}
	for p, part := range partitions {
		total += len(part)
		if len(part) > 0 {
			heap.Push(h, mergeItem{row: part[0], part: p, idx: 0})
		}
	}
	out := make([][]types.Value, 0, total)
	for h.Len() > 0 {
		it := heap.Pop(h).(mergeItem)
		out = append(out, it.row)
		if next := it.idx + 1; next < len(partitions[it.part]) {
			heap.Push(h, mergeItem{row: partitions[it.part][next], part: it.part, idx: next})
		}
	}
	return out
}
