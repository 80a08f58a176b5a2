package exec

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"relcore/types"
)

// AggState accumulates one group's running aggregate values. plan.AggCall
// evaluation drives Update; the compiler's generated code owns turning a
// finished AggState back into output columns.
type AggState struct {
	Count int64
	Sum   float64
	Min   types.Value
	Max   types.Value
	hasMM bool
}

func (s *AggState) update(kind AggKind, arg types.Value) {
	if arg.IsNull {
		return
	}
	s.Count++
	switch kind {
	case AggKindSum, AggKindAvg:
		s.Sum += numeric(arg)
	case AggKindMin:
		if !s.hasMM || arg.Compare(s.Min) < 0 {
			s.Min = arg
			s.hasMM = true
		}
	case AggKindMax:
		if !s.hasMM || arg.Compare(s.Max) > 0 {
			s.Max = arg
			s.hasMM = true
		}
	}
}

func numeric(v types.Value) float64 {
	switch v.Type {
	case types.Real, types.Double:
		return v.AsFloat64()
	default:
		return float64(v.AsInt64())
	}
}

// AggKind mirrors plan.AggKind without importing plan, keeping exec free of
// a dependency on the compiler's input tree.
type AggKind int

const (
	AggKindCount AggKind = iota
	AggKindSum
	AggKindMin
	AggKindMax
	AggKindAvg
)

type aggBucket struct {
	key    []types.Value
	states []*AggState
	next   *aggBucket
}

// AggregationHashTable is the pipeline-breaker build side of spec §4.4:
// groups incoming rows by key, running one AggState per aggregate call per
// group. Grounded on the shape of a Go map-of-slices hash table, generalized
// to expose the Lookup/Insert/ProcessBatch primitives an intrinsic call
// needs instead of a bare map, and to support partitioned parallel builds.
type AggregationHashTable struct {
	numAggs int
	buckets []*aggBucket
	mask    uint64
	count   int
}

func NewAggregationHashTable(numAggs int) *AggregationHashTable {
	return &AggregationHashTable{numAggs: numAggs, buckets: make([]*aggBucket, 16), mask: 15}
}

// Lookup returns the bucket for key's hash, or nil if no group with an
// equal key exists yet.
func (t *AggregationHashTable) Lookup(hash uint64, key []types.Value) *aggBucket {
	for b := t.buckets[hash&t.mask]; b != nil; b = b.next {
		if rowsEqual(b.key, key) {
			return b
		}
	}
	return nil
}

// Insert creates a new group for key, seeding one zero AggState per
// aggregate call.
func (t *AggregationHashTable) Insert(hash uint64, key []types.Value) *aggBucket {
	states := make([]*AggState, t.numAggs)
	for i := range states {
		states[i] = &AggState{}
	}
	b := &aggBucket{key: append([]types.Value(nil), key...), states: states}
	idx := hash & t.mask
	b.next = t.buckets[idx]
	t.buckets[idx] = b
	t.count++
	if t.count > len(t.buckets)*2 {
		t.grow()
	}
	return b
}

func (t *AggregationHashTable) grow() {
	newBuckets := make([]*aggBucket, len(t.buckets)*2)
	newMask := uint64(len(newBuckets) - 1)
	for _, head := range t.buckets {
		for b := head; b != nil; {
			next := b.next
			h := HashRow(b.key)
			idx := h & newMask
			b.next = newBuckets[idx]
			newBuckets[idx] = b
			b = next
		}
	}
	t.buckets = newBuckets
	t.mask = newMask
}

// ProcessBatch folds one row into its group, creating the group on first
// sight, then applies aggKinds/args to update every aggregate call's
// running state.
func (t *AggregationHashTable) ProcessBatch(key []types.Value, aggKinds []AggKind, args []types.Value) {
	hash := HashRow(key)
	b := t.Lookup(hash, key)
	if b == nil {
		b = t.Insert(hash, key)
	}
	for i, kind := range aggKinds {
		b.states[i].update(kind, args[i])
	}
}

// Iterate visits every group exactly once, in unspecified order.
func (t *AggregationHashTable) Iterate(fn func(key []types.Value, states []*AggState)) {
	for _, head := range t.buckets {
		for b := head; b != nil; b = b.next {
			fn(b.key, b.states)
		}
	}
}

// NumGroups reports the number of distinct groups seen so far, logged via
// go-humanize when a caller wants a size-formatted summary line.
func (t *AggregationHashTable) NumGroups() int { return t.count }

// SizeSummary formats a human-readable line for diagnostic logging,
// mirroring the storage layer's cache/GC log style.
func (t *AggregationHashTable) SizeSummary() string {
	approxBytes := uint64(t.count) * uint64(64+16*t.numAggs)
	return fmt.Sprintf("groups=%d size=%s", t.count, humanize.Bytes(approxBytes))
}

// Merge folds another table's groups into this one, used to combine
// per-worker partitions after a parallel build (spec §5
// AggregationHashTableParallelPartitionedScan).
func (t *AggregationHashTable) Merge(other *AggregationHashTable, aggKinds []AggKind) {
	other.Iterate(func(key []types.Value, states []*AggState) {
		hash := HashRow(key)
		b := t.Lookup(hash, key)
		if b == nil {
			b = t.Insert(hash, key)
		}
		for i, s := range states {
			b.states[i].Count += s.Count
			b.states[i].Sum += s.Sum
			if s.hasMM {
				switch aggKinds[i] {
				case AggKindMin:
					if !b.states[i].hasMM || s.Min.Compare(b.states[i].Min) < 0 {
						b.states[i].Min = s.Min
						b.states[i].hasMM = true
					}
				case AggKindMax:
					if !b.states[i].hasMM || s.Max.Compare(b.states[i].Max) > 0 {
						b.states[i].Max = s.Max
						b.states[i].hasMM = true
					}
				}
			}
		}
	})
}
