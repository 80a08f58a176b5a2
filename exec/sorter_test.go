package exec

import (
	"testing"

	"relcore/types"
	"relcore/vm"
)

func TestSorterOrdersAscending(t *testing.T) {
	s := NewSorter([]int{0}, []bool{false}, 0)
	for _, v := range []int32{5, 1, 4, 2, 3} {
		row := s.AllocTuple(1)
		row[0] = types.IntValue(v)
	}
	s.Sort()
	for i := 0; i < s.NumRows(); i++ {
		if s.Row(i)[0].AsInt64() != int64(i+1) {
			t.Fatalf("row %d: expected %d, got %d", i, i+1, s.Row(i)[0].AsInt64())
		}
	}
}

func TestSorterTopK(t *testing.T) {
	s := NewSorter([]int{0}, []bool{true}, 2)
	for _, v := range []int32{5, 1, 4, 2, 3} {
		row := s.AllocTuple(1)
		row[0] = types.IntValue(v)
	}
	s.Sort()
	if s.NumRows() != 2 {
		t.Fatalf("expected top-2, got %d rows", s.NumRows())
	}
	if s.Row(0)[0].AsInt64() != 5 || s.Row(1)[0].AsInt64() != 4 {
		t.Fatalf("expected [5 4], got [%d %d]", s.Row(0)[0].AsInt64(), s.Row(1)[0].AsInt64())
	}
}

func TestSorterSortParallelMatchesSequentialOrdering(t *testing.T) {
	s := NewSorter([]int{0}, []bool{false}, 0)
	const n = 500
	for i := 0; i < n; i++ {
		row := s.AllocTuple(1)
		row[0] = types.IntValue(int32((i*7919 + 13) % 10007))
	}
	s.SortParallel(vm.NewThreadPool(4))
	if s.NumRows() != n {
		t.Fatalf("expected %d rows, got %d", n, s.NumRows())
	}
	for i := 1; i < s.NumRows(); i++ {
		if s.Row(i-1)[0].AsInt64() > s.Row(i)[0].AsInt64() {
			t.Fatalf("row %d out of order: %d > %d", i, s.Row(i-1)[0].AsInt64(), s.Row(i)[0].AsInt64())
		}
	}
}

func TestSorterSortParallelHonorsTopK(t *testing.T) {
	s := NewSorter([]int{0}, []bool{true}, 5)
	const n = 200
	for i := 0; i < n; i++ {
		row := s.AllocTuple(1)
		row[0] = types.IntValue(int32(i))
	}
	s.SortParallel(vm.NewThreadPool(4))
	if s.NumRows() != 5 {
		t.Fatalf("expected top-5, got %d rows", s.NumRows())
	}
	for i, want := 0, int64(n-1); i < s.NumRows(); i, want = i+1, want-1 {
		if s.Row(i)[0].AsInt64() != want {
			t.Fatalf("row %d: expected %d, got %d", i, want, s.Row(i)[0].AsInt64())
		}
	}
}

func TestJoinHashTableLookupFindsMatches(t *testing.T) {
	jht := NewJoinHashTable()
	jht.Insert([]types.Value{types.IntValue(1)}, []types.Value{types.IntValue(1), types.VarcharValue("x")})
	jht.Insert([]types.Value{types.IntValue(2)}, []types.Value{types.IntValue(2), types.VarcharValue("y")})
	jht.Build()

	matches := jht.Lookup([]types.Value{types.IntValue(1)})
	if len(matches) != 1 || matches[0].Row()[1].AsString() != "x" {
		t.Fatalf("expected one match for key 1, got %v", matches)
	}

	if len(jht.Lookup([]types.Value{types.IntValue(99)})) != 0 {
		t.Fatalf("expected no matches for missing key")
	}
}
