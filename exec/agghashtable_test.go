package exec

import (
	"testing"

	"relcore/types"
)

func TestAggregationHashTableGroupsAndSums(t *testing.T) {
	aht := NewAggregationHashTable(1)
	rows := []struct {
		group string
		value int32
	}{
		{"a", 1}, {"a", 2}, {"b", 10}, {"a", 3}, {"b", 20},
	}
	for _, r := range rows {
		key := []types.Value{types.VarcharValue(r.group)}
		aht.ProcessBatch(key, []AggKind{AggKindSum}, []types.Value{types.IntValue(r.value)})
	}

	if aht.NumGroups() != 2 {
		t.Fatalf("expected 2 groups, got %d", aht.NumGroups())
	}

	sums := map[string]float64{}
	aht.Iterate(func(key []types.Value, states []*AggState) {
		sums[key[0].AsString()] = states[0].Sum
	})
	if sums["a"] != 6 {
		t.Fatalf("expected group a sum 6, got %v", sums["a"])
	}
	if sums["b"] != 30 {
		t.Fatalf("expected group b sum 30, got %v", sums["b"])
	}
}

func TestAggStateExcludesNullsFromCountAndAvg(t *testing.T) {
	aht := NewAggregationHashTable(2)
	values := []types.Value{types.IntValue(10), types.NullValue(types.Integer), types.IntValue(20)}
	for _, v := range values {
		key := []types.Value{types.VarcharValue("all")}
		aht.ProcessBatch(key, []AggKind{AggKindCount, AggKindSum}, []types.Value{v, v})
	}
	var count int64
	var sum float64
	aht.Iterate(func(key []types.Value, states []*AggState) {
		count = states[0].Count
		sum = states[1].Sum
	})
	if count != 2 {
		t.Fatalf("expected null row excluded from count, got count=%d", count)
	}
	if sum != 30 {
		t.Fatalf("expected sum 30 over non-null values, got %v", sum)
	}
	if avg := sum / float64(count); avg != 15 {
		t.Fatalf("expected avg 15, got %v", avg)
	}
}

func TestAggregationHashTableMinMax(t *testing.T) {
	aht := NewAggregationHashTable(2)
	for _, v := range []int32{5, 1, 9, 3} {
		key := []types.Value{types.VarcharValue("all")}
		aht.ProcessBatch(key, []AggKind{AggKindMin, AggKindMax}, []types.Value{types.IntValue(v), types.IntValue(v)})
	}
	var min, max int64
	aht.Iterate(func(key []types.Value, states []*AggState) {
		min = states[0].Min.AsInt64()
		max = states[1].Max.AsInt64()
	})
	if min != 1 || max != 9 {
		t.Fatalf("expected min=1 max=9, got min=%d max=%d", min, max)
	}
}
