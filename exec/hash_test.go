package exec

import (
	"testing"

	"relcore/types"
)

func TestHashRowDistinguishesFloatValues(t *testing.T) {
	h1 := HashRow([]types.Value{types.DoubleValue(1.5)})
	h2 := HashRow([]types.Value{types.DoubleValue(2.5)})
	if h1 == h2 {
		t.Fatalf("distinct float values hashed to the same bucket: %d", h1)
	}
}

func TestHashRowStableForEqualFloatValues(t *testing.T) {
	h1 := HashRow([]types.Value{types.DoubleValue(3.14)})
	h2 := HashRow([]types.Value{types.DoubleValue(3.14)})
	if h1 != h2 {
		t.Fatalf("equal float values hashed differently: %d vs %d", h1, h2)
	}
}
