package exec

import (
	"testing"

	"relcore/storage/table"
	"relcore/types"
)

func TestFilterManagerNarrowsSelection(t *testing.T) {
	buf := table.NewProjectedColumns([]types.ColumnID{0}, 5)
	for _, v := range []int32{1, 2, 3, 4, 5} {
		buf.AppendRow(types.TupleSlot{}, []types.Value{types.IntValue(v)}, []bool{false})
	}
	pci := table.NewPCI(buf)

	fm := NewFilterManager()
	fm.AddPredicate(func(p *table.PCI, row int) bool {
		v, _ := p.ValueAt(row, 0)
		return v.AsInt64() > 2
	})
	fm.RunFilters(pci)

	count := 0
	for pci.Advance() {
		count++
	}
	if count != 3 {
		t.Fatalf("expected 3 rows > 2, got %d", count)
	}
}
