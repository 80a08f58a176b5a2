package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relcore/catalog"
	"relcore/plan"
	"relcore/storage/block"
	"relcore/storage/mvcc"
	"relcore/storage/table"
	"relcore/types"
	"relcore/vm"
)

func newTestCatalog(t *testing.T) (*catalog.Catalog, *mvcc.Manager) {
	t.Helper()
	return catalog.New(), mvcc.NewManager()
}

func seedEmployees(t *testing.T, cat *catalog.Catalog, m *mvcc.Manager) types.TableID {
	t.Helper()
	cache, err := block.NewCache(16)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	entry, err := cat.CreateTable("employees", []types.ColumnDef{
		{ID: 1, Name: "id", Type: types.Integer, IsPrimaryKey: true},
		{ID: 2, Name: "name", Type: types.Varchar},
		{ID: 3, Name: "dept", Type: types.Varchar},
		{ID: 4, Name: "salary", Type: types.Integer},
	}, cache, m)
	require.NoError(t, err)

	txn := m.Begin()
	rows := []struct {
		id     int32
		name   string
		dept   string
		salary int32
	}{
		{1, "alice", "eng", 100},
		{2, "bob", "eng", 200},
		{3, "carol", "sales", 150},
		{4, "dave", "sales", 50},
	}
	cols := []types.ColumnID{1, 2, 3, 4}
	for _, r := range rows {
		pr := table.NewProjectedRow(cols)
		pr.Values = []types.Value{types.IntValue(r.id), types.VarcharValue(r.name), types.VarcharValue(r.dept), types.IntValue(r.salary)}
		_, err := entry.Table.Insert(txn, pr)
		require.NoError(t, err)
	}
	require.NoError(t, m.Commit(txn))
	return entry.Schema.OID
}

func TestSeqScanFilterOutputPipeline(t *testing.T) {
	cat, m := newTestCatalog(t)
	tableOID := seedEmployees(t, cat, m)

	scan := &plan.SeqScan{
		Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "id", Type: types.Integer}, {Name: "salary", Type: types.Integer}}},
		Table:   tableOID,
		Columns: []types.ColumnID{1, 4},
		Filter: &plan.Comparison{
			Op:    plan.CmpGt,
			Left:  &plan.ColumnRef{Name: "salary", ColIdx: 1, ColType: types.Integer},
			Right: &plan.Constant{Value: types.IntValue(100)},
		},
	}
	root := &plan.Output{Base: plan.Base{Cols: scan.Cols}, Input: scan}

	prog, err := Compile(root, cat)
	require.NoError(t, err)

	txn := m.Begin()
	rows, stats, err := prog.Run(txn, vm.NewThreadPool(2))
	require.NoError(t, err)
	require.NoError(t, m.Commit(txn))

	assert.Len(t, rows, 2) // bob (200), carol (150)
	assert.EqualValues(t, 2, stats.RowsProduced)
	for _, r := range rows {
		assert.True(t, r.Values[1].AsInt64() > 100)
	}
}

func TestAggregatePipelineGroupsBySalarySum(t *testing.T) {
	cat, m := newTestCatalog(t)
	tableOID := seedEmployees(t, cat, m)

	scan := &plan.SeqScan{
		Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "dept", Type: types.Varchar}, {Name: "salary", Type: types.Integer}}},
		Table:   tableOID,
		Columns: []types.ColumnID{3, 4},
	}
	agg := &plan.Aggregate{
		Base: plan.Base{Cols: []plan.OutputColumn{{Name: "dept", Type: types.Varchar}, {Name: "total", Type: types.BigInt}}},
		Input:   scan,
		GroupBy: []plan.Expr{&plan.ColumnRef{Name: "dept", ColIdx: 0, ColType: types.Varchar}},
		Aggs: []*plan.AggCall{
			{AggKind: plan.AggSum, Arg: &plan.ColumnRef{Name: "salary", ColIdx: 1, ColType: types.Integer}, Type: types.BigInt},
		},
	}
	root := &plan.Output{Base: plan.Base{Cols: agg.Cols}, Input: agg}

	prog, err := Compile(root, cat)
	require.NoError(t, err)

	txn := m.Begin()
	rows, _, err := prog.Run(txn, vm.NewThreadPool(1))
	require.NoError(t, err)
	require.NoError(t, m.Commit(txn))

	require.Len(t, rows, 2)
	totals := map[string]int64{}
	for _, r := range rows {
		totals[r.Values[0].AsString()] = r.Values[1].AsInt64()
	}
	assert.EqualValues(t, 300, totals["eng"])
	assert.EqualValues(t, 200, totals["sales"])
}

func TestOrderByPipelineSortsDescendingBySalary(t *testing.T) {
	cat, m := newTestCatalog(t)
	tableOID := seedEmployees(t, cat, m)

	scan := &plan.SeqScan{
		Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "name", Type: types.Varchar}, {Name: "salary", Type: types.Integer}}},
		Table:   tableOID,
		Columns: []types.ColumnID{2, 4},
	}
	ob := &plan.OrderBy{
		Base:       plan.Base{Cols: scan.Cols},
		Input:      scan,
		Keys:       []plan.Expr{&plan.ColumnRef{Name: "salary", ColIdx: 1, ColType: types.Integer}},
		Descending: []bool{true},
	}
	root := &plan.Output{Base: plan.Base{Cols: ob.Cols}, Input: ob}

	prog, err := Compile(root, cat)
	require.NoError(t, err)

	txn := m.Begin()
	rows, _, err := prog.Run(txn, vm.NewThreadPool(1))
	require.NoError(t, err)
	require.NoError(t, m.Commit(txn))

	require.Len(t, rows, 4)
	var salaries []int64
	for _, r := range rows {
		salaries = append(salaries, r.Values[1].AsInt64())
	}
	assert.Equal(t, []int64{200, 150, 100, 50}, salaries)
}
