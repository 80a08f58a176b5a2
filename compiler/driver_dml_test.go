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

// seedNewHires creates a one-row source table used as the Input of an
// insert-into-employees pipeline (insert-select, since this repo never
// builds a literal-values plan node — plan construction is an external
// collaborator per spec §1).
func seedNewHires(t *testing.T, cat *catalog.Catalog, m *mvcc.Manager) types.TableID {
	t.Helper()
	cache, err := block.NewCache(16)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	entry, err := cat.CreateTable("newhires", []types.ColumnDef{
		{ID: 1, Name: "id", Type: types.Integer, IsPrimaryKey: true},
		{ID: 2, Name: "name", Type: types.Varchar},
		{ID: 3, Name: "dept", Type: types.Varchar},
		{ID: 4, Name: "salary", Type: types.Integer},
	}, cache, m)
	require.NoError(t, err)

	txn := m.Begin()
	pr := table.NewProjectedRow([]types.ColumnID{1, 2, 3, 4})
	pr.Values = []types.Value{types.IntValue(5), types.VarcharValue("erin"), types.VarcharValue("eng"), types.IntValue(120)}
	_, err = entry.Table.Insert(txn, pr)
	require.NoError(t, err)
	require.NoError(t, m.Commit(txn))
	return entry.Schema.OID
}

func scanAll(t *testing.T, cat *catalog.Catalog, m *mvcc.Manager, tableOID types.TableID, cols []types.ColumnID, colTypes []types.TypeID) []Row {
	t.Helper()
	outCols := make([]plan.OutputColumn, len(cols))
	for i, ty := range colTypes {
		outCols[i] = plan.OutputColumn{Name: "c", Type: ty}
	}
	scan := &plan.SeqScan{Base: plan.Base{Cols: outCols}, Table: tableOID, Columns: cols}
	root := &plan.Output{Base: plan.Base{Cols: scan.Cols}, Input: scan}
	prog, err := Compile(root, cat)
	require.NoError(t, err)
	txn := m.Begin()
	rows, _, err := prog.Run(txn, vm.NewThreadPool(1))
	require.NoError(t, err)
	require.NoError(t, m.Commit(txn))
	return rows
}

func TestInsertPipelineCopiesRowsAndReportsAffectedCount(t *testing.T) {
	cat, m := newTestCatalog(t)
	empOID := seedEmployees(t, cat, m)
	hiresOID := seedNewHires(t, cat, m)

	source := &plan.SeqScan{
		Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "id", Type: types.Integer}, {Name: "name", Type: types.Varchar}, {Name: "dept", Type: types.Varchar}, {Name: "salary", Type: types.Integer}}},
		Table:   hiresOID,
		Columns: []types.ColumnID{1, 2, 3, 4},
	}
	ins := &plan.Insert{
		Base:    plan.Base{Cols: affectedSchema},
		Table:   empOID,
		Columns: []types.ColumnID{1, 2, 3, 4},
		Input:   source,
	}
	root := &plan.Output{Base: plan.Base{Cols: ins.Cols}, Input: ins}

	prog, err := Compile(root, cat)
	require.NoError(t, err)
	txn := m.Begin()
	rows, _, err := prog.Run(txn, vm.NewThreadPool(1))
	require.NoError(t, err)
	require.NoError(t, m.Commit(txn))

	require.Len(t, rows, 1)
	assert.EqualValues(t, 1, rows[0].Values[0].AsInt64())

	all := scanAll(t, cat, m, empOID, []types.ColumnID{1}, []types.TypeID{types.Integer})
	assert.Len(t, all, 5)
}

func TestUpdatePipelineAppliesSetExprAndReportsAffectedCount(t *testing.T) {
	cat, m := newTestCatalog(t)
	empOID := seedEmployees(t, cat, m)

	source := &plan.SeqScan{
		Base:  plan.Base{Cols: []plan.OutputColumn{{Name: "dept", Type: types.Varchar}, {Name: "salary", Type: types.Integer}}},
		Table: empOID,
		Columns: []types.ColumnID{3, 4},
		Filter: &plan.Comparison{
			Op:    plan.CmpEq,
			Left:  &plan.ColumnRef{Name: "dept", ColIdx: 0, ColType: types.Varchar},
			Right: &plan.Constant{Value: types.VarcharValue("eng")},
		},
	}
	upd := &plan.Update{
		Base:     plan.Base{Cols: affectedSchema},
		Table:    empOID,
		Input:    source,
		SetCols:  []types.ColumnID{4},
		SetExprs: []plan.Expr{&plan.Constant{Value: types.IntValue(999)}},
	}
	root := &plan.Output{Base: plan.Base{Cols: upd.Cols}, Input: upd}

	prog, err := Compile(root, cat)
	require.NoError(t, err)
	txn := m.Begin()
	rows, _, err := prog.Run(txn, vm.NewThreadPool(1))
	require.NoError(t, err)
	require.NoError(t, m.Commit(txn))

	require.Len(t, rows, 1)
	assert.EqualValues(t, 2, rows[0].Values[0].AsInt64())

	all := scanAll(t, cat, m, empOID, []types.ColumnID{3, 4}, []types.TypeID{types.Varchar, types.Integer})
	for _, r := range all {
		if r.Values[0].AsString() == "eng" {
			assert.EqualValues(t, 999, r.Values[1].AsInt64())
		}
	}
}

func TestDeletePipelineRemovesRowsAndReportsAffectedCount(t *testing.T) {
	cat, m := newTestCatalog(t)
	empOID := seedEmployees(t, cat, m)

	source := &plan.SeqScan{
		Base:  plan.Base{Cols: []plan.OutputColumn{{Name: "dept", Type: types.Varchar}}},
		Table: empOID,
		Columns: []types.ColumnID{3},
		Filter: &plan.Comparison{
			Op:    plan.CmpEq,
			Left:  &plan.ColumnRef{Name: "dept", ColIdx: 0, ColType: types.Varchar},
			Right: &plan.Constant{Value: types.VarcharValue("sales")},
		},
	}
	del := &plan.Delete{
		Base:  plan.Base{Cols: affectedSchema},
		Table: empOID,
		Input: source,
	}
	root := &plan.Output{Base: plan.Base{Cols: del.Cols}, Input: del}

	prog, err := Compile(root, cat)
	require.NoError(t, err)
	txn := m.Begin()
	rows, _, err := prog.Run(txn, vm.NewThreadPool(1))
	require.NoError(t, err)
	require.NoError(t, m.Commit(txn))

	require.Len(t, rows, 1)
	assert.EqualValues(t, 2, rows[0].Values[0].AsInt64())

	all := scanAll(t, cat, m, empOID, []types.ColumnID{1}, []types.TypeID{types.Integer})
	assert.Len(t, all, 2)
}
