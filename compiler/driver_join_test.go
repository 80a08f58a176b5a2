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

// seedDepartments creates a small departments(id, dept, budget) table used
// as the build side of hash-join tests and one side of nested-loop tests.
func seedDepartments(t *testing.T, cat *catalog.Catalog, m *mvcc.Manager) types.TableID {
	t.Helper()
	cache, err := block.NewCache(16)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	entry, err := cat.CreateTable("departments", []types.ColumnDef{
		{ID: 1, Name: "id", Type: types.Integer, IsPrimaryKey: true},
		{ID: 2, Name: "dept", Type: types.Varchar},
		{ID: 3, Name: "budget", Type: types.BigInt},
	}, cache, m)
	require.NoError(t, err)

	rows := []struct {
		id     int32
		dept   string
		budget int64
	}{
		{1, "eng", 1000},
		{2, "sales", 2000},
	}
	txn := m.Begin()
	cols := []types.ColumnID{1, 2, 3}
	for _, r := range rows {
		pr := table.NewProjectedRow(cols)
		pr.Values = []types.Value{types.IntValue(r.id), types.VarcharValue(r.dept), types.BigIntValue(r.budget)}
		_, err := entry.Table.Insert(txn, pr)
		require.NoError(t, err)
	}
	require.NoError(t, m.Commit(txn))
	return entry.Schema.OID
}

// seedRoles creates a tiny roles(id, title) table used as the other side of
// the non-correlated nested-loop cross join test.
func seedRoles(t *testing.T, cat *catalog.Catalog, m *mvcc.Manager) types.TableID {
	t.Helper()
	cache, err := block.NewCache(16)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	entry, err := cat.CreateTable("roles", []types.ColumnDef{
		{ID: 1, Name: "id", Type: types.Integer, IsPrimaryKey: true},
		{ID: 2, Name: "title", Type: types.Varchar},
	}, cache, m)
	require.NoError(t, err)

	txn := m.Begin()
	cols := []types.ColumnID{1, 2}
	for i, title := range []string{"IC", "Manager"} {
		pr := table.NewProjectedRow(cols)
		pr.Values = []types.Value{types.IntValue(int32(i + 1)), types.VarcharValue(title)}
		_, err := entry.Table.Insert(txn, pr)
		require.NoError(t, err)
	}
	require.NoError(t, m.Commit(txn))
	return entry.Schema.OID
}

func TestHashJoinPipelineMatchesByDept(t *testing.T) {
	cat, m := newTestCatalog(t)
	empOID := seedEmployees(t, cat, m)
	deptOID := seedDepartments(t, cat, m)

	build := &plan.SeqScan{
		Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "dept", Type: types.Varchar}, {Name: "budget", Type: types.BigInt}}},
		Table:   deptOID,
		Columns: []types.ColumnID{2, 3},
	}
	probe := &plan.SeqScan{
		Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "dept", Type: types.Varchar}, {Name: "salary", Type: types.Integer}}},
		Table:   empOID,
		Columns: []types.ColumnID{3, 4},
	}
	join := &plan.HashJoin{
		Base:      plan.Base{Cols: append(append([]plan.OutputColumn(nil), build.Cols...), probe.Cols...)},
		Build:     build,
		Probe:     probe,
		BuildKeys: []plan.Expr{&plan.ColumnRef{Name: "dept", ColIdx: 0, ColType: types.Varchar}},
		ProbeKeys: []plan.Expr{&plan.ColumnRef{Name: "dept", ColIdx: 0, ColType: types.Varchar}},
	}
	root := &plan.Output{Base: plan.Base{Cols: join.Cols}, Input: join}

	prog, err := Compile(root, cat)
	require.NoError(t, err)

	txn := m.Begin()
	rows, _, err := prog.Run(txn, vm.NewThreadPool(2))
	require.NoError(t, err)
	require.NoError(t, m.Commit(txn))

	require.Len(t, rows, 4)
	for _, r := range rows {
		buildDept := r.Values[0].AsString()
		budget := r.Values[1].AsInt64()
		probeDept := r.Values[2].AsString()
		assert.Equal(t, buildDept, probeDept)
		if buildDept == "eng" {
			assert.EqualValues(t, 1000, budget)
		} else {
			assert.EqualValues(t, 2000, budget)
		}
	}
}

func TestNestLoopPipelineCrossJoinsSmallTables(t *testing.T) {
	cat, m := newTestCatalog(t)
	deptOID := seedDepartments(t, cat, m)
	roleOID := seedRoles(t, cat, m)

	outer := &plan.SeqScan{
		Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "dept", Type: types.Varchar}}},
		Table:   deptOID,
		Columns: []types.ColumnID{2},
	}
	inner := &plan.SeqScan{
		Base:    plan.Base{Cols: []plan.OutputColumn{{Name: "title", Type: types.Varchar}}},
		Table:   roleOID,
		Columns: []types.ColumnID{2},
	}
	join := &plan.NestLoop{
		Base:  plan.Base{Cols: append(append([]plan.OutputColumn(nil), outer.Cols...), inner.Cols...)},
		Outer: outer,
		Inner: inner,
	}
	root := &plan.Output{Base: plan.Base{Cols: join.Cols}, Input: join}

	prog, err := Compile(root, cat)
	require.NoError(t, err)

	txn := m.Begin()
	rows, _, err := prog.Run(txn, vm.NewThreadPool(1))
	require.NoError(t, err)
	require.NoError(t, m.Commit(txn))

	assert.Len(t, rows, 4) // 2 departments x 2 roles, no residual filter
}
