package compiler

import (
	"fmt"

	"relcore/catalog"
	"relcore/index"
	"relcore/plan"
	"relcore/storage/table"
	"relcore/types"
	"relcore/vm"
)

// affectedSchema is the single-row result schema Insert/Update/Delete
// report through, matching a DML statement's usual "rows affected" reply.
var affectedSchema = []plan.OutputColumn{{Name: "affected", Type: types.BigInt}}

// mutationSource drains its Input entirely, applying one write per row, and
// then yields a single row counting how many it applied.
type mutationSource struct {
	input   RowSource
	apply   func(row []types.Value, slot types.TupleSlot) error
	done    bool
	applied int64
}

func (m *mutationSource) Open(ctx *vm.ExecContext) error { return m.input.Open(ctx) }

func (m *mutationSource) Next() ([]types.Value, error) {
	if m.done {
		return nil, nil
	}
	for {
		row, err := m.input.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		var slot types.TupleSlot
		if sb, ok := m.input.(slotBearer); ok {
			slot = sb.CurrentSlot()
		}
		if err := m.apply(row, slot); err != nil {
			return nil, err
		}
		m.applied++
	}
	m.done = true
	return []types.Value{types.BigIntValue(m.applied)}, nil
}

func (m *mutationSource) Schema() []plan.OutputColumn { return affectedSchema }
func (m *mutationSource) Close()                      { m.input.Close() }

// insertIndexEntries maintains every index registered on entry's table by
// inserting slot under each index's projected key columns of row.
func insertIndexEntries(cat *catalog.Catalog, ex *Executor, entry *catalog.TableEntry, cols []types.ColumnID, row []types.Value, slot types.TupleSlot) error {
	for _, idxEntry := range cat.IndexesForTable(entry.Schema.OID) {
		key, ok := projectKey(cols, row, idxEntry.Columns)
		if !ok {
			continue
		}
		packed := index.EncodeKey(key)
		var err error
		if idxEntry.Unique {
			err = idxEntry.Index.InsertUnique(packed, slot, ex.ectx.Txn)
		} else {
			err = idxEntry.Index.Insert(packed, slot, ex.ectx.Txn)
		}
		if err != nil {
			return fmt.Errorf("compiler: index maintenance: %w", err)
		}
	}
	return nil
}

func projectKey(cols []types.ColumnID, row []types.Value, want []types.ColumnID) ([]types.Value, bool) {
	out := make([]types.Value, len(want))
	for i, w := range want {
		found := false
		for j, c := range cols {
			if c == w {
				out[i] = row[j]
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}

func (ex *Executor) buildInsert(n *plan.Insert) (RowSource, error) {
	input, err := ex.Build(n.Input)
	if err != nil {
		return nil, err
	}
	entry, err := ex.cat.GetTable(n.Table)
	if err != nil {
		return nil, err
	}
	apply := func(row []types.Value, _ types.TupleSlot) error {
		pr := table.NewProjectedRow(n.Columns)
		copy(pr.Values, row)
		slot, err := entry.Table.Insert(ex.ectx.Txn, pr)
		if err != nil {
			return err
		}
		return insertIndexEntries(ex.cat, ex, entry, n.Columns, row, slot)
	}
	return &mutationSource{input: input, apply: apply}, nil
}

func (ex *Executor) buildUpdate(n *plan.Update) (RowSource, error) {
	input, err := ex.Build(n.Input)
	if err != nil {
		return nil, err
	}
	entry, err := ex.cat.GetTable(n.Table)
	if err != nil {
		return nil, err
	}
	inSchema := input.Schema()
	setExprs := make([]*CompiledExpr, len(n.SetExprs))
	for i, e := range n.SetExprs {
		ce, err := ex.compile(fmt.Sprintf("update.set%d", i), inSchema, e)
		if err != nil {
			return nil, err
		}
		setExprs[i] = ce
	}
	apply := func(row []types.Value, slot types.TupleSlot) error {
		pr := table.NewProjectedRow(n.SetCols)
		for i, ce := range setExprs {
			v, err := ex.eval(ce, row, ce.ResultType)
			if err != nil {
				return err
			}
			pr.Values[i] = v
		}
		return entry.Table.Update(ex.ectx.Txn, slot, pr)
	}
	return &mutationSource{input: input, apply: apply}, nil
}

func (ex *Executor) buildDelete(n *plan.Delete) (RowSource, error) {
	input, err := ex.Build(n.Input)
	if err != nil {
		return nil, err
	}
	entry, err := ex.cat.GetTable(n.Table)
	if err != nil {
		return nil, err
	}
	apply := func(_ []types.Value, slot types.TupleSlot) error {
		return entry.Table.Delete(ex.ectx.Txn, slot)
	}
	return &mutationSource{input: input, apply: apply}, nil
}
