package compiler

import (
	"fmt"

	"relcore/exec"
	"relcore/plan"
	"relcore/types"
	"relcore/vm"
)

func toExecAggKind(k plan.AggKind) exec.AggKind {
	switch k {
	case plan.AggCount:
		return exec.AggKindCount
	case plan.AggSum:
		return exec.AggKindSum
	case plan.AggMin:
		return exec.AggKindMin
	case plan.AggMax:
		return exec.AggKindMax
	default:
		return exec.AggKindAvg
	}
}

// --- Aggregate ---

type aggregateSource struct {
	ex       *Executor
	node     *plan.Aggregate
	input    RowSource
	groupBy  []*CompiledExpr
	aggArgs  []*CompiledExpr // nil entry for COUNT(*)
	aggKinds []exec.AggKind
	having   *CompiledExpr

	aht     *exec.AggregationHashTable
	groups  [][]types.Value
	groupAt int
}

func (ex *Executor) buildAggregate(n *plan.Aggregate) (RowSource, error) {
	input, err := ex.Build(n.Input)
	if err != nil {
		return nil, err
	}
	inSchema := input.Schema()

	groupBy := make([]*CompiledExpr, len(n.GroupBy))
	for i, g := range n.GroupBy {
		ce, err := ex.compile(fmt.Sprintf("agg.groupby%d", i), inSchema, g)
		if err != nil {
			return nil, err
		}
		groupBy[i] = ce
	}

	aggArgs := make([]*CompiledExpr, len(n.Aggs))
	aggKinds := make([]exec.AggKind, len(n.Aggs))
	for i, a := range n.Aggs {
		aggKinds[i] = toExecAggKind(a.AggKind)
		if a.Arg == nil {
			continue
		}
		ce, err := ex.compile(fmt.Sprintf("agg.arg%d", i), inSchema, a.Arg)
		if err != nil {
			return nil, err
		}
		aggArgs[i] = ce
	}

	having, err := ex.compile("agg.having", n.Schema(), n.Having)
	if err != nil {
		return nil, err
	}

	return &aggregateSource{
		ex: ex, node: n, input: input,
		groupBy: groupBy, aggArgs: aggArgs, aggKinds: aggKinds, having: having,
	}, nil
}

func (a *aggregateSource) Open(ctx *vm.ExecContext) error {
	if err := a.input.Open(ctx); err != nil {
		return err
	}
	a.aht = exec.NewAggregationHashTable(len(a.aggKinds))
	for {
		row, err := a.input.Next()
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		key := make([]types.Value, len(a.groupBy))
		for i, ce := range a.groupBy {
			v, err := a.ex.eval(ce, row, ce.ResultType)
			if err != nil {
				return err
			}
			key[i] = v
		}
		args := make([]types.Value, len(a.aggArgs))
		for i, ce := range a.aggArgs {
			if ce == nil {
				args[i] = types.BigIntValue(1) // COUNT(*): any non-null placeholder
				continue
			}
			v, err := a.ex.eval(ce, row, ce.ResultType)
			if err != nil {
				return err
			}
			args[i] = v
		}
		a.aht.ProcessBatch(key, a.aggKinds, args)
	}

	a.aht.Iterate(func(key []types.Value, states []*exec.AggState) {
		out := append([]types.Value(nil), key...)
		for i, s := range states {
			out = append(out, aggResult(a.node.Aggs[i], s))
		}
		a.groups = append(a.groups, out)
	})
	return nil
}

func aggResult(call *plan.AggCall, s *exec.AggState) types.Value {
	switch call.AggKind {
	case plan.AggCount:
		return types.BigIntValue(s.Count)
	case plan.AggMin:
		return s.Min
	case plan.AggMax:
		return s.Max
	case plan.AggAvg:
		if s.Count == 0 {
			return types.NullValue(call.Type)
		}
		return numericAs(s.Sum/float64(s.Count), call.Type)
	default: // AggSum
		return numericAs(s.Sum, call.Type)
	}
}

func numericAs(v float64, ty types.TypeID) types.Value {
	switch ty {
	case types.Real:
		return types.RealValue(float32(v))
	case types.Double:
		return types.DoubleValue(v)
	default:
		return types.BigIntValue(int64(v))
	}
}

func (a *aggregateSource) Next() ([]types.Value, error) {
	for a.groupAt < len(a.groups) {
		row := a.groups[a.groupAt]
		a.groupAt++
		ok, err := a.ex.evalBool(a.having, row)
		if err != nil {
			return nil, err
		}
		if ok {
			return row, nil
		}
	}
	return nil, nil
}

func (a *aggregateSource) Schema() []plan.OutputColumn { return a.node.Schema() }
func (a *aggregateSource) Close()                      { a.input.Close() }

// --- OrderBy ---

// orderBySource sorts via exec.Sorter using the sort-key-prepend technique:
// each Keys expression is evaluated once per row and stored as a hidden
// leading column ahead of the row's real output columns, so Sorter's
// column-index comparator (built for plain column positions) can order by
// arbitrary computed expressions without needing to know about them.
type orderBySource struct {
	ex     *Executor
	node   *plan.OrderBy
	input  RowSource
	keys   []*CompiledExpr
	sorter *exec.Sorter
	i      int
}

func (ex *Executor) buildOrderBy(n *plan.OrderBy) (RowSource, error) {
	input, err := ex.Build(n.Input)
	if err != nil {
		return nil, err
	}
	inSchema := input.Schema()
	keys := make([]*CompiledExpr, len(n.Keys))
	for i, k := range n.Keys {
		ce, err := ex.compile(fmt.Sprintf("orderby.key%d", i), inSchema, k)
		if err != nil {
			return nil, err
		}
		keys[i] = ce
	}
	keyIdx := make([]int, len(keys))
	for i := range keyIdx {
		keyIdx[i] = i
	}
	sorter := exec.NewSorter(keyIdx, n.Descending, n.Limit)
	return &orderBySource{ex: ex, node: n, input: input, keys: keys, sorter: sorter}, nil
}

func (o *orderBySource) Open(ctx *vm.ExecContext) error {
	if err := o.input.Open(ctx); err != nil {
		return err
	}
	numCols := len(o.node.Schema())
	for {
		row, err := o.input.Next()
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		tuple := o.sorter.AllocTuple(len(o.keys) + numCols)
		for i, ce := range o.keys {
			v, err := o.ex.eval(ce, row, ce.ResultType)
			if err != nil {
				return err
			}
			tuple[i] = v
		}
		copy(tuple[len(o.keys):], row)
	}
	if ctx.Pool != nil && o.sorter.NumRows() >= ctx.Settings.MinTableSizeForParallelScan {
		o.sorter.SortParallel(ctx.Pool)
	} else {
		o.sorter.Sort()
	}
	return nil
}

func (o *orderBySource) Next() ([]types.Value, error) {
	if o.i >= o.sorter.NumRows() {
		return nil, nil
	}
	row := o.sorter.Row(o.i)[len(o.keys):]
	o.i++
	return row, nil
}

func (o *orderBySource) Schema() []plan.OutputColumn { return o.node.Schema() }
func (o *orderBySource) Close()                      { o.input.Close() }
