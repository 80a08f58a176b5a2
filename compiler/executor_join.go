package compiler

import (
	"fmt"

	"relcore/exec"
	"relcore/plan"
	"relcore/types"
	"relcore/vm"
)

// --- NestLoop ---

// nestLoopSource assumes Inner has no free variables bound to Outer (a
// correlated nested-loop join, where Inner's own scan bounds depend on the
// current Outer row, is out of scope here — see DESIGN.md). Inner is
// materialized once and rescanned per Outer row.
type nestLoopSource struct {
	ex     *Executor
	node   *plan.NestLoop
	outer  RowSource
	inner  RowSource
	filter *CompiledExpr
	joined []plan.OutputColumn

	innerRows [][]types.Value
	outerRow  []types.Value
	innerIdx  int
}

func (ex *Executor) buildNestLoop(n *plan.NestLoop) (RowSource, error) {
	outer, err := ex.Build(n.Outer)
	if err != nil {
		return nil, err
	}
	inner, err := ex.Build(n.Inner)
	if err != nil {
		return nil, err
	}
	joined := append(append([]plan.OutputColumn(nil), outer.Schema()...), inner.Schema()...)
	filter, err := ex.compile("nestloop.filter", joined, n.Filter)
	if err != nil {
		return nil, err
	}
	return &nestLoopSource{ex: ex, node: n, outer: outer, inner: inner, filter: filter, joined: joined}, nil
}

func (j *nestLoopSource) Open(ctx *vm.ExecContext) error {
	if err := j.outer.Open(ctx); err != nil {
		return err
	}
	if err := j.inner.Open(ctx); err != nil {
		return err
	}
	for {
		row, err := j.inner.Next()
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		j.innerRows = append(j.innerRows, row)
	}
	j.innerIdx = len(j.innerRows)
	return nil
}

func (j *nestLoopSource) Next() ([]types.Value, error) {
	for {
		if j.innerIdx >= len(j.innerRows) {
			row, err := j.outer.Next()
			if err != nil || row == nil {
				return nil, err
			}
			j.outerRow = row
			j.innerIdx = 0
		}
		for j.innerIdx < len(j.innerRows) {
			candidate := j.innerRows[j.innerIdx]
			j.innerIdx++
			combined := append(append([]types.Value(nil), j.outerRow...), candidate...)
			ok, err := j.ex.evalBool(j.filter, combined)
			if err != nil {
				return nil, err
			}
			if ok {
				return combined, nil
			}
		}
	}
}

func (j *nestLoopSource) Schema() []plan.OutputColumn { return j.joined }
func (j *nestLoopSource) Close()                      { j.outer.Close(); j.inner.Close() }

// --- HashJoin ---

type hashJoinSource struct {
	ex         *Executor
	node       *plan.HashJoin
	build      RowSource
	probe      RowSource
	buildKeys  []*CompiledExpr
	probeKeys  []*CompiledExpr
	filter     *CompiledExpr
	joined     []plan.OutputColumn

	jht             *exec.JoinHashTable
	probeRow        []types.Value
	probeKeyCurrent []types.Value
	candidates      []struct {
		key []types.Value
		row []types.Value
	}
	candIdx int
}

func (ex *Executor) buildHashJoin(n *plan.HashJoin) (RowSource, error) {
	build, err := ex.Build(n.Build)
	if err != nil {
		return nil, err
	}
	probe, err := ex.Build(n.Probe)
	if err != nil {
		return nil, err
	}
	buildSchema, probeSchema := build.Schema(), probe.Schema()
	if len(n.BuildKeys) != len(n.ProbeKeys) {
		return nil, fmt.Errorf("compiler: hash join key arity mismatch")
	}
	buildKeys := make([]*CompiledExpr, len(n.BuildKeys))
	for i, k := range n.BuildKeys {
		ce, err := ex.compile(fmt.Sprintf("hashjoin.buildkey%d", i), buildSchema, k)
		if err != nil {
			return nil, err
		}
		buildKeys[i] = ce
	}
	probeKeys := make([]*CompiledExpr, len(n.ProbeKeys))
	for i, k := range n.ProbeKeys {
		ce, err := ex.compile(fmt.Sprintf("hashjoin.probekey%d", i), probeSchema, k)
		if err != nil {
			return nil, err
		}
		probeKeys[i] = ce
	}
	joined := append(append([]plan.OutputColumn(nil), buildSchema...), probeSchema...)
	filter, err := ex.compile("hashjoin.filter", joined, n.Filter)
	if err != nil {
		return nil, err
	}
	return &hashJoinSource{
		ex: ex, node: n, build: build, probe: probe,
		buildKeys: buildKeys, probeKeys: probeKeys, filter: filter, joined: joined,
	}, nil
}

func (h *hashJoinSource) evalKeys(row []types.Value, exprs []*CompiledExpr) ([]types.Value, error) {
	out := make([]types.Value, len(exprs))
	for i, ce := range exprs {
		v, err := h.ex.eval(ce, row, ce.ResultType)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (h *hashJoinSource) Open(ctx *vm.ExecContext) error {
	if err := h.build.Open(ctx); err != nil {
		return err
	}
	h.jht = exec.NewJoinHashTable()
	for {
		row, err := h.build.Next()
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		key, err := h.evalKeys(row, h.buildKeys)
		if err != nil {
			return err
		}
		h.jht.Insert(key, row)
	}
	h.jht.Build()
	return h.probe.Open(ctx)
}

func keysEqual(a, b []types.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Compare(b[i]) != 0 {
			return false
		}
	}
	return true
}

func (h *hashJoinSource) Next() ([]types.Value, error) {
	for {
		if h.candIdx < len(h.candidates) {
			c := h.candidates[h.candIdx]
			h.candIdx++
			if !keysEqual(c.key, h.probeKeyCurrent) {
				continue
			}
			combined := append(append([]types.Value(nil), c.row...), h.probeRow...)
			ok, err := h.ex.evalBool(h.filter, combined)
			if err != nil {
				return nil, err
			}
			if ok {
				return combined, nil
			}
			continue
		}
		row, err := h.probe.Next()
		if err != nil || row == nil {
			return nil, err
		}
		h.probeRow = row
		key, err := h.evalKeys(row, h.probeKeys)
		if err != nil {
			return nil, err
		}
		h.probeKeyCurrent = key
		matches := h.jht.Lookup(key)
		h.candidates = h.candidates[:0]
		for _, m := range matches {
			h.candidates = append(h.candidates, struct {
				key []types.Value
				row []types.Value
			}{key: m.Key(), row: m.Row()})
		}
		h.candIdx = 0
	}
}

func (h *hashJoinSource) Schema() []plan.OutputColumn { return h.joined }
func (h *hashJoinSource) Close()                      { h.build.Close(); h.probe.Close() }
