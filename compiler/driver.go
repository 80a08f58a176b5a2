package compiler

import (
	"fmt"

	"relcore/catalog"
	"relcore/plan"
	"relcore/storage/mvcc"
	"relcore/types"
	"relcore/vm"
)

// Program is a checked, compiled plan tree ready to run against a
// transaction. Building one runs the semantic checker (spec §4.1
// "semantic-check pass before bytecode lowering") and builds its pipeline
// list; scalar expressions are lowered to bytecode by each Run's Executor.
type Program struct {
	root      plan.Node
	pipelines []*Pipeline
	cat       *catalog.Catalog
}

// Compile checks root and prepares it for execution. It does not lower any
// bytecode yet — that happens lazily per Executor, since bytecode targets
// depend on live column types resolved from the catalog at run time.
func Compile(root plan.Node, cat *catalog.Catalog) (*Program, error) {
	checker := plan.NewChecker()
	checker.Check(root)
	if checker.HasErrors() {
		return nil, fmt.Errorf("compiler: plan failed semantic check: %v", checker.Errors())
	}
	return &Program{root: root, pipelines: BuildPipelines(root), cat: cat}, nil
}

// Pipelines exposes the dependency-ordered pipeline list, mainly for
// diagnostics.
func (p *Program) Pipelines() []*Pipeline { return p.pipelines }

// Run executes the program against txn, returning every row the plan's
// Output node produces.
func (p *Program) Run(txn *mvcc.Txn, pool *vm.ThreadPool) ([]Row, *vm.PipelineStats, error) {
	ex := NewExecutor(p.cat, txn, pool)
	src, err := ex.Build(p.root)
	if err != nil {
		return nil, nil, err
	}
	if err := src.Open(ex.ectx); err != nil {
		return nil, nil, err
	}
	defer src.Close()

	schema := src.Schema()
	var rows []Row
	for {
		values, err := src.Next()
		if err != nil {
			return nil, ex.ectx.Stats, err
		}
		if values == nil {
			break
		}
		ex.ectx.Stats.RowsProduced++
		rows = append(rows, Row{Schema: schema, Values: values})
	}
	return rows, ex.ectx.Stats, nil
}

// Row is one output tuple paired with the schema describing it, so a caller
// (cmd/relcore's formatter) doesn't need to keep the plan tree around.
type Row struct {
	Schema []plan.OutputColumn
	Values []types.Value
}
