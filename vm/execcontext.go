package vm

import "relcore/storage/mvcc"

// Settings mirrors original_source's ExecutionSettings (SUPPLEMENTED
// FEATURES): thresholds the VM consults when deciding whether an opcode's
// parallel variant is worth the fan-out cost.
type Settings struct {
	MinTableSizeForParallelScan int
	NumParallelThreads          int
}

func DefaultSettings() Settings {
	return Settings{MinTableSizeForParallelScan: 1000, NumParallelThreads: 4}
}

// PipelineStats is per-pipeline resource tracking (SUPPLEMENTED FEATURES:
// original_source's PipelineExecutionResult), returned to the caller
// rather than only logged.
type PipelineStats struct {
	RowsProduced    uint64
	OpcodesExecuted uint64
}

// ExecContext is the state threaded through one query's Interpreter.Run
// calls: the active transaction, tunable settings, and the stats being
// accumulated for the currently-running pipeline.
type ExecContext struct {
	Txn      *mvcc.Txn
	Settings Settings
	Stats    *PipelineStats
	Pool     *ThreadPool

	// Globals carries whatever runtime handles (catalog, tables, indexes)
	// intrinsic implementations need; the compiler and cmd/relcore agree on
	// its shape, the VM never inspects it.
	Globals interface{}
}

func NewExecContext(pool *ThreadPool) *ExecContext {
	return &ExecContext{Settings: DefaultSettings(), Stats: &PipelineStats{}, Pool: pool}
}
