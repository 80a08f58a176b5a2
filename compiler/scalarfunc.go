package compiler

import (
	"fmt"

	"relcore/ir"
	"relcore/plan"
	"relcore/types"
	"relcore/vm"
)

// CompiledExpr is one scalar expression lowered to a callable vm.Function:
// one register-VM param per input column, one returned value.
type CompiledExpr struct {
	Fn         *vm.Function
	NumInput   int
	ResultType types.TypeID
}

// CompileScalar lowers a single plan.Expr, evaluated against a row shaped
// like inputTypes, into a vm.Function (spec §4.1: "Pipeline Compiler...
// compiles to typed IR" then to bytecode). One vm.Function per scalar
// expression keeps the register VM's single-value OpReturn convention
// simple instead of inventing an out-parameter calling convention.
func CompileScalar(name string, inputTypes []ir.Type, e plan.Expr) (*CompiledExpr, error) {
	fb := ir.NewFunctionBuilder(name)
	cols := make([]*ir.LocalDecl, len(inputTypes))
	for i, ty := range inputTypes {
		cols[i] = fb.AddParam(fmt.Sprintf("col%d", i), ty)
	}

	body, err := lowerExpr(fb, cols, e)
	if err != nil {
		return nil, err
	}
	fb.Return(body)

	fn, err := LowerFunction(fb.Finish())
	if err != nil {
		return nil, fmt.Errorf("compiler: lowering %s: %w", name, err)
	}
	return &CompiledExpr{Fn: fn, NumInput: len(inputTypes), ResultType: e.ResultType()}, nil
}
