package compiler

import (
	"fmt"
	"strings"

	"relcore/vm"
)

// NewScalarIntrinsics registers the runtime primitives a compiled scalar
// function's ExprIntrinsicCall nodes can invoke. This is the intrinsic
// table's use for actual scalar builtins (UPPER, LOWER, COALESCE) as
// opposed to the operator-shaped intrinsics (aggregation hash tables,
// sorters, joiners) that exec's types expose directly to Go orchestration
// code rather than through bytecode calls.
func NewScalarIntrinsics() *vm.IntrinsicTable {
	t := vm.NewIntrinsicTable()
	t.Register("scalar.UPPER", func(ctx *vm.ExecContext, args []vm.Value) (vm.Value, error) {
		if len(args) != 1 {
			return vm.Value{}, fmt.Errorf("UPPER takes exactly one argument")
		}
		return vm.StringVal(strings.ToUpper(args[0].AsString())), nil
	})
	t.Register("scalar.LOWER", func(ctx *vm.ExecContext, args []vm.Value) (vm.Value, error) {
		if len(args) != 1 {
			return vm.Value{}, fmt.Errorf("LOWER takes exactly one argument")
		}
		return vm.StringVal(strings.ToLower(args[0].AsString())), nil
	})
	t.Register("scalar.COALESCE", func(ctx *vm.ExecContext, args []vm.Value) (vm.Value, error) {
		for _, a := range args {
			if a.AsString() != "" || a.AsInt() != 0 || a.AsFloat() != 0 || a.AsBool() {
				return a, nil
			}
		}
		if len(args) == 0 {
			return vm.Value{}, fmt.Errorf("COALESCE takes at least one argument")
		}
		return args[len(args)-1], nil
	})
	return t
}
