package compiler

import (
	"relcore/ir"
	"relcore/types"
	"relcore/vm"
)

// toVMValue converts one SQL runtime value into the register VM's Value
// representation, matching ir.FromValueType's type mapping.
func toVMValue(v types.Value) vm.Value {
	switch v.Type {
	case types.Boolean:
		return vm.BoolVal(v.AsBool())
	case types.SmallInt, types.Integer:
		return vm.Int32Val(int32(v.AsInt64()))
	case types.BigInt, types.Date:
		return vm.Int64Val(v.AsInt64())
	case types.Real:
		return vm.Float32Val(float32(v.AsFloat64()))
	case types.Double:
		return vm.Float64Val(v.AsFloat64())
	case types.Varchar:
		return vm.StringVal(v.AsString())
	default:
		return vm.VoidVal()
	}
}

// fromVMValue converts a register VM result back into a SQL runtime value
// of type ty.
func fromVMValue(result vm.Value, ty types.TypeID) types.Value {
	switch ty {
	case types.Boolean:
		return types.BoolValue(result.AsBool())
	case types.SmallInt:
		return types.SmallIntValue(int16(result.AsInt()))
	case types.Integer:
		return types.IntValue(int32(result.AsInt()))
	case types.BigInt:
		return types.BigIntValue(result.AsInt())
	case types.Real:
		return types.RealValue(float32(result.AsFloat()))
	case types.Double:
		return types.DoubleValue(result.AsFloat())
	case types.Date:
		return types.BigIntValue(result.AsInt())
	case types.Varchar:
		return types.VarcharValue(result.AsString())
	default:
		return types.NullValue(types.Null)
	}
}

func rowToVMArgs(row []types.Value) []vm.Value {
	args := make([]vm.Value, len(row))
	for i, v := range row {
		args[i] = toVMValue(v)
	}
	return args
}

func schemaTypes(cols []types.TypeID) []ir.Type {
	out := make([]ir.Type, len(cols))
	for i, t := range cols {
		out[i] = ir.FromValueType(t)
	}
	return out
}
