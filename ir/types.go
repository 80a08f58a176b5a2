package ir

import "relcore/types"

// Type is the IR's own small type lattice: wide enough to carry every
// types.TypeID plus the pointer/void types the bytecode's runtime-object
// calling convention needs (an aggregation hash table, a PCI, and so on
// are opaque Pointer-typed IR values).
type Type int

const (
	TyInvalid Type = iota
	TyBool
	TyInt16
	TyInt32
	TyInt64
	TyFloat32
	TyFloat64
	TyString
	TyPointer
	TyVoid
)

// FromValueType maps a SQL runtime type to its IR representation.
func FromValueType(t types.TypeID) Type {
	switch t {
	case types.Boolean:
		return TyBool
	case types.SmallInt:
		return TyInt16
	case types.Integer:
		return TyInt32
	case types.Real:
		return TyFloat32
	case types.BigInt, types.Date:
		return TyInt64
	case types.Double:
		return TyFloat64
	case types.Varchar:
		return TyString
	default:
		return TyInvalid
	}
}

func (t Type) String() string {
	switch t {
	case TyBool:
		return "bool"
	case TyInt16:
		return "int16"
	case TyInt32:
		return "int32"
	case TyInt64:
		return "int64"
	case TyFloat32:
		return "float32"
	case TyFloat64:
		return "float64"
	case TyString:
		return "string"
	case TyPointer:
		return "ptr"
	case TyVoid:
		return "void"
	default:
		return "invalid"
	}
}
