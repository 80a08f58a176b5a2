// Package vm is the register-based bytecode VM of spec §4.1/§4.7: typed
// opcodes operating on a per-frame register file, a forward-patchable
// assembler producing the bytecode wire format, and the thread-fan-out
// primitives (ThreadStateContainer, ThreadPool) parallel opcodes use.
//
// Grounded on the teacher's query_executor/vm.go — an opcode-dispatch
// switch over a flat Instruction stream driving a stack machine — kept as
// the shape of Interpreter.Run's dispatch loop, generalized from a
// SQL-statement-level stack VM (OP_CREATE_TABLE, OP_INSERT as whole-row
// operations) to a tuple-level register VM (typed arithmetic/comparison
// per register, intrinsic calls into the exec runtime for anything
// data-structure-shaped, exactly as NoisePage's TPL bytecode calls into
// its execution runtime via builtin functions).
package vm

import "relcore/ir"

// Value is one register's contents: either a scalar of the types the IR
// tracks, or an opaque runtime-object pointer for intrinsic calls (a PCI,
// a hash table, a sorter — anything exec owns).
type Value struct {
	Type Type
	b    bool
	i    int64
	f    float64
	s    string
	ptr  interface{}
}

// Type mirrors ir.Type for register contents; kept distinct so vm doesn't
// need every IR concept, just the ones that show up in a register.
type Type = ir.Type

func BoolVal(b bool) Value                 { return Value{Type: ir.TyBool, b: b} }
func Int32Val(v int32) Value               { return Value{Type: ir.TyInt32, i: int64(v)} }
func Int64Val(v int64) Value               { return Value{Type: ir.TyInt64, i: v} }
func Float32Val(v float32) Value           { return Value{Type: ir.TyFloat32, f: float64(v)} }
func Float64Val(v float64) Value           { return Value{Type: ir.TyFloat64, f: v} }
func StringVal(v string) Value             { return Value{Type: ir.TyString, s: v} }
func PtrVal(v interface{}) Value           { return Value{Type: ir.TyPointer, ptr: v} }
func VoidVal() Value                       { return Value{Type: ir.TyVoid} }

func (v Value) AsBool() bool          { return v.b }
func (v Value) AsInt() int64          { return v.i }
func (v Value) AsFloat() float64      { return v.f }
func (v Value) AsString() string      { return v.s }
func (v Value) AsPtr() interface{}    { return v.ptr }
func (v Value) IsVoid() bool          { return v.Type == ir.TyVoid }
