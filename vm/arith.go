package vm

import "fmt"

// execIntArith and friends implement the typed arithmetic/comparison
// opcode families. Splitting them out of Interpreter.Run keeps the main
// dispatch loop's opcode groups readable; each still switches only on
// Op, never on a runtime type tag, matching the point of typed opcodes.
func execIntArith(regs []Value, instr Instruction) error {
	dest, a, b := instr.Operands[0].Reg, instr.Operands[1].Reg, instr.Operands[2].Reg
	x, y := regs[a].AsInt(), regs[b].AsInt()
	is32 := instr.Op == OpAdd_I32 || instr.Op == OpSub_I32 || instr.Op == OpMul_I32 || instr.Op == OpDiv_I32

	var r int64
	switch instr.Op {
	case OpAdd_I32, OpAdd_I64:
		r = x + y
	case OpSub_I32, OpSub_I64:
		r = x - y
	case OpMul_I32, OpMul_I64:
		r = x * y
	case OpDiv_I32, OpDiv_I64:
		if y == 0 {
			return fmt.Errorf("vm: integer division by zero")
		}
		r = x / y
	}
	if is32 {
		regs[dest] = Int32Val(int32(r))
	} else {
		regs[dest] = Int64Val(r)
	}
	return nil
}

func execFloatArith(regs []Value, instr Instruction) error {
	dest, a, b := instr.Operands[0].Reg, instr.Operands[1].Reg, instr.Operands[2].Reg
	x, y := regs[a].AsFloat(), regs[b].AsFloat()
	is32 := instr.Op == OpAdd_F32 || instr.Op == OpSub_F32 || instr.Op == OpMul_F32 || instr.Op == OpDiv_F32

	var r float64
	switch instr.Op {
	case OpAdd_F32, OpAdd_F64:
		r = x + y
	case OpSub_F32, OpSub_F64:
		r = x - y
	case OpMul_F32, OpMul_F64:
		r = x * y
	case OpDiv_F32, OpDiv_F64:
		if y == 0 {
			return fmt.Errorf("vm: float division by zero")
		}
		r = x / y
	}
	if is32 {
		regs[dest] = Float32Val(float32(r))
	} else {
		regs[dest] = Float64Val(r)
	}
	return nil
}

func execIntCompare(regs []Value, instr Instruction) {
	dest, a, b := instr.Operands[0].Reg, instr.Operands[1].Reg, instr.Operands[2].Reg
	x, y := regs[a].AsInt(), regs[b].AsInt()
	regs[dest] = BoolVal(compareOp(instr.Op, cmpInt(x, y)))
}

func execFloatCompare(regs []Value, instr Instruction) {
	dest, a, b := instr.Operands[0].Reg, instr.Operands[1].Reg, instr.Operands[2].Reg
	x, y := regs[a].AsFloat(), regs[b].AsFloat()
	regs[dest] = BoolVal(compareOp(instr.Op, cmpFloat(x, y)))
}

func execStrCompare(regs []Value, instr Instruction) {
	dest, a, b := instr.Operands[0].Reg, instr.Operands[1].Reg, instr.Operands[2].Reg
	x, y := regs[a].AsString(), regs[b].AsString()
	var c int
	switch {
	case x < y:
		c = -1
	case x > y:
		c = 1
	}
	regs[dest] = BoolVal(compareOp(instr.Op, c))
}

func cmpInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func cmpFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// compareOp interprets a comparison opcode's family (Lt/Le/Gt/Ge/Eq/Ne)
// against a three-way comparison result.
func compareOp(op Opcode, c int) bool {
	switch op {
	case OpLt_I32, OpLt_I64, OpLt_F32, OpLt_F64, OpLt_Str:
		return c < 0
	case OpLe_I32, OpLe_I64, OpLe_F32, OpLe_F64:
		return c <= 0
	case OpGt_I32, OpGt_I64, OpGt_F32, OpGt_F64:
		return c > 0
	case OpGe_I32, OpGe_I64, OpGe_F32, OpGe_F64:
		return c >= 0
	case OpEq_I32, OpEq_I64, OpEq_F32, OpEq_F64, OpEq_Str:
		return c == 0
	case OpNe_I32, OpNe_I64, OpNe_F32, OpNe_F64, OpNe_Str:
		return c != 0
	default:
		return false
	}
}
