package vm

import "fmt"

// Interpreter runs Functions from a Module against an IntrinsicTable.
// Grounded on the teacher's query_executor/vm.go Execute loop (a flat
// switch over instr.Op advancing through a slice), generalized from a
// SQL-statement dispatch to a per-tuple register-machine dispatch with an
// explicit program counter so jump opcodes can move it non-linearly.
type Interpreter struct {
	module     *Module
	intrinsics *IntrinsicTable
}

func NewInterpreter(module *Module, intrinsics *IntrinsicTable) *Interpreter {
	return &Interpreter{module: module, intrinsics: intrinsics}
}

// Run executes fn to completion, returning its OpReturn value (VoidVal if
// it falls off the end without one).
func (vmi *Interpreter) Run(fn *Function, args []Value, ctx *ExecContext) (Value, error) {
	if vmi.module.Mode != ModeInterpret {
		return Value{}, fmt.Errorf("vm: mode %v has no interpreter path (adaptive compilation is not implemented)", vmi.module.Mode)
	}
	regs := make([]Value, fn.NumLocals)
	copy(regs, args)

	pc := 0
	for pc < len(fn.Code) {
		instr := fn.Code[pc]
		ctx.Stats.OpcodesExecuted++
		next := pc + 1

		switch instr.Op {
		case OpNop:
			// no-op

		case OpMove:
			regs[instr.Operands[0].Reg] = regs[instr.Operands[1].Reg]

		case OpLoadImm:
			regs[instr.Operands[0].Reg] = operandToValue(instr.Operands[1])

		case OpAdd_I32, OpAdd_I64, OpSub_I32, OpSub_I64, OpMul_I32, OpMul_I64, OpDiv_I32, OpDiv_I64:
			if err := execIntArith(regs, instr); err != nil {
				return Value{}, err
			}
		case OpAdd_F32, OpAdd_F64, OpSub_F32, OpSub_F64, OpMul_F32, OpMul_F64, OpDiv_F32, OpDiv_F64:
			if err := execFloatArith(regs, instr); err != nil {
				return Value{}, err
			}

		case OpLt_I32, OpLt_I64, OpLe_I32, OpLe_I64, OpGt_I32, OpGt_I64, OpGe_I32, OpGe_I64, OpEq_I32, OpEq_I64, OpNe_I32, OpNe_I64:
			execIntCompare(regs, instr)
		case OpLt_F32, OpLt_F64, OpLe_F32, OpLe_F64, OpGt_F32, OpGt_F64, OpGe_F32, OpGe_F64, OpEq_F32, OpEq_F64, OpNe_F32, OpNe_F64:
			execFloatCompare(regs, instr)
		case OpLt_Str, OpEq_Str, OpNe_Str:
			execStrCompare(regs, instr)

		case OpAnd_Bool:
			dest, a, b := instr.Operands[0].Reg, instr.Operands[1].Reg, instr.Operands[2].Reg
			regs[dest] = BoolVal(regs[a].AsBool() && regs[b].AsBool())
		case OpOr_Bool:
			dest, a, b := instr.Operands[0].Reg, instr.Operands[1].Reg, instr.Operands[2].Reg
			regs[dest] = BoolVal(regs[a].AsBool() || regs[b].AsBool())
		case OpNot_Bool:
			dest, a := instr.Operands[0].Reg, instr.Operands[1].Reg
			regs[dest] = BoolVal(!regs[a].AsBool())

		case OpNeg_I32:
			regs[instr.Operands[0].Reg] = Int32Val(int32(-regs[instr.Operands[1].Reg].AsInt()))
		case OpNeg_I64:
			regs[instr.Operands[0].Reg] = Int64Val(-regs[instr.Operands[1].Reg].AsInt())
		case OpNeg_F32:
			regs[instr.Operands[0].Reg] = Float32Val(float32(-regs[instr.Operands[1].Reg].AsFloat()))
		case OpNeg_F64:
			regs[instr.Operands[0].Reg] = Float64Val(-regs[instr.Operands[1].Reg].AsFloat())

		case OpJump:
			next = pc + int(instr.Operands[0].I64)

		case OpJumpIfTrue:
			if regs[instr.Operands[0].Reg].AsBool() {
				next = pc + int(instr.Operands[1].I64)
			}
		case OpJumpIfFalse:
			if !regs[instr.Operands[0].Reg].AsBool() {
				next = pc + int(instr.Operands[1].I64)
			}

		case OpCall:
			callee, ok := vmi.module.FunctionByName(instr.Intrinsic)
			if !ok {
				return Value{}, fmt.Errorf("vm: call: unknown function %q", instr.Intrinsic)
			}
			callArgs := make([]Value, len(instr.Operands)-1)
			for i, op := range instr.Operands[1:] {
				callArgs[i] = regs[op.Reg]
			}
			result, err := vmi.Run(callee, callArgs, ctx)
			if err != nil {
				return Value{}, err
			}
			regs[instr.Operands[0].Reg] = result

		case OpCallIntrinsic:
			fn, err := vmi.intrinsics.Lookup(instr.Intrinsic)
			if err != nil {
				return Value{}, err
			}
			callArgs := make([]Value, len(instr.Operands)-1)
			for i, op := range instr.Operands[1:] {
				callArgs[i] = regs[op.Reg]
			}
			result, err := fn(ctx, callArgs)
			if err != nil {
				return Value{}, fmt.Errorf("vm: intrinsic %q: %w", instr.Intrinsic, err)
			}
			regs[instr.Operands[0].Reg] = result

		case OpReturn:
			if len(instr.Operands) == 0 {
				return VoidVal(), nil
			}
			return regs[instr.Operands[0].Reg], nil

		case OpHalt:
			return VoidVal(), nil

		default:
			return Value{}, fmt.Errorf("vm: unknown opcode %v", instr.Op)
		}
		pc = next
	}
	return VoidVal(), nil
}

func operandToValue(op Operand) Value {
	switch op.Kind {
	case OperandImm4F, OperandImm8F:
		return Float64Val(op.F64)
	default:
		return Int64Val(op.I64)
	}
}
