package vm

// Opcode is a single bytecode operation. Arithmetic and comparison
// opcodes are named `<Op>_<TypeTag>` (spec §4.1) so the interpreter never
// branches on runtime type inside the hot loop — the type is baked into
// which opcode the compiler emitted.
type Opcode uint16

const (
	OpNop Opcode = iota

	OpMove
	OpLoadImm

	OpAdd_I32
	OpAdd_I64
	OpAdd_F32
	OpAdd_F64
	OpSub_I32
	OpSub_I64
	OpSub_F32
	OpSub_F64
	OpMul_I32
	OpMul_I64
	OpMul_F32
	OpMul_F64
	OpDiv_I32
	OpDiv_I64
	OpDiv_F32
	OpDiv_F64

	OpLt_I32
	OpLt_I64
	OpLt_F32
	OpLt_F64
	OpLt_Str
	OpLe_I32
	OpLe_I64
	OpLe_F32
	OpLe_F64
	OpGt_I32
	OpGt_I64
	OpGt_F32
	OpGt_F64
	OpGe_I32
	OpGe_I64
	OpGe_F32
	OpGe_F64
	OpEq_I32
	OpEq_I64
	OpEq_F32
	OpEq_F64
	OpEq_Str
	OpNe_I32
	OpNe_I64
	OpNe_F32
	OpNe_F64
	OpNe_Str

	OpAnd_Bool
	OpOr_Bool
	OpNot_Bool
	OpNeg_I32
	OpNeg_I64
	OpNeg_F32
	OpNeg_F64

	OpJump
	OpJumpIfTrue
	OpJumpIfFalse

	OpCall
	OpCallIntrinsic
	OpReturn
	OpHalt
)

var opcodeNames = map[Opcode]string{
	OpNop: "Nop", OpMove: "Move", OpLoadImm: "LoadImm",
	OpAdd_I32: "Add_I32", OpAdd_I64: "Add_I64", OpAdd_F32: "Add_F32", OpAdd_F64: "Add_F64",
	OpSub_I32: "Sub_I32", OpSub_I64: "Sub_I64", OpSub_F32: "Sub_F32", OpSub_F64: "Sub_F64",
	OpMul_I32: "Mul_I32", OpMul_I64: "Mul_I64", OpMul_F32: "Mul_F32", OpMul_F64: "Mul_F64",
	OpDiv_I32: "Div_I32", OpDiv_I64: "Div_I64", OpDiv_F32: "Div_F32", OpDiv_F64: "Div_F64",
	OpLt_I32: "Lt_I32", OpLt_I64: "Lt_I64", OpLt_F32: "Lt_F32", OpLt_F64: "Lt_F64", OpLt_Str: "Lt_Str",
	OpLe_I32: "Le_I32", OpLe_I64: "Le_I64", OpLe_F32: "Le_F32", OpLe_F64: "Le_F64",
	OpGt_I32: "Gt_I32", OpGt_I64: "Gt_I64", OpGt_F32: "Gt_F32", OpGt_F64: "Gt_F64",
	OpGe_I32: "Ge_I32", OpGe_I64: "Ge_I64", OpGe_F32: "Ge_F32", OpGe_F64: "Ge_F64",
	OpEq_I32: "Eq_I32", OpEq_I64: "Eq_I64", OpEq_F32: "Eq_F32", OpEq_F64: "Eq_F64", OpEq_Str: "Eq_Str",
	OpNe_I32: "Ne_I32", OpNe_I64: "Ne_I64", OpNe_F32: "Ne_F32", OpNe_F64: "Ne_F64", OpNe_Str: "Ne_Str",
	OpAnd_Bool: "And_Bool", OpOr_Bool: "Or_Bool", OpNot_Bool: "Not_Bool",
	OpNeg_I32: "Neg_I32", OpNeg_I64: "Neg_I64", OpNeg_F32: "Neg_F32", OpNeg_F64: "Neg_F64",
	OpJump: "Jump", OpJumpIfTrue: "JumpIfTrue", OpJumpIfFalse: "JumpIfFalse",
	OpCall: "Call", OpCallIntrinsic: "CallIntrinsic", OpReturn: "Return", OpHalt: "Halt",
}

func (op Opcode) String() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return "Unknown"
}
