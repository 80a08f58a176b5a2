// Package compiler turns a plan.Node tree into an executable vm.Module:
// it lists one pipeline per plan node (spec §4.1), lowers scalar
// expressions and operator glue to typed ir, then
// lowers that ir to bytecode via a generic recursive-descent emitter.
//
// Grounded on query_parser/code-generator's single-entry code_generator.go
// (a Generate(ast) that dispatches by node kind) for the overall
// walk-and-emit shape, and on dianpeng-sql2awk/cg/codegen.go's
// one-owner-per-compile CodeGen struct for keeping all compiler state (the
// assembler, the register map, the intrinsic name table) in one place
// instead of threading a dozen parameters through every helper.
package compiler

import (
	"fmt"

	"relcore/ir"
	"relcore/vm"
)

// LowerFunction runs the generic ir.Function -> vm.Function bytecode
// generation pass (spec §4.1 "bytecode generator"). It has no knowledge of
// plan/relational concepts — anything operator-shaped already became an
// ExprIntrinsicCall by the time ir reaches here.
func LowerFunction(fn *ir.Function) (*vm.Function, error) {
	asm := vm.NewAssembler()
	lw := &lowerer{asm: asm, nextReg: int32(len(fn.Params) + len(fn.Locals))}

	for _, s := range fn.Body {
		if err := lw.stmt(s); err != nil {
			return nil, err
		}
	}
	asm.Emit(vm.OpHalt)

	code, err := asm.Resolve()
	if err != nil {
		return nil, err
	}
	return &vm.Function{
		Name:      fn.Name,
		NumParams: len(fn.Params),
		NumLocals: int(lw.nextReg),
		Code:      code,
	}, nil
}

type lowerer struct {
	asm      *vm.Assembler
	nextReg  int32
	labelSeq int
}

func (lw *lowerer) freshReg() int32 {
	r := lw.nextReg
	lw.nextReg++
	return r
}

func (lw *lowerer) label(prefix string) string {
	lw.labelSeq++
	return fmt.Sprintf("%s_%d", prefix, lw.labelSeq)
}

func (lw *lowerer) stmt(s *ir.Stmt) error {
	switch s.Kind {
	case ir.StmtAssign:
		reg, err := lw.expr(s.Src)
		if err != nil {
			return err
		}
		lw.asm.Emit(vm.OpMove, vm.Local(int32(s.Dest.Index)), vm.Local(reg))
		return nil

	case ir.StmtExpr:
		_, err := lw.expr(s.Call)
		return err

	case ir.StmtIf:
		cond, err := lw.expr(s.Cond)
		if err != nil {
			return err
		}
		elseLabel := lw.label("else")
		endLabel := lw.label("endif")
		lw.asm.EmitJump(vm.OpJumpIfFalse, elseLabel, cond)
		for _, st := range s.Then {
			if err := lw.stmt(st); err != nil {
				return err
			}
		}
		lw.asm.EmitJump(vm.OpJump, endLabel, 0)
		lw.asm.Label(elseLabel)
		for _, st := range s.Else {
			if err := lw.stmt(st); err != nil {
				return err
			}
		}
		lw.asm.Label(endLabel)
		return nil

	case ir.StmtFor:
		startLabel := lw.label("loop")
		endLabel := lw.label("loopend")
		lw.asm.Label(startLabel)
		if s.Cond != nil {
			cond, err := lw.expr(s.Cond)
			if err != nil {
				return err
			}
			lw.asm.EmitJump(vm.OpJumpIfFalse, endLabel, cond)
		}
		for _, st := range s.Body {
			if err := lw.stmt(st); err != nil {
				return err
			}
		}
		lw.asm.EmitJump(vm.OpJump, startLabel, 0)
		lw.asm.Label(endLabel)
		return nil

	case ir.StmtReturn:
		if s.Result == nil {
			lw.asm.Emit(vm.OpReturn)
			return nil
		}
		reg, err := lw.expr(s.Result)
		if err != nil {
			return err
		}
		lw.asm.Emit(vm.OpReturn, vm.Local(reg))
		return nil

	default:
		return fmt.Errorf("compiler: unhandled ir statement kind %v", s.Kind)
	}
}

// expr lowers e, emitting instructions that leave its value in the
// returned register.
func (lw *lowerer) expr(e *ir.Expr) (int32, error) {
	switch e.Kind {
	case ir.ExprConst:
		dest := lw.freshReg()
		lw.asm.Emit(vm.OpLoadImm, vm.Local(dest), constOperand(e))
		return dest, nil

	case ir.ExprLocalRef:
		return int32(e.Local.Index), nil

	case ir.ExprBinary:
		left, err := lw.expr(e.Left)
		if err != nil {
			return 0, err
		}
		right, err := lw.expr(e.Right)
		if err != nil {
			return 0, err
		}
		dest := lw.freshReg()
		op, err := binaryOpcode(e.Op, e.Left.Type)
		if err != nil {
			return 0, err
		}
		lw.asm.Emit(op, vm.Local(dest), vm.Local(left), vm.Local(right))
		return dest, nil

	case ir.ExprUnary:
		operand, err := lw.expr(e.Left)
		if err != nil {
			return 0, err
		}
		dest := lw.freshReg()
		op, err := unaryOpcode(e.Op, e.Type)
		if err != nil {
			return 0, err
		}
		lw.asm.Emit(op, vm.Local(dest), vm.Local(operand))
		return dest, nil

	case ir.ExprIntrinsicCall, ir.ExprCall:
		args := make([]int32, len(e.Args))
		for i, a := range e.Args {
			r, err := lw.expr(a)
			if err != nil {
				return 0, err
			}
			args[i] = r
		}
		dest := lw.freshReg()
		if e.Kind == ir.ExprIntrinsicCall {
			lw.asm.EmitIntrinsic(e.Callee, dest, args...)
		} else {
			lw.asm.EmitCall(e.Callee, dest, args...)
		}
		return dest, nil

	default:
		return 0, fmt.Errorf("compiler: unhandled ir expr kind %v", e.Kind)
	}
}

func constOperand(e *ir.Expr) vm.Operand {
	switch e.Type {
	case ir.TyFloat32, ir.TyFloat64:
		return vm.Imm8F(e.ConstFloat)
	case ir.TyBool:
		v := int64(0)
		if e.ConstBool {
			v = 1
		}
		return vm.Imm1(v)
	default:
		return vm.Imm8(e.ConstInt)
	}
}

func binaryOpcode(op ir.BinOp, ty ir.Type) (vm.Opcode, error) {
	isFloat := ty == ir.TyFloat32 || ty == ir.TyFloat64
	is64 := ty == ir.TyInt64
	isStr := ty == ir.TyString
	switch op {
	case ir.OpAdd:
		if isFloat {
			if ty == ir.TyFloat32 {
				return vm.OpAdd_F32, nil
			}
			return vm.OpAdd_F64, nil
		}
		if is64 {
			return vm.OpAdd_I64, nil
		}
		return vm.OpAdd_I32, nil
	case ir.OpSub:
		if isFloat {
			if ty == ir.TyFloat32 {
				return vm.OpSub_F32, nil
			}
			return vm.OpSub_F64, nil
		}
		if is64 {
			return vm.OpSub_I64, nil
		}
		return vm.OpSub_I32, nil
	case ir.OpMul:
		if isFloat {
			if ty == ir.TyFloat32 {
				return vm.OpMul_F32, nil
			}
			return vm.OpMul_F64, nil
		}
		if is64 {
			return vm.OpMul_I64, nil
		}
		return vm.OpMul_I32, nil
	case ir.OpDiv:
		if isFloat {
			if ty == ir.TyFloat32 {
				return vm.OpDiv_F32, nil
			}
			return vm.OpDiv_F64, nil
		}
		if is64 {
			return vm.OpDiv_I64, nil
		}
		return vm.OpDiv_I32, nil
	case ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe, ir.OpEq, ir.OpNe:
		return compareOpcode(op, ty, isFloat, is64, isStr)
	case ir.OpAnd:
		return vm.OpAnd_Bool, nil
	case ir.OpOr:
		return vm.OpOr_Bool, nil
	default:
		return 0, fmt.Errorf("compiler: unsupported binary op %v", op)
	}
}

func compareOpcode(op ir.BinOp, ty ir.Type, isFloat, is64, isStr bool) (vm.Opcode, error) {
	if isStr {
		switch op {
		case ir.OpLt:
			return vm.OpLt_Str, nil
		case ir.OpEq:
			return vm.OpEq_Str, nil
		case ir.OpNe:
			return vm.OpNe_Str, nil
		default:
			return 0, fmt.Errorf("compiler: string comparison %v not supported", op)
		}
	}
	table := map[ir.BinOp][4]vm.Opcode{
		ir.OpLt: {vm.OpLt_I32, vm.OpLt_I64, vm.OpLt_F32, vm.OpLt_F64},
		ir.OpLe: {vm.OpLe_I32, vm.OpLe_I64, vm.OpLe_F32, vm.OpLe_F64},
		ir.OpGt: {vm.OpGt_I32, vm.OpGt_I64, vm.OpGt_F32, vm.OpGt_F64},
		ir.OpGe: {vm.OpGe_I32, vm.OpGe_I64, vm.OpGe_F32, vm.OpGe_F64},
		ir.OpEq: {vm.OpEq_I32, vm.OpEq_I64, vm.OpEq_F32, vm.OpEq_F64},
		ir.OpNe: {vm.OpNe_I32, vm.OpNe_I64, vm.OpNe_F32, vm.OpNe_F64},
	}
	row, ok := table[op]
	if !ok {
		return 0, fmt.Errorf("compiler: unsupported comparison op %v", op)
	}
	switch {
	case isFloat && ty == ir.TyFloat32:
		return row[2], nil
	case isFloat:
		return row[3], nil
	case is64:
		return row[1], nil
	default:
		return row[0], nil
	}
}

func unaryOpcode(op ir.BinOp, ty ir.Type) (vm.Opcode, error) {
	switch op {
	case ir.OpNot:
		return vm.OpNot_Bool, nil
	case ir.OpNeg:
		switch ty {
		case ir.TyInt64:
			return vm.OpNeg_I64, nil
		case ir.TyFloat32:
			return vm.OpNeg_F32, nil
		case ir.TyFloat64:
			return vm.OpNeg_F64, nil
		default:
			return vm.OpNeg_I32, nil
		}
	default:
		return 0, fmt.Errorf("compiler: unsupported unary op %v", op)
	}
}
