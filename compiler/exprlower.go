package compiler

import (
	"fmt"

	"relcore/ir"
	"relcore/plan"
	"relcore/types"
)

// lowerExpr translates one plan.Expr into an ir.Expr against fb, resolving
// ColumnRef nodes through cols (the input row's per-column local, indexed
// by ColIdx — the caller loaded these from the current row before asking
// for any expression to be evaluated).
func lowerExpr(fb *ir.FunctionBuilder, cols []*ir.LocalDecl, e plan.Expr) (*ir.Expr, error) {
	switch t := e.(type) {
	case *plan.ColumnRef:
		if t.ColIdx < 0 || t.ColIdx >= len(cols) {
			return nil, fmt.Errorf("compiler: column ref index %d out of range", t.ColIdx)
		}
		return fb.LocalRef(cols[t.ColIdx]), nil

	case *plan.Constant:
		return lowerConstant(fb, t.Value), nil

	case *plan.Arithmetic:
		left, err := lowerExpr(fb, cols, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := lowerExpr(fb, cols, t.Right)
		if err != nil {
			return nil, err
		}
		return fb.Binary(arithBinOp(t.Op), ir.FromValueType(t.Type), left, right), nil

	case *plan.Comparison:
		left, err := lowerExpr(fb, cols, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := lowerExpr(fb, cols, t.Right)
		if err != nil {
			return nil, err
		}
		return fb.Binary(cmpBinOp(t.Op), ir.TyBool, left, right), nil

	case *plan.Conjunction:
		if len(t.Terms) == 0 {
			return fb.ConstBool(t.Op == plan.ConjAnd), nil
		}
		acc, err := lowerExpr(fb, cols, t.Terms[0])
		if err != nil {
			return nil, err
		}
		op := ir.OpAnd
		if t.Op == plan.ConjOr {
			op = ir.OpOr
		}
		for _, term := range t.Terms[1:] {
			next, err := lowerExpr(fb, cols, term)
			if err != nil {
				return nil, err
			}
			acc = fb.Binary(op, ir.TyBool, acc, next)
		}
		return acc, nil

	case *plan.Function:
		args := make([]*ir.Expr, len(t.Args))
		for i, a := range t.Args {
			la, err := lowerExpr(fb, cols, a)
			if err != nil {
				return nil, err
			}
			args[i] = la
		}
		return fb.IntrinsicCall("scalar."+t.Name, ir.FromValueType(t.Type), args...), nil

	case *plan.AggCall:
		return nil, fmt.Errorf("compiler: aggregate call cannot appear outside an Aggregate node")

	default:
		return nil, fmt.Errorf("compiler: unhandled expr type %T", e)
	}
}

func lowerConstant(fb *ir.FunctionBuilder, v types.Value) *ir.Expr {
	if v.IsNull {
		return fb.ConstInt(ir.FromValueType(v.Type), 0)
	}
	switch v.Type {
	case types.Boolean:
		return fb.ConstBool(v.AsBool())
	case types.Real, types.Double:
		return fb.ConstFloat(ir.FromValueType(v.Type), v.AsFloat64())
	case types.Varchar:
		return fb.ConstString(v.AsString())
	default:
		return fb.ConstInt(ir.FromValueType(v.Type), v.AsInt64())
	}
}

func arithBinOp(op plan.ArithOp) ir.BinOp {
	switch op {
	case plan.ArithAdd:
		return ir.OpAdd
	case plan.ArithSub:
		return ir.OpSub
	case plan.ArithMul:
		return ir.OpMul
	default:
		return ir.OpDiv
	}
}

func cmpBinOp(op plan.CompareOp) ir.BinOp {
	switch op {
	case plan.CmpEq:
		return ir.OpEq
	case plan.CmpNe:
		return ir.OpNe
	case plan.CmpLt:
		return ir.OpLt
	case plan.CmpLe:
		return ir.OpLe
	case plan.CmpGt:
		return ir.OpGt
	default:
		return ir.OpGe
	}
}
