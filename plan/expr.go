// Package plan is the compiler's input: a tree of relational operators
// (plan.Node) whose leaves and predicates carry a tree of scalar
// expressions (plan.Expr). Nothing in this package parses SQL — building a
// plan tree is a caller responsibility (query planning/optimization is an
// external collaborator per spec §1); this package only defines the shape
// a plan takes and the sema checks the compiler runs over it.
//
// Grounded on dianpeng-sql2awk/plan's Expr/Plan split (plan.go, expr.go),
// generalized from AWK-codegen targets to this repo's typed IR/bytecode
// targets.
package plan

import "relcore/types"

// ExprKind tags the concrete type of an Expr node.
type ExprKind int

const (
	ExprColumnRef ExprKind = iota
	ExprConstant
	ExprArithmetic
	ExprComparison
	ExprConjunction
	ExprAggCall
	ExprFunction
)

// Expr is a scalar expression tree node.
type Expr interface {
	Kind() ExprKind
	ResultType() types.TypeID
}

// ColumnRef names a column produced by a child operator, by position in
// that operator's output schema.
type ColumnRef struct {
	Name    string
	ColIdx  int
	ColType types.TypeID
}

func (*ColumnRef) Kind() ExprKind             { return ExprColumnRef }
func (c *ColumnRef) ResultType() types.TypeID { return c.ColType }

// Constant is a literal value baked into the plan.
type Constant struct {
	Value types.Value
}

func (*Constant) Kind() ExprKind             { return ExprConstant }
func (c *Constant) ResultType() types.TypeID { return c.Value.Type }

type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithDiv
)

// Arithmetic is a binary numeric operator over two same-typed operands.
type Arithmetic struct {
	Op          ArithOp
	Left, Right Expr
	Type        types.TypeID
}

func (*Arithmetic) Kind() ExprKind             { return ExprArithmetic }
func (a *Arithmetic) ResultType() types.TypeID { return a.Type }

type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// Comparison is a predicate over two operands, always Boolean-typed.
type Comparison struct {
	Op          CompareOp
	Left, Right Expr
}

func (*Comparison) Kind() ExprKind             { return ExprComparison }
func (*Comparison) ResultType() types.TypeID   { return types.Boolean }

type ConjOp int

const (
	ConjAnd ConjOp = iota
	ConjOr
)

// Conjunction combines boolean sub-expressions.
type Conjunction struct {
	Op    ConjOp
	Terms []Expr
}

func (*Conjunction) Kind() ExprKind           { return ExprConjunction }
func (*Conjunction) ResultType() types.TypeID { return types.Boolean }

type AggKind int

const (
	AggCount AggKind = iota
	AggSum
	AggMin
	AggMax
	AggAvg
)

// AggCall is an aggregate function applied within a GroupBy/Aggregate
// pipeline breaker. Arg is nil for COUNT(*).
type AggCall struct {
	AggKind AggKind
	Arg     Expr
	Type    types.TypeID
}

func (*AggCall) Kind() ExprKind             { return ExprAggCall }
func (a *AggCall) ResultType() types.TypeID { return a.Type }

// Function is a scalar builtin call (e.g. UPPER, COALESCE) taking a fixed
// argument list.
type Function struct {
	Name string
	Args []Expr
	Type types.TypeID
}

func (*Function) Kind() ExprKind             { return ExprFunction }
func (f *Function) ResultType() types.TypeID { return f.Type }
