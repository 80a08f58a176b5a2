package ir

// Function is one compiled pipeline stage's IR body: a parameter list, a
// local-register file, and a statement list. compiler builds one Function
// per pipeline (spec §4.1 "Pipeline compiler... compiles to typed IR").
type Function struct {
	Name   string
	Params []*LocalDecl
	Locals []*LocalDecl
	Body   []*Stmt
}

// FunctionBuilder accumulates a Function's IR using an owned set of arenas,
// so a compiler pass can freely allocate exprs/stmts/locals during a single
// walk of the plan tree without individually new-ing each node. Grounded
// on dianpeng-sql2awk/cg/codegen.go's Codegen type (one struct threading
// state through a single recursive Gen call) generalized to typed IR
// output instead of AWK source text.
type FunctionBuilder struct {
	fn *Function

	exprs *Arena[Expr]
	stmts *Arena[Stmt]
}

func NewFunctionBuilder(name string) *FunctionBuilder {
	return &FunctionBuilder{
		fn:    &Function{Name: name},
		exprs: NewArena[Expr](128),
		stmts: NewArena[Stmt](64),
	}
}

func (b *FunctionBuilder) AddParam(name string, ty Type) *LocalDecl {
	d := &LocalDecl{Name: name, Type: ty, Param: true, Index: len(b.fn.Params) + len(b.fn.Locals)}
	b.fn.Params = append(b.fn.Params, d)
	return d
}

// NewLocal declares a fresh register-backed local.
func (b *FunctionBuilder) NewLocal(name string, ty Type) *LocalDecl {
	d := &LocalDecl{Name: name, Type: ty, Index: len(b.fn.Params) + len(b.fn.Locals)}
	b.fn.Locals = append(b.fn.Locals, d)
	return d
}

func (b *FunctionBuilder) ConstInt(ty Type, v int64) *Expr {
	e := b.exprs.Alloc()
	e.Kind, e.Type, e.ConstInt = ExprConst, ty, v
	return e
}

func (b *FunctionBuilder) ConstFloat(ty Type, v float64) *Expr {
	e := b.exprs.Alloc()
	e.Kind, e.Type, e.ConstFloat = ExprConst, ty, v
	return e
}

func (b *FunctionBuilder) ConstBool(v bool) *Expr {
	e := b.exprs.Alloc()
	e.Kind, e.Type, e.ConstBool = ExprConst, TyBool, v
	return e
}

func (b *FunctionBuilder) ConstString(v string) *Expr {
	e := b.exprs.Alloc()
	e.Kind, e.Type, e.ConstString = ExprConst, TyString, v
	return e
}

func (b *FunctionBuilder) LocalRef(d *LocalDecl) *Expr {
	e := b.exprs.Alloc()
	e.Kind, e.Type, e.Local = ExprLocalRef, d.Type, d
	return e
}

func (b *FunctionBuilder) Binary(op BinOp, resultType Type, left, right *Expr) *Expr {
	e := b.exprs.Alloc()
	e.Kind, e.Type, e.Op, e.Left, e.Right = ExprBinary, resultType, op, left, right
	return e
}

func (b *FunctionBuilder) Unary(op BinOp, resultType Type, operand *Expr) *Expr {
	e := b.exprs.Alloc()
	e.Kind, e.Type, e.Op, e.Left = ExprUnary, resultType, op, operand
	return e
}

// IntrinsicCall builds a call into a runtime primitive registered with the
// VM's intrinsic table (vm.Intrinsic), the IR-level analogue of TPL's
// builtin-function calls into the execution runtime.
func (b *FunctionBuilder) IntrinsicCall(name string, resultType Type, args ...*Expr) *Expr {
	e := b.exprs.Alloc()
	e.Kind, e.Type, e.Callee, e.Args = ExprIntrinsicCall, resultType, name, args
	return e
}

func (b *FunctionBuilder) Assign(dest *LocalDecl, src *Expr) *Stmt {
	s := b.stmts.Alloc()
	s.Kind, s.Dest, s.Src = StmtAssign, dest, src
	b.fn.Body = append(b.fn.Body, s)
	return s
}

func (b *FunctionBuilder) ExprStmt(call *Expr) *Stmt {
	s := b.stmts.Alloc()
	s.Kind, s.Call = StmtExpr, call
	b.fn.Body = append(b.fn.Body, s)
	return s
}

// If appends a conditional whose Then/Else bodies are filled in by the
// caller after construction (they're built by nested BuildXxx calls that
// need the *Stmt to append into).
func (b *FunctionBuilder) If(cond *Expr) *Stmt {
	s := b.stmts.Alloc()
	s.Kind, s.Cond = StmtIf, cond
	b.fn.Body = append(b.fn.Body, s)
	return s
}

func (b *FunctionBuilder) For(cond *Expr) *Stmt {
	s := b.stmts.Alloc()
	s.Kind, s.Cond = StmtFor, cond
	b.fn.Body = append(b.fn.Body, s)
	return s
}

func (b *FunctionBuilder) Return(result *Expr) *Stmt {
	s := b.stmts.Alloc()
	s.Kind, s.Result = StmtReturn, result
	b.fn.Body = append(b.fn.Body, s)
	return s
}

// NewStmt allocates a detached statement for a caller to append into a
// nested block (e.g. an If's Then list) rather than the function's
// top-level Body.
func (b *FunctionBuilder) NewStmt(kind StmtKind) *Stmt {
	s := b.stmts.Alloc()
	s.Kind = kind
	return s
}

func (b *FunctionBuilder) Finish() *Function { return b.fn }
