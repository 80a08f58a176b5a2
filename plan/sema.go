package plan

import "fmt"

// Checker walks a plan tree and its expressions checking the type
// agreements the compiler will otherwise discover the hard way while
// lowering to IR (spec §4.1 "semantic checker... runs before bytecode
// lowering"). Grounded on dianpeng-sql2awk/plan/sema.go's error-accumulate
// style: collect every problem instead of stopping at the first.
type Checker struct {
	errs []string
}

func NewChecker() *Checker { return &Checker{} }

func (c *Checker) HasErrors() bool { return len(c.errs) > 0 }

func (c *Checker) Errors() []string { return c.errs }

func (c *Checker) errorf(format string, args ...interface{}) {
	c.errs = append(c.errs, fmt.Sprintf(format, args...))
}

// Check validates a plan tree, recursing into every child and expression.
func (c *Checker) Check(n Node) {
	if n == nil {
		return
	}
	switch t := n.(type) {
	case *HashJoin:
		if len(t.BuildKeys) != len(t.ProbeKeys) {
			c.errorf("hash join: %d build keys but %d probe keys", len(t.BuildKeys), len(t.ProbeKeys))
		}
		for i := range t.BuildKeys {
			if i >= len(t.ProbeKeys) {
				break
			}
			if t.BuildKeys[i].ResultType() != t.ProbeKeys[i].ResultType() {
				c.errorf("hash join: key %d type mismatch: %s vs %s", i, t.BuildKeys[i].ResultType(), t.ProbeKeys[i].ResultType())
			}
		}
	case *Aggregate:
		for _, a := range t.Aggs {
			c.checkExpr(a)
		}
		if t.Having != nil {
			c.checkExpr(t.Having)
		}
	case *OrderBy:
		if len(t.Keys) != len(t.Descending) {
			c.errorf("order by: %d keys but %d direction flags", len(t.Keys), len(t.Descending))
		}
	case *Projection:
		for _, e := range t.Exprs {
			c.checkExpr(e)
		}
	}
	for _, child := range n.Children() {
		c.Check(child)
	}
}

func (c *Checker) checkExpr(e Expr) {
	switch t := e.(type) {
	case *Comparison:
		if t.Left.ResultType() != t.Right.ResultType() {
			c.errorf("comparison operand type mismatch: %s vs %s", t.Left.ResultType(), t.Right.ResultType())
		}
		c.checkExpr(t.Left)
		c.checkExpr(t.Right)
	case *Arithmetic:
		if t.Left.ResultType() != t.Right.ResultType() {
			c.errorf("arithmetic operand type mismatch: %s vs %s", t.Left.ResultType(), t.Right.ResultType())
		}
		c.checkExpr(t.Left)
		c.checkExpr(t.Right)
	case *Conjunction:
		for _, term := range t.Terms {
			c.checkExpr(term)
		}
	case *Function:
		for _, arg := range t.Args {
			c.checkExpr(arg)
		}
	case *AggCall:
		if t.Arg != nil {
			c.checkExpr(t.Arg)
		}
	}
}
