package plan

import "relcore/types"

// NodeKind tags the concrete type of a Node.
type NodeKind int

const (
	NodeSeqScan NodeKind = iota
	NodeIndexScan
	NodeNestLoop
	NodeHashJoin
	NodeAggregate
	NodeOrderBy
	NodeProjection
	NodeLimit
	NodeInsert
	NodeUpdate
	NodeDelete
	NodeOutput
)

// OutputColumn describes one column of a Node's produced row.
type OutputColumn struct {
	Name string
	Type types.TypeID
}

// Node is one relational operator in the plan tree. Compilation walks this
// tree to build pipelines (spec §4.1); operators that materialize their
// input before producing output (Aggregate, OrderBy, HashJoin's build
// side) are pipeline breakers.
type Node interface {
	Kind() NodeKind
	Children() []Node
	Schema() []OutputColumn
}

// Base carries the output schema common to every node; embed it by value
// and set Cols directly (it is exported so callers outside this package
// can build plan trees by hand — the compiler's own input, since query
// planning is an external collaborator per spec §1).
type Base struct {
	Cols []OutputColumn
}

func (b *Base) Schema() []OutputColumn { return b.Cols }

// SeqScan reads every visible row of a table (spec §4.2 "SeqScan").
type SeqScan struct {
	Base
	Table   types.TableID
	Columns []types.ColumnID
	Filter  Expr // nil if no predicate is pushed into the scan
}

func (*SeqScan) Kind() NodeKind    { return NodeSeqScan }
func (*SeqScan) Children() []Node { return nil }

// IndexScan reads rows via an ordered index, optionally bounded and/or
// limited (spec §4.7).
type IndexScan struct {
	Base
	Table      types.TableID
	Index      types.IndexID
	Columns    []types.ColumnID
	Low, High  Expr // nil means unbounded on that side
	Descending bool
	Limit      int // <=0 means unbounded
}

func (*IndexScan) Kind() NodeKind    { return NodeIndexScan }
func (*IndexScan) Children() []Node { return nil }

// NestLoop probes Inner once per Outer row (spec §4.6 nested-loop join).
type NestLoop struct {
	Base
	Outer, Inner Node
	Filter       Expr
}

func (*NestLoop) Kind() NodeKind     { return NodeNestLoop }
func (n *NestLoop) Children() []Node { return []Node{n.Outer, n.Inner} }

// HashJoin builds a hash table over Build's key columns, then probes it
// once per Probe row (spec §4.6 hash join; Build side is a pipeline
// breaker).
type HashJoin struct {
	Base
	Build, Probe         Node
	BuildKeys, ProbeKeys []Expr
	Filter               Expr // residual predicate applied after key equality
}

func (*HashJoin) Kind() NodeKind     { return NodeHashJoin }
func (h *HashJoin) Children() []Node { return []Node{h.Build, h.Probe} }

// Aggregate groups Input by GroupBy and computes Aggs per group (spec §4.4;
// a pipeline breaker).
type Aggregate struct {
	Base
	Input   Node
	GroupBy []Expr
	Aggs    []*AggCall
	Having  Expr
}

func (*Aggregate) Kind() NodeKind     { return NodeAggregate }
func (a *Aggregate) Children() []Node { return []Node{a.Input} }

// OrderBy sorts Input by Keys, optionally keeping only the top Limit rows
// (spec §4.5; a pipeline breaker).
type OrderBy struct {
	Base
	Input      Node
	Keys       []Expr
	Descending []bool
	Limit      int // <=0 means sort everything
}

func (*OrderBy) Kind() NodeKind     { return NodeOrderBy }
func (o *OrderBy) Children() []Node { return []Node{o.Input} }

// Projection evaluates Exprs over Input's rows.
type Projection struct {
	Base
	Input Node
	Exprs []Expr
}

func (*Projection) Kind() NodeKind     { return NodeProjection }
func (p *Projection) Children() []Node { return []Node{p.Input} }

// Limit caps the number of rows Input produces.
type Limit struct {
	Base
	Input Node
	Count int
	Skip  int
}

func (*Limit) Kind() NodeKind     { return NodeLimit }
func (l *Limit) Children() []Node { return []Node{l.Input} }

// Insert writes rows produced by Input into Table.
type Insert struct {
	Base
	Table   types.TableID
	Columns []types.ColumnID
	Input   Node
}

func (*Insert) Kind() NodeKind     { return NodeInsert }
func (i *Insert) Children() []Node { return []Node{i.Input} }

// Update applies SetExprs to matching rows of Input.
type Update struct {
	Base
	Table    types.TableID
	Input    Node
	SetCols  []types.ColumnID
	SetExprs []Expr
}

func (*Update) Kind() NodeKind     { return NodeUpdate }
func (u *Update) Children() []Node { return []Node{u.Input} }

// Delete removes matching rows of Input from Table.
type Delete struct {
	Base
	Table types.TableID
	Input Node
}

func (*Delete) Kind() NodeKind     { return NodeDelete }
func (d *Delete) Children() []Node { return []Node{d.Input} }

// Output is always the plan root: it hands finished rows to the caller
// (spec §4.1's "consumer" at the top of a pipeline tree).
type Output struct {
	Base
	Input Node
}

func (*Output) Kind() NodeKind     { return NodeOutput }
func (o *Output) Children() []Node { return []Node{o.Input} }
