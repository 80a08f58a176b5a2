// Package compiler is the pipeline compiler of spec §4.1: it walks a
// plan.Node tree, lists one pipeline per plan node in dependency order
// (nodes between breakers are not grouped into a shared pipeline), lowers
// scalar expressions to typed ir then to register-VM bytecode, and drives
// execution against the storage/index/exec runtime primitives.
package compiler

import "relcore/plan"

// Pipeline is one entry of BuildPipelines' list: a single plan node, Root,
// whether or not it is a breaker. Grounded on
// dianpeng-sql2awk/cg/codegen.go's staged-function decomposition
// (group_by_next/flush/done, agg_next/flush/done, ...) generalized from
// named AWK functions to an explicit dependency-ordered stage list.
type Pipeline struct {
	ID   int
	Root plan.Node
}

// BuildPipelines returns one pipeline per node of root in bottom-up
// (post-order) dependency order: every node's inputs precede it, and a
// HashJoin's build side precedes its probe side.
func BuildPipelines(root plan.Node) []*Pipeline {
	b := &pipelineBuilder{}
	b.walk(root)
	return b.pipelines
}

type pipelineBuilder struct {
	pipelines []*Pipeline
	nextID    int
}

func (b *pipelineBuilder) walk(n plan.Node) {
	if n == nil {
		return
	}
	switch t := n.(type) {
	case *plan.HashJoin:
		b.walk(t.Build)
		b.walk(t.Probe)
	default:
		for _, c := range n.Children() {
			b.walk(c)
		}
	}
	b.pipelines = append(b.pipelines, &Pipeline{ID: b.nextID, Root: n})
	b.nextID++
}
