package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunctionBuilderAssignAndBinary(t *testing.T) {
	b := NewFunctionBuilder("pipeline0")
	x := b.NewLocal("x", TyInt32)
	sum := b.Binary(OpAdd, TyInt32, b.ConstInt(TyInt32, 1), b.ConstInt(TyInt32, 2))
	b.Assign(x, sum)
	b.Return(b.LocalRef(x))

	fn := b.Finish()
	assert.Equal(t, "pipeline0", fn.Name)
	assert.Len(t, fn.Locals, 1)
	assert.Len(t, fn.Body, 2)
	assert.Equal(t, StmtAssign, fn.Body[0].Kind)
	assert.Equal(t, StmtReturn, fn.Body[1].Kind)
	assert.Equal(t, ExprBinary, fn.Body[0].Src.Kind)
}

func TestArenaPointerStability(t *testing.T) {
	a := NewArena[Expr](2)
	first := a.Alloc()
	first.ConstInt = 1
	for i := 0; i < 10; i++ {
		a.Alloc()
	}
	assert.Equal(t, int64(1), first.ConstInt, "earlier chunk pointers must stay valid after growth")
	assert.Equal(t, 11, a.Len())
}
