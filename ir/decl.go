package ir

// LocalDecl is a function-local variable slot: a register in the bytecode
// this IR eventually lowers to (spec §4.1's "register-based bytecode VM").
type LocalDecl struct {
	Name  string
	Type  Type
	Index int // assigned register index within its owning Function
	Param bool
}
