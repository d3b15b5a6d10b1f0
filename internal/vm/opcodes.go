// Package vm implements the register-based stack machine executed inside
// brain machines (spec.md §2 "VM", §4.7 "Brain").
//
// The opcode set is taken verbatim from
// original_source/src/vm/op_xmacro.h, the xmacro table that drives the
// original C interpreter's dispatch switch. We keep the exact opcode
// names and grouping; the encoding (fixed-width Instruction{Op, Arg}
// rather than a packed byte stream) is our own, since the assembler that
// would produce a real byte stream is explicitly out of scope
// (spec.md §1) — the core only ever consumes already-compiled modules.
package vm

// Opcode identifies one VM instruction, grouped exactly as in
// op_xmacro.h.
type Opcode uint8

const (
	OpNoop Opcode = iota

	OpPush  // lit
	OpPushR // reg
	OpPushF
	OpPop
	OpPopR // reg
	OpDupe
	OpSwap
	OpArg0 // len
	OpArg1
	OpArg2
	OpArg3

	OpNot
	OpAnd
	OpXor
	OpOr
	OpBNot
	OpBAnd
	OpBXor
	OpBOr
	OpBSL
	OpBSR

	OpNeg
	OpAdd
	OpSub
	OpMul
	OpLMul
	OpDiv
	OpRem

	OpEq
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpCmp

	OpRet
	OpCall // mod
	OpLoad
	OpJmp // off
	OpJz  // off
	OpJnz // off

	OpReset
	OpYield
	OpTsc
	OpFault

	OpIO // len
	OpIOS
	OpIOR // reg

	OpPack
	OpUnpack
)

// Instruction is one fixed-width VM word: an opcode plus its single
// immediate argument (literal, register index, jump offset, mod/symbol
// id, or argument count, depending on Op).
type Instruction struct {
	Op  Opcode
	Arg int64
}
