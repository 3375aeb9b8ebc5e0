// Package compiler lowers arithmetic expression trees to vm programs.
package compiler

import (
	"fmt"

	"github.com/krehermann/exprvm/vm"
)

// Compile emits the program for e in post order: both operands of a binary
// node are emitted left first, then the operator. That leaves the left operand
// below the right one on the stack, which is the order the vm's sub and div
// expect.
func Compile(e Expr) vm.Program {
	return compile(e, vm.Program{})
}

func compile(e Expr, out vm.Program) vm.Program {
	switch n := e.(type) {
	case *IntLit:
		return append(out, vm.PushInt(n.value))
	case *Binary:
		out = compile(n.left, out)
		out = compile(n.right, out)
		return append(out, opInstruction(n.op))
	}
	panic(fmt.Sprintf("compiler: unknown expression %T", e))
}

func opInstruction(op Operator) vm.Instruction {
	switch op {
	case OpAdd:
		return vm.AddInt()
	case OpSub:
		return vm.SubInt()
	case OpMul:
		return vm.MulInt()
	case OpDiv:
		return vm.DivInt()
	}
	panic(fmt.Sprintf("compiler: unknown operator %d", op))
}

// CompileString parses src and compiles the result.
func CompileString(src string) (vm.Program, error) {
	e, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return Compile(e), nil
}
