package compiler

import (
	"fmt"
	"strconv"
)

// Expr is a node of the expression tree: an *IntLit or a *Binary.
// Nodes are immutable once built and own their children.
type Expr interface {
	fmt.Stringer
	expr()
}

type Operator byte

const (
	OpAdd Operator = iota + 1
	OpSub
	OpMul
	OpDiv
)

func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return "?"
}

type IntLit struct {
	value int64
}

func LitI(v int64) *IntLit {
	return &IntLit{value: v}
}

func (l *IntLit) Value() int64 { return l.value }

func (l *IntLit) String() string {
	return strconv.FormatInt(l.value, 10)
}

func (*IntLit) expr() {}

type Binary struct {
	op          Operator
	left, right Expr
	// longest path to a literal, 1 for a node over two literals
	height int
}

func newBinary(op Operator, left, right Expr) *Binary {
	if left == nil || right == nil {
		panic(fmt.Sprintf("compiler: %s node with nil operand", op))
	}
	return &Binary{op: op, left: left, right: right, height: 1 + max(Height(left), Height(right))}
}

// Height is the number of binary nodes on the longest path from e to a literal.
func Height(e Expr) int {
	if b, ok := e.(*Binary); ok {
		return b.height
	}
	return 0
}

func Add(left, right Expr) *Binary { return newBinary(OpAdd, left, right) }
func Sub(left, right Expr) *Binary { return newBinary(OpSub, left, right) }
func Mul(left, right Expr) *Binary { return newBinary(OpMul, left, right) }
func Div(left, right Expr) *Binary { return newBinary(OpDiv, left, right) }

func (b *Binary) Op() Operator { return b.op }
func (b *Binary) Left() Expr { return b.left }
func (b *Binary) Right() Expr { return b.right }

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.left, b.op, b.right)
}

func (*Binary) expr() {}
