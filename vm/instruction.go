package vm

import (
	"fmt"
	"strings"
)

type Opcode byte

const (
	InstructionPushInt   Opcode = 0x0a //10
	InstructionPushFloat Opcode = 0x0b
	InstructionPop       Opcode = 0x0c

	InstructionAddInt Opcode = 0x10
	InstructionSubInt Opcode = 0x11
	InstructionMulInt Opcode = 0x12
	InstructionDivInt Opcode = 0x13

	InstructionAddFloat Opcode = 0x20
	InstructionSubFloat Opcode = 0x21
	InstructionMulFloat Opcode = 0x22
	InstructionDivFloat Opcode = 0x23
)

// example
// 1 - 4 = -3
// PUSH_INT 1
// PUSH_INT 4
// SUB_INT
// -3
// the value pushed first is the left hand side

var Opcodes = []Opcode{
	InstructionPushInt,
	InstructionPushFloat,
	InstructionPop,
	InstructionAddInt,
	InstructionSubInt,
	InstructionMulInt,
	InstructionDivInt,
	InstructionAddFloat,
	InstructionSubFloat,
	InstructionMulFloat,
	InstructionDivFloat,
}

func (op Opcode) String() string {
	var out string
	switch op {
	case InstructionPushInt:
		out = "PUSH_INT"
	case InstructionPushFloat:
		out = "PUSH_FLOAT"
	case InstructionPop:
		out = "POP"
	case InstructionAddInt:
		out = "ADD_INT"
	case InstructionSubInt:
		out = "SUB_INT"
	case InstructionMulInt:
		out = "MUL_INT"
	case InstructionDivInt:
		out = "DIV_INT"
	case InstructionAddFloat:
		out = "ADD_FLOAT"
	case InstructionSubFloat:
		out = "SUB_FLOAT"
	case InstructionMulFloat:
		out = "MUL_FLOAT"
	case InstructionDivFloat:
		out = "DIV_FLOAT"
	default:
		out = fmt.Sprintf("unknown(0x%02x)", byte(op))
	}
	return out
}

// operandKind is the kind of value a binary opcode consumes. ok is false for
// opcodes that are not arithmetic.
func (op Opcode) operandKind() (k Kind, ok bool) {
	switch op {
	case InstructionAddInt, InstructionSubInt, InstructionMulInt, InstructionDivInt:
		return KindInt, true
	case InstructionAddFloat, InstructionSubFloat, InstructionMulFloat, InstructionDivFloat:
		return KindFloat, true
	}
	return 0, false
}

// Instruction is a single decoded vm instruction. Arg is only meaningful
// for the push opcodes. Fields are exported so that programs can be gob encoded.
type Instruction struct {
	Op  Opcode
	Arg Value
}

func PushInt(v int64) Instruction {
	return Instruction{Op: InstructionPushInt, Arg: IntValue(v)}
}

func PushFloat(v float64) Instruction {
	return Instruction{Op: InstructionPushFloat, Arg: FloatValue(v)}
}

func Pop() Instruction { return Instruction{Op: InstructionPop} }
func AddInt() Instruction { return Instruction{Op: InstructionAddInt} }
func SubInt() Instruction { return Instruction{Op: InstructionSubInt} }
func MulInt() Instruction { return Instruction{Op: InstructionMulInt} }
func DivInt() Instruction { return Instruction{Op: InstructionDivInt} }
func AddFloat() Instruction { return Instruction{Op: InstructionAddFloat} }
func SubFloat() Instruction { return Instruction{Op: InstructionSubFloat} }
func MulFloat() Instruction { return Instruction{Op: InstructionMulFloat} }
func DivFloat() Instruction { return Instruction{Op: InstructionDivFloat} }

func (inst Instruction) String() string {
	switch inst.Op {
	case InstructionPushInt, InstructionPushFloat:
		return fmt.Sprintf("%s %s", inst.Op, inst.Arg)
	}
	return inst.Op.String()
}

// Program is an ordered, read-only sequence of instructions. A Program can be
// shared between any number of VMs; execution never writes to it.
type Program []Instruction

// String returns a disassembly listing, one instruction per line.
func (p Program) String() string {
	var sb strings.Builder
	for i, inst := range p {
		fmt.Fprintf(&sb, "%04d %s\n", i, inst)
	}
	return sb.String()
}

// Mnemonics is the disassembly as a slice, handy for json output.
func (p Program) Mnemonics() []string {
	out := make([]string, len(p))
	for i, inst := range p {
		out[i] = inst.String()
	}
	return out
}
