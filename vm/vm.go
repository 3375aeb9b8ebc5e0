package vm

import (
	"fmt"

	"go.uber.org/zap"
)

type VM struct {
	// read only, may be shared with other VMs
	code Program
	// instruction pointer
	ip int

	Stack  *Stack
	logger *zap.Logger
}

type VMOpt func(*VM) *VM

func LoggerOpt(l *zap.Logger) VMOpt {
	return func(vm *VM) *VM {
		vm.logger = l
		return vm
	}
}

// MaxStackOpt caps the operand stack. Pushing past the cap fails with ErrOutOfMemory.
func MaxStackOpt(max int) VMOpt {
	return func(vm *VM) *VM {
		vm.Stack = NewStack(MaxStack(max))
		return vm
	}
}

func NewVM(code Program, opts ...VMOpt) *VM {
	vm := &VM{
		code:   code,
		ip:     0,
		Stack:  NewStack(),
		logger: zap.L(),
	}

	for _, opt := range opts {
		vm = opt(vm)
	}

	vm.logger = vm.logger.Named("vm")

	return vm
}

// PC is the index of the next instruction to execute. After a failed Run it
// is the index of the instruction that failed.
func (vm *VM) PC() int {
	return vm.ip
}

// Run executes instructions until the end of the code or the first error.
func (vm *VM) Run() error {
	for vm.ip < len(vm.code) {
		inst := vm.code[vm.ip]

		vm.logger.Debug("instruction pointer",
			zap.Int("ip", vm.ip),
			zap.Stringer("inst", inst))

		err := vm.Exec(inst)
		if err != nil {
			vm.logger.Debug("halted",
				zap.Int("ip", vm.ip),
				zap.Error(err))
			return &ExecError{PC: vm.ip, Op: inst.Op, Err: err}
		}
		vm.ip++
	}
	return nil
}

func (vm *VM) Exec(inst Instruction) error {
	switch inst.Op {
	case InstructionPushInt, InstructionPushFloat:
		want := KindInt
		if inst.Op == InstructionPushFloat {
			want = KindFloat
		}
		if inst.Arg.Kind != want {
			return fmt.Errorf("%s with %s operand: %w", inst.Op, inst.Arg.Kind, ErrTypeMismatch)
		}
		vm.logger.Debug("pushing to stack",
			zap.Any("v", inst.Arg.Any()),
		)
		return vm.Stack.Push(inst.Arg)
	case InstructionPop:
		if !vm.Stack.Empty() {
			_, err := vm.Stack.Pop()
			return err
		}
		return nil
	}

	if _, ok := inst.Op.operandKind(); ok {
		return vm.binary(inst.Op)
	}
	return fmt.Errorf("opcode 0x%02x: %w", byte(inst.Op), ErrInvalidOpcode)
}

// binary pops a (top) and b (below it) and pushes the result of b op a.
// Nothing is popped unless the operation succeeds.
func (vm *VM) binary(op Opcode) error {
	if vm.Stack.Len() < 2 {
		return fmt.Errorf("%s needs 2 operands, have %d: %w", op, vm.Stack.Len(), ErrOutOfBounds)
	}
	a, err := vm.Stack.Read(-1)
	if err != nil {
		return err
	}
	b, err := vm.Stack.Read(-2)
	if err != nil {
		return err
	}

	kind, _ := op.operandKind()
	if a.Kind != kind || b.Kind != kind {
		return fmt.Errorf("%s on %s and %s: %w", op, b.Kind, a.Kind, ErrTypeMismatch)
	}

	var val Value
	if kind == KindInt {
		val, err = intOp(op, b.Int, a.Int)
	} else {
		val, err = floatOp(op, b.Float, a.Float)
	}
	if err != nil {
		return err
	}

	vm.logger.Debug(op.String(),
		zap.Any("a", a.Any()),
		zap.Any("b", b.Any()),
		zap.Any("result", val.Any()),
	)

	// cannot fail, length was checked above
	vm.Stack.Pop()
	vm.Stack.Pop()
	return vm.Stack.Push(val)
}

// intOp computes lhs op rhs. Overflow wraps.
func intOp(op Opcode, lhs, rhs int64) (Value, error) {
	switch op {
	case InstructionAddInt:
		return IntValue(lhs + rhs), nil
	case InstructionSubInt:
		return IntValue(lhs - rhs), nil
	case InstructionMulInt:
		return IntValue(lhs * rhs), nil
	case InstructionDivInt:
		if rhs == 0 {
			return Value{}, ErrDivByZero
		}
		return IntValue(lhs / rhs), nil
	}
	return Value{}, ErrInvalidOpcode
}

func floatOp(op Opcode, lhs, rhs float64) (Value, error) {
	switch op {
	case InstructionAddFloat:
		return FloatValue(lhs + rhs), nil
	case InstructionSubFloat:
		return FloatValue(lhs - rhs), nil
	case InstructionMulFloat:
		return FloatValue(lhs * rhs), nil
	case InstructionDivFloat:
		if rhs == 0 {
			return Value{}, ErrDivByZero
		}
		return FloatValue(lhs / rhs), nil
	}
	return Value{}, ErrInvalidOpcode
}

// GetInt reads the int cell at index without modifying the stack. See Stack.Read
// for how index is resolved.
func (vm *VM) GetInt(index int) (int64, error) {
	v, err := vm.Stack.Read(index)
	if err != nil {
		return 0, err
	}
	if v.Kind != KindInt {
		return 0, fmt.Errorf("cell %d is %s: %w", index, v.Kind, ErrTypeMismatch)
	}
	return v.Int, nil
}

func (vm *VM) GetFloat(index int) (float64, error) {
	v, err := vm.Stack.Read(index)
	if err != nil {
		return 0, err
	}
	if v.Kind != KindFloat {
		return 0, fmt.Errorf("cell %d is %s: %w", index, v.Kind, ErrTypeMismatch)
	}
	return v.Float, nil
}
