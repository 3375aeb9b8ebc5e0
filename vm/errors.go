package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when an arithmetic instruction finds fewer
	// than two cells, or a stack read is outside the stack.
	ErrOutOfBounds = errors.New("out of bounds")
	ErrDivByZero   = errors.New("division by zero")
	// ErrOutOfMemory is returned when a push would exceed the stack depth
	// configured with MaxStack.
	ErrOutOfMemory   = errors.New("out of memory")
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrInvalidOpcode = errors.New("invalid opcode")
)

// ExecError records where execution halted.
type ExecError struct {
	PC  int
	Op  Opcode
	Err error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("pc %d (%s): %s", e.PC, e.Op, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
