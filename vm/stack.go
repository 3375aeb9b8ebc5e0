package vm

import (
	"fmt"
)

type Stack struct {
	data []Value

	// max number of cells, 0 means the stack grows without limit
	depth int
}

type StackOpt func(*Stack) *Stack

func MaxStack(max int) StackOpt {
	return func(s *Stack) *Stack {
		s.depth = max
		return s
	}
}

func NewStack(opts ...StackOpt) *Stack {
	s := &Stack{
		depth: 0,
	}
	for _, opt := range opts {
		s = opt(s)
	}
	s.data = make([]Value, 0, initialCap(s.depth))
	return s
}

func initialCap(depth int) int {
	if depth > 0 && depth < 64 {
		return depth
	}
	return 64
}

func (s *Stack) Push(v Value) error {
	if s.depth > 0 && len(s.data) >= s.depth {
		return fmt.Errorf("stack overflow at depth %d: %w", s.depth, ErrOutOfMemory)
	}
	s.data = append(s.data, v)
	return nil
}

func (s *Stack) Pop() (Value, error) {
	if s.Empty() {
		return Value{}, fmt.Errorf("pop empty stack: %w", ErrOutOfBounds)
	}

	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return v, nil
}

func (s *Stack) Empty() bool {
	return len(s.data) == 0
}

func (s *Stack) Len() int {
	return len(s.data)
}

func (s *Stack) Peek() (Value, error) {
	return s.Read(-1)
}

// Read returns the cell at pos. Non-negative positions count from the bottom
// (0 is the oldest cell), negative positions from the top (-1 is the newest).
func (s *Stack) Read(pos int) (Value, error) {
	idx := pos
	if pos < 0 {
		idx = len(s.data) + pos
	}
	if idx >= len(s.data) || idx < 0 {
		return Value{}, fmt.Errorf("read out of range len %d, pos %d: %w", len(s.data), pos, ErrOutOfBounds)
	}

	return s.data[idx], nil
}

// Values returns a copy of the stack, bottom first.
func (s *Stack) Values() []Value {
	out := make([]Value, len(s.data))
	copy(out, s.data)
	return out
}
