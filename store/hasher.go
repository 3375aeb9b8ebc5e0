package store

import (
	"bytes"
	"crypto/sha256"

	"github.com/krehermann/exprvm/types"
	"github.com/krehermann/exprvm/vm"
)

type Hasher[T any] interface {
	Hash(T) (types.Hash, error)
}

// ProgramHasher hashes the gob encoding of a program, so equal programs share
// a hash.
type ProgramHasher struct{}

func (ProgramHasher) Hash(p vm.Program) (types.Hash, error) {
	buf := &bytes.Buffer{}
	if err := p.Encode(vm.NewGobProgramEncoder(buf)); err != nil {
		return types.Hash{}, err
	}
	return types.Hash(sha256.Sum256(buf.Bytes())), nil
}

// ProgramStore caches compiled programs by hash.
type ProgramStore struct {
	*MemStore[types.Hash, vm.Program]
	hasher Hasher[vm.Program]
}

func NewProgramStore() *ProgramStore {
	return &ProgramStore{
		MemStore: NewMemStore[types.Hash, vm.Program](),
		hasher:   ProgramHasher{},
	}
}

// Add stores p and returns its hash.
func (s *ProgramStore) Add(p vm.Program) (types.Hash, error) {
	h, err := s.hasher.Hash(p)
	if err != nil {
		return h, err
	}
	return h, s.Put(h, p)
}
