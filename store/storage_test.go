package store

import (
	"sync"
	"testing"

	"github.com/krehermann/exprvm/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_Get(t *testing.T) {
	ms := NewMemStore[int, string]()
	defer ms.Close()

	nPuts := 5
	want := []string{"a", "b", "c", "d", "e"}
	for i := 0; i < nPuts; i++ {
		assert.NoError(t, ms.Put(i, want[i]))

		for j := 0; j <= i; j++ {
			got, err := ms.Get(j)
			assert.NoError(t, err)
			assert.Equal(t, want[j], got)
		}
	}

	_, err := ms.Get(nPuts)
	assert.Error(t, err)
}

func TestMemStore_Concurrent(t *testing.T) {
	ms := NewMemStore[int, int]()
	defer ms.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, ms.Put(i, i*i))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		got, err := ms.Get(i)
		assert.NoError(t, err)
		assert.Equal(t, i*i, got)
	}
}

func TestMemStore_Close(t *testing.T) {
	ms := NewMemStore[string, int]()
	ms.Close()
	ms.Close()

	assert.ErrorIs(t, ms.Put("x", 1), ErrStoreClosed)
	_, err := ms.Get("x")
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestProgramStore(t *testing.T) {
	s := NewProgramStore()
	defer s.Close()

	p := vm.Program{vm.PushInt(2), vm.PushInt(3), vm.SubInt()}
	h, err := s.Add(p)
	require.NoError(t, err)
	assert.False(t, h.IsZero())

	got, err := s.Get(h)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// same program, same hash
	again, err := s.Add(vm.Program{vm.PushInt(2), vm.PushInt(3), vm.SubInt()})
	require.NoError(t, err)
	assert.Equal(t, h, again)

	other, err := ProgramHasher{}.Hash(vm.Program{vm.PushInt(3), vm.PushInt(2), vm.SubInt()})
	require.NoError(t, err)
	assert.NotEqual(t, h, other)
}
