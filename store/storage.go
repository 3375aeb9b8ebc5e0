package store

import (
	"errors"
	"fmt"
	"sync"
)

type Storager[K comparable, V any] interface {
	Put(k K, v V) error
	Get(k K) (V, error)
}

// MemStore is an in memory map owned by a single goroutine. All access goes
// through channels so callers never share the map.
type MemStore[K comparable, V any] struct {
	putChan  chan *putRequest[K, V]
	readChan chan *getRequest[K, V]
	done     chan struct{}
	once     sync.Once
	data     map[K]V
}

type putRequest[K comparable, V any] struct {
	key K
	val V
}

type getRequest[K comparable, V any] struct {
	key      K
	response chan<- *lookupResult[V]
}

type lookupResult[V any] struct {
	v      V
	exists bool
}

var ErrStoreClosed = errors.New("store closed")

func NewMemStore[K comparable, V any]() *MemStore[K, V] {
	s := &MemStore[K, V]{
		putChan:  make(chan *putRequest[K, V]),
		readChan: make(chan *getRequest[K, V]),
		done:     make(chan struct{}),
		data:     make(map[K]V),
	}

	go s.handleAccess()
	return s
}

func (s *MemStore[K, V]) handleAccess() {
	for {
		select {
		case req := <-s.putChan:
			s.data[req.key] = req.val
		case req := <-s.readChan:
			v, ok := s.data[req.key]
			req.response <- &lookupResult[V]{
				v:      v,
				exists: ok,
			}
		case <-s.done:
			return
		}
	}
}

func (ms *MemStore[K, V]) Put(k K, v V) error {
	if ms.closed() {
		return ErrStoreClosed
	}
	select {
	case ms.putChan <- &putRequest[K, V]{key: k, val: v}:
		return nil
	case <-ms.done:
		return ErrStoreClosed
	}
}

func (ms *MemStore[K, V]) Get(k K) (V, error) {
	var empty V
	respCh := make(chan *lookupResult[V], 1)
	req := &getRequest[K, V]{
		key:      k,
		response: respCh,
	}
	if ms.closed() {
		return empty, ErrStoreClosed
	}
	select {
	case ms.readChan <- req:
	case <-ms.done:
		return empty, ErrStoreClosed
	}
	resp := <-respCh
	if !resp.exists {
		return empty, fmt.Errorf("key %v does not exist in store", k)
	}
	return resp.v, nil
}

func (ms *MemStore[K, V]) closed() bool {
	select {
	case <-ms.done:
		return true
	default:
		return false
	}
}

// Close stops the owning goroutine. Later calls fail with ErrStoreClosed.
func (ms *MemStore[K, V]) Close() {
	ms.once.Do(func() { close(ms.done) })
}
