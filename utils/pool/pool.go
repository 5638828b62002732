// Package pool provides a typed wrapper around sync.Pool that reports
// how often a pool had to allocate.
package pool

import (
	"sync"
	"sync/atomic"

	"github.com/linchenxuan/craftnet/metrics"
)

// Pool is a typed sync.Pool that counts creations.
type Pool[T any] struct {
	name    string
	pool    sync.Pool
	created atomic.Int64
}

// New creates a pool. The name is used as the pool_name metrics dimension.
// newFunc is called when the pool is empty.
func New[T any](name string, newFunc func() T) *Pool[T] {
	p := &Pool[T]{name: name}
	p.pool.New = func() any {
		p.created.Add(1)
		metrics.IncrCounterWithDimGroup(metrics.NamePoolCreateTotal, metrics.GroupCraftnet, 1, metrics.Dimension{
			metrics.DimPoolName: name,
		})
		return newFunc()
	}
	return p
}

// Name returns the pool name.
func (p *Pool[T]) Name() string {
	return p.name
}

// Get retrieves an item, creating one if the pool is empty.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns x for reuse. The caller must not touch x afterwards.
func (p *Pool[T]) Put(x T) {
	p.pool.Put(x)
}

// Created returns how many items newFunc produced so far.
func (p *Pool[T]) Created() int64 {
	return p.created.Load()
}
