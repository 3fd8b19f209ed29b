// Package pool переиспользует буферы сериализации событий аудита.
package pool

import (
	"bytes"
	"sync"
)

// Resettable определяет интерфейс для типов с методом Reset
type Resettable interface {
	Reset()
}

// Pool: типизированная обёртка над sync.Pool. Объект сбрасывается при возврате.
type Pool[T Resettable] struct {
	pool sync.Pool
	keep func(T) bool
}

// New создает новый Pool для объектов типа T
func New[T Resettable](fn func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

// Get возвращает объект из пула
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put сбрасывает объект и возвращает его в пул, если он проходит фильтр keep
func (p *Pool[T]) Put(x T) {
	if p.keep != nil && !p.keep(x) {
		return
	}
	x.Reset()
	p.pool.Put(x)
}

// MaxBufferSize: буферы крупнее не возвращаются в пул
const MaxBufferSize = 64 << 10

// NewBuffers создаёт пул *bytes.Buffer, отбрасывающий разросшиеся буферы
func NewBuffers() *Pool[*bytes.Buffer] {
	p := New(func() *bytes.Buffer { return new(bytes.Buffer) })
	p.keep = func(b *bytes.Buffer) bool { return b.Cap() <= MaxBufferSize }
	return p
}
