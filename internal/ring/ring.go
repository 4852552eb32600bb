// Package ring provides the bounded lock-free single-producer single-consumer
// queue used for every inter-thread hand-off in the engine (market data in,
// audit records out, gateway egress).
package ring

import (
	"fmt"
	"sync/atomic"

	"github.com/GarrickPinon/hft-engine/internal/core"
)

// cacheLine is the destructive interference size on x86-64; padding the
// cursors apart keeps producer and consumer from bouncing the same line.
const cacheLine = 64

// Buffer is an SPSC ring. Exactly one goroutine may call Push and exactly one
// may call Pop/Front/Advance; the implementation assumes this and is free to
// misbehave if it is violated.
type Buffer[T any] struct {
	buf  []T
	mask uint64

	_    [cacheLine - 8]byte
	head atomic.Uint64 // next write slot, owned by the producer
	_    [cacheLine - 8]byte
	tail atomic.Uint64 // next read slot, owned by the consumer
	_    [cacheLine - 8]byte
}

// New allocates a ring of the given capacity. Capacity must be a power of two
// and at least 2; one slot is always left unused to distinguish full from
// empty, so a ring of capacity C buffers at most C-1 items.
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("ring capacity %d must be a power of two >= 2: %w", capacity, core.ErrInvalidConfig)
	}
	return &Buffer[T]{
		buf:  make([]T, capacity),
		mask: uint64(capacity - 1),
	}, nil
}

// Push enqueues one item. Returns false when the ring is full. Wait-free:
// producer only.
func (b *Buffer[T]) Push(v T) bool {
	head := b.head.Load()
	next := (head + 1) & b.mask
	if next == b.tail.Load() {
		return false
	}
	b.buf[head&b.mask] = v
	b.head.Store(next) // publish the slot
	return true
}

// Pop dequeues one item. Returns false when the ring is empty. Wait-free:
// consumer only.
func (b *Buffer[T]) Pop(v *T) bool {
	tail := b.tail.Load()
	if tail == b.head.Load() {
		return false
	}
	*v = b.buf[tail&b.mask]
	b.tail.Store((tail + 1) & b.mask)
	return true
}

// Front returns a pointer to the oldest unread item without consuming it, or
// nil when empty. The pointer is only valid until Advance; consumer only.
func (b *Buffer[T]) Front() *T {
	tail := b.tail.Load()
	if tail == b.head.Load() {
		return nil
	}
	return &b.buf[tail&b.mask]
}

// Advance consumes the item previously returned by Front. Consumer only.
func (b *Buffer[T]) Advance() {
	tail := b.tail.Load()
	b.tail.Store((tail + 1) & b.mask)
}

// Empty reports whether the ring currently holds no items. Safe from either
// side but only a snapshot.
func (b *Buffer[T]) Empty() bool {
	return b.tail.Load() == b.head.Load()
}
