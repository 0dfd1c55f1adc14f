package ringbuf

import (
	"github.com/pkg/errors"
)

// DefaultSize is the capacity used when New is called with 0.
const DefaultSize = 128

var (
	ErrBufferEmpty     = errors.New("buffer is empty")
	ErrBufferFull      = errors.New("buffer is full")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrReleased        = errors.New("buffer has been deleted")
)

// Overflow selects what Push does when every slot holds unread data.
type Overflow int

const (
	// OverflowOverwrite drops the oldest unread byte to make room.
	OverflowOverwrite Overflow = iota
	// OverflowReject leaves the buffer untouched and returns ErrBufferFull.
	OverflowReject
)

func (o Overflow) String() string {
	switch o {
	case OverflowOverwrite:
		return "overwrite"
	case OverflowReject:
		return "reject"
	}
	return "unknown"
}

// Stats counts what happened to the buffer since New.
type Stats struct {
	Pushed      uint64
	Popped      uint64
	Overwritten uint64
	Rejected    uint64
}

// ------|-----------------|--------------------|
//     tail+++++++++++++++head              capacity
// tail is the next slot to read, head the next slot to write.
// count disambiguates head == tail: 0 is empty, capacity is full.

// RingBuffer is a fixed-capacity byte FIFO for one producer and one consumer.
//
// There is no internal locking. If the producer and the consumer run in
// different goroutines (or an interrupt handler and main-line code), the
// caller has to serialize every call.
type RingBuffer struct {
	buff     []byte
	capacity uint32
	head     uint32
	tail     uint32
	count    uint32
	policy   Overflow
	stats    Stats
	released bool
}

type Option func(*RingBuffer)

// WithOverflow sets the full-buffer policy. The default is OverflowOverwrite,
// which is also what an unknown value falls back to.
func WithOverflow(policy Overflow) Option {
	return func(cb *RingBuffer) {
		switch policy {
		case OverflowOverwrite, OverflowReject:
			cb.policy = policy
		default:
			cb.policy = OverflowOverwrite
		}
	}
}

// New allocates a ring buffer with the given capacity, or DefaultSize when
// capacity is 0. Storage is allocated once and zeroed. There is no
// recoverable out-of-memory path: if the allocation fails the runtime aborts.
func New(capacity uint32, opts ...Option) *RingBuffer {
	if capacity == 0 {
		capacity = DefaultSize
	}
	cb := &RingBuffer{
		buff:     make([]byte, capacity),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Clear zeroes the storage and resets both cursors. Stats are kept.
func (cb *RingBuffer) Clear() {
	clear(cb.buff)
	cb.head = 0
	cb.tail = 0
	cb.count = 0
}

// Delete drops the storage. The buffer must not be used afterwards; calls
// that can fail return ErrReleased.
func (cb *RingBuffer) Delete() {
	cb.buff = nil
	cb.capacity = 0
	cb.head = 0
	cb.tail = 0
	cb.count = 0
	cb.released = true
}

func (cb *RingBuffer) IsEmpty() bool {
	return cb.count == 0
}

func (cb *RingBuffer) IsFull() bool {
	return !cb.released && cb.count == cb.capacity
}

// Len returns the number of unread bytes.
func (cb *RingBuffer) Len() int {
	return int(cb.count)
}

func (cb *RingBuffer) Cap() int {
	return int(cb.capacity)
}

// Free returns how many pushes fit before the buffer is full.
func (cb *RingBuffer) Free() int {
	return int(cb.capacity - cb.count)
}

func (cb *RingBuffer) Policy() Overflow {
	return cb.policy
}

func (cb *RingBuffer) Stats() Stats {
	return cb.stats
}

// Cursors returns the write (head) and read (tail) slot indices.
func (cb *RingBuffer) Cursors() (head, tail uint32) {
	return cb.head, cb.tail
}

// Push appends one byte.
func (cb *RingBuffer) Push(b byte) error {
	if cb.released {
		return ErrReleased
	}

	// 1. full: either drop the oldest byte or refuse
	if cb.count == cb.capacity {
		if cb.policy == OverflowReject {
			cb.stats.Rejected++
			return ErrBufferFull
		}
		cb.tail = cb.advance(cb.tail)
		cb.count--
		cb.stats.Overwritten++
	}

	// 2. write and move head, wrapping at capacity
	cb.buff[cb.head] = b
	cb.head = cb.advance(cb.head)
	cb.count++
	cb.stats.Pushed++
	return nil
}

// Get removes and returns the oldest unread byte. On an empty buffer it
// returns ErrBufferEmpty and leaves the cursors where they are.
func (cb *RingBuffer) Get() (byte, error) {
	if cb.released {
		return 0, ErrReleased
	}
	if cb.count == 0 {
		return 0, ErrBufferEmpty
	}

	b := cb.buff[cb.tail]
	cb.tail = cb.advance(cb.tail)
	cb.count--
	cb.stats.Popped++
	return b, nil
}

// Pop is an alias for Get.
func (cb *RingBuffer) Pop() (byte, error) {
	return cb.Get()
}

// Peek returns the oldest unread byte without consuming it.
func (cb *RingBuffer) Peek() (byte, error) {
	if cb.released {
		return 0, ErrReleased
	}
	if cb.count == 0 {
		return 0, ErrBufferEmpty
	}
	return cb.buff[cb.tail], nil
}

// First returns storage slot 0. It does not look at the cursors.
func (cb *RingBuffer) First() byte {
	if cb.released {
		return 0
	}
	return cb.buff[0]
}

// Last returns storage slot capacity-1. It does not look at the cursors.
func (cb *RingBuffer) Last() byte {
	if cb.released {
		return 0
	}
	return cb.buff[cb.capacity-1]
}

// At returns raw storage slot i, regardless of what has been read.
func (cb *RingBuffer) At(i uint32) (byte, error) {
	if cb.released {
		return 0, ErrReleased
	}
	if i >= cb.capacity {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "slot %d, capacity %d", i, cb.capacity)
	}
	return cb.buff[i], nil
}

func (cb *RingBuffer) advance(cursor uint32) uint32 {
	cursor++
	if cursor >= cb.capacity {
		cursor = 0
	}
	return cursor
}
