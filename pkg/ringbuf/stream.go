package ringbuf

import "io"

var (
	_ io.Reader     = (*RingBuffer)(nil)
	_ io.Writer     = (*RingBuffer)(nil)
	_ io.ByteReader = (*RingBuffer)(nil)
	_ io.ByteWriter = (*RingBuffer)(nil)
)

// Reads unread bytes into buf, oldest first, and consumes them. A drained
// buffer returns io.EOF so io.Copy and io.ReadAll stop cleanly; Get reports
// the same condition as ErrBufferEmpty.
func (cb *RingBuffer) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if cb.released {
		return 0, ErrReleased
	}

	// 1. Base case: empty circular buff
	if cb.count == 0 {
		return 0, io.EOF
	}

	n := min(int(cb.count), len(buf))
	cb.copyOut(buf[:n])

	// 2. move tail past what was copied
	cb.tail = uint32((int(cb.tail) + n) % int(cb.capacity))
	cb.count -= uint32(n)
	cb.stats.Popped += uint64(n)
	return n, nil
}

// Write pushes every byte of buf. With OverflowReject it stops at the first
// byte that does not fit and returns ErrBufferFull with the count written.
func (cb *RingBuffer) Write(buf []byte) (int, error) {
	for i, b := range buf {
		if err := cb.Push(b); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

func (cb *RingBuffer) ReadByte() (byte, error) {
	return cb.Get()
}

func (cb *RingBuffer) WriteByte(b byte) error {
	return cb.Push(b)
}

// Bytes returns a copy of the unread bytes, oldest first. The cursors do
// not move.
func (cb *RingBuffer) Bytes() []byte {
	if cb.count == 0 {
		return nil
	}
	buf := make([]byte, cb.count)
	cb.copyOut(buf)
	return buf
}

// Raw returns a copy of the whole storage region in slot order.
func (cb *RingBuffer) Raw() []byte {
	buf := make([]byte, len(cb.buff))
	copy(buf, cb.buff)
	return buf
}

// copyOut fills dst with the first len(dst) unread bytes.
// len(dst) must not exceed count.
func (cb *RingBuffer) copyOut(dst []byte) {
	tail := int(cb.tail)
	end := tail + len(dst)
	if end <= int(cb.capacity) {
		copy(dst, cb.buff[tail:end])
		return
	}
	// wrapped: copy up to the end of storage, then from slot 0
	firstChunk := copy(dst, cb.buff[tail:])
	copy(dst[firstChunk:], cb.buff[:end-int(cb.capacity)])
}
