package ringbuf_test

import (
	"bytes"
	"math/rand"
	"mcu-ringbuf/pkg/ringbuf"
	"testing"

	"github.com/gammazero/deque"
	"github.com/pkg/errors"
)

func mustPush(t *testing.T, rb *ringbuf.RingBuffer, data ...byte) {
	t.Helper()
	for _, b := range data {
		if err := rb.Push(b); err != nil {
			t.Fatalf("push %d failed: %v", b, err)
		}
	}
}

func mustPop(t *testing.T, rb *ringbuf.RingBuffer, n int) []byte {
	t.Helper()
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		b, err := rb.Get()
		if err != nil {
			t.Fatalf("pop #%d failed: %v", i, err)
		}
		out = append(out, b)
	}
	return out
}

func checkCursors(t *testing.T, rb *ringbuf.RingBuffer) {
	t.Helper()
	head, tail := rb.Cursors()
	if int(head) >= rb.Cap() || int(tail) >= rb.Cap() {
		t.Fatalf("cursor out of range: head=%d tail=%d cap=%d", head, tail, rb.Cap())
	}
}

func TestRingBuffer_New_DefaultSize(t *testing.T) {
	rb := ringbuf.New(0)
	if rb.Cap() != ringbuf.DefaultSize {
		t.Fatalf("expect capacity %d but got %d", ringbuf.DefaultSize, rb.Cap())
	}
	if !rb.IsEmpty() {
		t.Fatalf("expect IsEmpty is true but got false")
	}
	if rb.IsFull() {
		t.Fatalf("expect IsFull is false but got true")
	}

	for _, k := range []uint32{1, 4, 127, 1000} {
		if got := ringbuf.New(k).Cap(); got != int(k) {
			t.Fatalf("expect capacity %d but got %d", k, got)
		}
	}
}

func TestRingBuffer_Empty_Get(t *testing.T) {
	rb := ringbuf.New(4)

	_, err := rb.Get()
	if !errors.Is(err, ringbuf.ErrBufferEmpty) {
		t.Fatalf("expect ErrBufferEmpty but got %v", err)
	}
	head, tail := rb.Cursors()
	if head != 0 || tail != 0 {
		t.Fatalf("expect cursors untouched but got head=%d tail=%d", head, tail)
	}

	mustPush(t, rb, 7)
	mustPop(t, rb, 1)
	rb.Clear()

	if !rb.IsEmpty() {
		t.Fatalf("expect IsEmpty after Clear")
	}
	if _, err := rb.Get(); !errors.Is(err, ringbuf.ErrBufferEmpty) {
		t.Fatalf("expect ErrBufferEmpty after Clear but got %v", err)
	}
}

func TestRingBuffer_FIFO_BelowCapacity(t *testing.T) {
	rb := ringbuf.New(16)
	data := []byte("hello, uart")

	mustPush(t, rb, data...)
	if rb.Len() != len(data) {
		t.Fatalf("expect len %d but got %d", len(data), rb.Len())
	}
	got := mustPop(t, rb, len(data))
	if !bytes.Equal(got, data) {
		t.Fatalf("expect %q but got %q", data, got)
	}
	if !rb.IsEmpty() {
		t.Fatalf("expect IsEmpty is true but got false")
	}
}

func TestRingBuffer_ExactlyFull(t *testing.T) {
	rb := ringbuf.New(4)
	mustPush(t, rb, 1, 2, 3, 4)

	if rb.IsEmpty() {
		t.Fatalf("expect IsEmpty is false but got true")
	}
	if !rb.IsFull() {
		t.Fatalf("expect IsFull is true but got false")
	}
	if rb.Free() != 0 {
		t.Fatalf("expect free 0 but got %d", rb.Free())
	}
	head, tail := rb.Cursors()
	if head != tail {
		t.Fatalf("expect head == tail when full but got head=%d tail=%d", head, tail)
	}

	got := mustPop(t, rb, 4)
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("expect [1 2 3 4] but got %v", got)
	}
	if rb.Stats().Overwritten != 0 {
		t.Fatalf("expect no overwrite but got %d", rb.Stats().Overwritten)
	}
}

func TestRingBuffer_Overwrite_Oldest(t *testing.T) {
	rb := ringbuf.New(4)
	mustPush(t, rb, 1, 2, 3, 4, 5)

	if rb.Len() != 4 {
		t.Fatalf("expect len 4 but got %d", rb.Len())
	}
	got := mustPop(t, rb, 4)
	if !bytes.Equal(got, []byte{2, 3, 4, 5}) {
		t.Fatalf("expect [2 3 4 5] but got %v", got)
	}
	if rb.Stats().Overwritten != 1 {
		t.Fatalf("expect 1 overwrite but got %d", rb.Stats().Overwritten)
	}

	// several laps of unread pushes keep only the newest capacity bytes
	for i := 0; i < 11; i++ {
		mustPush(t, rb, byte(100+i))
	}
	got = mustPop(t, rb, 4)
	if !bytes.Equal(got, []byte{107, 108, 109, 110}) {
		t.Fatalf("expect [107 108 109 110] but got %v", got)
	}
}

func TestRingBuffer_Reject_WhenFull(t *testing.T) {
	rb := ringbuf.New(3, ringbuf.WithOverflow(ringbuf.OverflowReject))
	mustPush(t, rb, 'a', 'b', 'c')

	err := rb.Push('d')
	if !errors.Is(err, ringbuf.ErrBufferFull) {
		t.Fatalf("expect ErrBufferFull but got %v", err)
	}
	if rb.Stats().Rejected != 1 {
		t.Fatalf("expect 1 rejected but got %d", rb.Stats().Rejected)
	}

	got := mustPop(t, rb, 3)
	if string(got) != "abc" {
		t.Fatalf("expect abc but got %q", got)
	}

	mustPush(t, rb, 'd')
	if got := mustPop(t, rb, 1); got[0] != 'd' {
		t.Fatalf("expect d but got %q", got)
	}
}

func TestRingBuffer_Cursor_Wraparound(t *testing.T) {
	rb := ringbuf.New(5)

	for i := 0; i < 23; i++ {
		prevHead, _ := rb.Cursors()
		mustPush(t, rb, byte(i))
		head, _ := rb.Cursors()
		if head != (prevHead+1)%5 {
			t.Fatalf("expect head %d but got %d", (prevHead+1)%5, head)
		}

		_, prevTail := rb.Cursors()
		mustPop(t, rb, 1)
		_, tail := rb.Cursors()
		if tail != (prevTail+1)%5 {
			t.Fatalf("expect tail %d but got %d", (prevTail+1)%5, tail)
		}
		checkCursors(t, rb)
	}
}

func TestRingBuffer_Positional_Reads(t *testing.T) {
	rb := ringbuf.New(4)
	mustPush(t, rb, 10, 20, 30)
	mustPop(t, rb, 3)

	// popped bytes still sit in storage; peeks ignore the cursors
	if rb.First() != 10 {
		t.Fatalf("expect first 10 but got %d", rb.First())
	}
	if rb.Last() != 0 {
		t.Fatalf("expect last 0 but got %d", rb.Last())
	}
	b, err := rb.At(2)
	if err != nil || b != 30 {
		t.Fatalf("expect at(2)=30 but got %d, %v", b, err)
	}

	mustPush(t, rb, 40, 50)
	if rb.Last() != 40 || rb.First() != 50 {
		t.Fatalf("expect first=50 last=40 but got first=%d last=%d", rb.First(), rb.Last())
	}

	if _, err := rb.At(4); !errors.Is(err, ringbuf.ErrIndexOutOfRange) {
		t.Fatalf("expect ErrIndexOutOfRange but got %v", err)
	}

	rb.Clear()
	for i := uint32(0); i < 4; i++ {
		b, err := rb.At(i)
		if err != nil || b != 0 {
			t.Fatalf("expect at(%d)=0 after Clear but got %d, %v", i, b, err)
		}
	}
}

func TestRingBuffer_Last_NonDefaultCapacity(t *testing.T) {
	rb := ringbuf.New(200)
	for i := 0; i < 200; i++ {
		mustPush(t, rb, byte(i))
	}
	if rb.Last() != 199 {
		t.Fatalf("expect last 199 but got %d", rb.Last())
	}
}

func TestRingBuffer_Peek(t *testing.T) {
	rb := ringbuf.New(2)
	if _, err := rb.Peek(); !errors.Is(err, ringbuf.ErrBufferEmpty) {
		t.Fatalf("expect ErrBufferEmpty but got %v", err)
	}
	mustPush(t, rb, 9)
	b, err := rb.Peek()
	if err != nil || b != 9 {
		t.Fatalf("expect peek 9 but got %d, %v", b, err)
	}
	if rb.Len() != 1 {
		t.Fatalf("expect peek to keep len 1 but got %d", rb.Len())
	}
}

func TestRingBuffer_Delete(t *testing.T) {
	rb := ringbuf.New(8)
	mustPush(t, rb, 1, 2)
	rb.Delete()
	rb.Delete()

	if err := rb.Push(3); !errors.Is(err, ringbuf.ErrReleased) {
		t.Fatalf("expect ErrReleased on push but got %v", err)
	}
	if _, err := rb.Get(); !errors.Is(err, ringbuf.ErrReleased) {
		t.Fatalf("expect ErrReleased on get but got %v", err)
	}
	if _, err := rb.At(0); !errors.Is(err, ringbuf.ErrReleased) {
		t.Fatalf("expect ErrReleased on at but got %v", err)
	}
	if rb.First() != 0 || rb.Last() != 0 {
		t.Fatalf("expect zero peeks after delete")
	}
	if rb.Cap() != 0 || !rb.IsEmpty() || rb.IsFull() {
		t.Fatalf("expect released buffer to report cap 0 and empty")
	}
}

// Random interleavings checked against a deque holding the newest bytes.
func TestRingBuffer_Random_Against_Deque(t *testing.T) {
	for _, policy := range []ringbuf.Overflow{ringbuf.OverflowOverwrite, ringbuf.OverflowReject} {
		for seed := int64(0); seed < 8; seed++ {
			r := rand.New(rand.NewSource(seed))
			capacity := uint32(1 + r.Intn(17))
			rb := ringbuf.New(capacity, ringbuf.WithOverflow(policy))
			model := deque.New[byte]()

			for i := 0; i < 4000; i++ {
				if r.Intn(3) != 0 {
					b := byte(r.Intn(256))
					err := rb.Push(b)
					switch {
					case model.Len() < int(capacity):
						if err != nil {
							t.Fatalf("seed %d: push failed: %v", seed, err)
						}
						model.PushBack(b)
					case policy == ringbuf.OverflowOverwrite:
						if err != nil {
							t.Fatalf("seed %d: overwrite push failed: %v", seed, err)
						}
						model.PopFront()
						model.PushBack(b)
					default:
						if !errors.Is(err, ringbuf.ErrBufferFull) {
							t.Fatalf("seed %d: expect ErrBufferFull but got %v", seed, err)
						}
					}
				} else {
					b, err := rb.Get()
					if model.Len() == 0 {
						if !errors.Is(err, ringbuf.ErrBufferEmpty) {
							t.Fatalf("seed %d: expect ErrBufferEmpty but got %v", seed, err)
						}
					} else if want := model.PopFront(); err != nil || b != want {
						t.Fatalf("seed %d: expect %d but got %d, %v", seed, want, b, err)
					}
				}

				if rb.Len() != model.Len() {
					t.Fatalf("seed %d: expect len %d but got %d", seed, model.Len(), rb.Len())
				}
				if rb.IsEmpty() != (model.Len() == 0) {
					t.Fatalf("seed %d: IsEmpty mismatch at len %d", seed, model.Len())
				}
				checkCursors(t, rb)
			}
		}
	}
}

func TestRingBuffer_UnknownOverflow_FallsBack(t *testing.T) {
	rb := ringbuf.New(2, ringbuf.WithOverflow(ringbuf.Overflow(7)))
	if rb.Policy() != ringbuf.OverflowOverwrite {
		t.Fatalf("expect overwrite policy but got %v", rb.Policy())
	}
	mustPush(t, rb, 1, 2, 3)
	if got := mustPop(t, rb, 2); !bytes.Equal(got, []byte{2, 3}) {
		t.Fatalf("expect [2 3] but got %v", got)
	}
}
