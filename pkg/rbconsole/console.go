package rbconsole

import (
	"fmt"
	"log"
	"mcu-ringbuf/pkg/rbconfig"
	"mcu-ringbuf/pkg/ringbuf"
	"os"
	"strconv"

	deque "github.com/gammazero/deque"
	"github.com/pkg/errors"
)

var logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)

// Console drives one RingBuffer from typed commands.
type Console struct {
	rb *ringbuf.RingBuffer

	history      *deque.Deque[string] // most recent commands, oldest in front
	historyDepth int
}

// New builds the buffer described by config and the console around it.
func New(config *rbconfig.BufferConfig) (*Console, error) {
	rb, err := config.Build()
	if err != nil {
		return nil, err
	}
	if len(config.Preload) > 0 {
		logger.Printf("Preloaded %d bytes into a %d slot buffer\n", len(config.Preload), rb.Cap())
	}
	return &Console{
		rb:           rb,
		history:      deque.New[string](),
		historyDepth: config.History,
	}, nil
}

func (c *Console) Buffer() *ringbuf.RingBuffer {
	return c.rb
}

// History returns the recorded commands, oldest first.
func (c *Console) History() []string {
	res := make([]string, c.history.Len())
	for i := range res {
		res[i] = c.history.At(i)
	}
	return res
}

func (c *Console) record(input string, err error) {
	if c.historyDepth == 0 || input == "" {
		return
	}
	if err != nil {
		input = fmt.Sprintf("%s (error: %v)", input, err)
	}
	c.history.PushBack(input)
	for c.history.Len() > c.historyDepth {
		c.history.PopFront()
	}
}

// push writes bytes one at a time and logs every overwrite or rejection.
func (c *Console) push(data []byte) (int, error) {
	before := c.rb.Stats()
	n, err := c.rb.Write(data)
	after := c.rb.Stats()

	if dropped := after.Overwritten - before.Overwritten; dropped > 0 {
		logger.Printf("Buffer full: dropped %d oldest byte(s)\n", dropped)
	}
	if err != nil {
		if errors.Is(err, ringbuf.ErrBufferFull) {
			logger.Printf("Buffer full: rejected %d byte(s)\n", len(data)-n)
		}
		return n, errors.Wrapf(err, "pushed %d of %d bytes", n, len(data))
	}
	return n, nil
}

// parseByte accepts decimal, 0x-prefixed hex, octal, 0b binary, or a
// quoted character such as 'A'.
func parseByte(tok string) (byte, error) {
	if len(tok) == 3 && tok[0] == '\'' && tok[2] == '\'' {
		return tok[1], nil
	}
	v, err := strconv.ParseUint(tok, 0, 8)
	if err != nil {
		return 0, errors.Errorf("input %s is not a byte", tok)
	}
	return byte(v), nil
}

func parseIndex(tok string) (uint32, error) {
	v, err := strconv.ParseUint(tok, 0, 32)
	if err != nil {
		return 0, errors.Errorf("input %s is not a slot index", tok)
	}
	return uint32(v), nil
}
