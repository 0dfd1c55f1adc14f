package rbconfig

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"mcu-ringbuf/pkg/ringbuf"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const DefaultHistory = 32

/*
 * BufferConfig mirrors the directives of a .rbc file. It only describes
 * the file; Build turns it into a live RingBuffer.
 */
type BufferConfig struct {
	Capacity uint32
	Overflow ringbuf.Overflow

	// Bytes pushed right after construction, in file order
	Preload []byte

	// Depth of the console's operation history
	History int

	Prompt string
}

// Static config used when no file is given
var DefaultConfig = BufferConfig{
	Capacity: ringbuf.DefaultSize,
	Overflow: ringbuf.OverflowOverwrite,
	History:  DefaultHistory,
	Prompt:   "rb> ",
}

// Build allocates the buffer described by the config and pushes the preload.
func (c *BufferConfig) Build() (*ringbuf.RingBuffer, error) {
	rb := ringbuf.New(c.Capacity, ringbuf.WithOverflow(c.Overflow))
	if _, err := rb.Write(c.Preload); err != nil {
		return nil, errors.Wrap(err, "preload does not fit")
	}
	return rb, nil
}

type ParseFunc func(int, string, *BufferConfig) error

var parseCommands = map[string]ParseFunc{
	"capacity": parseCapacity,
	"overflow": parseOverflow,
	"preload":  parsePreload,
	"history":  parseHistory,
	"prompt":   parsePrompt,
}

func parseCapacity(ln int, line string, config *BufferConfig) error {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return newErrString(ln, "Usage:  capacity <slots>")
	}

	capacity, err := strconv.ParseUint(tokens[1], 0, 32)
	if err != nil {
		return newErr(ln, err)
	}
	config.Capacity = uint32(capacity)
	return nil
}

func parseOverflow(ln int, line string, config *BufferConfig) error {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return newErrString(ln, "Usage:  overflow [overwrite|reject]")
	}

	switch tokens[1] {
	case "overwrite":
		config.Overflow = ringbuf.OverflowOverwrite
	case "reject":
		config.Overflow = ringbuf.OverflowReject
	default:
		return newErrString(ln, "Unrecognized overflow policy %s", tokens[1])
	}
	return nil
}

func parsePreload(ln int, line string, config *BufferConfig) error {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return newErrString(ln, "Usage:  preload <hex> ...")
	}

	for _, tok := range tokens[1:] {
		digits := strings.TrimPrefix(tok, "0x")
		if digits == "" {
			return newErrString(ln, "preload token %s has no hex digits", tok)
		}
		b, err := hex.DecodeString(digits)
		if err != nil {
			return newErr(ln, err)
		}
		config.Preload = append(config.Preload, b...)
	}
	return nil
}

func parseHistory(ln int, line string, config *BufferConfig) error {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return newErrString(ln, "Usage:  history <entries>")
	}

	depth, err := strconv.Atoi(tokens[1])
	if err != nil {
		return newErr(ln, err)
	}
	if depth < 0 {
		return newErrString(ln, "history depth must not be negative")
	}
	config.History = depth
	return nil
}

func parsePrompt(ln int, line string, config *BufferConfig) error {
	_, prompt, found := strings.Cut(line, " ")
	if !found {
		return newErrString(ln, "Usage:  prompt <text>")
	}
	config.Prompt = strings.Trim(prompt, "\"")
	return nil
}

func newErrString(line int, msg string, args ...any) error {
	_msg := fmt.Sprintf(msg, args...)
	return errors.Errorf("Parse error on line %d:  %s", line, _msg)
}

func newErr(line int, err error) error {
	return errors.Wrapf(err, "Parse error on line %d", line)
}

// Parse reads directives from r on top of DefaultConfig.
func Parse(r io.Reader) (*BufferConfig, error) {
	config := DefaultConfig
	config.Preload = make([]byte, 0)

	scanner := bufio.NewScanner(r)
	ln := 0
	for scanner.Scan() {
		ln++

		line := strings.TrimSpace(scanner.Text())
		tokens := strings.Fields(line)

		if len(tokens) == 0 {
			continue
		}

		// Skip comments
		head := tokens[0]
		if head[0] == '#' {
			continue
		}

		pf, found := parseCommands[head]
		if !found {
			return nil, newErrString(ln, "Unrecognized token %s", head)
		}
		if err := pf(ln, line, &config); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	return &config, nil
}

// Parse a configuration file
func ParseConfig(configFile string) (*BufferConfig, error) {
	fd, err := os.Open(configFile)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open file %s", configFile)
	}
	defer fd.Close()

	return Parse(fd)
}
