package rbconsole

import (
	"fmt"
	"io"
	"mcu-ringbuf/pkg/rbdump"
	"mcu-ringbuf/pkg/repl"
	"strings"

	"github.com/pkg/errors"
)

func ConsoleRepl(c *Console) *repl.REPL {
	r := repl.NewRepl()
	r.AfterCommand = c.record
	r.AddCommand("push", pushHandler(c), "Pushes bytes (12, 0x0c, 'A'). usage: push <byte> ...")
	r.AddCommand("write", writeHandler(c), "Pushes the bytes of a text. usage: write <text>")
	r.AddCommand("pop", popHandler(c), "Pops the oldest bytes. usage: pop [count]")
	r.AddCommand("peek", peekHandler(c), "Prints the oldest byte without popping it. usage: peek")
	r.AddCommand("clear", clearHandler(c), "Zeroes storage and resets the cursors. usage: clear")
	r.AddCommand("empty", boolHandler("empty", c.rb.IsEmpty), "Prints whether the buffer is empty. usage: empty")
	r.AddCommand("full", boolHandler("full", c.rb.IsFull), "Prints whether the buffer is full. usage: full")
	r.AddCommand("len", lenHandler(c), "Prints the number of unread bytes. usage: len")
	r.AddCommand("first", rawHandler("first", c.rb.First), "Prints storage slot 0. usage: first")
	r.AddCommand("last", rawHandler("last", c.rb.Last), "Prints the last storage slot. usage: last")
	r.AddCommand("at", atHandler(c), "Prints a raw storage slot. usage: at <slot>")
	r.AddCommand("bytes", bytesHandler(c), "Hex dumps the unread bytes. usage: bytes")
	r.AddCommand("dump", dumpHandler(c), "Hex dumps the whole storage. usage: dump")
	r.AddCommand("slots", slotsHandler(c), "Lists every slot with cursor marks. usage: slots")
	r.AddCommand("cksum", cksumHandler(c), "Prints the Internet checksum of the unread bytes. usage: cksum")
	r.AddCommand("stats", statsHandler(c), "Prints capacity, cursors and counters. usage: stats")
	r.AddCommand("hist", histHandler(c), "Lists recent commands. usage: hist")
	r.AddCommand("delete", deleteHandler(c), "Releases the storage. usage: delete")
	return r
}

func pushHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) < 2 {
			return fmt.Errorf("usage: push <byte> ...")
		}
		data := make([]byte, 0, len(args)-1)
		for _, arg := range args[1:] {
			b, err := parseByte(arg)
			if err != nil {
				return err
			}
			data = append(data, b)
		}
		_, err := c.push(data)
		return err
	}
}

func writeHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		_, text, found := strings.Cut(input, " ")
		if !found || text == "" {
			return fmt.Errorf("usage: write <text>")
		}
		_, err := c.push([]byte(text))
		return err
	}
}

func popHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) > 2 {
			return fmt.Errorf("usage: pop [count]")
		}
		count := uint32(1)
		if len(args) == 2 {
			n, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			count = n
		}

		for i := uint32(0); i < count; i++ {
			b, err := c.rb.Get()
			if err != nil {
				return errors.Wrapf(err, "popped %d of %d bytes", i, count)
			}
			if _, err := io.WriteString(config.Writer, byteString(b)); err != nil {
				return errors.Wrap(err, "popHandler cannot write to stdout")
			}
		}
		return nil
	}
}

func peekHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		b, err := c.rb.Peek()
		if err != nil {
			return err
		}
		_, err = io.WriteString(config.Writer, byteString(b))
		return err
	}
}

func clearHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		c.rb.Clear()
		return nil
	}
}

func boolHandler(name string, pred func() bool) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		_, err := io.WriteString(config.Writer, fmt.Sprintf("%s: %v\n", name, pred()))
		return err
	}
}

func lenHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		_, err := io.WriteString(config.Writer, fmt.Sprintf("len: %d free: %d\n", c.rb.Len(), c.rb.Free()))
		return err
	}
}

func rawHandler(name string, read func() byte) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		_, err := io.WriteString(config.Writer, name+": "+byteString(read()))
		return err
	}
}

func atHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		args := strings.Fields(input)
		if len(args) != 2 {
			return fmt.Errorf("usage: at <slot>")
		}
		i, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		b, err := c.rb.At(i)
		if err != nil {
			return err
		}
		_, err = io.WriteString(config.Writer, fmt.Sprintf("at %d: %s", i, byteString(b)))
		return err
	}
}

func bytesHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		return rbdump.HexDump(config.Writer, c.rb.Bytes())
	}
}

func dumpHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		return rbdump.HexDump(config.Writer, c.rb.Raw())
	}
}

func slotsHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		return rbdump.Slots(config.Writer, c.rb)
	}
}

func cksumHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		unread := c.rb.Bytes()
		_, err := io.WriteString(config.Writer, fmt.Sprintf("cksum: 0x%04x over %d bytes\n", rbdump.Checksum(unread), len(unread)))
		return err
	}
}

func statsHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		_, err := io.WriteString(config.Writer, rbdump.Summary(c.rb)+"\n")
		return err
	}
}

func histHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		for i, entry := range c.History() {
			if _, err := io.WriteString(config.Writer, fmt.Sprintf("%d\t%s\n", i, entry)); err != nil {
				return errors.Wrap(err, "histHandler cannot write to stdout")
			}
		}
		return nil
	}
}

func deleteHandler(c *Console) func(string, *repl.REPLConfig) error {
	return func(input string, config *repl.REPLConfig) error {
		c.rb.Delete()
		logger.Println("Buffer storage released")
		return nil
	}
}

/**************************** helper funcs ****************************/

func byteString(b byte) string {
	if b >= 0x20 && b < 0x7f {
		return fmt.Sprintf("%d\t0x%02x\t'%c'\n", b, b, b)
	}
	return fmt.Sprintf("%d\t0x%02x\n", b, b)
}
