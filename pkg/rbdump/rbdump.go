package rbdump

import (
	"encoding/hex"
	"fmt"
	"io"
	"mcu-ringbuf/pkg/ringbuf"

	"github.com/google/netstack/tcpip/header"
	"github.com/pkg/errors"
)

// Checksum returns the RFC 1071 Internet checksum of b.
//
// Firmware that forwards buffered bytes as a datagram can compare this
// against the checksum the receiver computes.
func Checksum(b []byte) uint16 {
	// netstack returns the folded sum; the checksum is its inverse
	return header.Checksum(b, 0) ^ 0xffff
}

// HexDump writes b in the `hexdump -C` layout, 16 bytes per row.
func HexDump(w io.Writer, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	d := hex.Dumper(w)
	if _, err := d.Write(b); err != nil {
		return errors.Wrap(err, "hex dump")
	}
	return errors.Wrap(d.Close(), "hex dump")
}

// List (slot, value, cursor marks) as strings, one per storage slot
func GetSlotsString(rb *ringbuf.RingBuffer) []string {
	raw := rb.Raw()
	head, tail := rb.Cursors()
	res := make([]string, len(raw))
	for i, b := range raw {
		res[i] = fmt.Sprintf("%d\t0x%02x\t%s\n", i, b, getMarkString(uint32(i), head, tail))
	}
	return res
}

// Slots writes the slot table with a header line.
func Slots(w io.Writer, rb *ringbuf.RingBuffer) error {
	if _, err := io.WriteString(w, "Slot\tValue\tMark\n"); err != nil {
		return errors.Wrap(err, "cannot write the slot header")
	}
	for _, slot := range GetSlotsString(rb) {
		if _, err := io.WriteString(w, slot); err != nil {
			return errors.Wrap(err, "cannot write slots")
		}
	}
	return nil
}

// Summary is a one-line description of the buffer state.
func Summary(rb *ringbuf.RingBuffer) string {
	head, tail := rb.Cursors()
	st := rb.Stats()
	return fmt.Sprintf("cap=%d len=%d free=%d head=%d tail=%d policy=%s pushed=%d popped=%d overwritten=%d rejected=%d",
		rb.Cap(), rb.Len(), rb.Free(), head, tail, rb.Policy(),
		st.Pushed, st.Popped, st.Overwritten, st.Rejected)
}

/**************************** helper funcs ****************************/

func getMarkString(slot, head, tail uint32) string {
	switch {
	case slot == head && slot == tail:
		return "H T"
	case slot == head:
		return "H"
	case slot == tail:
		return "T"
	}
	return ""
}
