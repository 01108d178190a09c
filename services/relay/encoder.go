package relay

import (
	"io"

	"roland-ctrl/types"
	"roland-ctrl/x/conv"
)

// LineCap is the scratch capacity; the longest line ("buzzer 1\r\n" or
// "speed 100\r\n") is far below it.
const LineCap = 64

// Encoder formats "<channel> <value>\r\n" lines into a reused buffer.
type Encoder struct {
	buf [LineCap]byte
}

// Line returns the encoded line. The slice aliases the scratch buffer and is
// only valid until the next call.
func (e *Encoder) Line(ch types.Channel, v uint16) []byte {
	b := e.buf[:0]
	b = append(b, ch.String()...)
	b = append(b, ' ')
	b = conv.AppendUint(b, uint64(v))
	b = append(b, '\r', '\n')
	return b
}

// Write sends one line, best-effort. Short writes and errors are dropped:
// the next edge reasserts the channel.
func (e *Encoder) Write(w io.Writer, ch types.Channel, v uint16) int {
	n, _ := w.Write(e.Line(ch, v))
	return n
}
