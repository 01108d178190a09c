package bridge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"go.bug.st/serial"

	"roland-ctrl/errcode"
)

// SerialDial opens the relay's serial device. Tests replace it.
var SerialDial = OpenSerial

// OpenSerial opens c.Port 8N1 at c.Baud with the configured read timeout.
// A read that times out returns (0, nil).
func OpenSerial(ctx context.Context, c SerialConfig) (io.ReadWriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := serial.Open(c.Port, &serial.Mode{
		BaudRate: c.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	if c.ReadTimeoutMS > 0 {
		if err := p.SetReadTimeout(time.Duration(c.ReadTimeoutMS) * time.Millisecond); err != nil {
			_ = p.Close()
			return nil, err
		}
	}
	return p, nil
}

// MaxLine bounds one relay line; the firmware never sends more than 64 bytes.
const MaxLine = 256

// lineReader splits a timed-out-read stream into lines. Partial lines are
// kept across timeouts.
type lineReader struct {
	r     io.Reader
	buf   []byte
	chunk [64]byte
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: r, buf: make([]byte, 0, MaxLine)}
}

// ReadLine returns the next line including its terminator. It returns
// errcode.Timeout when a read produced no complete line in time.
func (l *lineReader) ReadLine() (string, error) {
	for {
		if i := bytes.IndexByte(l.buf, '\n'); i >= 0 {
			line := string(l.buf[:i+1])
			l.buf = append(l.buf[:0], l.buf[i+1:]...)
			return line, nil
		}
		if len(l.buf) >= MaxLine {
			l.buf = l.buf[:0]
			return "", errcode.Wrap(errcode.MalformedLine, "serial", "line too long", nil)
		}

		n, err := l.r.Read(l.chunk[:])
		l.buf = append(l.buf, l.chunk[:n]...)
		if n > 0 && bytes.IndexByte(l.chunk[:n], '\n') >= 0 {
			continue
		}
		switch {
		case err != nil && isTimeout(err):
			return "", errcode.Timeout
		case err != nil:
			return "", err
		case n == 0:
			return "", errcode.Timeout
		}
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
