package relay

import (
	"io"

	"roland-ctrl/types"
)

// Reported is the last value transmitted per channel. The zero value is the
// boot state: nothing is sent for inputs that start at 0 / released.
type Reported struct {
	Throttle uint16
	Servo    uint16
	Pressed  [NumButtons]bool
}

// Relay is the edge detector: it writes a line only when a channel's bucket
// or level differs from what was last reported.
type Relay struct {
	out  io.Writer
	bar  *LEDBar
	enc  Encoder
	last Reported
}

// New returns a Relay writing to out. bar may be nil.
func New(out io.Writer, bar *LEDBar) *Relay {
	return &Relay{out: out, bar: bar}
}

// Step quantises one sample and emits, in order, speed, servo, w, a, s, d,
// buzzer for each channel that changed. It returns the number of lines sent.
func (r *Relay) Step(s Sample) int {
	n := 0
	if b := ThrottleBucket(s.Throttle); b != r.last.Throttle {
		r.last.Throttle = b
		if r.bar != nil {
			r.bar.Show(b)
		}
		r.enc.Write(r.out, types.ChanSpeed, b)
		n++
	}
	if b := ServoBucket(s.Servo); b != r.last.Servo {
		r.last.Servo = b
		r.enc.Write(r.out, types.ChanServo, b)
		n++
	}
	for i, p := range s.Pressed {
		if p == r.last.Pressed[i] {
			continue
		}
		r.last.Pressed[i] = p
		var v uint16
		if p {
			v = 1
		}
		r.enc.Write(r.out, types.ChanW+types.Channel(i), v)
		n++
	}
	return n
}

// Reported returns the last transmitted values.
func (r *Relay) Reported() Reported { return r.last }
