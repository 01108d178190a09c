package hal

import (
	"io"
	"sync/atomic"
	"time"

	"roland-ctrl/errcode"
)

// ---- GPIO / ADC handles ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// GPIOHandle is a claimed digital pin. Pin operations cannot fail once claimed.
type GPIOHandle interface {
	ConfigureInput(pull Pull)
	ConfigureOutput(initial bool)
	Set(bool)
	Get() bool
}

// ADCHandle is a claimed analog input. Read returns a 12-bit value (0..4095).
type ADCHandle interface {
	Read() uint16
}

// ---- Board ----

// Board is the single set of peripheral handles owned by the firmware main loop.
type Board interface {
	ClaimGPIO(pin int) (GPIOHandle, error)
	ClaimADC(pin int) (ADCHandle, error)

	// USB is the CDC serial endpoint. Writes are best-effort and may be short.
	USB() io.Writer
	// Log is the diagnostics channel; it never shares the USB endpoint.
	Log() io.Writer

	// Poll pumps the USB device and feeds the watchdog. Call it often.
	Poll()
	// Micros reads the free-running microsecond timer (0 at reset).
	Micros() uint64
	// Sleep suspends for d without polling; use Delay for pumped waits.
	Sleep(d time.Duration)
}

const (
	NumPins  = 30
	ADCFirst = 26
	ADCLast  = 29
)

var taken atomic.Bool

// Take returns the board exactly once. Every later call fails with
// errcode.PeripheralsTaken; the handles it returns are never aliased.
func Take() (Board, error) {
	if !taken.CompareAndSwap(false, true) {
		return nil, errcode.PeripheralsTaken
	}
	b, err := newBoard()
	if err != nil {
		return nil, errcode.Wrap(errcode.Of(err), "take", "", err)
	}
	return b, nil
}

// claims tracks pin ownership for a board.
type claims struct {
	used [NumPins]bool
}

func (c *claims) claim(pin int) error {
	if pin < 0 || pin >= NumPins {
		return errcode.UnknownPin
	}
	if c.used[pin] {
		return errcode.PinInUse
	}
	c.used[pin] = true
	return nil
}

func (c *claims) claimADC(pin int) error {
	if pin < ADCFirst || pin > ADCLast {
		if pin < 0 || pin >= NumPins {
			return errcode.UnknownPin
		}
		return errcode.NotAnalog
	}
	return c.claim(pin)
}
