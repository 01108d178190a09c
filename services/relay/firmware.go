package relay

import (
	"context"
	"io"
	"time"

	"roland-ctrl/services/hal"
	"roland-ctrl/services/hal/boards"
	"roland-ctrl/types"

	"tinygo.org/x/drivers"
)

const (
	// LoopPeriod paces the main loop and bounds the sampling rate.
	LoopPeriod = 5 * time.Millisecond
	// EnumerationWait is how long after reset the banner is held back so the
	// host can finish enumerating the CDC interface.
	EnumerationWait = 2 * time.Second

	Banner = types.Banner
)

// Firmware owns every handle and all relay state; only its goroutine touches them.
type Firmware struct {
	board   hal.Board
	status  hal.GPIOHandle
	bar     *LEDBar
	sampler *Sampler
	relay   *Relay
}

// Setup claims the pins of d on b. Any error is a wiring fault.
func Setup(b hal.Board, d boards.Descriptor) (*Firmware, error) {
	f := &Firmware{board: b}

	var err error
	if f.status, err = b.ClaimGPIO(d.LED); err != nil {
		return nil, err
	}
	f.status.ConfigureOutput(false)

	var lamps [NumLamps]hal.GPIOHandle
	for i, pin := range d.Bar {
		if lamps[i], err = b.ClaimGPIO(pin); err != nil {
			return nil, err
		}
	}
	f.bar = NewLEDBar(lamps)

	var in Inputs
	if in.Throttle, err = b.ClaimADC(d.Throttle); err != nil {
		return nil, err
	}
	if in.Servo, err = b.ClaimADC(d.Servo); err != nil {
		return nil, err
	}
	for i, pin := range [NumButtons]int{d.W, d.A, d.S, d.D, d.Buzzer} {
		if in.Buttons[i], err = b.ClaimGPIO(pin); err != nil {
			return nil, err
		}
	}
	f.sampler = NewSampler(in)
	f.relay = New(b.USB(), f.bar)
	return f, nil
}

// Boot runs the startup sequence: status LED on, LED sweep, wait for USB
// enumeration, banner. The USB device is pumped throughout.
func (f *Firmware) Boot() {
	logln(f.board.Log(), "[relay] boot")
	f.status.Set(true)
	f.bar.Sweep(f.delay)

	hal.WaitUntil(f.board, uint64(EnumerationWait/time.Microsecond))
	_, _ = io.WriteString(f.board.USB(), Banner)
	logln(f.board.Log(), "[relay] ready")
}

// Tick is one main-loop iteration. It returns the number of lines emitted.
func (f *Firmware) Tick() int {
	f.board.Poll()
	_ = f.sampler.Update(drivers.Voltage)
	n := f.relay.Step(f.sampler.Sample())
	hal.Delay(f.board, LoopPeriod)
	return n
}

// Run boots and loops until ctx is done. On the MCU ctx never ends.
func (f *Firmware) Run(ctx context.Context) {
	f.Boot()
	for ctx.Err() == nil {
		f.Tick()
	}
}

// LEDBar exposes the bar for inspection.
func (f *Firmware) LEDBar() *LEDBar { return f.bar }

// Reported returns the relay's last transmitted values.
func (f *Firmware) Reported() Reported { return f.relay.Reported() }

func (f *Firmware) delay(d time.Duration) bool {
	hal.Delay(f.board, d)
	return true
}

// logln writes one diagnostics line. The log channel is never the USB endpoint.
func logln(w io.Writer, s string) {
	if w == nil {
		return
	}
	_, _ = io.WriteString(w, s)
	_, _ = io.WriteString(w, "\r\n")
}
