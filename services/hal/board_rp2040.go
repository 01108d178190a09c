//go:build rp2040

package hal

import (
	"io"
	"machine"
	"machine/usb"
	"runtime"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"roland-ctrl/services/hal/boards"
)

const watchdogTimeoutMs = 1000

// Timer zero. Package init runs before main, within a few ms of reset.
var boot = time.Now()

func init() {
	// Descriptors are read at enumeration, which the runtime starts after init.
	usb.VendorID = boards.USBVendorID
	usb.ProductID = boards.USBProductID
	usb.Manufacturer = boards.USBManufacturer
	usb.Product = boards.USBProduct
	usb.Serial = boards.USBSerial
}

// Compile-time contract check.
var _ Board = (*rp2Board)(nil)

type rp2Board struct {
	claims
	log io.Writer
}

// newBoard finishes bring-up on top of the TinyGo runtime, which has already
// started XOSC and both PLLs (sys 125 MHz, usb 48 MHz).
func newBoard() (Board, error) {
	b := &rp2Board{}

	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: watchdogTimeoutMs}); err != nil {
		return nil, err
	}
	if err := machine.Watchdog.Start(); err != nil {
		return nil, err
	}

	machine.InitADC()

	d := boards.PicoRelay
	if err := b.claim(d.DebugTX); err != nil {
		return nil, err
	}
	if err := b.claim(d.DebugRX); err != nil {
		return nil, err
	}
	u := uartx.UART1
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: d.DebugBaud,
		TX:       machine.Pin(d.DebugTX),
		RX:       machine.Pin(d.DebugRX),
	}); err != nil {
		return nil, err
	}
	b.log = u
	return b, nil
}

func (b *rp2Board) ClaimGPIO(pin int) (GPIOHandle, error) {
	if err := b.claim(pin); err != nil {
		return nil, err
	}
	return &rp2GPIO{p: machine.Pin(pin)}, nil
}

func (b *rp2Board) ClaimADC(pin int) (ADCHandle, error) {
	if err := b.claimADC(pin); err != nil {
		return nil, err
	}
	a := machine.ADC{Pin: machine.Pin(pin)}
	a.Configure(machine.ADCConfig{})
	return &rp2ADC{a: a}, nil
}

func (b *rp2Board) USB() io.Writer { return machine.Serial }
func (b *rp2Board) Log() io.Writer { return b.log }

// Poll: the TinyGo USB stack is interrupt driven; yielding lets its
// goroutines move buffered bytes, and the watchdog is fed here.
func (b *rp2Board) Poll() {
	machine.Watchdog.Update()
	runtime.Gosched()
}

func (b *rp2Board) Micros() uint64 { return uint64(time.Since(boot) / time.Microsecond) }

func (b *rp2Board) Sleep(d time.Duration) { time.Sleep(d) }

// -----------------------------------------------------------------------------
// GPIO handle
// -----------------------------------------------------------------------------

type rp2GPIO struct {
	p machine.Pin
}

func (r *rp2GPIO) ConfigureInput(pull Pull) {
	var mode machine.PinMode
	switch pull {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
}

func (r *rp2GPIO) ConfigureOutput(initial bool) {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
}

func (r *rp2GPIO) Set(v bool) { r.p.Set(v) }
func (r *rp2GPIO) Get() bool  { return r.p.Get() }

// -----------------------------------------------------------------------------
// ADC handle
// -----------------------------------------------------------------------------

type rp2ADC struct {
	a machine.ADC
}

// Read: machine.ADC.Get scales the 12-bit conversion to 16 bits.
func (r *rp2ADC) Read() uint16 { return r.a.Get() >> 4 }
