//go:build !rp2040

package hal

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// Compile-time contract check.
var _ Board = (*HostBoard)(nil)

func newBoard() (Board, error) { return NewHostBoard(), nil }

// HostBoard is an in-memory board for host-side tests. Its clock only moves
// when Sleep or Advance is called, so pumped waits run instantly.
type HostBoard struct {
	mu sync.Mutex
	claims

	pins [NumPins]*FakePin
	adcs [NumPins]*FakeADC

	usb   bytes.Buffer
	log   bytes.Buffer
	usbWr *fakeCDC

	// USBLimit truncates every USB write to at most this many bytes (0 = off).
	USBLimit int

	polls int
	now   uint64
}

func NewHostBoard() *HostBoard {
	b := &HostBoard{}
	for i := range b.pins {
		b.pins[i] = &FakePin{}
		b.adcs[i] = &FakeADC{}
	}
	b.usbWr = &fakeCDC{b: b}
	return b
}

func (b *HostBoard) ClaimGPIO(pin int) (GPIOHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.claim(pin); err != nil {
		return nil, err
	}
	return b.pins[pin], nil
}

func (b *HostBoard) ClaimADC(pin int) (ADCHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.claimADC(pin); err != nil {
		return nil, err
	}
	return b.adcs[pin], nil
}

func (b *HostBoard) USB() io.Writer { return b.usbWr }
func (b *HostBoard) Log() io.Writer { return logWriter{b} }

func (b *HostBoard) Poll() {
	b.mu.Lock()
	b.polls++
	b.mu.Unlock()
}

func (b *HostBoard) Micros() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now
}

func (b *HostBoard) Sleep(d time.Duration) { b.Advance(d) }

// Advance moves the fake timer forward.
func (b *HostBoard) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	b.now += uint64(d / time.Microsecond)
	b.mu.Unlock()
}

// Pin exposes the fake behind a GPIO number (claimed or not).
func (b *HostBoard) Pin(n int) *FakePin { return b.pins[n] }

// ADC exposes the fake behind an ADC pin.
func (b *HostBoard) ADC(n int) *FakeADC { return b.adcs[n] }

// Polls returns how many times Poll has run.
func (b *HostBoard) Polls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.polls
}

// TakeUSB returns and clears everything written to the USB endpoint.
func (b *HostBoard) TakeUSB() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.usb.String()
	b.usb.Reset()
	return s
}

// LogOutput returns everything written to the diagnostics channel.
func (b *HostBoard) LogOutput() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.log.String()
}

type fakeCDC struct{ b *HostBoard }

func (w *fakeCDC) Write(p []byte) (int, error) {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	if lim := w.b.USBLimit; lim > 0 && len(p) > lim {
		w.b.usb.Write(p[:lim])
		return lim, io.ErrShortWrite
	}
	return w.b.usb.Write(p)
}

type logWriter struct{ b *HostBoard }

func (w logWriter) Write(p []byte) (int, error) {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	return w.b.log.Write(p)
}

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements GPIOHandle. Inputs configured with PullUp idle high.
type FakePin struct {
	mu      sync.RWMutex
	level   bool
	modeOut bool
	pull    Pull
}

func (p *FakePin) ConfigureInput(pull Pull) {
	p.mu.Lock()
	p.modeOut = false
	p.pull = pull
	p.level = pull == PullUp
	p.mu.Unlock()
}

func (p *FakePin) ConfigureOutput(initial bool) {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
}

// Set drives an output, or the external level of an input in tests.
func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

// IsOutput reports the configured direction.
func (p *FakePin) IsOutput() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modeOut
}

// ----------------------------- ADC (host) ------------------------------------

// FakeADC returns whatever value the test last stored.
type FakeADC struct {
	mu    sync.Mutex
	value uint16
}

func (a *FakeADC) Read() uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// SetValue stores the next raw reading (clamped to 12 bits).
func (a *FakeADC) SetValue(v uint16) {
	if v > 4095 {
		v = 4095
	}
	a.mu.Lock()
	a.value = v
	a.mu.Unlock()
}
