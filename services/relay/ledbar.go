package relay

import (
	"time"

	"roland-ctrl/services/hal"
	"roland-ctrl/x/ramp"
)

const NumLamps = 5

// Lamp thresholds for L1..L4.
var barThresholds = [NumLamps - 1]uint16{20, 40, 60, 80}

// Startup sweep timing.
const (
	sweepStep = 200 * time.Millisecond
	sweepHold = 800 * time.Millisecond
)

// LEDBar mirrors the throttle bucket on five binary lamps. L0 is the armed
// lamp: once set by Show it stays high until reset.
type LEDBar struct {
	lamps [NumLamps]hal.GPIOHandle
	armed bool
}

// NewLEDBar configures every lamp as an output, initially off.
func NewLEDBar(lamps [NumLamps]hal.GPIOHandle) *LEDBar {
	for _, l := range lamps {
		l.ConfigureOutput(false)
	}
	return &LEDBar{lamps: lamps}
}

// Show reflects a freshly transmitted throttle bucket.
func (l *LEDBar) Show(bucket uint16) {
	l.armed = true
	l.lamps[0].Set(true)
	for i, th := range barThresholds {
		l.lamps[i+1].Set(bucket >= th)
	}
}

// SetLevel lights the first n lamps.
func (l *LEDBar) SetLevel(n uint16) {
	for i, lamp := range l.lamps {
		lamp.Set(uint16(i) < n)
	}
}

// Clear turns every lamp off.
func (l *LEDBar) Clear() { l.SetLevel(0) }

func (l *LEDBar) Armed() bool { return l.armed }

// Sweep plays the boot animation: L0..L4 in order one step apart, a hold on
// the full bar, then all off. tick performs the (pumped) waits.
func (l *LEDBar) Sweep(tick ramp.Tick) {
	l.SetLevel(1)
	steps := uint16(NumLamps - 1)
	if !ramp.StartLinear(1, NumLamps, NumLamps, uint32(sweepStep/time.Millisecond)*uint32(steps), steps, tick, l.SetLevel) {
		l.Clear()
		return
	}
	tick(sweepHold)
	l.Clear()
}
