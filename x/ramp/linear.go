package ramp

import (
	"time"

	"roland-ctrl/x/mathx"
)

// Step sets the new logical level in [0..top].
type Step func(level uint16)

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// StartLinear runs a synchronous (caller-driven) integer ramp from cur to to.
// Every step, the last included, is preceded by one tick of durationMs/steps,
// so a ramp of n steps takes n ticks and ends exactly on 'to'.
// steps==0 or durationMs==0 snaps to 'to'. Returns false if tick cancelled.
func StartLinear(cur, to, top uint16, durationMs uint32, steps uint16, tick Tick, set Step) bool {
	if steps == 0 || durationMs == 0 {
		set(mathx.Min(to, top))
		return true
	}
	d := int32(to) - int32(cur)
	st := int32(steps)
	acc := int32(0)
	cur32 := int32(cur)
	stepDurMs := durationMs / uint32(steps)
	if stepDurMs == 0 {
		stepDurMs = 1
	}
	stepDur := time.Duration(stepDurMs) * time.Millisecond

	for i := uint16(1); i < steps; i++ {
		if !tick(stepDur) {
			return false
		}
		acc += d
		inc := acc / st
		if inc != 0 {
			acc -= inc * st
			cur32 = mathx.Clamp(cur32+inc, 0, int32(top))
			set(uint16(cur32))
		}
	}
	if !tick(stepDur) {
		return false
	}
	set(mathx.Min(to, top))
	return true
}
