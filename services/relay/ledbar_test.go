package relay

import (
	"testing"
	"time"

	"roland-ctrl/services/hal"
)

func newTestBar(t *testing.T) (*LEDBar, *hal.HostBoard) {
	t.Helper()
	b := hal.NewHostBoard()
	var lamps [NumLamps]hal.GPIOHandle
	for i, pin := range [NumLamps]int{4, 3, 2, 1, 0} {
		h, err := b.ClaimGPIO(pin)
		if err != nil {
			t.Fatalf("ClaimGPIO(%d): %v", pin, err)
		}
		lamps[i] = h
	}
	return NewLEDBar(lamps), b
}

func lampStates(b *hal.HostBoard) [NumLamps]bool {
	var s [NumLamps]bool
	for i, pin := range [NumLamps]int{4, 3, 2, 1, 0} {
		s[i] = b.Pin(pin).Get()
	}
	return s
}

func litCount(b *hal.HostBoard) int {
	n := 0
	for _, on := range lampStates(b) {
		if on {
			n++
		}
	}
	return n
}

func TestLEDBarShowThresholds(t *testing.T) {
	bar, b := newTestBar(t)
	if bar.Armed() || litCount(b) != 0 {
		t.Fatalf("bar should start dark and unarmed")
	}
	for _, c := range []struct {
		bucket uint16
		want   [NumLamps]bool
	}{
		{0, [NumLamps]bool{true, false, false, false, false}},
		{15, [NumLamps]bool{true, false, false, false, false}},
		{20, [NumLamps]bool{true, true, false, false, false}},
		{55, [NumLamps]bool{true, true, true, false, false}},
		{60, [NumLamps]bool{true, true, true, true, false}},
		{100, [NumLamps]bool{true, true, true, true, true}},
	} {
		bar.Show(c.bucket)
		if got := lampStates(b); got != c.want {
			t.Fatalf("Show(%d) lamps = %v, want %v", c.bucket, got, c.want)
		}
	}
	if !bar.Armed() {
		t.Fatalf("bar should be armed after Show")
	}
}

func TestLEDBarSweep(t *testing.T) {
	bar, b := newTestBar(t)
	var seen []int
	var waits []time.Duration
	bar.Sweep(func(d time.Duration) bool {
		seen = append(seen, litCount(b))
		waits = append(waits, d)
		return true
	})
	wantSeen := []int{1, 2, 3, 4, 5}
	wantWaits := []time.Duration{200 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond, 800 * time.Millisecond}
	if len(seen) != len(wantSeen) {
		t.Fatalf("sweep ticks = %v, want %v", seen, wantSeen)
	}
	for i := range wantSeen {
		if seen[i] != wantSeen[i] || waits[i] != wantWaits[i] {
			t.Fatalf("sweep step %d: lit=%d wait=%v, want lit=%d wait=%v", i, seen[i], waits[i], wantSeen[i], wantWaits[i])
		}
	}
	if litCount(b) != 0 {
		t.Fatalf("sweep should end dark")
	}
	if bar.Armed() {
		t.Fatalf("sweep must not arm the bar")
	}
}
