package ramp

import (
	"testing"
	"time"
)

type rec struct {
	ticks  []time.Duration
	levels []uint16
	order  []string
}

func (r *rec) tick(d time.Duration) bool {
	r.ticks = append(r.ticks, d)
	r.order = append(r.order, "t")
	return true
}

func (r *rec) set(l uint16) {
	r.levels = append(r.levels, l)
	r.order = append(r.order, "s")
}

func TestStartLinearTicksBeforeEveryStep(t *testing.T) {
	var r rec
	if !StartLinear(1, 5, 5, 800, 4, r.tick, r.set) {
		t.Fatalf("ramp cancelled")
	}
	wantLevels := []uint16{2, 3, 4, 5}
	if len(r.levels) != len(wantLevels) {
		t.Fatalf("levels = %v, want %v", r.levels, wantLevels)
	}
	for i := range wantLevels {
		if r.levels[i] != wantLevels[i] {
			t.Fatalf("levels = %v, want %v", r.levels, wantLevels)
		}
	}
	for _, d := range r.ticks {
		if d != 200*time.Millisecond {
			t.Fatalf("tick = %v, want 200ms", d)
		}
	}
	if got := len(r.order); got != 8 || r.order[0] != "t" || r.order[7] != "s" {
		t.Fatalf("order = %v, want alternating t,s", r.order)
	}
}

func TestStartLinearSnapsAndClamps(t *testing.T) {
	var r rec
	StartLinear(0, 9, 5, 0, 4, r.tick, r.set)
	if len(r.ticks) != 0 || len(r.levels) != 1 || r.levels[0] != 5 {
		t.Fatalf("snap: ticks=%v levels=%v", r.ticks, r.levels)
	}
}

func TestStartLinearCancel(t *testing.T) {
	var levels []uint16
	n := 0
	ok := StartLinear(0, 4, 4, 400, 4, func(time.Duration) bool {
		n++
		return n < 3
	}, func(l uint16) { levels = append(levels, l) })
	if ok {
		t.Fatalf("expected cancellation")
	}
	if len(levels) != 2 {
		t.Fatalf("levels before cancel = %v, want 2 entries", levels)
	}
}
