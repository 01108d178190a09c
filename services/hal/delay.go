package hal

import "time"

// PollSlice bounds how long any pumped wait goes without a Poll.
const PollSlice = time.Millisecond

// Delay waits for d of board time, polling at least every PollSlice.
func Delay(b Board, d time.Duration) {
	if d <= 0 {
		b.Poll()
		return
	}
	WaitUntil(b, b.Micros()+uint64(d/time.Microsecond))
}

// WaitUntil polls until the board timer reaches micros.
func WaitUntil(b Board, micros uint64) {
	for {
		b.Poll()
		now := b.Micros()
		if now >= micros {
			return
		}
		rem := time.Duration(micros-now) * time.Microsecond
		if rem > PollSlice {
			rem = PollSlice
		}
		b.Sleep(rem)
	}
}
