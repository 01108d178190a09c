package bridge

// State is the last key state reported by the relay.
type State struct {
	Speed uint16 // throttle bucket, 0..100
	W     bool
	A     bool
	S     bool
	D     bool
}

// Motion is a drive decision. Wheel speeds are fractions of full speed,
// negative for reverse.
type Motion struct {
	Stop  bool
	Left  float64
	Right float64
}

// Motion maps the key state to a drive decision:
//   - W and S equal: rotate in place toward a lone A or D, otherwise stop;
//   - otherwise straight forward (W) or reverse (S) when A equals D;
//   - otherwise diagonal, the wheel on the turning side at a third of the speed.
func (s State) Motion() Motion {
	speed := float64(s.Speed) / 100

	if s.W == s.S {
		switch {
		case s.A && !s.D:
			return Motion{Left: -speed, Right: speed}
		case s.D && !s.A:
			return Motion{Left: speed, Right: -speed}
		}
		return Motion{Stop: true}
	}

	if s.S {
		speed = -speed
	}
	if s.A == s.D {
		return Motion{Left: speed, Right: speed}
	}
	turn := speed / 3
	if s.A {
		return Motion{Left: turn, Right: speed}
	}
	return Motion{Left: speed, Right: turn}
}

// Apply sends m to r.
func (m Motion) Apply(r Robot) error {
	if m.Stop {
		return r.Stop()
	}
	return r.Drive(m.Left, m.Right)
}
