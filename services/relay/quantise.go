package relay

import "roland-ctrl/x/mathx"

// Quantiser constants. Buckets never overlap, so a small drift in the raw
// reading produces zero or one transition.
const (
	ThrottleMax   uint16 = 100
	ThrottleDiv   uint16 = 40 // 0..4000 -> 0..100
	ThrottleRound uint16 = 5

	ServoMin    uint32 = 2750
	ServoMax    uint32 = 4100
	ServoOutMax uint32 = 95
	ServoRound  uint16 = 10
)

// ThrottleBucket maps a 12-bit reading onto 0..100 in steps of 5.
// The pot is wired inverted: a higher reading is a lower throttle.
func ThrottleBucket(raw uint16) uint16 {
	v := mathx.SatSub(ThrottleMax, raw/ThrottleDiv)
	return mathx.RoundDown(v, ThrottleRound)
}

// ServoBucket maps a 12-bit reading from [ServoMin, ServoMax] onto 0..90 in
// steps of 10. Readings outside the domain land on the nearer endpoint.
func ServoBucket(raw uint16) uint16 {
	y := mathx.LinearSat(uint32(raw), ServoMin, ServoMax, 0, ServoOutMax)
	y = mathx.Min(y, ServoOutMax)
	return mathx.RoundDown(uint16(y), ServoRound)
}
