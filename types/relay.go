package types

// ---- Relay wire channels ----

// Channel identifies one line of the relay event stream.
// Declaration order is the per-tick emission order.
type Channel uint8

const (
	ChanSpeed Channel = iota
	ChanServo
	ChanW
	ChanA
	ChanS
	ChanD
	ChanBuzzer

	NumChannels
)

var channelNames = [NumChannels]string{"speed", "servo", "w", "a", "s", "d", "buzzer"}

// String returns the wire name ("speed", "w", ...); unknown channels yield "?".
func (c Channel) String() string {
	if c >= NumChannels {
		return "?"
	}
	return channelNames[c]
}

// Analog reports whether the channel carries a bucket rather than a 0/1 level.
func (c Channel) Analog() bool { return c == ChanSpeed || c == ChanServo }

// ParseChannel maps a wire name back to its Channel.
func ParseChannel(s string) (Channel, bool) {
	for i, n := range channelNames {
		if n == s {
			return Channel(i), true
		}
	}
	return 0, false
}

// Event is one decoded relay line. Digital channels carry 0 or 1.
type Event struct {
	Channel Channel `json:"channel"`
	Value   uint16  `json:"value"`
}

// Pressed reports a digital event's level.
func (e Event) Pressed() bool { return e.Value != 0 }

// ---- Link state (retained) ----

type Level string

const (
	LevelIdle     Level = "idle"
	LevelUp       Level = "up"
	LevelDegraded Level = "degraded"
	LevelError    Level = "error"
)

// LinkState is published on bridge/state.
type LinkState struct {
	Level  Level  `json:"level"`
	Status string `json:"status"` // short machine string
	TS     int64  `json:"ts_ms"`
	Error  string `json:"error,omitempty"`
}

// Banner is the one line the relay writes before its event stream.
const Banner = "roland relay ready\r\n"
