package bridge

import (
	"strconv"
	"strings"

	"roland-ctrl/errcode"
	"roland-ctrl/types"
)

// HandleLine applies one relay line to st and drives r accordingly.
//
// speed and w/a/s/d update st and then recompute motion. servo and buzzer
// are forwarded directly and leave motion alone. An unknown key, a line
// without a value or an unparsable number is an error the caller must treat
// as fatal; the returned Event is only meaningful when err is nil.
func HandleLine(st *State, r Robot, line string) (types.Event, error) {
	key, value, ok := strings.Cut(line, " ")
	if !ok {
		return types.Event{}, errcode.Wrap(errcode.MalformedLine, "decode", strconv.Quote(line), nil)
	}
	value = strings.TrimSpace(value)

	ch, ok := types.ParseChannel(key)
	if !ok {
		return types.Event{}, errcode.Wrap(errcode.UnknownKey, "decode", key, nil)
	}
	ev := types.Event{Channel: ch}

	switch ch {
	case types.ChanSpeed:
		v, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return ev, errcode.Wrap(errcode.InvalidValue, "decode", "speed "+strconv.Quote(value), err)
		}
		ev.Value = uint16(v)
		st.Speed = ev.Value

	case types.ChanServo:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return ev, errcode.Wrap(errcode.InvalidValue, "decode", "servo "+strconv.Quote(value), err)
		}
		if v >= 0 && v <= 0xFFFF {
			ev.Value = uint16(v)
		}
		return ev, robotErr(r.Servo(-(v - 45)))

	case types.ChanBuzzer:
		// The buzzer input is inverted: a pressed button means pulse width 0.
		pw := 1.0
		if value == "1" {
			ev.Value = 1
			pw = 0
		}
		return ev, robotErr(r.Buzzer(pw))

	default:
		pressed := value == "1"
		if pressed {
			ev.Value = 1
		}
		switch ch {
		case types.ChanW:
			st.W = pressed
		case types.ChanA:
			st.A = pressed
		case types.ChanS:
			st.S = pressed
		case types.ChanD:
			st.D = pressed
		}
	}

	return ev, robotErr(st.Motion().Apply(r))
}

// IsBanner reports whether line is the relay's start-up banner.
func IsBanner(line string) bool {
	return strings.TrimSpace(line) == strings.TrimSpace(types.Banner)
}

func robotErr(err error) error {
	if err == nil {
		return nil
	}
	return errcode.Wrap(errcode.LinkDown, "robot", "", err)
}
