package relay

import (
	"roland-ctrl/services/hal"

	"tinygo.org/x/drivers"
)

// NumButtons covers W, A, S, D and buzzer, in wire order.
const NumButtons = 5

// Sample is one reading of every input. Pressed is indexed from types.ChanW.
type Sample struct {
	Throttle uint16
	Servo    uint16
	Pressed  [NumButtons]bool
}

// Inputs are the claimed input handles. Buttons are active-low with pull-ups.
type Inputs struct {
	Throttle hal.ADCHandle
	Servo    hal.ADCHandle
	Buttons  [NumButtons]hal.GPIOHandle
}

var _ drivers.Sensor = (*Sampler)(nil)

// Sampler reads Inputs as a drivers.Sensor. Update(drivers.Voltage) converts
// both ADC channels; the buttons are read on every Update.
type Sampler struct {
	in   Inputs
	last Sample
}

// NewSampler configures the buttons as pull-up inputs.
func NewSampler(in Inputs) *Sampler {
	for _, b := range in.Buttons {
		b.ConfigureInput(hal.PullUp)
	}
	return &Sampler{in: in}
}

func (s *Sampler) Update(which drivers.Measurement) error {
	if which&drivers.Voltage != 0 {
		s.last.Throttle = s.in.Throttle.Read()
		s.last.Servo = s.in.Servo.Read()
	}
	for i, b := range s.in.Buttons {
		s.last.Pressed[i] = !b.Get()
	}
	return nil
}

// Sample returns the most recent Update.
func (s *Sampler) Sample() Sample { return s.last }
