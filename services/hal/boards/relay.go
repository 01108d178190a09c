package boards

// Descriptor is the wiring of the handheld relay PCB on a Pico.
// Plain GPIO numbers; mapping to machine.Pin happens in the hal provider.
type Descriptor struct {
	Name string

	LED int    // on-board status LED
	Bar [5]int // throttle LED bar L0..L4 (L0 = armed)

	Throttle int // ADC
	Servo    int // ADC

	W, A, S, D, Buzzer int // active-low, pull-up

	DebugTX, DebugRX int // UART1, diagnostics only
	DebugBaud        uint32
}

// USB identity presented by the relay's CDC interface.
const (
	USBVendorID     uint16 = 0x16C0
	USBProductID    uint16 = 0x27DD
	USBManufacturer        = "Karesz Klub"
	USBProduct             = "TvRemote Pico Relay"
	USBSerial              = "C.U.M-2"
)

var PicoRelay = Descriptor{
	Name: "pico_relay",
	LED:  25,
	Bar:  [5]int{4, 3, 2, 1, 0},

	Throttle: 26,
	Servo:    27,

	W:      14,
	A:      16,
	S:      17,
	D:      15,
	Buzzer: 6,

	DebugTX:   8,
	DebugRX:   9,
	DebugBaud: 115200,
}
