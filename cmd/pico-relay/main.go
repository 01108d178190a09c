//go:build rp2040

// Command pico-relay is the handheld relay firmware.
package main

import (
	"context"

	"roland-ctrl/services/hal"
	"roland-ctrl/services/hal/boards"
	"roland-ctrl/services/relay"
)

func main() {
	b, err := hal.Take()
	if err != nil {
		panic(err)
	}
	fw, err := relay.Setup(b, boards.PicoRelay)
	if err != nil {
		panic(err)
	}
	fw.Run(context.Background())
}
