package main

import (
	"periph.io/x/conn/v3/physic"

	"github.com/flashkit/norflash"
)

// openSession opens the first attached FTDI programmer and probes the
// chip wired to it.
func openSession(clockMHz uint) (*norflash.Session, error) {
	return norflash.Open(physic.Frequency(clockMHz) * physic.MegaHertz)
}
