package norflash

import (
	"periph.io/x/conn/v3/physic"

	"github.com/flashkit/norflash/chip"
	"github.com/flashkit/norflash/flash"
	"github.com/flashkit/norflash/ftdi"
	"github.com/flashkit/norflash/layout"
	"github.com/flashkit/norflash/smartwrite"
)

// Session ties together an open FTDI programmer, the probed chip context,
// and the unified flash device the rest of the package operates through.
// It is the simplest entry point for a host-side tool: Open, then call
// Read/Write/Erase/SmartWrite.
type Session struct {
	Master *ftdi.Master
	Ctx    *flash.Context
	Device *flash.SpiFlashDevice
}

// Open finds the first attached FTDI programmer, probes whatever chip is
// wired to it against the default chip database, and returns a ready
// Session.
func Open(clockHz physic.Frequency) (*Session, error) {
	m, err := ftdi.Open(clockHz)
	if err != nil {
		return nil, err
	}
	ctx, err := flash.Probe(m, chip.Default())
	if err != nil {
		return nil, err
	}
	return &Session{Master: m, Ctx: ctx, Device: flash.NewSpiFlashDevice(m, ctx)}, nil
}

// Chip returns the probed chip record.
func (s *Session) Chip() *chip.FlashChip { return s.Ctx.Chip }

// Read reads length bytes starting at addr.
func (s *Session) Read(addr, length uint32) ([]byte, error) {
	buf := make([]byte, length)
	if err := flash.Read(s.Master, s.Ctx, addr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Write programs data starting at addr (page-bounded internally).
func (s *Session) Write(addr uint32, data []byte) error {
	return flash.Write(s.Master, s.Ctx, addr, data)
}

// Erase erases [addr, addr+length).
func (s *Session) Erase(addr, length uint32) error {
	return flash.Erase(s.Master, s.Ctx, addr, length)
}

// SmartWrite brings the chip to match image using the change-minimizing
// pipeline, optionally restricted to lay's included regions.
func (s *Session) SmartWrite(image []byte, lay *layout.Layout, onProgress smartwrite.Progress) (smartwrite.Stats, error) {
	return smartwrite.Write(s.Device, image, lay, onProgress)
}
