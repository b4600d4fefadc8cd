// Package ftdi adapts an FTDI MPSSE SPI port (via periph.io) to a
// programmer.SpiMaster, so any chip in the chip database can be driven
// over the same FT2232H/FT232H hardware the teacher repo targeted.
package ftdi

import (
	"errors"
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"

	nspi "github.com/flashkit/norflash/spi"

	"github.com/flashkit/norflash/ferr"
	"github.com/flashkit/norflash/programmer"
)

// [FTDI AN_108] caps a single MPSSE transfer at 64KiB; larger transfers
// must be split by the caller.
const maxTxBytes = 65536

var hostInitialized atomic.Bool

// Master drives SPI over an FTDI MPSSE port as a programmer.SpiMaster.
// Single I/O only: the MPSSE engine the teacher targets has no
// dual/quad-IO shift register, so only IoMode.Single is supported.
type Master struct {
	ftdi  *ftdi.FT232H
	cs    gpio.PinIO
	reset gpio.PinIO
	cdone gpio.PinIO
	clock physic.Frequency
	conn  spi.Conn
}

// VendorID/ProductID identify the FT2232H family the teacher's hardware
// uses; Open only matches devices reporting this pair.
const (
	VendorID  = 0x0403
	ProductID = 0x6010
)

// Open finds the first attached FT2232H-family device and establishes an
// SPI connection at clockHz, SPI mode 0 (the only mode the MPSSE engine
// shares with every JEDEC-standard NOR chip).
func Open(clockHz physic.Frequency) (*Master, error) {
	if hostInitialized.CompareAndSwap(false, true) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("host initialization failed: %w", err)
		}
	}

	m := &Master{clock: clockHz}
	if err := m.find(); err != nil {
		return nil, err
	}

	// Pin mapping matches the teacher's own icebreaker-style wiring:
	// ADBUS0/1/2 are SCK/MOSI/MISO (owned by the MPSSE SPI port itself),
	// ADBUS4 is chip select, ADBUS6/7 are board-specific status/reset
	// lines kept for parity with boards that share this pinout.
	m.cs = m.ftdi.D4
	m.reset = m.ftdi.D7
	m.cdone = m.ftdi.D6

	if err := m.connect(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Master) find() error {
	info := ftdi.Info{}
	for _, dev := range ftdi.All() {
		dev.Info(&info)
		if info.VenID != VendorID || info.DevID != ProductID {
			continue
		}
		if ft, ok := dev.(*ftdi.FT232H); ok {
			m.ftdi = ft
			return nil
		}
	}
	return errors.New("ftdi: no matching device found")
}

func (m *Master) connect() (err error) {
	if m.ftdi == nil {
		return errors.New("ftdi: device not opened")
	}
	port, err := m.ftdi.SPI()
	if err != nil {
		return fmt.Errorf("ftdi: failed to get SPI port: %w", err)
	}
	m.conn, err = port.Connect(m.clock, spi.Mode0, 8)
	return err
}

func (m *Master) Features() programmer.SpiFeatures {
	return programmer.FourByteAddr
}

func (m *Master) MaxReadLen() int  { return maxTxBytes - 5 }
func (m *Master) MaxWriteLen() int { return maxTxBytes - 5 }

func (m *Master) ProbeOpcode(byte) bool { return true }

func (m *Master) DelayUs(us uint32) { programmer.SleepUs(us) }

// Execute performs one half-duplex transaction: assert CS, shift the
// header (opcode + address + dummy bytes) and data phase in one
// full-duplex Tx (matching the teacher's own tx helper), then deassert CS.
func (m *Master) Execute(cmd nspi.Command) error {
	if cmd.IoMode != nspi.Single {
		return ferr.New(ferr.IoModeNotSupported)
	}

	header := 1
	if cmd.HasAddress {
		header += cmd.AddressWidth.Bytes()
	}
	dummyBytes := int(cmd.DummyCycles) / 8

	var dataLen int
	switch {
	case cmd.HasWrite():
		dataLen = len(cmd.WriteData)
	case cmd.HasRead():
		dataLen = len(cmd.ReadBuf)
	}

	total := header + dummyBytes + dataLen
	if total > maxTxBytes {
		return ferr.New(ferr.BufferTooSmall)
	}

	buf := make([]byte, total)
	buf[0] = cmd.Opcode
	if cmd.HasAddress {
		cmd.AddressWidth.Encode(cmd.Address, buf[1:1+cmd.AddressWidth.Bytes()])
	}
	if cmd.HasWrite() {
		copy(buf[header+dummyBytes:], cmd.WriteData)
	}

	if err := m.assert(); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	err := m.conn.Tx(buf, buf)
	if deassertErr := m.deassert(); err == nil {
		err = deassertErr
	}
	if err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}

	if cmd.HasRead() {
		copy(cmd.ReadBuf, buf[header+dummyBytes:])
	}
	return nil
}

func (m *Master) assert() error   { return m.cs.Out(gpio.Low) }
func (m *Master) deassert() error { return m.cs.Out(gpio.High) }

// Reset asserts (low) or deasserts (high) the board reset line, where
// wired (mirrors the teacher's ResetFPGA, generalized to any reset-line
// consumer rather than only FPGA configuration boards).
func (m *Master) Reset(level gpio.Level) error {
	if m.reset == nil {
		return errors.New("ftdi: no reset line wired")
	}
	return m.reset.Out(level)
}

// Done reads the board's done/ready line, where wired.
func (m *Master) Done() (gpio.Level, error) {
	if m.cdone == nil {
		return gpio.Low, errors.New("ftdi: no done line wired")
	}
	return m.cdone.Read(), nil
}
