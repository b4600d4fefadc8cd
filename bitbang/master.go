// Package bitbang implements software SPI over four arbitrary GPIO pins,
// for programmers with no dedicated SPI controller. Mirrors the single-IO
// bit-banging loop of the Rust original's bitbang programmer: one bit per
// clock cycle (two half-periods), MSB first, mode 0 (CPOL=0, CPHA=0).
package bitbang

import (
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/flashkit/norflash/ferr"
	"github.com/flashkit/norflash/programmer"
	"github.com/flashkit/norflash/spi"
)

// Master bit-bangs SPI mode 0 over four GPIO lines. Single I/O only: a
// bit-banged implementation has no dual/quad shift register to widen the
// data phase.
type Master struct {
	sck, mosi, miso, cs gpio.PinIO
	halfPeriod          time.Duration
}

// New creates a Master driving the given pins at the given clock
// frequency (mode 0: SCK idles low, data sampled on the rising edge).
func New(sck, mosi, miso, cs gpio.PinIO, clockHz uint32) (*Master, error) {
	if clockHz == 0 {
		clockHz = 1_000_000
	}
	if err := sck.Out(gpio.Low); err != nil {
		return nil, err
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, err
	}
	period := time.Second / time.Duration(clockHz)
	return &Master{sck: sck, mosi: mosi, miso: miso, cs: cs, halfPeriod: period / 2}, nil
}

func (m *Master) Features() programmer.SpiFeatures { return 0 }

func (m *Master) MaxReadLen() int  { return 0 }
func (m *Master) MaxWriteLen() int { return 0 }

func (m *Master) ProbeOpcode(byte) bool { return true }

func (m *Master) DelayUs(us uint32) { programmer.SleepUs(us) }

// Execute shifts cmd's opcode, address, dummy cycles, and data phase
// out/in one bit at a time.
func (m *Master) Execute(cmd spi.Command) error {
	if cmd.IoMode != spi.Single {
		return ferr.New(ferr.IoModeNotSupported)
	}

	if err := m.cs.Out(gpio.Low); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	defer m.cs.Out(gpio.High)

	if err := m.writeByte(cmd.Opcode); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}

	if cmd.HasAddress {
		addrBuf := make([]byte, cmd.AddressWidth.Bytes())
		cmd.AddressWidth.Encode(cmd.Address, addrBuf)
		for _, b := range addrBuf {
			if err := m.writeByte(b); err != nil {
				return ferr.New(ferr.SpiTransferFailed).Wrap(err)
			}
		}
	}

	for i := byte(0); i < cmd.DummyCycles/8; i++ {
		if _, err := m.transferByte(0); err != nil {
			return ferr.New(ferr.SpiTransferFailed).Wrap(err)
		}
	}

	switch {
	case cmd.HasWrite():
		for _, b := range cmd.WriteData {
			if err := m.writeByte(b); err != nil {
				return ferr.New(ferr.SpiTransferFailed).Wrap(err)
			}
		}
	case cmd.HasRead():
		for i := range cmd.ReadBuf {
			b, err := m.transferByte(0)
			if err != nil {
				return ferr.New(ferr.SpiTransferFailed).Wrap(err)
			}
			cmd.ReadBuf[i] = b
		}
	}
	return nil
}

func (m *Master) writeByte(b byte) error {
	_, err := m.transferByte(b)
	return err
}

// transferByte shifts one byte out on MOSI while simultaneously sampling
// one byte in on MISO, MSB first.
func (m *Master) transferByte(out byte) (byte, error) {
	var in byte
	for bit := 7; bit >= 0; bit-- {
		level := gpio.Low
		if out&(1<<uint(bit)) != 0 {
			level = gpio.High
		}
		if err := m.mosi.Out(level); err != nil {
			return 0, err
		}
		time.Sleep(m.halfPeriod)

		if err := m.sck.Out(gpio.High); err != nil {
			return 0, err
		}
		if m.miso.Read() == gpio.High {
			in |= 1 << uint(bit)
		}
		time.Sleep(m.halfPeriod)

		if err := m.sck.Out(gpio.Low); err != nil {
			return 0, err
		}
	}
	return in, nil
}
