// Package emulator provides an in-memory programmer.SpiMaster, grounded on
// the Rust rflasher-dummy crate's behavior: a flash chip backed by a byte
// slice, with AND-only programming (writes can only clear bits, never set
// them) and erase resetting a region to 0xFF. It exists so the protocol and
// flash-engine tests in this module can run without real hardware.
package emulator

import (
	"github.com/flashkit/norflash/chip"
	"github.com/flashkit/norflash/ferr"
	"github.com/flashkit/norflash/programmer"
	"github.com/flashkit/norflash/spi"
)

// Config describes the simulated chip's static geometry, mirroring the
// dummy crate's own configuration struct.
type Config struct {
	Manufacturer byte
	Device       uint16
	TotalSize    uint32
	PageSize     uint16
}

// DefaultConfig matches spec.md's test-scenario chip: mfr 0xEF, device
// 0x4018, 16 MiB, 256-byte pages, with 4K/32K/64K erase blocks.
func DefaultConfig() Config {
	return Config{Manufacturer: chip.Winbond, Device: 0x4018, TotalSize: 16 << 20, PageSize: 256}
}

// Dummy is an in-memory SpiMaster. The zero value is not usable; use New.
type Dummy struct {
	cfg  Config
	mem  []byte
	wel  bool
	sr1  byte
	addr spi.AddressWidth

	// TxCount and EraseCount are diagnostic counters tests can inspect;
	// they have no effect on behavior.
	TxCount    int
	EraseCount int
}

// New creates a Dummy with the given configuration, memory initialized to
// all 0xFF (the erased state).
func New(cfg Config) *Dummy {
	mem := make([]byte, cfg.TotalSize)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &Dummy{cfg: cfg, mem: mem, addr: spi.ThreeByte}
}

// NewDefault creates a Dummy using DefaultConfig.
func NewDefault() *Dummy { return New(DefaultConfig()) }

func (d *Dummy) Features() programmer.SpiFeatures {
	return programmer.FourByteAddr | programmer.DualIn | programmer.DualIO | programmer.QuadIn | programmer.QuadIO
}

func (d *Dummy) MaxReadLen() int  { return 0 }
func (d *Dummy) MaxWriteLen() int { return int(d.cfg.PageSize) }

func (d *Dummy) ProbeOpcode(byte) bool { return true }

func (d *Dummy) DelayUs(uint32) {}

// Execute interprets cmd against the in-memory chip model.
func (d *Dummy) Execute(cmd spi.Command) error {
	d.TxCount++
	switch cmd.Opcode {
	case spi.WREN:
		d.wel = true
		d.sr1 |= spi.SR1WEL
	case spi.WRDI:
		d.wel = false
		d.sr1 &^= spi.SR1WEL
	case spi.RDSR:
		if len(cmd.ReadBuf) > 0 {
			cmd.ReadBuf[0] = d.sr1
		}
	case spi.RDSR2, spi.RDSR3:
		if len(cmd.ReadBuf) > 0 {
			cmd.ReadBuf[0] = 0
		}
	case spi.WRSR:
		if !d.wel {
			return ferr.New(ferr.WriteProtected)
		}
		d.wel = false
		d.sr1 &^= spi.SR1WEL
	case spi.RDID:
		if len(cmd.ReadBuf) >= 3 {
			cmd.ReadBuf[0] = d.cfg.Manufacturer
			cmd.ReadBuf[1] = byte(d.cfg.Device >> 8)
			cmd.ReadBuf[2] = byte(d.cfg.Device)
		}
	case spi.READ, spi.READ4B, spi.FAST_READ:
		return d.read(cmd)
	case spi.PP, spi.PP4B:
		return d.program(cmd)
	case spi.SE4K, spi.SE4K4B:
		return d.erase(cmd.Address, 4<<10)
	case spi.BE32K:
		return d.erase(cmd.Address, 32<<10)
	case spi.BE64K:
		return d.erase(cmd.Address, 64<<10)
	case spi.CE:
		if !d.wel {
			return ferr.New(ferr.WriteProtected)
		}
		for i := range d.mem {
			d.mem[i] = 0xFF
		}
		d.wel = false
		d.sr1 &^= spi.SR1WEL
		d.EraseCount++
	case spi.EN4B:
		d.addr = spi.FourByte
	case spi.EX4B:
		d.addr = spi.ThreeByte
	case spi.RSTEN, spi.RST:
		// no-op: the emulator has no volatile state worth resetting
	case spi.RDSFDP:
		for i := range cmd.ReadBuf {
			cmd.ReadBuf[i] = 0xFF
		}
	default:
		return ferr.New(ferr.OpcodeNotSupported)
	}
	return nil
}

func (d *Dummy) read(cmd spi.Command) error {
	if cmd.Address+uint32(len(cmd.ReadBuf)) > uint32(len(d.mem)) {
		return ferr.New(ferr.AddressOutOfBounds).WithAddr(cmd.Address)
	}
	copy(cmd.ReadBuf, d.mem[cmd.Address:])
	return nil
}

func (d *Dummy) program(cmd spi.Command) error {
	if !d.wel {
		return ferr.New(ferr.WriteProtected)
	}
	if cmd.Address+uint32(len(cmd.WriteData)) > uint32(len(d.mem)) {
		return ferr.New(ferr.AddressOutOfBounds).WithAddr(cmd.Address)
	}
	for i, b := range cmd.WriteData {
		// AND-only semantics: a program operation can only clear bits.
		d.mem[cmd.Address+uint32(i)] &= b
	}
	d.wel = false
	d.sr1 &^= spi.SR1WEL
	return nil
}

func (d *Dummy) erase(addr, size uint32) error {
	if !d.wel {
		return ferr.New(ferr.WriteProtected)
	}
	if addr+size > uint32(len(d.mem)) {
		return ferr.New(ferr.AddressOutOfBounds).WithAddr(addr)
	}
	for i := addr; i < addr+size; i++ {
		d.mem[i] = 0xFF
	}
	d.wel = false
	d.sr1 &^= spi.SR1WEL
	d.EraseCount++
	return nil
}

// Snapshot returns a copy of the simulated chip's full contents, for test
// assertions.
func (d *Dummy) Snapshot() []byte {
	out := make([]byte, len(d.mem))
	copy(out, d.mem)
	return out
}

// Size returns the simulated chip's total size in bytes.
func (d *Dummy) Size() uint32 { return d.cfg.TotalSize }
