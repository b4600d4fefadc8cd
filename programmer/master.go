// Package programmer defines the low-level hardware abstraction that the
// transports (ftdi, bitbang, emulator) implement. It is the
// seam between the stateless protocol helpers and whatever actually drives
// the SPI lines.
package programmer

import (
	"time"

	"github.com/flashkit/norflash/spi"
)

// SpiFeatures is a bitset describing which wire-level I/O modes and
// addressing widths a concrete SpiMaster can actually drive. This is a
// property of the hardware/transport, distinct from chip.Features (which
// describes what the chip supports).
type SpiFeatures uint32

const (
	FourByteAddr SpiFeatures = 1 << iota
	No4BAModeSwitch
	DualIn
	DualIO
	QuadIn
	QuadIO
	QPI
)

const (
	Dual = DualIn | DualIO
	Quad = QuadIn | QuadIO
)

// Has reports whether all bits in want are set.
func (f SpiFeatures) Has(want SpiFeatures) bool { return f&want == want }

// ProgrammerInfo describes a connected programmer for display or logging
// purposes; it carries no behavior.
type ProgrammerInfo struct {
	Name       string
	Serial     string
	MaxClockHz uint32
	Features   SpiFeatures
}

// SpiMaster is the minimal interface the protocol layer needs to drive a
// SPI NOR flash chip: execute a single half-duplex transaction, report
// what it supports, and (where the underlying transport can't distinguish
// a busy device from one that will never answer) enforce its own
// per-transaction delay.
//
// Implementations: emulator.Dummy, ftdi.Master and bitbang.Master. The
// serial package does not implement it; it only moves raw frames.
type SpiMaster interface {
	// Features reports which I/O modes and addressing widths this master
	// can drive on the wire.
	Features() SpiFeatures

	// MaxReadLen and MaxWriteLen report the largest data phase the
	// transport can move in one Execute call; callers must chunk larger
	// requests. A value of 0 means unbounded.
	MaxReadLen() int
	MaxWriteLen() int

	// Execute performs a single half-duplex SPI transaction.
	Execute(cmd spi.Command) error

	// ProbeOpcode reports whether this master is known to support the
	// given opcode at all (e.g. a hardware SPI controller with a fixed
	// command table). The default assumption, for masters that impose no
	// such restriction, is true.
	ProbeOpcode(opcode byte) bool

	// DelayUs blocks for approximately the given number of microseconds.
	// The bitbang and ftdi masters use a real sleep and the emulator's is a
	// no-op; hardware masters may forward this to firmware instead (see
	// batch.DelayUs).
	DelayUs(us uint32)
}

// OpaqueMaster is the interface for programmers that expose flash
// operations directly (read/write/erase by address) without surfacing the
// underlying SPI command stream — e.g. some USB flash programmers' native
// protocols. The flash engine treats these as a separate, simpler code
// path from SpiMaster-backed chips (see flash.OpaqueFlashDevice).
type OpaqueMaster interface {
	Size() uint32
	Read(addr uint32, buf []byte) error
	Write(addr uint32, data []byte) error
	Erase(addr, length uint32) error
}

// SleepUs is the default real-time implementation of DelayUs, used by
// masters that talk to real hardware over a local bus.
func SleepUs(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}
