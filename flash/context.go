// Package flash implements the engine: probing a chip, reading, writing,
// and erasing address ranges against it, and the erase planner that turns
// a required coverage range into a minimal set of erase commands.
package flash

import "github.com/flashkit/norflash/chip"

// AddressMode is the active addressing width for a session.
type AddressMode int

const (
	ThreeByte AddressMode = iota
	FourByte
)

// Context holds the per-session state built by Probe: which chip is
// attached, and how addresses are currently being sent on the wire. It is
// mutated only when the engine itself enters or exits 4-byte mode.
type Context struct {
	Chip           *chip.FlashChip
	AddressMode    AddressMode
	UseNative4Byte bool
}

// PageSize returns the chip's program page size.
func (c *Context) PageSize() uint16 { return c.Chip.PageSize }

// TotalSize returns the chip's total addressable size.
func (c *Context) TotalSize() uint32 { return c.Chip.TotalSize }

// IsValidAddress reports whether addr is within the chip.
func (c *Context) IsValidAddress(addr uint32) bool {
	return addr < c.Chip.TotalSize
}

// IsValidRange reports whether [addr, addr+length) lies entirely within
// the chip, with no overflow.
func (c *Context) IsValidRange(addr, length uint32) bool {
	if length == 0 {
		return addr <= c.Chip.TotalSize
	}
	end := addr + length
	if end < addr {
		return false // overflow
	}
	return end <= c.Chip.TotalSize
}

// Uses4ByteOpcodes reports whether the engine should address with 4-byte
// opcodes: either because the chip exposes native 4-byte opcodes (the
// preferred path) or because the session is currently in global 4-byte
// mode.
func (c *Context) Uses4ByteOpcodes() bool {
	return c.UseNative4Byte || c.AddressMode == FourByte
}
