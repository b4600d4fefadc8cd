package flash

import (
	"github.com/flashkit/norflash/chip"
	"github.com/flashkit/norflash/ferr"
	"github.com/flashkit/norflash/programmer"
)

// Device is the capability the smart-write pipeline depends on. It never
// sees a SpiMaster or OpaqueMaster directly — only this unified surface.
type Device interface {
	Size() uint32
	EraseGranularity() uint32
	WriteGranularity() chip.WriteGranularity
	EraseBlocks() []chip.EraseBlock
	Read(addr uint32, buf []byte) error
	Write(addr uint32, data []byte) error
	Erase(addr, length uint32) error
}

// SpiFlashDevice adapts a SpiMaster + Context to Device, deferring to the
// engine and planner.
type SpiFlashDevice struct {
	Master programmer.SpiMaster
	Ctx    *Context
}

func NewSpiFlashDevice(m programmer.SpiMaster, ctx *Context) *SpiFlashDevice {
	return &SpiFlashDevice{Master: m, Ctx: ctx}
}

func (d *SpiFlashDevice) Size() uint32 { return d.Ctx.Chip.TotalSize }

func (d *SpiFlashDevice) EraseGranularity() uint32 { return d.Ctx.Chip.MinEraseSize() }

func (d *SpiFlashDevice) WriteGranularity() chip.WriteGranularity {
	return d.Ctx.Chip.WriteGranularity
}

func (d *SpiFlashDevice) EraseBlocks() []chip.EraseBlock { return d.Ctx.Chip.EraseBlocks }

func (d *SpiFlashDevice) Read(addr uint32, buf []byte) error {
	return Read(d.Master, d.Ctx, addr, buf)
}

func (d *SpiFlashDevice) Write(addr uint32, data []byte) error {
	return Write(d.Master, d.Ctx, addr, data)
}

func (d *SpiFlashDevice) Erase(addr, length uint32) error {
	return Erase(d.Master, d.Ctx, addr, length)
}

// OpaqueFlashDevice adapts an OpaqueMaster to Device. Erase granularity is
// configurable because opaque programmers rarely expose a chip record;
// write granularity defaults to Bit since most chipset-integrated
// controllers accept arbitrary byte writes without a preceding program
// restriction.
type OpaqueFlashDevice struct {
	Master         programmer.OpaqueMaster
	EraseGranBytes uint32
	WriteGran      chip.WriteGranularity
}

// NewOpaqueFlashDevice wraps master with the default 4 KiB erase
// granularity and Bit write granularity.
func NewOpaqueFlashDevice(master programmer.OpaqueMaster) *OpaqueFlashDevice {
	return &OpaqueFlashDevice{Master: master, EraseGranBytes: 4 << 10, WriteGran: chip.WriteBit}
}

func (d *OpaqueFlashDevice) Size() uint32 { return d.Master.Size() }

func (d *OpaqueFlashDevice) EraseGranularity() uint32 { return d.EraseGranBytes }

func (d *OpaqueFlashDevice) WriteGranularity() chip.WriteGranularity { return d.WriteGran }

func (d *OpaqueFlashDevice) EraseBlocks() []chip.EraseBlock {
	return []chip.EraseBlock{{Size: d.EraseGranBytes}}
}

func (d *OpaqueFlashDevice) Read(addr uint32, buf []byte) error {
	if addr+uint32(len(buf)) > d.Master.Size() {
		return ferr.New(ferr.AddressOutOfBounds).WithAddr(addr)
	}
	return d.Master.Read(addr, buf)
}

func (d *OpaqueFlashDevice) Write(addr uint32, data []byte) error {
	if addr+uint32(len(data)) > d.Master.Size() {
		return ferr.New(ferr.AddressOutOfBounds).WithAddr(addr)
	}
	return d.Master.Write(addr, data)
}

func (d *OpaqueFlashDevice) Erase(addr, length uint32) error {
	if addr+length > d.Master.Size() {
		return ferr.New(ferr.AddressOutOfBounds).WithAddr(addr)
	}
	return d.Master.Erase(addr, length)
}
