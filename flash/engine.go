package flash

import (
	"github.com/flashkit/norflash/chip"
	"github.com/flashkit/norflash/ferr"
	"github.com/flashkit/norflash/programmer"
	"github.com/flashkit/norflash/protocol"
)

// Probe resets the attached chip (best-effort), reads its JEDEC ID, looks
// it up in db, and builds the Context that every subsequent engine call
// needs.
func Probe(m programmer.SpiMaster, db *chip.Database) (*Context, error) {
	_ = protocol.SoftwareReset(m) // best-effort; failure here is not fatal

	id, err := protocol.ReadJedecID(m)
	if err != nil {
		return nil, err
	}
	if (id.Manufacturer == 0x00 && id.Device == 0) || (id.Manufacturer == 0xFF && id.Device == 0xFFFF) {
		return nil, ferr.New(ferr.ChipNotFound)
	}

	c, ok := db.FindByJedecID(id.Manufacturer, id.Device)
	if !ok {
		return nil, ferr.New(ferr.ChipNotFound).WithFound(id.Manufacturer)
	}

	ctx := &Context{Chip: c, AddressMode: ThreeByte}
	if c.Features.Has(chip.FourByteNative) {
		ctx.UseNative4Byte = true
	} else if c.Requires4ByteAddr() {
		if err := protocol.Enter4ByteMode(m); err != nil {
			return nil, err
		}
		ctx.AddressMode = FourByte
	}
	return ctx, nil
}

// Read validates [addr, addr+len(buf)) against the chip and fills buf.
func Read(m programmer.SpiMaster, ctx *Context, addr uint32, buf []byte) error {
	if !ctx.IsValidRange(addr, uint32(len(buf))) {
		return ferr.New(ferr.AddressOutOfBounds).WithAddr(addr)
	}
	if ctx.Uses4ByteOpcodes() {
		return protocol.Read4B(m, addr, buf)
	}
	return protocol.Read3B(m, addr, buf)
}

// Write validates [addr, addr+len(data)) against the chip and programs it,
// splitting at page boundaries so no single program crosses a page.
func Write(m programmer.SpiMaster, ctx *Context, addr uint32, data []byte) error {
	if !ctx.IsValidRange(addr, uint32(len(data))) {
		return ferr.New(ferr.AddressOutOfBounds).WithAddr(addr)
	}
	pageSize := uint32(ctx.PageSize())
	if pageSize == 0 {
		pageSize = 256
	}
	for off := uint32(0); off < uint32(len(data)); {
		cur := addr + off
		pageEnd := (cur/pageSize + 1) * pageSize
		chunkEnd := off + (pageEnd - cur)
		if chunkEnd > uint32(len(data)) {
			chunkEnd = uint32(len(data))
		}
		slice := data[off:chunkEnd]
		var err error
		if ctx.Uses4ByteOpcodes() {
			err = protocol.ProgramPage4B(m, cur, slice)
		} else {
			err = protocol.ProgramPage3B(m, cur, slice)
		}
		if err != nil {
			return err
		}
		off = chunkEnd
	}
	return nil
}

// Erase validates [addr, addr+length) and erases it, preferring a single
// chip_erase when the request spans the whole chip and the chip advertises
// one, otherwise planning and issuing the minimal set of block erases.
func Erase(m programmer.SpiMaster, ctx *Context, addr, length uint32) error {
	if !ctx.IsValidRange(addr, length) {
		return ferr.New(ferr.AddressOutOfBounds).WithAddr(addr)
	}
	if addr == 0 && length == ctx.Chip.TotalSize && hasChipErase(ctx.Chip) {
		return ChipErase(m, ctx)
	}
	plan, err := PlanErase(ctx.Chip.EraseBlocks, addr, length, nil)
	if err != nil {
		return err
	}
	use4B := ctx.Uses4ByteOpcodes()
	for _, step := range plan {
		pollUs, timeoutUs := eraseBand(step.Size)
		if err := protocol.EraseBlock(m, step.Opcode, step.Addr, use4B, pollUs, timeoutUs); err != nil {
			return ferr.New(ferr.EraseCommandFailed).WithAddr(step.Addr).Wrap(err)
		}
	}
	return nil
}

// ChipErase issues a whole-chip erase with the mandated 1s poll / 200s
// timeout band.
func ChipErase(m programmer.SpiMaster, ctx *Context) error {
	if err := protocol.ChipErase(m); err != nil {
		return ferr.New(ferr.EraseCommandFailed).Wrap(err)
	}
	return nil
}

func hasChipErase(c *chip.FlashChip) bool {
	// Chip-erase support is assumed whenever the chip record exists in the
	// database: CE (0xC7) is effectively universal across SPI NOR parts
	// and is not separately tracked per-chip in this seed database.
	return c != nil
}

// eraseBand returns the (poll, timeout) microsecond band mandated for an
// erase block of the given size.
func eraseBand(size uint32) (pollUs, timeoutUs uint32) {
	switch {
	case size <= 4<<10:
		return 10_000, 1_000_000
	case size <= 64<<10:
		return 100_000, 4_000_000
	default:
		return 1_000_000, 200_000_000
	}
}
