package flash

import (
	"bytes"
	"testing"

	"github.com/flashkit/norflash/chip"
	"github.com/flashkit/norflash/emulator"
)

func TestProbeFindsDefaultChip(t *testing.T) {
	d := emulator.NewDefault()
	ctx, err := Probe(d, chip.Default())
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Chip.JedecManufacturer != chip.Winbond {
		t.Fatalf("unexpected chip: %+v", ctx.Chip)
	}
	if ctx.Uses4ByteOpcodes() {
		t.Fatal("16 MiB default chip should not start in 4-byte mode")
	}
}

func TestProbeBusFloating(t *testing.T) {
	d := emulator.New(emulator.Config{Manufacturer: 0xFF, Device: 0xFFFF, TotalSize: 1 << 20, PageSize: 256})
	if _, err := Probe(d, chip.Default()); err == nil {
		t.Fatal("expected ChipNotFound on floating bus")
	}
}

func TestProbeUnknownChip(t *testing.T) {
	d := emulator.New(emulator.Config{Manufacturer: 0xAB, Device: 0xCDEF, TotalSize: 1 << 20, PageSize: 256})
	if _, err := Probe(d, chip.Default()); err == nil {
		t.Fatal("expected ChipNotFound for unrecognized JEDEC ID")
	}
}

func TestProbeEnters4ByteModeForLargeChip(t *testing.T) {
	d := emulator.New(emulator.Config{Manufacturer: chip.Winbond, Device: 0x4019, TotalSize: 32 << 20, PageSize: 256})
	ctx, err := Probe(d, chip.Default())
	if err != nil {
		t.Fatal(err)
	}
	if !ctx.Uses4ByteOpcodes() {
		t.Fatal("32 MiB chip should end up in 4-byte addressing")
	}
}

func TestReadWriteThroughEngine(t *testing.T) {
	d := emulator.NewDefault()
	ctx, err := Probe(d, chip.Default())
	if err != nil {
		t.Fatal(err)
	}
	data := bytes.Repeat([]byte{0x5A}, 10)
	if err := Write(d, ctx, 0, data); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 10)
	if err := Read(d, ctx, 0, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, data) {
		t.Fatalf("got %X, want %X", buf, data)
	}
}

func TestWriteSpansPageBoundary(t *testing.T) {
	d := emulator.NewDefault()
	ctx, err := Probe(d, chip.Default())
	if err != nil {
		t.Fatal(err)
	}
	pageSize := uint32(ctx.PageSize())
	data := bytes.Repeat([]byte{0x11}, int(pageSize)+16)
	addr := pageSize - 8
	if err := Write(d, ctx, addr, data); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, len(data))
	if err := Read(d, ctx, addr, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, data) {
		t.Fatal("page-spanning write/readback mismatch")
	}
}

func TestEraseOutOfBounds(t *testing.T) {
	d := emulator.NewDefault()
	ctx, err := Probe(d, chip.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := Erase(d, ctx, ctx.Chip.TotalSize-1, 100); err == nil {
		t.Fatal("expected AddressOutOfBounds")
	}
}

func TestEraseWholeChipUsesChipErase(t *testing.T) {
	d := emulator.NewDefault()
	ctx, err := Probe(d, chip.Default())
	if err != nil {
		t.Fatal(err)
	}
	data := []byte{0x00, 0x00}
	if err := Write(d, ctx, 0, data); err != nil {
		t.Fatal(err)
	}
	before := d.EraseCount
	if err := Erase(d, ctx, 0, ctx.Chip.TotalSize); err != nil {
		t.Fatal(err)
	}
	if d.EraseCount != before+1 {
		t.Fatalf("expected exactly one erase op for whole-chip erase, got %d more", d.EraseCount-before)
	}
	buf := make([]byte, 2)
	Read(d, ctx, 0, buf)
	if buf[0] != 0xFF || buf[1] != 0xFF {
		t.Fatalf("chip erase left data: %X", buf)
	}
}

func TestEraseSubRangePlansBlocks(t *testing.T) {
	d := emulator.NewDefault()
	ctx, err := Probe(d, chip.Default())
	if err != nil {
		t.Fatal(err)
	}
	data := bytes.Repeat([]byte{0x00}, 16)
	if err := Write(d, ctx, 0, data); err != nil {
		t.Fatal(err)
	}
	if err := Erase(d, ctx, 0, 4<<10); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 16)
	Read(d, ctx, 0, buf)
	want := bytes.Repeat([]byte{0xFF}, 16)
	if !bytes.Equal(buf, want) {
		t.Fatalf("sub-range erase left data: %X", buf)
	}
}
