package emulator

import (
	"bytes"
	"testing"

	"github.com/flashkit/norflash/spi"
)

func TestReadJedecID(t *testing.T) {
	d := NewDefault()
	buf := make([]byte, 3)
	if err := d.Execute(spi.ReadReg(spi.RDID, buf)); err != nil {
		t.Fatalf("RDID: %v", err)
	}
	if buf[0] != 0xEF || buf[1] != 0x40 || buf[2] != 0x18 {
		t.Fatalf("unexpected JEDEC ID: % X", buf)
	}
}

func TestProgramRequiresWriteEnable(t *testing.T) {
	d := NewDefault()
	cmd := spi.Write3B(spi.PP, 0, []byte{0x00})
	if err := d.Execute(cmd); err == nil {
		t.Fatal("expected WriteProtected error without WREN")
	}
}

func TestProgramIsAndOnly(t *testing.T) {
	d := NewDefault()
	if err := d.Execute(spi.Simple(spi.WREN)); err != nil {
		t.Fatal(err)
	}
	if err := d.Execute(spi.Write3B(spi.PP, 0, []byte{0x0F})); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 1)
	if err := d.Execute(spi.Read3B(spi.READ, 0, buf)); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0x0F {
		t.Fatalf("got %X, want 0F", buf[0])
	}

	// A second program attempting to set bits back high must not do so:
	// 0x0F & 0xF0 == 0x00, not 0xF0.
	if err := d.Execute(spi.Simple(spi.WREN)); err != nil {
		t.Fatal(err)
	}
	if err := d.Execute(spi.Write3B(spi.PP, 0, []byte{0xF0})); err != nil {
		t.Fatal(err)
	}
	if err := d.Execute(spi.Read3B(spi.READ, 0, buf)); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0x00 {
		t.Fatalf("AND-only violated: got %X, want 00", buf[0])
	}
}

func TestEraseResetsToFF(t *testing.T) {
	d := NewDefault()
	d.Execute(spi.Simple(spi.WREN))
	d.Execute(spi.Write3B(spi.PP, 0, []byte{0x00, 0x00}))

	d.Execute(spi.Simple(spi.WREN))
	if err := d.Execute(spi.Erase3B(spi.SE4K, 0)); err != nil {
		t.Fatalf("erase: %v", err)
	}

	want := bytes.Repeat([]byte{0xFF}, 4096)
	got := d.Snapshot()[:4096]
	if !bytes.Equal(got, want) {
		t.Fatalf("erase did not reset block to 0xFF")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	d := NewDefault()
	d.Execute(spi.Simple(spi.WREN))
	data := []byte{0x01, 0x02, 0x03, 0x04}
	if err := d.Execute(spi.Write3B(spi.PP, 100, data)); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	if err := d.Execute(spi.Read3B(spi.READ, 100, buf)); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, data) {
		t.Fatalf("got %X, want %X", buf, data)
	}
}
