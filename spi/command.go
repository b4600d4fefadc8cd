package spi

// Command is a single half-duplex SPI transaction. It borrows its data
// buffers rather than owning them, so a caller can reuse scratch buffers
// across a tight read/write loop.
//
// Invariants: at most one of WriteData/ReadBuf is non-empty; if
// AddressWidth != NoAddress then Address must be set; DummyCycles is
// ignored when both data slices are empty.
type Command struct {
	Opcode       byte
	Address      uint32
	HasAddress   bool
	AddressWidth AddressWidth
	IoMode       IoMode
	DummyCycles  byte
	WriteData    []byte
	ReadBuf      []byte
}

// Simple builds a command with no address or data phase (e.g. WREN, WRDI).
func Simple(opcode byte) Command {
	return Command{Opcode: opcode, IoMode: Single}
}

// ReadReg builds a status-register-style read with no address phase.
func ReadReg(opcode byte, buf []byte) Command {
	return Command{Opcode: opcode, IoMode: Single, ReadBuf: buf}
}

// WriteReg builds a status-register-style write with no address phase.
func WriteReg(opcode byte, data []byte) Command {
	return Command{Opcode: opcode, IoMode: Single, WriteData: data}
}

// Read3B builds a read command with a 3-byte address (e.g. READ).
func Read3B(opcode byte, addr uint32, buf []byte) Command {
	return Command{Opcode: opcode, Address: addr, HasAddress: true, AddressWidth: ThreeByte, IoMode: Single, ReadBuf: buf}
}

// Read4B builds a read command with a 4-byte address.
func Read4B(opcode byte, addr uint32, buf []byte) Command {
	return Command{Opcode: opcode, Address: addr, HasAddress: true, AddressWidth: FourByte, IoMode: Single, ReadBuf: buf}
}

// Write3B builds a write/program command with a 3-byte address (e.g. PP).
func Write3B(opcode byte, addr uint32, data []byte) Command {
	return Command{Opcode: opcode, Address: addr, HasAddress: true, AddressWidth: ThreeByte, IoMode: Single, WriteData: data}
}

// Write4B builds a write/program command with a 4-byte address.
func Write4B(opcode byte, addr uint32, data []byte) Command {
	return Command{Opcode: opcode, Address: addr, HasAddress: true, AddressWidth: FourByte, IoMode: Single, WriteData: data}
}

// Erase3B builds an erase command with a 3-byte address and no data phase.
func Erase3B(opcode byte, addr uint32) Command {
	return Command{Opcode: opcode, Address: addr, HasAddress: true, AddressWidth: ThreeByte, IoMode: Single}
}

// Erase4B builds an erase command with a 4-byte address and no data phase.
func Erase4B(opcode byte, addr uint32) Command {
	return Command{Opcode: opcode, Address: addr, HasAddress: true, AddressWidth: FourByte, IoMode: Single}
}

// WithIoMode returns a copy of cmd with the I/O mode set.
func (c Command) WithIoMode(mode IoMode) Command {
	c.IoMode = mode
	return c
}

// WithDummyCycles returns a copy of cmd with the dummy cycle count set.
func (c Command) WithDummyCycles(cycles byte) Command {
	c.DummyCycles = cycles
	return c
}

// HasRead reports whether this command has a read phase.
func (c Command) HasRead() bool { return len(c.ReadBuf) > 0 }

// HasWrite reports whether this command has a write phase.
func (c Command) HasWrite() bool { return len(c.WriteData) > 0 }

// TotalBytes estimates the number of bytes moved on the wire: opcode,
// address, dummy bytes (dummy cycles are clock cycles, approximated here
// as bytes for single-line transfers), and the data phase.
func (c Command) TotalBytes() int {
	total := 1 + c.AddressWidth.Bytes()
	total += int(c.DummyCycles) / 8
	total += len(c.WriteData)
	total += len(c.ReadBuf)
	return total
}
