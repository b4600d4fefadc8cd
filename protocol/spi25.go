// Package protocol implements the stateless JEDEC SPI-25 command helpers:
// small functions that build one or more spi.Command values, execute them
// against a programmer.SpiMaster, and interpret the result. None of these
// functions retain state between calls; all chip state (address mode,
// feature bits) is threaded through explicitly by the caller.
package protocol

import (
	"github.com/flashkit/norflash/ferr"
	"github.com/flashkit/norflash/programmer"
	"github.com/flashkit/norflash/spi"
)

// JedecID is the parsed response of a READ JEDEC ID (0x9F) command.
type JedecID struct {
	Manufacturer byte
	Device       uint16
}

// ReadJedecID issues RDID and parses the 3-byte response.
func ReadJedecID(m programmer.SpiMaster) (JedecID, error) {
	buf := make([]byte, 3)
	cmd := spi.ReadReg(spi.RDID, buf)
	if err := m.Execute(cmd); err != nil {
		return JedecID{}, ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	return JedecID{Manufacturer: buf[0], Device: uint16(buf[1])<<8 | uint16(buf[2])}, nil
}

// ReadStatus1 issues RDSR and returns the status byte.
func ReadStatus1(m programmer.SpiMaster) (byte, error) {
	return readStatus(m, spi.RDSR)
}

// ReadStatus2 issues RDSR2 and returns the status byte.
func ReadStatus2(m programmer.SpiMaster) (byte, error) {
	return readStatus(m, spi.RDSR2)
}

// ReadStatus3 issues RDSR3 and returns the status byte.
func ReadStatus3(m programmer.SpiMaster) (byte, error) {
	return readStatus(m, spi.RDSR3)
}

func readStatus(m programmer.SpiMaster, opcode byte) (byte, error) {
	buf := make([]byte, 1)
	if err := m.Execute(spi.ReadReg(opcode, buf)); err != nil {
		return 0, ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	return buf[0], nil
}

// WriteEnable issues WREN.
func WriteEnable(m programmer.SpiMaster) error {
	if err := m.Execute(spi.Simple(spi.WREN)); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	return nil
}

// WriteDisable issues WRDI.
func WriteDisable(m programmer.SpiMaster) error {
	if err := m.Execute(spi.Simple(spi.WRDI)); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	return nil
}

// CheckWEL reports whether the write-enable-latch bit is currently set.
func CheckWEL(m programmer.SpiMaster) (bool, error) {
	sr, err := ReadStatus1(m)
	if err != nil {
		return false, err
	}
	return sr&spi.SR1WEL != 0, nil
}

// IsBusy reports whether the write-in-progress bit is currently set.
func IsBusy(m programmer.SpiMaster) (bool, error) {
	sr, err := ReadStatus1(m)
	if err != nil {
		return false, err
	}
	return sr&spi.SR1WIP != 0, nil
}

// WaitReady polls SR1.WIP every pollUs until it clears or timeoutUs has
// elapsed, whichever comes first.
func WaitReady(m programmer.SpiMaster, pollUs, timeoutUs uint32) error {
	var waited uint32
	for {
		busy, err := IsBusy(m)
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		if waited >= timeoutUs {
			return ferr.New(ferr.SpiTimeout)
		}
		m.DelayUs(pollUs)
		waited += pollUs
	}
}

// WriteStatus1 issues WREN then WRSR with a single status byte, then waits
// for WIP to clear with the standard 10 ms poll / 500 ms timeout band.
func WriteStatus1(m programmer.SpiMaster, sr1 byte) error {
	if err := WriteEnable(m); err != nil {
		return err
	}
	if err := m.Execute(spi.WriteReg(spi.WRSR, []byte{sr1})); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	return WaitReady(m, 10_000, 500_000)
}

// WriteStatus12 issues WREN then WRSR with two status bytes (SR1, SR2),
// then waits with the same band as WriteStatus1.
func WriteStatus12(m programmer.SpiMaster, sr1, sr2 byte) error {
	if err := WriteEnable(m); err != nil {
		return err
	}
	if err := m.Execute(spi.WriteReg(spi.WRSR, []byte{sr1, sr2})); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	return WaitReady(m, 10_000, 500_000)
}

// Read3B issues a sequence of READ commands with 3-byte addressing,
// chunked to the master's MaxReadLen.
func Read3B(m programmer.SpiMaster, addr uint32, buf []byte) error {
	return readChunked(m, spi.READ, spi.ThreeByte, addr, buf)
}

// Read4B issues a sequence of READ_4B commands with 4-byte addressing,
// chunked to the master's MaxReadLen.
func Read4B(m programmer.SpiMaster, addr uint32, buf []byte) error {
	return readChunked(m, spi.READ4B, spi.FourByte, addr, buf)
}

func readChunked(m programmer.SpiMaster, opcode byte, width spi.AddressWidth, addr uint32, buf []byte) error {
	maxLen := m.MaxReadLen()
	if maxLen <= 0 {
		maxLen = len(buf)
	}
	for off := 0; off < len(buf); off += maxLen {
		end := off + maxLen
		if end > len(buf) {
			end = len(buf)
		}
		cmd := spi.Command{Opcode: opcode, Address: addr + uint32(off), HasAddress: true, AddressWidth: width, IoMode: spi.Single, ReadBuf: buf[off:end]}
		if err := m.Execute(cmd); err != nil {
			return ferr.New(ferr.SpiTransferFailed).WithAddr(addr + uint32(off)).Wrap(err)
		}
	}
	return nil
}

// ProgramPage3B issues WREN + PP with a 3-byte address, then waits for WIP
// to clear with the 10 µs poll / 10 ms timeout band. Callers must ensure
// data does not cross a page boundary.
func ProgramPage3B(m programmer.SpiMaster, addr uint32, data []byte) error {
	return programPage(m, spi.PP, spi.ThreeByte, addr, data)
}

// ProgramPage4B issues WREN + PP_4B with a 4-byte address, same timing
// band as ProgramPage3B.
func ProgramPage4B(m programmer.SpiMaster, addr uint32, data []byte) error {
	return programPage(m, spi.PP4B, spi.FourByte, addr, data)
}

func programPage(m programmer.SpiMaster, opcode byte, width spi.AddressWidth, addr uint32, data []byte) error {
	if err := WriteEnable(m); err != nil {
		return err
	}
	cmd := spi.Command{Opcode: opcode, Address: addr, HasAddress: true, AddressWidth: width, IoMode: spi.Single, WriteData: data}
	if err := m.Execute(cmd); err != nil {
		return ferr.New(ferr.WriteError).WithAddr(addr).Wrap(err)
	}
	if err := WaitReady(m, 10, 10_000); err != nil {
		return ferr.New(ferr.WriteError).WithAddr(addr).Wrap(err)
	}
	return nil
}

// EraseBlock issues WREN + the given erase opcode at addr, then waits for
// WIP to clear using the caller-supplied poll/timeout band (the engine
// picks the band from the erase block size, per spec §4.4).
func EraseBlock(m programmer.SpiMaster, opcode byte, addr uint32, use4Byte bool, pollUs, timeoutUs uint32) error {
	if err := WriteEnable(m); err != nil {
		return err
	}
	width := spi.ThreeByte
	if use4Byte {
		width = spi.FourByte
	}
	cmd := spi.Command{Opcode: opcode, Address: addr, HasAddress: true, AddressWidth: width, IoMode: spi.Single}
	if err := m.Execute(cmd); err != nil {
		return ferr.New(ferr.EraseCommandFailed).WithAddr(addr).Wrap(err)
	}
	if err := WaitReady(m, pollUs, timeoutUs); err != nil {
		return ferr.New(ferr.EraseCommandFailed).WithAddr(addr).Wrap(err)
	}
	return nil
}

// ChipErase issues WREN + CE and waits with the 1 s poll / 200 s timeout
// band mandated for whole-chip erase.
func ChipErase(m programmer.SpiMaster) error {
	if err := WriteEnable(m); err != nil {
		return err
	}
	if err := m.Execute(spi.Simple(spi.CE)); err != nil {
		return ferr.New(ferr.EraseCommandFailed).Wrap(err)
	}
	return WaitReady(m, 1_000_000, 200_000_000)
}

// Enter4ByteMode issues EN4B.
func Enter4ByteMode(m programmer.SpiMaster) error {
	if err := m.Execute(spi.Simple(spi.EN4B)); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	return nil
}

// Exit4ByteMode issues EX4B.
func Exit4ByteMode(m programmer.SpiMaster) error {
	if err := m.Execute(spi.Simple(spi.EX4B)); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	return nil
}

// ReadSFDP issues RDSFDP at the given offset (always 3-byte addressed,
// per JEDEC SFDP spec, with 8 dummy cycles before the data phase) and
// checks the leading 4-byte "SFDP" signature against buf[0:4] once read.
func ReadSFDP(m programmer.SpiMaster, offset uint32, buf []byte) error {
	cmd := spi.Command{Opcode: spi.RDSFDP, Address: offset, HasAddress: true, AddressWidth: spi.ThreeByte, IoMode: spi.Single, DummyCycles: 8, ReadBuf: buf}
	if err := m.Execute(cmd); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	if len(buf) >= 4 {
		sig := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		if sig != spi.SFDPSignature {
			return ferr.New(ferr.ChipNotSupported)
		}
	}
	return nil
}

// SoftwareReset issues RSTEN, waits 50 µs, issues RST, then waits 100 µs
// for the chip to come back. It is best-effort: many older chips lack
// this pair of opcodes and will simply ignore them.
func SoftwareReset(m programmer.SpiMaster) error {
	if err := m.Execute(spi.Simple(spi.RSTEN)); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	m.DelayUs(50)
	if err := m.Execute(spi.Simple(spi.RST)); err != nil {
		return ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	m.DelayUs(100)
	return nil
}
