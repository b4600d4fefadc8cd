package spi

// Standard JEDEC SPI-NOR opcodes. Values are bit-exact with the JESD216
// family and with common manufacturer datasheets.
const (
	WREN   = 0x06 // Write enable
	WRDI   = 0x04 // Write disable
	RDSR   = 0x05 // Read status register 1
	RDSR2  = 0x35 // Read status register 2
	RDSR3  = 0x15 // Read status register 3
	WRSR   = 0x01 // Write status register
	RDID   = 0x9F // Read JEDEC ID (3 bytes: mfr, devH, devL)
	READ   = 0x03 // Read, 3-byte address
	READ4B = 0x13 // Read, 4-byte address
	FAST_READ = 0x0B // Fast read, 8 dummy cycles
	PP     = 0x02 // Page program, 3-byte address
	PP4B   = 0x12 // Page program, 4-byte address
	SE4K   = 0x20 // Sector erase (4 KiB), 3-byte address
	SE4K4B = 0x21 // Sector erase (4 KiB), 4-byte address
	BE32K  = 0x52 // Block erase, 32 KiB
	BE64K  = 0xD8 // Block erase, 64 KiB
	CE     = 0xC7 // Chip erase
	EN4B   = 0xB7 // Enter 4-byte address mode
	EX4B   = 0xE9 // Exit 4-byte address mode
	RDSFDP = 0x5A // Read SFDP, 3-byte address, 8 dummy cycles
	RSTEN  = 0x66 // Enable reset
	RST    = 0x99 // Reset

	// Status register 1 bits.
	SR1WIP = 1 << 0 // Write In Progress
	SR1WEL = 1 << 1 // Write Enable Latch
)

// SFDPSignature is "SFDP" as a little-endian uint32, found at offset 0 of
// the SFDP parameter table.
const SFDPSignature = 0x50444653
