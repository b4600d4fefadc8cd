package chip

import "strings"

// Database is a read-only, indexed collection of FlashChip records. The
// zero value is not usable; construct with NewDatabase or use Default().
type Database struct {
	chips []FlashChip
	byID  map[uint32]*FlashChip
}

// NewDatabase builds a Database from a set of chip records. It is the
// caller's responsibility to pass records with strictly ascending
// EraseBlocks and unique JEDEC IDs; for a duplicate ID, ID lookup returns
// the first record and silently ignores later ones.
func NewDatabase(chips []FlashChip) *Database {
	db := &Database{chips: chips, byID: make(map[uint32]*FlashChip, len(chips))}
	for i := range db.chips {
		c := &db.chips[i]
		if _, exists := db.byID[c.JedecID()]; !exists {
			db.byID[c.JedecID()] = c
		}
	}
	return db
}

// FindByJedecID returns the chip matching (mfr, device), or false if none
// is known.
func (db *Database) FindByJedecID(mfr byte, device uint16) (*FlashChip, bool) {
	id := uint32(mfr)<<16 | uint32(device)
	c, ok := db.byID[id]
	return c, ok
}

// FindByName returns every chip whose name contains the given substring,
// case-insensitively.
func (db *Database) FindByName(substr string) []*FlashChip {
	needle := strings.ToLower(substr)
	var out []*FlashChip
	for i := range db.chips {
		c := &db.chips[i]
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// FindByVendor returns every chip whose vendor contains the given
// substring, case-insensitively.
func (db *Database) FindByVendor(substr string) []*FlashChip {
	needle := strings.ToLower(substr)
	var out []*FlashChip
	for i := range db.chips {
		c := &db.chips[i]
		if strings.Contains(strings.ToLower(c.Vendor), needle) {
			out = append(out, c)
		}
	}
	return out
}

// All returns every chip in the database, in declaration order.
func (db *Database) All() []FlashChip {
	return db.chips
}

var defaultDB = NewDatabase(seedChips)

// Default returns the package-level seed database: a small, hand-written
// table (not generated) covering the emulator chip used by the smart-write
// test properties plus a couple of real chips named in the teacher's own
// `knownFlash`/`knownFlashIDs` tables.
func Default() *Database { return defaultDB }

// seedChips is intentionally small: the on-disk chip database format and
// its code generator are out of scope for this module (see SPEC_FULL.md).
var seedChips = []FlashChip{
	{
		Vendor:            "Winbond",
		Name:              "W25Q128FV",
		JedecManufacturer: Winbond,
		JedecDevice:       0x4018,
		TotalSize:         16 << 20,
		PageSize:          256,
		Features: WrsrWren | FastRead | DualIO | QuadIO | FourByteEnter |
			SFDP | Erase4K | Erase32K | Erase64K | StatusReg2 | QeSR2,
		VoltageMinMV:     2700,
		VoltageMaxMV:     3600,
		WriteGranularity: WritePage,
		EraseBlocks: []EraseBlock{
			{Opcode: 0x20, Size: 4 << 10},
			{Opcode: 0x52, Size: 32 << 10},
			{Opcode: 0xD8, Size: 64 << 10},
		},
		Tested: ChipTestStatus{Probe: Ok, Read: Ok, Erase: Ok, Write: Ok, WP: Untested},
	},
	{
		// Distinct from W25Q128FV above: Winbond's JV revision reports
		// 0x6018 under QPI/continuous-read identification, the value its
		// own datasheet gives to tell it apart from the FV part despite
		// the shared "W25Q128" marketing name.
		Vendor:            "Winbond",
		Name:              "W25Q128JV",
		JedecManufacturer: Winbond,
		JedecDevice:       0x6018,
		TotalSize:         16 << 20,
		PageSize:          256,
		Features: WrsrWren | FastRead | DualIO | QuadIO | FourByteEnter |
			SFDP | Erase4K | Erase32K | Erase64K | StatusReg2 | QeSR2,
		VoltageMinMV:     2700,
		VoltageMaxMV:     3600,
		WriteGranularity: WritePage,
		EraseBlocks: []EraseBlock{
			{Opcode: 0x20, Size: 4 << 10},
			{Opcode: 0x52, Size: 32 << 10},
			{Opcode: 0xD8, Size: 64 << 10},
		},
		Tested: ChipTestStatus{Probe: Ok, Read: Ok, Erase: Ok, Write: Ok, WP: Untested},
	},
	{
		Vendor:            "Micron",
		Name:              "N25Q032",
		JedecManufacturer: Micron,
		JedecDevice:       0xBA16,
		TotalSize:         4 << 20,
		PageSize:          256,
		Features:          WrsrWren | FastRead | DualIO | QuadIO | Erase4K | Erase64K,
		VoltageMinMV:      2700,
		VoltageMaxMV:      3600,
		WriteGranularity:  WritePage,
		EraseBlocks: []EraseBlock{
			{Opcode: 0x20, Size: 4 << 10},
			{Opcode: 0xD8, Size: 64 << 10},
		},
		Tested: ChipTestStatus{Probe: Ok, Read: Ok, Erase: Untested, Write: Untested, WP: Untested},
	},
	{
		// 32 MiB variant used to exercise the 4-byte-addressing path
		// (spec.md testable property 9).
		Vendor:            "Winbond",
		Name:              "W25Q256JV",
		JedecManufacturer: Winbond,
		JedecDevice:       0x4019,
		TotalSize:         32 << 20,
		PageSize:          256,
		Features: WrsrWren | FastRead | DualIO | QuadIO | FourByteAddr |
			FourByteEnter | SFDP | Erase4K | Erase32K | Erase64K | StatusReg2 | QeSR2,
		VoltageMinMV:     2700,
		VoltageMaxMV:     3600,
		WriteGranularity: WritePage,
		EraseBlocks: []EraseBlock{
			{Opcode: 0x20, Size: 4 << 10},
			{Opcode: 0x52, Size: 32 << 10},
			{Opcode: 0xD8, Size: 64 << 10},
		},
		Tested: ChipTestStatus{Probe: Ok, Read: Ok, Erase: Untested, Write: Untested, WP: Untested},
	},
}
