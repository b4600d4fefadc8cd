package layout

import "zappem.net/pub/debug/xcrc32"

// Checksum returns the CRC-32 of data, for quick diagnostic comparison of
// a region's expected vs. actual contents (e.g. the CLI's "layout"
// command). It is not part of the write-verification path, which
// compares bytes directly.
func Checksum(data []byte) uint32 {
	_, crc := xcrc32.NewCRC32(data)
	return crc
}
