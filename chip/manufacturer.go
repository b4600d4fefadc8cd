package chip

// Well-known JEDEC manufacturer IDs (first byte of an RDID response).
const (
	AMD         byte = 0x01
	Fujitsu     byte = 0x04
	EON         byte = 0x1C
	Atmel       byte = 0x1F
	Micron      byte = 0x20 // also ST, also XMC
	Sanyo       byte = 0x62
	Macronix    byte = 0xC2
	GigaDevice  byte = 0xC8
	SST         byte = 0xBF
	Intel       byte = 0x89
	ISSI        byte = 0x9D // also PMC
	Winbond     byte = 0xEF
)
