package chip

// Features is a bitset describing what capabilities and behaviors a flash
// chip has. Named and ordered after the teacher's own StatusRegister-style
// bit accessors (gice's flash.go), generalized to a full chip feature set.
type Features uint32

const (
	WrsrWren Features = 1 << iota
	WrsrEwsr
	WrsrExt
	FastRead
	DualIO
	QuadIO
	FourByteAddr
	FourByteEnter
	FourByteNative
	ExtAddrReg
	OTP
	QPI
	SecurityReg
	SFDP
	ByteProgram
	AaiWord
	Erase4K
	Erase32K
	Erase64K
	StatusReg2
	StatusReg3
	QeSR2
	DeepPowerDown
	WpTB
	WpSec
	WpCmp
	WpSRL
	WpVolatile
	WpBP3
	WpWPS
)

// Has reports whether all bits in want are set.
func (f Features) Has(want Features) bool { return f&want == want }

// Any reports whether any bit in want is set.
func (f Features) Any(want Features) bool { return f&want != 0 }
