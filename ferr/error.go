// Package ferr defines the error taxonomy shared by every layer of
// norflash: SPI transport, chip database lookup, the flash engine, and
// the layout/smart-write pipeline.
package ferr

import "fmt"

// Code identifies a class of failure. Callers match on Code via errors.Is,
// never on the formatted message.
type Code int

const (
	_ Code = iota

	// SPI layer
	SpiTransferFailed
	SpiTimeout
	OpcodeNotSupported
	IoModeNotSupported

	// Chip
	ChipNotFound
	ChipNotSupported
	JedecIdMismatch

	// Operation
	EraseCommandFailed
	EraseVerifyFailed
	WriteError
	VerifyError
	Timeout

	// Range
	AddressOutOfBounds
	InvalidAlignment
	BufferTooSmall

	// Protection
	WriteProtected
	RegionProtected

	// Programmer
	ProgrammerNotReady
	ProgrammerError

	// I/O
	ReadError
	IoError

	// Layout
	LayoutError
)

var names = map[Code]string{
	SpiTransferFailed:   "SPI transfer failed",
	SpiTimeout:          "SPI operation timed out",
	OpcodeNotSupported:  "opcode not supported by programmer",
	IoModeNotSupported:  "I/O mode not supported by programmer",
	ChipNotFound:        "flash chip not found",
	ChipNotSupported:    "flash chip not supported",
	JedecIdMismatch:     "JEDEC ID mismatch",
	EraseCommandFailed:  "erase command failed",
	EraseVerifyFailed:   "erase verify failed",
	WriteError:          "write operation failed",
	VerifyError:         "verify failed: data mismatch",
	Timeout:             "operation timed out",
	AddressOutOfBounds:  "address out of bounds",
	InvalidAlignment:    "invalid alignment",
	BufferTooSmall:      "buffer too small",
	WriteProtected:      "flash chip is write protected",
	RegionProtected:     "region is protected",
	ProgrammerNotReady:  "programmer not ready",
	ProgrammerError:     "programmer error",
	ReadError:           "read operation failed",
	IoError:             "I/O error",
	LayoutError:         "layout validation failed",
}

func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("ferr.Code(%d)", int(c))
}

// Error is a tagged error: a Code plus optional address/byte detail and an
// optional wrapped cause. Two Errors compare equal under errors.Is when
// their Codes match, regardless of detail.
type Error struct {
	Code  Code
	Addr  uint32
	Found byte
	addrSet bool
	foundSet bool
	Err   error
}

// New creates a bare tagged error with no address detail.
func New(code Code) *Error {
	return &Error{Code: code}
}

// WithAddr attaches an address to the error (e.g. the byte an erase or
// verify failed at).
func (e *Error) WithAddr(addr uint32) *Error {
	e.Addr = addr
	e.addrSet = true
	return e
}

// WithFound attaches the unexpected byte value found during a verify.
func (e *Error) WithFound(b byte) *Error {
	e.Found = b
	e.foundSet = true
	return e
}

// Wrap attaches an underlying cause, preserved by Unwrap.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func (e *Error) Error() string {
	switch {
	case e.foundSet:
		return fmt.Sprintf("%s at 0x%08X: found 0x%02X", e.Code, e.Addr, e.Found)
	case e.addrSet:
		return fmt.Sprintf("%s at 0x%08X", e.Code, e.Addr)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return e.Code.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target carries the same Code, so callers can write
// errors.Is(err, ferr.New(ferr.ChipNotFound)) without caring about detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}
