// Package batch defines the device-side wire protocol (§4.9/§6): a batch
// of ordered operations sent to a microcontroller-based programmer in one
// request, and the executor that runs such a batch against a transaction
// interface, stopping at the first error.
package batch

import "github.com/flashkit/norflash/spi"

// ProtocolVersion identifies the wire format these types describe.
const ProtocolVersion = 1

// Default USB identifiers for a programmer speaking this protocol.
const (
	DefaultVendorID  = 0x16C0
	DefaultProductID = 0x27DD
)

// OpKind discriminates the variants of Op.
type OpKind int

const (
	OpTransact OpKind = iota
	OpDelayUs
	OpPoll
	OpSetCs
)

// SpiTransaction is a complete framed SPI command: assert CS, shift
// opcode/address/dummy/data, deassert CS.
type SpiTransaction struct {
	Opcode       byte
	HasAddress   bool
	Address      uint32
	AddressWidth spi.AddressWidth
	IoMode       spi.IoMode
	DummyCycles  byte
	WriteData    []byte
	ReadLen      int
}

// PollSpec describes a device-side poll loop: repeatedly {CS down, write
// Cmd, read one status byte, CS up} until status&Mask==Expected or
// TimeoutMs elapses.
type PollSpec struct {
	Cmd       []byte
	Mask      byte
	Expected  byte
	TimeoutMs uint32
}

// Op is one entry in a batch. Exactly one of the payload fields is valid,
// selected by Kind.
type Op struct {
	Kind  OpKind
	Tx    SpiTransaction // valid when Kind == OpTransact
	Delay uint32         // microseconds; valid when Kind == OpDelayUs
	Poll  PollSpec       // valid when Kind == OpPoll
	Cs    int            // valid when Kind == OpSetCs
}

func Transact(tx SpiTransaction) Op { return Op{Kind: OpTransact, Tx: tx} }
func DelayUs(us uint32) Op          { return Op{Kind: OpDelayUs, Delay: us} }
func Poll(spec PollSpec) Op         { return Op{Kind: OpPoll, Poll: spec} }
func SetCs(index int) Op            { return Op{Kind: OpSetCs, Cs: index} }

// ResultKind discriminates the variants of Result.
type ResultKind int

const (
	ResultData ResultKind = iota
	ResultPollOk
	ResultPollTimeout
	ResultError
)

// Result is one entry in a batch response. Only operations that produce
// data, a poll outcome, or an error contribute a Result; plain Transact-
// without-read, DelayUs and SetCs ops produce none.
type Result struct {
	Kind   ResultKind
	Data   []byte // valid when Kind == ResultData
	Status byte   // valid when Kind == ResultPollOk or ResultPollTimeout
	Err    error  // valid when Kind == ResultError
}

// Request is a batch of ops sent in one wire request.
type Request struct {
	Ops []Op
}

// Response is the executor's reply: an ordered list of Results (skipping
// ops that produced none), how many ops actually ran, and whether every
// op succeeded.
type Response struct {
	Results   []Result
	Completed int
	Success   bool
}

// DeviceInfo answers a GetInfo request.
type DeviceInfo struct {
	Name            string
	Version         uint32
	MaxTransferSize uint32
	NumCs           int
	CurrentCs       int
	SupportedModes  uint32 // bitset over spi.IoMode values
	CurrentSpeedHz  uint32
}

// SetSpeedRequest asks the device to change its SPI clock.
type SetSpeedRequest struct {
	Hz uint32
}

// SetSpeedResponse reports the actual clock the device's hardware divider
// quantized to.
type SetSpeedResponse struct {
	ActualHz uint32
}
