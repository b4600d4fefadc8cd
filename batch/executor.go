package batch

import "github.com/flashkit/norflash/ferr"

// Transport is the low-level interface an Executor drives: assert/deassert
// a chip-select line, shift one full-duplex buffer, and sleep. A firmware
// implementation backs this with real MMIO/GPIO; emulator.Dummy can also
// satisfy a thin adapter of this for host-side batch testing.
type Transport interface {
	SelectCs(index int) error
	Assert() error
	Deassert() error
	Transfer(out, in []byte) error
	Sleep(us uint32)
}

// Executor runs a Request against a Transport, stopping at the first
// error per §4.9.
type Executor struct {
	t Transport
}

func NewExecutor(t Transport) *Executor {
	return &Executor{t: t}
}

// Run executes ops in order, returning a Response whose Results list
// contains only operations that produced data, a poll outcome, or an
// error. Execution stops at the first error encountered.
func (e *Executor) Run(req Request) Response {
	var resp Response
	for _, op := range req.Ops {
		result, err := e.runOne(op)
		resp.Completed++
		if err != nil {
			resp.Results = append(resp.Results, Result{Kind: ResultError, Err: err})
			resp.Success = false
			return resp
		}
		if result != nil {
			resp.Results = append(resp.Results, *result)
		}
	}
	resp.Success = true
	return resp
}

func (e *Executor) runOne(op Op) (*Result, error) {
	switch op.Kind {
	case OpSetCs:
		if err := e.t.SelectCs(op.Cs); err != nil {
			return nil, ferr.New(ferr.ProgrammerError).Wrap(err)
		}
		return nil, nil

	case OpDelayUs:
		e.t.Sleep(op.Delay)
		return nil, nil

	case OpTransact:
		return e.transact(op.Tx)

	case OpPoll:
		return e.poll(op.Poll)

	default:
		return nil, ferr.New(ferr.ProgrammerError)
	}
}

func (e *Executor) transact(tx SpiTransaction) (*Result, error) {
	header := 1
	if tx.HasAddress {
		header += tx.AddressWidth.Bytes()
	}
	dummy := int(tx.DummyCycles) / 8
	dataLen := len(tx.WriteData)
	if tx.ReadLen > dataLen {
		dataLen = tx.ReadLen
	}

	buf := make([]byte, header+dummy+dataLen)
	buf[0] = tx.Opcode
	if tx.HasAddress {
		tx.AddressWidth.Encode(tx.Address, buf[1:1+tx.AddressWidth.Bytes()])
	}
	copy(buf[header+dummy:], tx.WriteData)

	if err := e.t.Assert(); err != nil {
		return nil, ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	err := e.t.Transfer(buf, buf)
	deassertErr := e.t.Deassert()
	if err != nil {
		return nil, ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	if deassertErr != nil {
		return nil, ferr.New(ferr.SpiTransferFailed).Wrap(deassertErr)
	}

	if tx.ReadLen > 0 {
		data := make([]byte, tx.ReadLen)
		copy(data, buf[header+dummy:])
		return &Result{Kind: ResultData, Data: data}, nil
	}
	return nil, nil
}

func (e *Executor) poll(spec PollSpec) (*Result, error) {
	const stepUs = 1000
	var waited uint32
	for {
		status, err := e.pollOnce(spec.Cmd)
		if err != nil {
			return nil, err
		}
		if status&spec.Mask == spec.Expected {
			return &Result{Kind: ResultPollOk, Status: status}, nil
		}
		if waited >= spec.TimeoutMs*1000 {
			return &Result{Kind: ResultPollTimeout, Status: status}, nil
		}
		e.t.Sleep(stepUs)
		waited += stepUs
	}
}

func (e *Executor) pollOnce(cmd []byte) (byte, error) {
	buf := make([]byte, len(cmd)+1)
	copy(buf, cmd)
	if err := e.t.Assert(); err != nil {
		return 0, ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	err := e.t.Transfer(buf, buf)
	deassertErr := e.t.Deassert()
	if err != nil {
		return 0, ferr.New(ferr.SpiTransferFailed).Wrap(err)
	}
	if deassertErr != nil {
		return 0, ferr.New(ferr.SpiTransferFailed).Wrap(deassertErr)
	}
	return buf[len(buf)-1], nil
}
