// Package serial provides the host side of the wire protocol (§6): it
// opens a raw serial connection to a microcontroller-based programmer and
// exchanges length-prefixed byte frames, mirroring the way
// tinkerator-qftool opens its bootloader's serial port. Payloads are raw
// bytes: this package does not encode batch.Request or decode
// batch.Response values.
package serial

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/term"
)

// Port is an open connection to a programmer speaking the batch protocol
// over a TTY.
type Port struct {
	t      *term.Term
	reader *bufio.Reader
}

// Open opens tty at the given baud rate in raw mode, matching
// tinkerator-qftool's own term.Open(tty, term.Speed(...), term.RawMode)
// usage.
func Open(tty string, baud int) (*Port, error) {
	t, err := term.Open(tty, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("serial: unable to open %s: %w", tty, err)
	}
	return &Port{t: t, reader: bufio.NewReader(t)}, nil
}

// Close releases the underlying TTY.
func (p *Port) Close() error {
	return p.t.Close()
}

// frameHeaderLen is the size of the little-endian uint32 length prefix
// that precedes every frame on the wire.
const frameHeaderLen = 4

// WriteFrame writes one length-prefixed frame.
func (p *Port) WriteFrame(payload []byte) error {
	var header [frameHeaderLen]byte
	binary.LittleEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := p.t.Write(header[:]); err != nil {
		return fmt.Errorf("serial: write header: %w", err)
	}
	if _, err := p.t.Write(payload); err != nil {
		return fmt.Errorf("serial: write payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame.
func (p *Port) ReadFrame() ([]byte, error) {
	var header [frameHeaderLen]byte
	if _, err := io.ReadFull(p.reader, header[:]); err != nil {
		return nil, fmt.Errorf("serial: read header: %w", err)
	}
	n := binary.LittleEndian.Uint32(header[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(p.reader, payload); err != nil {
		return nil, fmt.Errorf("serial: read payload: %w", err)
	}
	return payload, nil
}
