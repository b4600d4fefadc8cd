// Package smartwrite implements the change-minimizing write pipeline: read
// current contents, diff against a target image, erase only the blocks
// that need it, program only the bytes that need it, then verify.
package smartwrite

import (
	"github.com/flashkit/norflash/ferr"
	"github.com/flashkit/norflash/flash"
	"github.com/flashkit/norflash/layout"
)

// Phase identifies which stage of a write a progress callback is
// reporting on.
type Phase int

const (
	PhaseRead Phase = iota
	PhaseErase
	PhaseWrite
	PhaseVerify
)

func (p Phase) String() string {
	switch p {
	case PhaseRead:
		return "read"
	case PhaseErase:
		return "erase"
	case PhaseWrite:
		return "write"
	case PhaseVerify:
		return "verify"
	default:
		return "unknown"
	}
}

// Progress is called after each operation within a phase. Totals are
// known before the phase begins and bytesDone never decreases within a
// phase.
type Progress func(phase Phase, bytesDone, bytesTotal uint32)

// Stats summarizes one Write call.
type Stats struct {
	BytesRead     uint32
	BytesErased   uint32
	EraseBlocks   int
	BytesWritten  uint32
	PagesWritten  int
	BytesVerified uint32
}

const defaultReadChunk = 64 * 1024

// Write brings dev to match target (implicitly 0xFF-padded to dev.Size()
// if target is shorter), restricted to lay's included regions when lay is
// non-nil, reporting progress via onProgress (which may be nil).
func Write(dev flash.Device, target []byte, lay *layout.Layout, onProgress Progress) (Stats, error) {
	var stats Stats
	size := dev.Size()

	if lay != nil {
		for _, r := range lay.ReadOnlyIncluded() {
			return stats, ferr.New(ferr.RegionProtected).WithAddr(r.Start)
		}
	}

	current := make([]byte, size)
	if err := readAll(dev, current, onProgress, &stats); err != nil {
		return stats, err
	}

	want := make([]byte, size)
	copy(want, target)
	for i := len(target); i < len(want); i++ {
		want[i] = 0xFF
	}

	changed := changeMask(current, want, lay)
	if !anySet(changed) {
		return stats, nil
	}

	eraseBlocks, err := planErases(dev, current, want, changed)
	if err != nil {
		return stats, err
	}
	if err := executeErases(dev, eraseBlocks, onProgress, &stats); err != nil {
		return stats, err
	}
	for _, eb := range eraseBlocks {
		for i := eb.Addr; i < eb.Addr+eb.Size; i++ {
			if !lay.Covers(i) {
				// Outside the included regions: put back what was there.
				want[i] = current[i]
			}
			current[i] = 0xFF
			// Every erased byte whose wanted value is not 0xFF must be
			// programmed again, whether or not it differed before the erase.
			changed[i] = want[i] != 0xFF
		}
	}

	ranges := buildWriteRanges(current, want, changed, dev)
	if err := programRanges(dev, ranges, onProgress, &stats); err != nil {
		return stats, err
	}

	if err := verify(dev, ranges, want, onProgress, &stats); err != nil {
		return stats, err
	}

	return stats, nil
}

func readAll(dev flash.Device, current []byte, onProgress Progress, stats *Stats) error {
	total := uint32(len(current))
	var done uint32
	for done < total {
		n := uint32(defaultReadChunk)
		if done+n > total {
			n = total - done
		}
		if err := dev.Read(done, current[done:done+n]); err != nil {
			return err
		}
		done += n
		stats.BytesRead = done
		report(onProgress, PhaseRead, done, total)
	}
	return nil
}

// changeMask reports, per byte, whether it differs from target and lies
// within an included region (if a layout restricts the write).
func changeMask(current, want []byte, lay *layout.Layout) []bool {
	mask := make([]bool, len(current))
	for i := range current {
		if current[i] == want[i] {
			continue
		}
		if lay != nil && !lay.Covers(uint32(i)) {
			continue
		}
		mask[i] = true
	}
	return mask
}

func anySet(mask []bool) bool {
	for _, v := range mask {
		if v {
			return true
		}
	}
	return false
}

// needsErase reports whether byte i requires its block to be erased first:
// programming can only clear bits (1->0), so any 0->1 demand (want has a
// bit set that current has clear) cannot be satisfied by programming
// alone.
func needsErase(current, want byte) bool {
	// An erase is needed wherever the target demands a bit be set (1)
	// where current has it clear (0): want & ^current != 0.
	return want&^current != 0
}

// planErases scans the change set at the chip's smallest erase granularity
// to find which minimal blocks actually need erasing (a 0->1 transition
// demand), coalesces adjacent erase-needing blocks into maximal
// granularity-aligned ranges, and hands each range to flash.PlanErase so
// the largest-block-first cover from §4.5 is reused rather than
// duplicated here.
func planErases(dev flash.Device, current, want []byte, changed []bool) ([]flash.EraseStep, error) {
	blocks := dev.EraseBlocks()
	if len(blocks) == 0 {
		return nil, nil
	}
	granularity := blocks[0].Size
	total := uint32(len(current))

	var steps []flash.EraseStep
	var rangeStart uint32
	inRange := false

	flushRange := func(end uint32) error {
		if !inRange {
			return nil
		}
		s, err := flash.PlanErase(blocks, rangeStart, end-rangeStart, nil)
		if err != nil {
			return err
		}
		steps = append(steps, s...)
		inRange = false
		return nil
	}

	for start := uint32(0); start < total; start += granularity {
		end := start + granularity
		if end > total {
			end = total
		}
		needs := blockChanged(changed, start, end) && blockNeedsErase(current, want, start, end)
		if needs {
			if !inRange {
				rangeStart = start
				inRange = true
			}
			continue
		}
		if err := flushRange(start); err != nil {
			return nil, err
		}
	}
	if err := flushRange(total); err != nil {
		return nil, err
	}
	return steps, nil
}

func blockChanged(changed []bool, start, end uint32) bool {
	for i := start; i < end; i++ {
		if changed[i] {
			return true
		}
	}
	return false
}

func blockNeedsErase(current, want []byte, start, end uint32) bool {
	for i := start; i < end; i++ {
		if needsErase(current[i], want[i]) {
			return true
		}
	}
	return false
}

func executeErases(dev flash.Device, steps []flash.EraseStep, onProgress Progress, stats *Stats) error {
	if len(steps) == 0 {
		return nil
	}
	var total uint32
	for _, s := range steps {
		total += s.Size
	}
	var done uint32
	for _, s := range steps {
		if err := dev.Erase(s.Addr, s.Size); err != nil {
			return err
		}
		done += s.Size
		stats.BytesErased = done
		stats.EraseBlocks++
		report(onProgress, PhaseErase, done, total)
	}
	return nil
}

// writeRange is a contiguous span of bytes to program, already clipped to
// a single page.
type writeRange struct {
	Addr uint32
	Data []byte
}

// buildWriteRanges groups contiguous changed bytes into page-bounded
// spans: a range starts at the first changed byte and never crosses a page
// boundary.
func buildWriteRanges(current, want []byte, changed []bool, dev flash.Device) []writeRange {
	pageSize := pageSizeOf(dev)
	var ranges []writeRange
	i := uint32(0)
	n := uint32(len(current))
	for i < n {
		if !changed[i] {
			i++
			continue
		}
		pageEnd := (i/pageSize + 1) * pageSize
		start := i
		for i < n && i < pageEnd && changed[i] {
			i++
		}
		ranges = append(ranges, writeRange{Addr: start, Data: append([]byte(nil), want[start:i]...)})
	}
	return ranges
}

func pageSizeOf(dev flash.Device) uint32 {
	if sd, ok := dev.(*flash.SpiFlashDevice); ok {
		ps := uint32(sd.Ctx.PageSize())
		if ps > 0 {
			return ps
		}
	}
	return 256
}

func programRanges(dev flash.Device, ranges []writeRange, onProgress Progress, stats *Stats) error {
	if len(ranges) == 0 {
		return nil
	}
	var total uint32
	for _, r := range ranges {
		total += uint32(len(r.Data))
	}
	var done uint32
	for _, r := range ranges {
		if err := dev.Write(r.Addr, r.Data); err != nil {
			return err
		}
		done += uint32(len(r.Data))
		stats.BytesWritten = done
		stats.PagesWritten++
		report(onProgress, PhaseWrite, done, total)
	}
	return nil
}

func verify(dev flash.Device, ranges []writeRange, want []byte, onProgress Progress, stats *Stats) error {
	if len(ranges) == 0 {
		return nil
	}
	var total uint32
	for _, r := range ranges {
		total += uint32(len(r.Data))
	}
	var done uint32
	readback := make([]byte, 0, 256)
	for _, r := range ranges {
		readback = readback[:len(r.Data)]
		if err := dev.Read(r.Addr, readback); err != nil {
			return err
		}
		for i, b := range readback {
			if b != want[r.Addr+uint32(i)] {
				return ferr.New(ferr.VerifyError).WithAddr(r.Addr + uint32(i))
			}
		}
		done += uint32(len(r.Data))
		stats.BytesVerified = done
		report(onProgress, PhaseVerify, done, total)
	}
	return nil
}

func report(onProgress Progress, phase Phase, done, total uint32) {
	if onProgress != nil {
		onProgress(phase, done, total)
	}
}
