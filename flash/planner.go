package flash

import (
	"github.com/flashkit/norflash/chip"
	"github.com/flashkit/norflash/ferr"
)

// EraseStep is one emitted erase command: the opcode to use, the base
// address, and the block size it covers.
type EraseStep struct {
	Opcode byte
	Addr   uint32
	Size   uint32
}

// RegionClip optionally bounds the planner to addresses inside
// [Start, End] (inclusive), e.g. a single layout region.
type RegionClip struct {
	Start uint32
	End   uint32
}

// PlanErase covers [addr, addr+length) with the minimum number of erase
// blocks, trying the largest block that fits at each position first. The
// blocks slice must be sorted strictly ascending by size, per the chip
// database's own invariant.
func PlanErase(blocks []chip.EraseBlock, addr, length uint32, clip *RegionClip) ([]EraseStep, error) {
	if len(blocks) == 0 {
		return nil, ferr.New(ferr.LayoutError)
	}
	granularity := blocks[0].Size
	if granularity == 0 || addr%granularity != 0 || length%granularity != 0 {
		return nil, ferr.New(ferr.InvalidAlignment).WithAddr(addr)
	}

	end := addr + length
	var steps []EraseStep
	pos := addr
	for pos < end {
		block, ok := pickBlock(blocks, pos, end, clip)
		if !ok {
			return nil, ferr.New(ferr.LayoutError).WithAddr(pos)
		}
		steps = append(steps, EraseStep{Opcode: block.Opcode, Addr: pos, Size: block.Size})
		pos += block.Size
	}
	return steps, nil
}

// pickBlock selects, from largest to smallest, the first block whose
// extent starting at pos divides pos, fits entirely inside [pos, reqEnd)
// and inside any region clip.
func pickBlock(blocks []chip.EraseBlock, pos, reqEnd uint32, clip *RegionClip) (chip.EraseBlock, bool) {
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if b.Size == 0 || pos%b.Size != 0 {
			continue
		}
		extentEnd := pos + b.Size
		if extentEnd > reqEnd {
			continue
		}
		if clip != nil && (pos < clip.Start || extentEnd-1 > clip.End) {
			continue
		}
		return b, true
	}
	return chip.EraseBlock{}, false
}
