package flash

import (
	"testing"

	"github.com/flashkit/norflash/chip"
)

func testBlocks() []chip.EraseBlock {
	return []chip.EraseBlock{
		{Opcode: 0x20, Size: 4 << 10},
		{Opcode: 0x52, Size: 32 << 10},
		{Opcode: 0xD8, Size: 64 << 10},
	}
}

func TestPlanErasePrefersLargestBlock(t *testing.T) {
	steps, err := PlanErase(testBlocks(), 0, 64<<10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 1 || steps[0].Size != 64<<10 {
		t.Fatalf("expected a single 64K block, got %+v", steps)
	}
}

func TestPlanEraseMixedSizes(t *testing.T) {
	// 68 KiB, starting at 0: one 64K block then one 4K block.
	steps, err := PlanErase(testBlocks(), 0, 68<<10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d: %+v", len(steps), steps)
	}
	if steps[0].Size != 64<<10 || steps[0].Addr != 0 {
		t.Fatalf("unexpected first step: %+v", steps[0])
	}
	if steps[1].Size != 4<<10 || steps[1].Addr != 64<<10 {
		t.Fatalf("unexpected second step: %+v", steps[1])
	}
}

func TestPlanEraseMisalignedFails(t *testing.T) {
	_, err := PlanErase(testBlocks(), 1, 4<<10, nil)
	if err == nil {
		t.Fatal("expected InvalidAlignment error")
	}
}

func TestPlanEraseRegionClip(t *testing.T) {
	clip := &RegionClip{Start: 0, End: 64<<10 - 1}
	// requesting a 64K cover clipped to a 64K region should only ever
	// select blocks fitting inside the clip.
	steps, err := PlanErase(testBlocks(), 0, 64<<10, clip)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range steps {
		if s.Addr < clip.Start || s.Addr+s.Size-1 > clip.End {
			t.Fatalf("step %+v escapes region clip", s)
		}
	}
}

func TestPlanEraseNoCollateral(t *testing.T) {
	// An 8 KiB request must not be satisfied by a single 64K or 32K
	// block; it should decompose into 4K blocks only.
	steps, err := PlanErase(testBlocks(), 0, 8<<10, nil)
	if err != nil {
		t.Fatal(err)
	}
	var total uint32
	for _, s := range steps {
		if s.Size > 8<<10 {
			t.Fatalf("step %+v exceeds requested coverage", s)
		}
		total += s.Size
	}
	if total != 8<<10 {
		t.Fatalf("got total coverage %d, want %d", total, 8<<10)
	}
}
