package layout

import "testing"

func testLayout() *Layout {
	return &Layout{
		Name:     "test",
		ChipSize: 1 << 20,
		Regions: []Region{
			{Name: "bootloader", Start: 0, End: 0xFFFF, ReadOnly: true, Included: true},
			{Name: "app", Start: 0x10000, End: 0x8FFFF, Included: true},
			{Name: "config", Start: 0x90000, End: 0x9FFFF, Dangerous: true, Included: false},
		},
	}
}

func TestValidateAcceptsNonOverlapping(t *testing.T) {
	if err := testLayout().Validate(1 << 20); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	l := testLayout()
	l.Regions[1].Start = 0 // now overlaps bootloader
	if err := l.Validate(1 << 20); err == nil {
		t.Fatal("expected overlap to be rejected")
	}
}

func TestValidateRejectsOutOfBounds(t *testing.T) {
	l := testLayout()
	l.Regions[2].End = 2 << 20
	if err := l.Validate(1 << 20); err == nil {
		t.Fatal("expected out-of-bounds region to be rejected")
	}
}

func TestValidateRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	l := testLayout()
	l.Regions = append(l.Regions, Region{Name: "APP", Start: 0xA0000, End: 0xAFFFF})
	if err := l.Validate(1 << 20); err == nil {
		t.Fatal("expected duplicate region name to be rejected")
	}
}

func TestFindCaseInsensitive(t *testing.T) {
	l := testLayout()
	r, ok := l.Find("BOOTLOADER")
	if !ok || r.Name != "bootloader" {
		t.Fatal("expected case-insensitive region lookup to succeed")
	}
}

func TestIncludeExcludeByName(t *testing.T) {
	l := testLayout()
	if !l.IncludeByName("config") {
		t.Fatal("expected config region to exist")
	}
	if len(l.DangerousIncluded()) != 1 {
		t.Fatal("config should now be included and dangerous")
	}
	l.ExcludeByName("config")
	if len(l.DangerousIncluded()) != 0 {
		t.Fatal("config should no longer be included")
	}
}

func TestIncludeAllExcludeAll(t *testing.T) {
	l := testLayout()
	l.ExcludeAll()
	if len(l.Included()) != 0 {
		t.Fatal("ExcludeAll should clear every inclusion")
	}
	l.IncludeAll()
	if len(l.Included()) != len(l.Regions) {
		t.Fatal("IncludeAll should include every region")
	}
}

func TestReadOnlyIncluded(t *testing.T) {
	l := testLayout()
	ro := l.ReadOnlyIncluded()
	if len(ro) != 1 || ro[0].Name != "bootloader" {
		t.Fatalf("expected only bootloader to be read-only and included, got %+v", ro)
	}
}

func TestCoversRespectsInclusion(t *testing.T) {
	l := testLayout()
	if !l.Covers(0x100) {
		t.Fatal("bootloader is included and should be covered")
	}
	if l.Covers(0x90000) {
		t.Fatal("config is excluded and should not be covered")
	}
}

func TestNilLayoutCoversEverything(t *testing.T) {
	var l *Layout
	if !l.Covers(0xDEADBEEF) {
		t.Fatal("nil layout should cover every address")
	}
}
