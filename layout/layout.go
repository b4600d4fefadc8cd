// Package layout models a named partitioning of a flash chip's address
// space into regions, with include/exclude selection used to restrict
// reads, writes and the smart-write pipeline's change set.
package layout

import (
	"strings"

	"github.com/flashkit/norflash/ferr"
)

// Source identifies where a Layout was parsed from. Only the shape is
// specified here; the concrete parsers (TOML, Intel Flash Descriptor,
// fmap) are out of scope for this module.
type Source int

const (
	Manual Source = iota
	Toml
	Ifd
	Fmap
)

// Region is one named, non-overlapping span of a chip's address space.
type Region struct {
	Name      string
	Start     uint32
	End       uint32 // inclusive
	ReadOnly  bool
	Dangerous bool
	Included  bool
}

// Size returns the region's length in bytes.
func (r Region) Size() uint32 { return r.End - r.Start + 1 }

// Contains reports whether addr falls within this region.
func (r Region) Contains(addr uint32) bool { return addr >= r.Start && addr <= r.End }

// Layout is an ordered collection of regions describing one chip's
// partitioning.
type Layout struct {
	Name     string
	ChipSize uint32
	Source   Source
	Regions  []Region
}

// Validate checks bounds, overlap, and name-uniqueness against chipSize.
// It returns the first violation found.
func (l *Layout) Validate(chipSize uint32) error {
	seen := make(map[string]bool, len(l.Regions))
	for i, r := range l.Regions {
		if r.Start > r.End {
			return ferr.New(ferr.LayoutError).WithAddr(r.Start)
		}
		if uint32(r.End) >= chipSize {
			return ferr.New(ferr.LayoutError).WithAddr(r.End)
		}
		key := strings.ToLower(r.Name)
		if seen[key] {
			return ferr.New(ferr.LayoutError)
		}
		seen[key] = true
		for j := 0; j < i; j++ {
			other := l.Regions[j]
			if r.Start <= other.End && other.Start <= r.End {
				return ferr.New(ferr.LayoutError).WithAddr(r.Start)
			}
		}
	}
	return nil
}

// Find returns the region with the given name (case-insensitive), if any.
func (l *Layout) Find(name string) (*Region, bool) {
	needle := strings.ToLower(name)
	for i := range l.Regions {
		if strings.ToLower(l.Regions[i].Name) == needle {
			return &l.Regions[i], true
		}
	}
	return nil, false
}

// IncludeByName sets Included = true on the named region.
func (l *Layout) IncludeByName(name string) bool {
	if r, ok := l.Find(name); ok {
		r.Included = true
		return true
	}
	return false
}

// ExcludeByName sets Included = false on the named region.
func (l *Layout) ExcludeByName(name string) bool {
	if r, ok := l.Find(name); ok {
		r.Included = false
		return true
	}
	return false
}

// IncludeAll sets Included = true on every region.
func (l *Layout) IncludeAll() {
	for i := range l.Regions {
		l.Regions[i].Included = true
	}
}

// ExcludeAll sets Included = false on every region.
func (l *Layout) ExcludeAll() {
	for i := range l.Regions {
		l.Regions[i].Included = false
	}
}

// Included returns every region currently marked Included, in layout
// order.
func (l *Layout) Included() []Region {
	var out []Region
	for _, r := range l.Regions {
		if r.Included {
			out = append(out, r)
		}
	}
	return out
}

// DangerousIncluded returns every included region also marked Dangerous.
func (l *Layout) DangerousIncluded() []Region {
	var out []Region
	for _, r := range l.Regions {
		if r.Included && r.Dangerous {
			out = append(out, r)
		}
	}
	return out
}

// ReadOnlyIncluded returns every included region also marked ReadOnly.
func (l *Layout) ReadOnlyIncluded() []Region {
	var out []Region
	for _, r := range l.Regions {
		if r.Included && r.ReadOnly {
			out = append(out, r)
		}
	}
	return out
}

// Covers reports whether addr falls inside any included region. A nil
// Layout covers every address (no restriction).
func (l *Layout) Covers(addr uint32) bool {
	if l == nil {
		return true
	}
	for _, r := range l.Regions {
		if r.Included && r.Contains(addr) {
			return true
		}
	}
	return false
}
