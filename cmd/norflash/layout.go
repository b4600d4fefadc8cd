package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/flashkit/norflash/layout"
)

// regionFlags collects repeated -region name:start:end[:ro][:dangerous]
// flags into a layout.Layout.
type regionFlags []layout.Region

func (r *regionFlags) String() string { return "" }

func (r *regionFlags) Set(val string) error {
	parts := strings.Split(val, ":")
	if len(parts) < 3 {
		return fmt.Errorf("region %q: want name:start:end[:ro][:dangerous]", val)
	}
	start, err := strconv.ParseUint(parts[1], 0, 32)
	if err != nil {
		return fmt.Errorf("region %q: bad start: %w", val, err)
	}
	end, err := strconv.ParseUint(parts[2], 0, 32)
	if err != nil {
		return fmt.Errorf("region %q: bad end: %w", val, err)
	}
	reg := layout.Region{Name: parts[0], Start: uint32(start), End: uint32(end), Included: true}
	for _, flagName := range parts[3:] {
		switch flagName {
		case "ro":
			reg.ReadOnly = true
		case "dangerous":
			reg.Dangerous = true
		}
	}
	*r = append(*r, reg)
	return nil
}

// layoutCmd describes a manually-specified layout: validates it against
// the attached chip's size and prints each region with a CRC-32 checksum
// of its current contents. Layout file formats (TOML/IFD/fmap) are out of
// scope; regions come from repeated -region flags.
func layoutCmd(args []string) {
	fs := flag.NewFlagSet("layout", flag.ExitOnError)
	var regions regionFlags
	clockMHz := fs.Uint("clock", 30, "SPI clock in MHz")
	fs.Var(&regions, "region", "name:start:end[:ro][:dangerous], repeatable")
	fs.Parse(args)

	if len(regions) == 0 {
		fatalUsage("layout: at least one -region is required")
	}

	sess, err := openSession(*clockMHz)
	if err != nil {
		fatalf("probe failed: %v", err)
	}

	lay := &layout.Layout{Source: layout.Manual, ChipSize: sess.Device.Size(), Regions: []layout.Region(regions)}
	if err := lay.Validate(sess.Device.Size()); err != nil {
		fatalf("invalid layout: %v", err)
	}

	for _, r := range lay.Regions {
		buf, err := sess.Read(r.Start, r.Size())
		if err != nil {
			fatalf("read region %q failed: %v", r.Name, err)
		}
		flags := ""
		if r.ReadOnly {
			flags += " ro"
		}
		if r.Dangerous {
			flags += " dangerous"
		}
		fmt.Printf("%-16s 0x%06X-0x%06X (%7d bytes) crc32=%08X%s\n",
			r.Name, r.Start, r.End, r.Size(), layout.Checksum(buf), flags)
	}
}
