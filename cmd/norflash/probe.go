package main

import (
	"flag"
	"fmt"
)

func probeCmd(args []string) {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	clockMHz := fs.Uint("clock", 30, "SPI clock in MHz")
	fs.Parse(args)

	sess, err := openSession(*clockMHz)
	if err != nil {
		fatalf("probe failed: %v", err)
	}

	c := sess.Chip()
	fmt.Printf("%s %s\n", c.Vendor, c.Name)
	fmt.Printf("JEDEC ID: %06X\n", c.JedecID())
	fmt.Printf("Size: %d bytes (%d KiB)\n", c.TotalSize, c.TotalSize/1024)
	fmt.Printf("Page size: %d bytes\n", c.PageSize)
	if sess.Ctx.Uses4ByteOpcodes() {
		fmt.Println("Address mode: 4-byte")
	} else {
		fmt.Println("Address mode: 3-byte")
	}
}
