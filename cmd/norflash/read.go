package main

import (
	"flag"
	"os"

	"zappem.net/pub/debug/xxd"
)

func readCmd(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	var (
		addr     uint
		length   uint
		outFile  string
		clockMHz uint
	)
	fs.UintVar(&addr, "addr", 0, "start address")
	fs.UintVar(&length, "len", 256, "number of bytes to read")
	fs.StringVar(&outFile, "o", "", "output file (default: hex dump to stdout)")
	fs.UintVar(&clockMHz, "clock", 30, "SPI clock in MHz")
	fs.Parse(args)

	sess, err := openSession(clockMHz)
	if err != nil {
		fatalf("probe failed: %v", err)
	}

	buf, err := sess.Read(uint32(addr), uint32(length))
	if err != nil {
		fatalf("read failed: %v", err)
	}

	if outFile == "" {
		xxd.Print(int(addr), buf)
		return
	}
	if err := os.WriteFile(outFile, buf, 0644); err != nil {
		fatalf("write file failed: %v", err)
	}
}
