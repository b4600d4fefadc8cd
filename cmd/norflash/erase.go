package main

import (
	"flag"

	"github.com/flashkit/norflash/flash"
)

func eraseCmd(args []string) {
	fs := flag.NewFlagSet("erase", flag.ExitOnError)
	var (
		addr     uint
		length   uint
		whole    bool
		clockMHz uint
	)
	fs.UintVar(&addr, "addr", 0, "start address")
	fs.UintVar(&length, "len", 0, "number of bytes to erase")
	fs.BoolVar(&whole, "chip", false, "erase the entire chip")
	fs.UintVar(&clockMHz, "clock", 30, "SPI clock in MHz")
	fs.Parse(args)

	sess, err := openSession(clockMHz)
	if err != nil {
		fatalf("probe failed: %v", err)
	}

	if whole {
		if err := flash.ChipErase(sess.Master, sess.Ctx); err != nil {
			fatalf("chip erase failed: %v", err)
		}
		return
	}
	if length == 0 {
		fatalUsage("erase: -len is required unless -chip is given")
	}
	if err := sess.Erase(uint32(addr), uint32(length)); err != nil {
		fatalf("erase failed: %v", err)
	}
}
