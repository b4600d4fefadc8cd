package main

import (
	"flag"
	"fmt"
	"os"
)

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func fatalUsage(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(2)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
	norflash <command> [arguments]

Commands:
	probe	 identify the attached chip
	read	 read flash memory
	write	 smart-write an image to flash
	erase	 erase an address range
	layout	 describe a layout given as -region flags
`)
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}

	switch cmd := flag.Arg(0); cmd {
	case "probe":
		probeCmd(flag.Args()[1:])
	case "read":
		readCmd(flag.Args()[1:])
	case "write":
		writeCmd(flag.Args()[1:])
	case "erase":
		eraseCmd(flag.Args()[1:])
	case "layout":
		layoutCmd(flag.Args()[1:])
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n", cmd)
		usage()
	}
}
