package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/flashkit/norflash/smartwrite"
)

func writeCmd(args []string) {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	var (
		inFile   string
		clockMHz uint
		quiet    bool
	)
	fs.StringVar(&inFile, "i", "", "image file to write (required)")
	fs.UintVar(&clockMHz, "clock", 30, "SPI clock in MHz")
	fs.BoolVar(&quiet, "quiet", false, "suppress progress output")
	fs.Parse(args)

	if inFile == "" {
		fatalUsage("write: -i is required")
	}

	image, err := os.ReadFile(inFile)
	if err != nil {
		fatalf("read image failed: %v", err)
	}

	sess, err := openSession(clockMHz)
	if err != nil {
		fatalf("probe failed: %v", err)
	}

	var progress smartwrite.Progress
	if !quiet {
		progress = func(phase smartwrite.Phase, done, total uint32) {
			fmt.Fprintf(os.Stderr, "\r%-7s %8d / %8d", phase, done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	stats, err := sess.SmartWrite(image, nil, progress)
	if err != nil {
		fatalf("write failed: %v", err)
	}
	fmt.Printf("read %d, erased %d (%d blocks), wrote %d (%d pages), verified %d\n",
		stats.BytesRead, stats.BytesErased, stats.EraseBlocks, stats.BytesWritten, stats.PagesWritten, stats.BytesVerified)
}
