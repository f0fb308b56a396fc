// Command rv64emu boots a raw RV64 binary image against an emulated
// virt-style machine: DRAM, CLINT, PLIC, UART, and an optional VirtIO
// disk image.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"rv64emu/internal/machine"
	"rv64emu/internal/memmap"
	"rv64emu/internal/obslog"
)

func main() {
	optImage := getopt.StringLong("image", 'i', "", "Binary image to load at the boot address")
	optDisk := getopt.StringLong("disk", 'd', "", "Raw disk image for the VirtIO block device")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optMemMiB := getopt.Uint64Long("mem", 'm', 128, "DRAM size in MiB")
	optBootAddr := getopt.Uint64Long("boot-addr", 'b', memmap.DRAMBase, "Physical address the boot image is loaded at and pc starts from")
	optVerbose := getopt.BoolLong("verbose", 'v', "Echo every log record to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile *os.File
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rv64emu: %v\n", err)
			os.Exit(1)
		}
		logFile = f
		defer logFile.Close()
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	logger := slog.New(obslog.New(logFile, programLevel, *optVerbose))
	slog.SetDefault(logger)

	if *optImage == "" {
		slog.Error("no boot image given; use -image")
		os.Exit(1)
	}
	image, err := os.ReadFile(*optImage)
	if err != nil {
		slog.Error("reading boot image", "error", err)
		os.Exit(1)
	}

	var disk []byte
	if *optDisk != "" {
		disk, err = os.ReadFile(*optDisk)
		if err != nil {
			slog.Error("reading disk image", "error", err)
			os.Exit(1)
		}
	}

	m := machine.New(*optMemMiB*1024*1024, disk, nil)
	if err := m.LoadImage(image, *optBootAddr); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	m.CPU.PC = *optBootAddr

	slog.Info("rv64emu starting", "image", *optImage, "mem_mib", *optMemMiB, "boot_addr", fmt.Sprintf("0x%x", *optBootAddr))
	m.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")
	m.Stop()

	if fatal := m.FatalError(); fatal != nil {
		slog.Error("machine halted on fatal exception", "cause", fatal.Cause.String())
		fmt.Fprintln(os.Stderr, m.Snapshot())
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, m.Snapshot())
}
