// Command kernel boots this repository's kernel core against a
// synthetic, flag-configurable boot environment, since this repository
// never runs on real hardware or under a real bootloader: there is no
// firmware to hand it a real BootInfo or ACPI tables. It exists to
// exercise bringup.Boot end to end and report what came up, the hosted
// equivalent of original_source/kernel/src/main.rs's kernel_main.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sonhs99/redos-go/internal/kernel/bringup"
	"github.com/sonhs99/redos-go/internal/kernel/memory/frame"
	"github.com/sonhs99/redos-go/internal/klog"
)

func run() error {
	totalFrames := flag.Uint64("frames", 4096, "simulated physical memory size, in 4 KiB frames")
	heapSize := flag.Int("heap", 1<<20, "simulated slab heap arena size, in bytes")
	cpuCount := flag.Int("cpus", 1, "simulated CPU count (1 == no application processors)")
	stackSize := flag.Uint64("stack-size", 0x4000, "per-task stack size, in bytes")
	logPath := flag.String("log", "", "record the bring-up trace as a binary klog file at this path")
	replayPath := flag.String("replay", "", "replay a klog file written by a previous -log run instead of booting")
	flag.Parse()

	if *replayPath != "" {
		return replay(*replayPath)
	}

	if *logPath != "" {
		if err := klog.OpenFile(*logPath); err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer klog.Close()
	}

	info := bringup.BootInfo{
		TotalFrames: *totalFrames,
		MemoryMap: []frame.MemoryDescriptor{
			{Type: frame.TypeConventionalMemory, PhysicalStart: 0, NumberOfPages: *totalFrames},
		},
		HeapMemory:   make([]byte, *heapSize),
		CPUCount:     *cpuCount,
		APStackStart: 0x0010_0000,
		APStackSize:  *stackSize,
		IdleEntry:    func(apicID uint8) {},
	}

	k, err := bringup.Boot(info)
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	fmt.Printf("kernel booted: %d CPU(s), %d AP(s) started, idle task id=%d\n", k.CPUCount, k.APsStarted, k.IdleTask.ID)
	return nil
}

// replay prints a previously recorded bring-up trace instead of booting,
// the post-mortem counterpart to -log: read back what happened on a run
// that already finished (or crashed) rather than re-running it.
func replay(path string) error {
	r, closer, err := klog.NewReaderFromFile(path)
	if err != nil {
		return fmt.Errorf("open replay log: %w", err)
	}
	defer closer.Close()

	return r.Each(func(ts time.Time, kind klog.EntryKind, source string, data []byte) error {
		fmt.Printf("%s [%s] %s\n", ts.Format(time.RFC3339Nano), source, data)
		return nil
	})
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "kernel: %v\n", err)
		os.Exit(1)
	}
}
