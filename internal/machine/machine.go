// Package machine assembles the CPU core and its memory-mapped devices
// into one runnable system and drives the fetch-decode-execute loop on a
// background goroutine.
package machine

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"rv64emu/internal/bus"
	"rv64emu/internal/clint"
	"rv64emu/internal/cpu"
	"rv64emu/internal/hexfmt"
	"rv64emu/internal/mem"
	"rv64emu/internal/memmap"
	"rv64emu/internal/plic"
	"rv64emu/internal/trapcause"
	"rv64emu/internal/uart"
	"rv64emu/internal/virtio"
)

// Machine owns the bus, every device window on it, and the CPU core, and
// runs them as a single unit.
type Machine struct {
	wg      sync.WaitGroup
	done    chan struct{}
	running bool

	Bus    *bus.Bus
	DRAM   *mem.DRAM
	CLINT  *clint.CLINT
	PLIC   *plic.PLIC
	UART   *uart.UART
	VirtIO *virtio.VirtIO
	CPU    *cpu.CPU

	// Result of the last Run(), set once the core loop returns.
	mu    sync.Mutex
	fatal *trapcause.Exception
}

// New builds a machine with dramSize bytes of DRAM and disk as the VirtIO
// block device's backing store, wires every device onto the bus at its
// fixed physical base address, and resets the CPU at the DRAM base.
// pollInput, if non-nil, is consulted by the UART's background reader
// task for host keystrokes; pass nil to drive input solely through
// UART.GuestInput.
func New(dramSize uint64, disk []byte, pollInput func() (byte, bool)) *Machine {
	b := bus.New()

	dram := mem.New(dramSize)
	c := clint.New()
	p := plic.New()
	u := uart.New(pollInput)
	v := virtio.New(disk)

	b.Register(memmap.DRAMBase, dram)
	b.Register(memmap.CLINTBase, c)
	b.Register(memmap.PLICBase, p)
	b.Register(memmap.UARTBase, u)
	b.Register(memmap.VirtIOBase, v)

	core := cpu.New(b, c, p, u, v)
	core.PC = memmap.DRAMBase
	core.Regs[2] = memmap.DRAMBase + dramSize // sp: top of DRAM

	return &Machine{
		done:   make(chan struct{}),
		Bus:    b,
		DRAM:   dram,
		CLINT:  c,
		PLIC:   p,
		UART:   u,
		VirtIO: v,
		CPU:    core,
	}
}

// LoadImage copies image into DRAM starting at the given physical
// address, which must fall within the DRAM window.
func (m *Machine) LoadImage(image []byte, at uint64) error {
	base := at - memmap.DRAMBase
	backing := m.DRAM.Bytes()
	if base > uint64(len(backing)) || base+uint64(len(image)) > uint64(len(backing)) {
		return fmt.Errorf("machine: image of %d bytes at 0x%x does not fit in %d bytes of DRAM", len(image), at, len(backing))
	}
	copy(backing[base:], image)
	return nil
}

// Run drives the core loop until the guest halts (pc reaches zero), a
// fatal exception escapes the trap unit, or Stop is called. It blocks
// until the loop exits and is meant to be called from its own goroutine
// when the caller wants to retain control of the calling goroutine (see
// Start).
func (m *Machine) Run() *trapcause.Exception {
	for {
		select {
		case <-m.done:
			return nil
		default:
		}

		halted, fatal := m.CPU.Step()
		if fatal != nil {
			slog.Error("fatal exception", "cause", fatal.Cause.String(), "tval", fmt.Sprintf("0x%x", fatal.Tval), "pc", fmt.Sprintf("0x%x", m.CPU.PC))
			m.mu.Lock()
			m.fatal = fatal
			m.mu.Unlock()
			return fatal
		}
		if halted {
			slog.Info("guest halted", "pc", m.CPU.PC)
			return nil
		}
	}
}

// Start runs the machine on a background goroutine using a wg/done
// lifecycle, so the caller's goroutine stays free for front-end I/O.
func (m *Machine) Start() {
	m.running = true
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Run()
	}()
}

// Stop signals the core loop to exit and waits up to one second for it
// to do so, then shuts down the UART's background reader task.
func (m *Machine) Stop() {
	if !m.running {
		return
	}
	close(m.done)

	waited := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(time.Second):
		slog.Warn("timed out waiting for core loop to stop")
	}
	m.UART.Shutdown()
	m.running = false
}

// FatalError returns the fatal exception that ended the last Run, if any.
func (m *Machine) FatalError() *trapcause.Exception {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fatal
}

// Snapshot renders the general registers, pc, and privilege mode as a
// hex register dump suitable for a crash report or single-step trace.
func (m *Machine) Snapshot() string {
	var b strings.Builder
	b.WriteString("pc=0x")
	hexfmt.Word64(&b, m.CPU.PC)
	fmt.Fprintf(&b, " mode=%d\n", m.CPU.Mode)
	for i := 0; i < 32; i += 4 {
		for j := i; j < i+4; j++ {
			fmt.Fprintf(&b, "x%-2d=0x", j)
			hexfmt.Word64(&b, m.CPU.Regs[j])
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
