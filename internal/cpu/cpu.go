// Package cpu implements the RV64I core: 32 general registers, the CSR
// file, pc, current privilege mode, and the fetch/decode/execute/interrupt
// loop.
package cpu

import (
	"rv64emu/internal/bus"
	"rv64emu/internal/clint"
	"rv64emu/internal/csr"
	"rv64emu/internal/decode"
	"rv64emu/internal/mmu"
	"rv64emu/internal/plic"
	"rv64emu/internal/trapcause"
	"rv64emu/internal/uart"
	"rv64emu/internal/virtio"
)

// Mode is the current privilege level.
type Mode int

const (
	User       Mode = 0
	Supervisor Mode = 1
	Machine    Mode = 3
)

// CPU is the architectural state owned by the main loop.
type CPU struct {
	Regs [32]uint64
	PC   uint64
	Mode Mode

	CSR *csr.File

	Bus    *bus.Bus
	CLINT  *clint.CLINT
	PLIC   *plic.PLIC
	UART   *uart.UART
	VirtIO *virtio.VirtIO
}

// New returns a CPU in the reset state: Machine mode, pc and registers
// zero. The caller sets PC/Regs[2] after loading an image.
func New(b *bus.Bus, c *clint.CLINT, p *plic.PLIC, u *uart.UART, v *virtio.VirtIO) *CPU {
	return &CPU{
		Mode:   Machine,
		CSR:    csr.New(),
		Bus:    b,
		CLINT:  c,
		PLIC:   p,
		UART:   u,
		VirtIO: v,
	}
}

// clampX0 re-establishes x0 == 0. Called before and
// after every instruction.
func (c *CPU) clampX0() {
	c.Regs[0] = 0
}

// reg reads general register i (x0 always reads zero).
func (c *CPU) reg(i uint32) uint64 {
	if i == 0 {
		return 0
	}
	return c.Regs[i]
}

// setReg writes general register i, discarding writes to x0.
func (c *CPU) setReg(i uint32, v uint64) {
	if i != 0 {
		c.Regs[i] = v
	}
}

// tickTimer advances the CLINT's free-running counter and reflects its
// comparison against mtimecmp into mip.MTIP, so a guest that never
// touches the CLINT registers directly still observes timer interrupts.
func (c *CPU) tickTimer() {
	c.CLINT.Tick()
	mip := c.CSR.Read(csr.Mip)
	if c.CLINT.TimerPending() {
		mip |= csr.MTIP
	} else {
		mip &^= csr.MTIP
	}
	c.CSR.Write(csr.Mip, mip)
}

// fetch reads the 32-bit instruction word at pc through the MMU and bus.
func (c *CPU) fetch() (uint32, *trapcause.Exception) {
	if c.PC%4 != 0 {
		return 0, trapcause.NewWithTval(trapcause.InstructionAddressMisaligned, c.PC)
	}
	pa, exc := mmu.Translate(c.Bus, c.CSR, c.PC, mmu.Instruction)
	if exc != nil {
		return 0, exc
	}
	word, exc := c.Bus.Load(pa, 32)
	if exc != nil {
		return 0, trapcause.New(trapcause.InstructionAccessFault)
	}
	return uint32(word), nil
}

// Step runs exactly one tick of the control flow: fetch, advance pc,
// decode, execute, poll for a pending interrupt, and enter the trap unit
// if one (or a synchronous exception) occurred.
//
// It returns halted=true when pc==0 and fatal!=nil when a fatal
// exception was taken.
func (c *CPU) Step() (halted bool, fatal *trapcause.Exception) {
	c.clampX0()
	c.tickTimer()

	word, exc := c.fetch()
	c.PC += 4 // fetch always advances pc; trap entry reconstructs pc-4
	if exc == nil {
		ins := decode.Decode(word)
		exc = c.execute(ins)
	}

	if exc != nil {
		c.takeTrap(exc.Cause, false)
		c.clampX0()
		if exc.Cause.Fatal() {
			return false, exc
		}
		return c.PC == 0, nil
	}

	if cause, ok := c.checkPendingInterrupt(); ok {
		c.takeTrap(cause, true)
	}

	c.clampX0()
	return c.PC == 0, nil
}
