package cpu

import (
	"rv64emu/internal/csr"
	"rv64emu/internal/trapcause"
)

// takeTrap computes the trap cause, selects delegation, and updates
// status/epc/cause/pc for either Supervisor or Machine handling. stval/
// mtval are always cleared to 0; this core never reports a faulting
// address or instruction bits through them.
func (c *CPU) takeTrap(cause trapcause.Kind, isInterrupt bool) {
	exceptionPC := (c.PC - 4) &^ 1

	delegated := c.Mode <= Supervisor && (c.CSR.Read(csr.Medeleg)>>uint(cause))&1 != 0

	causeValue := uint64(cause)
	if isInterrupt {
		causeValue |= 1 << 63
	}

	prevMode := c.Mode

	if delegated {
		c.Mode = Supervisor
		stvec := c.CSR.Read(csr.Stvec)
		if isInterrupt && stvec&1 == 1 {
			c.PC = (stvec &^ 1) + 4*uint64(cause)
		} else {
			c.PC = stvec &^ 1
		}
		c.CSR.Write(csr.Sepc, exceptionPC)
		c.CSR.Write(csr.Scause, causeValue)
		c.CSR.Write(csr.Stval, 0)

		sstatus := c.CSR.Read(csr.Sstatus)
		sie := (sstatus >> csr.StatusSIE) & 1
		sstatus = setBit(sstatus, csr.StatusSPIE, sie)
		sstatus = setBit(sstatus, csr.StatusSIE, 0)
		spp := uint64(0)
		if prevMode != User {
			spp = 1
		}
		sstatus = setBit(sstatus, csr.StatusSPP, spp)
		c.CSR.Write(csr.Sstatus, sstatus)
		return
	}

	c.Mode = Machine
	mtvec := c.CSR.Read(csr.Mtvec)
	if isInterrupt && mtvec&1 == 1 {
		c.PC = (mtvec &^ 1) + 4*uint64(cause)
	} else {
		c.PC = mtvec &^ 1
	}
	c.CSR.Write(csr.Mepc, exceptionPC)
	c.CSR.Write(csr.Mcause, causeValue)
	c.CSR.Write(csr.Mtval, 0)

	mstatus := c.CSR.Read(csr.Mstatus)
	mie := (mstatus >> csr.StatusMIE) & 1
	mstatus = setBit(mstatus, csr.StatusMPIE, mie)
	mstatus = setBit(mstatus, csr.StatusMIE, 0)
	mstatus &^= uint64(0x3) << csr.StatusMPPShift // MPP cleared to 00
	c.CSR.Write(csr.Mstatus, mstatus)
}

func setBit(v uint64, bit uint, on uint64) uint64 {
	if on != 0 {
		return v | (1 << bit)
	}
	return v &^ (1 << bit)
}
