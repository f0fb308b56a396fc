package cpu

import (
	"rv64emu/internal/csr"
	"rv64emu/internal/memmap"
	"rv64emu/internal/plic"
	"rv64emu/internal/trapcause"
	"rv64emu/internal/uart"
	"rv64emu/internal/virtio"
)

// checkPendingInterrupt is gated by the current mode's global
// interrupt-enable bit; it polls UART/VirtIO, routes a device interrupt
// through the PLIC, then resolves priority among mie&mip.
func (c *CPU) checkPendingInterrupt() (trapcause.Kind, bool) {
	switch c.Mode {
	case Machine:
		if (c.CSR.Read(csr.Mstatus)>>csr.StatusMIE)&1 == 0 {
			return 0, false
		}
	case Supervisor:
		if (c.CSR.Read(csr.Sstatus)>>csr.StatusSIE)&1 == 0 {
			return 0, false
		}
	}

	var irq uint32
	if c.UART.IsInterrupting() {
		irq = uart.IRQ
	} else if c.VirtIO.IsInterrupting() {
		c.VirtIO.DiskAccess(c.Bus)
		irq = virtio.IRQ
	}

	if irq != 0 {
		_ = c.Bus.Store(memmap.PLICBase+plic.SclaimOffset, 32, uint64(irq))
		mip := c.CSR.Read(csr.Mip) | csr.SEIP
		c.CSR.Write(csr.Mip, mip)
	}

	pending := c.CSR.Read(csr.Mie) & c.CSR.Read(csr.Mip)

	for _, k := range []struct {
		kind trapcause.Kind
		bit  uint64
	}{
		{trapcause.MachineExternal, csr.MEIP},
		{trapcause.MachineSoftware, csr.MSIP},
		{trapcause.MachineTimer, csr.MTIP},
		{trapcause.SupervisorExternal, csr.SEIP},
		{trapcause.SupervisorSoftware, csr.SSIP},
		{trapcause.SupervisorTimer, csr.STIP},
	} {
		if pending&k.bit != 0 {
			c.CSR.Write(csr.Mip, c.CSR.Read(csr.Mip)&^k.bit)
			return k.kind, true
		}
	}
	return 0, false
}
