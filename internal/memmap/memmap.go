// Package memmap collects the fixed physical base addresses of the
// devices on the bus, matching the QEMU `virt` machine so unmodified
// guest images boot.
package memmap

const (
	CLINTBase  = 0x0200_0000
	PLICBase   = 0x0C00_0000
	UARTBase   = 0x1000_0000
	VirtIOBase = 0x1000_1000
	DRAMBase   = 0x8000_0000
)
