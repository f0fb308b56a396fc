// Package csr implements the 4096-slot control and status register file,
// including the sie/mie/mideleg aliasing and the paging-state recompute
// that every write triggers.
package csr

// Architectural CSR addresses recognized by this emulator.
const (
	Sstatus = 0x100
	Sie     = 0x104
	Stvec   = 0x105
	Sepc    = 0x141
	Scause  = 0x142
	Stval   = 0x143
	Sip     = 0x144
	Satp    = 0x180

	Mstatus = 0x300
	Misa    = 0x301
	Medeleg = 0x302
	Mideleg = 0x303
	Mie     = 0x304
	Mtvec   = 0x305
	Mepc    = 0x341
	Mcause  = 0x342
	Mtval   = 0x343
	Mip     = 0x344
)

// mstatus / sstatus bit positions used by this emulator.
const (
	StatusSIE  = 1
	StatusMIE  = 3
	StatusSPIE = 5
	StatusMPIE = 7
	StatusSPP  = 8
	StatusMPPShift = 11
)

// mip/mie bit positions, matching the trapcause interrupt numbering.
const (
	SSIP = 1 << 1
	MSIP = 1 << 3
	STIP = 1 << 5
	MTIP = 1 << 7
	SEIP = 1 << 9
	MEIP = 1 << 11
)

// File is the 4096-entry CSR backing store.
type File struct {
	regs          [4096]uint64
	pagingEnabled bool
	pageTable     uint64
}

// New returns a CSR file with every slot zeroed.
func New() *File {
	return &File{}
}

// Read returns the current value of csr, applying the sie/mie/mideleg
// alias.
func (f *File) Read(addr uint16) uint64 {
	if addr == Sie {
		return f.regs[Mie] & f.regs[Mideleg]
	}
	return f.regs[addr&0xfff]
}

// Write sets csr to value, aliasing sie into mie and recomputing the
// paging-enabled flag from satp afterward.
func (f *File) Write(addr uint16, value uint64) {
	a := addr & 0xfff
	if a == Sie {
		deleg := f.regs[Mideleg]
		f.regs[Mie] = (f.regs[Mie] &^ deleg) | (value & deleg)
	} else {
		f.regs[a] = value
	}
	f.refreshPaging()
}

func (f *File) refreshPaging() {
	satp := f.regs[Satp]
	const ppnMask = (uint64(1) << 44) - 1
	f.pagingEnabled = (satp >> 60) == 8
	f.pageTable = (satp & ppnMask) << 12
}

// PagingEnabled reports whether satp.MODE selects SV39.
func (f *File) PagingEnabled() bool { return f.pagingEnabled }

// PageTable returns the physical byte address of the root page table.
func (f *File) PageTable() uint64 { return f.pageTable }
