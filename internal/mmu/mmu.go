// Package mmu implements the SV39 page-table walker.
package mmu

import (
	"rv64emu/internal/bus"
	"rv64emu/internal/trapcause"
)

// AccessType distinguishes the kind of access being translated, since the
// page-fault kind raised on failure depends on it.
type AccessType int

const (
	Instruction AccessType = iota
	Load
	Store
)

func (a AccessType) faultKind() trapcause.Kind {
	switch a {
	case Instruction:
		return trapcause.InstructionPageFault
	case Store:
		return trapcause.StoreAMOPageFault
	default:
		return trapcause.LoadPageFault
	}
}

// PTE field bits.
const (
	pteV = 1 << 0
	pteR = 1 << 1
	pteW = 1 << 2
	pteX = 1 << 3
)

// State is the minimal paging state the MMU needs: whether paging is
// enabled and the physical address of the root page table.
type State interface {
	PagingEnabled() bool
	PageTable() uint64
}

// Translate converts a virtual address to a physical address via the
// SV39 three-level walk, or returns the identity mapping when paging is
// disabled.
func Translate(b *bus.Bus, st State, va uint64, access AccessType) (uint64, *trapcause.Exception) {
	if !st.PagingEnabled() {
		return va, nil
	}

	vpn := [3]uint64{
		(va >> 12) & 0x1ff,
		(va >> 21) & 0x1ff,
		(va >> 30) & 0x1ff,
	}

	a := st.PageTable()
	i := 2
	var pte uint64
	for {
		pteAddr := a + vpn[i]*8
		v, exc := b.Load(pteAddr, 64)
		if exc != nil {
			return 0, trapcause.New(access.faultKind())
		}
		pte = v

		valid := pte&pteV != 0
		misconfigured := pte&pteR == 0 && pte&pteW != 0
		if !valid || misconfigured {
			return 0, trapcause.New(access.faultKind())
		}
		if pte&pteR != 0 || pte&pteX != 0 {
			break // leaf
		}
		a = ((pte >> 10) & ((uint64(1) << 44) - 1)) * 4096
		i--
		if i < 0 {
			return 0, trapcause.New(access.faultKind())
		}
	}

	pgoff := va & 0xfff
	ppn1 := (pte >> 19) & 0x1ff
	ppn2 := (pte >> 28) & 0x3ffffff

	switch i {
	case 0:
		pa := ((pte >> 10) & ((uint64(1) << 44) - 1)) << 12
		return pa | pgoff, nil
	case 1:
		return (ppn2 << 30) | (ppn1 << 21) | (vpn[0] << 12) | pgoff, nil
	default: // i == 2
		return (ppn2 << 30) | (vpn[1] << 21) | (vpn[0] << 12) | pgoff, nil
	}
}
