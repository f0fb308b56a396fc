package mmu

import (
	"testing"

	"rv64emu/internal/bus"
	"rv64emu/internal/csr"
	"rv64emu/internal/mem"
)

func newTestBus(t *testing.T) (*bus.Bus, *mem.DRAM) {
	t.Helper()
	b := bus.New()
	d := mem.New(1 << 20)
	b.Register(0, d)
	return b, d
}

func TestIdentityMappingWhenPagingDisabled(t *testing.T) {
	b, _ := newTestBus(t)
	st := csr.New()

	pa, exc := Translate(b, st, 0x1234, Load)
	if exc != nil {
		t.Fatal(exc)
	}
	if pa != 0x1234 {
		t.Errorf("pa = %#x, want %#x", pa, 0x1234)
	}
}

func TestSV394KiBLeaf(t *testing.T) {
	b, d := newTestBus(t)
	st := csr.New()

	const root = 0x1000
	const leaf2 = 0x2000
	const leaf1 = 0x3000
	const leaf0 = 0x4000
	const targetPPN = 0x80

	va := uint64(1)<<30 | uint64(2)<<21 | uint64(3)<<12 | 0x45

	vpn2 := (va >> 30) & 0x1ff
	vpn1 := (va >> 21) & 0x1ff
	vpn0 := (va >> 12) & 0x1ff

	writePTE := func(tableAddr, index, ppn uint64, leaf bool) {
		flags := uint64(pteV)
		if leaf {
			flags |= pteR | pteW | pteX
		}
		pte := (ppn << 10) | flags
		_ = d.Store(tableAddr+index*8, 64, pte)
	}

	writePTE(root, vpn2, leaf2/4096, false)
	writePTE(leaf2, vpn1, leaf1/4096, false)
	writePTE(leaf1, vpn0, targetPPN, true)

	st.Write(csr.Satp, (uint64(8)<<60)|(root/4096))

	pa, exc := Translate(b, st, va, Load)
	if exc != nil {
		t.Fatal(exc)
	}
	want := (targetPPN << 12) | (va & 0xfff)
	if pa != want {
		t.Errorf("pa = %#x, want %#x", pa, want)
	}
}

func TestInvalidPTEFaults(t *testing.T) {
	b, d := newTestBus(t)
	st := csr.New()

	const root = 0x1000
	_ = d.Store(root, 64, 0) // V=0

	st.Write(csr.Satp, (uint64(8)<<60)|(root/4096))

	_, exc := Translate(b, st, 0x2000, Store)
	if exc == nil {
		t.Fatal("expected a page fault for an invalid PTE")
	}
	if exc.Cause.String() != "StoreAMOPageFault" {
		t.Errorf("cause = %v, want StoreAMOPageFault", exc.Cause)
	}
}
