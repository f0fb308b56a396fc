package decode

import "testing"

func TestDecodeFields(t *testing.T) {
	// add x1, x2, x3: funct7=0, rs2=3, rs1=2, funct3=0, rd=1, opcode=0x33
	word := uint32(0<<25) | uint32(3<<20) | uint32(2<<15) | uint32(0<<12) | uint32(1<<7) | 0x33
	ins := Decode(word)

	if ins.Opcode != 0x33 {
		t.Errorf("Opcode = %#x, want 0x33", ins.Opcode)
	}
	if ins.RD != 1 {
		t.Errorf("RD = %d, want 1", ins.RD)
	}
	if ins.RS1 != 2 {
		t.Errorf("RS1 = %d, want 2", ins.RS1)
	}
	if ins.RS2 != 3 {
		t.Errorf("RS2 = %d, want 3", ins.RS2)
	}
}

func TestImmISignExtends(t *testing.T) {
	// addi x1, x0, -1: imm = 0xfff (all ones)
	word := uint32(0xfff<<20) | uint32(0<<15) | uint32(0<<12) | uint32(1<<7) | 0x13
	ins := Decode(word)
	if ins.ImmI() != -1 {
		t.Errorf("ImmI() = %d, want -1", ins.ImmI())
	}
}

func TestImmUUpperImmediate(t *testing.T) {
	// lui x1, 0x12345: imm_u occupies bits 31:12
	word := uint32(0x12345<<12) | uint32(1<<7) | 0x37
	ins := Decode(word)
	if ins.ImmU() != 0x12345000 {
		t.Errorf("ImmU() = %#x, want %#x", ins.ImmU(), 0x12345000)
	}
}

func TestImmBBranchOffset(t *testing.T) {
	// beq x0, x0, 8: imm_b = 8, encoded across bits 31,7,30:25,11:8
	word := uint32(0<<25) | uint32(0<<20) | uint32(0<<15) | uint32(0<<12) | uint32(4<<8) | 0x63
	ins := Decode(word)
	if ins.ImmB() != 8 {
		t.Errorf("ImmB() = %d, want 8", ins.ImmB())
	}
}

func TestImmJJumpOffset(t *testing.T) {
	// jal x1, 4096: imm[19:12] = 1, every other imm field zero.
	word := uint32(1<<12) | uint32(1<<7) | 0x6f
	ins := Decode(word)
	if ins.ImmJ() != 4096 {
		t.Errorf("ImmJ() = %d, want 4096", ins.ImmJ())
	}
}

func TestShamt(t *testing.T) {
	word := uint32(37<<20) | 0x13
	ins := Decode(word)
	if ins.Shamt6() != 37 {
		t.Errorf("Shamt6() = %d, want 37", ins.Shamt6())
	}
	if ins.Shamt5() != 5 {
		t.Errorf("Shamt5() = %d, want 5", ins.Shamt5())
	}
}

func TestCSRAddr(t *testing.T) {
	word := uint32(0x305<<20) | 0x73 // mtvec
	ins := Decode(word)
	if ins.CSRAddr() != 0x305 {
		t.Errorf("CSRAddr() = %#x, want 0x305", ins.CSRAddr())
	}
}
