package plic

import "testing"

func TestClaimClearsOnRead(t *testing.T) {
	p := New()
	if exc := p.Store(offSclaim, 32, 10); exc != nil {
		t.Fatal(exc)
	}

	got, exc := p.Load(offSclaim, 32)
	if exc != nil {
		t.Fatal(exc)
	}
	if got != 10 {
		t.Errorf("claim = %d, want 10", got)
	}

	got, exc = p.Load(offSclaim, 32)
	if exc != nil {
		t.Fatal(exc)
	}
	if got != 0 {
		t.Errorf("second claim read = %d, want 0 (cleared)", got)
	}
}

func TestEnableAndPriorityRegisters(t *testing.T) {
	p := New()
	_ = p.Store(offEnable, 32, 0xff)
	_ = p.Store(offPriority0, 32, 7)

	if v, _ := p.Load(offEnable, 32); v != 0xff {
		t.Errorf("enable = %#x, want 0xff", v)
	}
	if v, _ := p.Load(offPriority0, 32); v != 7 {
		t.Errorf("priority = %d, want 7", v)
	}
}

func TestOnlyWidth32Accepted(t *testing.T) {
	p := New()
	if _, exc := p.Load(offSclaim, 64); exc == nil {
		t.Error("64-bit load did not fault")
	}
	if exc := p.Store(offSclaim, 16, 0); exc == nil {
		t.Error("16-bit store did not fault")
	}
}
