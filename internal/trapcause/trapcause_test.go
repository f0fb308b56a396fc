package trapcause

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{IllegalInstruction, "IllegalInstruction"},
		{EnvironmentCallFromMMode, "EnvironmentCallFromMMode"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestFatalClassification(t *testing.T) {
	fatal := []Kind{
		InstructionAddressMisaligned, InstructionAccessFault,
		LoadAccessFault, StoreAMOAddressMisaligned, StoreAMOAccessFault,
	}
	for _, k := range fatal {
		if !k.Fatal() {
			t.Errorf("%s.Fatal() = false, want true", k)
		}
	}

	recoverable := []Kind{
		IllegalInstruction, Breakpoint, LoadAddressMisaligned,
		EnvironmentCallFromUMode, EnvironmentCallFromSMode,
		EnvironmentCallFromMMode, InstructionPageFault, LoadPageFault,
		StoreAMOPageFault,
	}
	for _, k := range recoverable {
		if k.Fatal() {
			t.Errorf("%s.Fatal() = true, want false", k)
		}
	}
}

func TestExceptionError(t *testing.T) {
	e := NewWithTval(LoadAccessFault, 0xdeadbeef)
	if e.Error() != "LoadAccessFault" {
		t.Errorf("Error() = %q, want %q", e.Error(), "LoadAccessFault")
	}
	if e.Tval != 0xdeadbeef {
		t.Errorf("Tval = %#x, want %#x", e.Tval, 0xdeadbeef)
	}

	plain := New(Breakpoint)
	if plain.Tval != 0 {
		t.Errorf("New() Tval = %#x, want 0", plain.Tval)
	}
}
