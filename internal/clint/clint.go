// Package clint implements the core-local interrupter: a free-running
// timer register and a machine timer-compare register.
package clint

import "rv64emu/internal/trapcause"

const (
	// Size is the CLINT device's address-window size.
	Size = 0x10000

	offMtimecmp = 0x4000
	offMtime    = 0xbff8
)

// CLINT is a pair of 64-bit backing registers, mtime and mtimecmp. Only
// 64-bit accesses are accepted.
type CLINT struct {
	mtime    uint64
	mtimecmp uint64
}

// New returns a CLINT with both registers zeroed.
func New() *CLINT {
	return &CLINT{}
}

// Tick advances the free-running mtime counter by one.
func (c *CLINT) Tick() {
	c.mtime++
}

// TimerPending reports whether mtime has reached mtimecmp.
func (c *CLINT) TimerPending() bool {
	return c.mtime >= c.mtimecmp
}

func (c *CLINT) Load(offset uint64, width uint8) (uint64, *trapcause.Exception) {
	if width != 64 {
		return 0, trapcause.New(trapcause.LoadAccessFault)
	}
	switch offset {
	case offMtimecmp:
		return c.mtimecmp, nil
	case offMtime:
		return c.mtime, nil
	default:
		return 0, trapcause.New(trapcause.LoadAccessFault)
	}
}

func (c *CLINT) Store(offset uint64, width uint8, value uint64) *trapcause.Exception {
	if width != 64 {
		return trapcause.New(trapcause.StoreAMOAccessFault)
	}
	switch offset {
	case offMtimecmp:
		c.mtimecmp = value
	case offMtime:
		c.mtime = value
	default:
		return trapcause.New(trapcause.StoreAMOAccessFault)
	}
	return nil
}

func (c *CLINT) Size() uint64 { return Size }
