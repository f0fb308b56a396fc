// Package device declares the uniform load/store capability every
// memory-mapped peripheral on the bus implements.
package device

import "rv64emu/internal/trapcause"

// Device is the interface the bus dispatches loads and stores through.
// Offset is relative to the device's own base address. Devices that only
// accept certain widths return a *trapcause.Exception of their own access-
// fault kind for anything else.
type Device interface {
	Load(offset uint64, width uint8) (uint64, *trapcause.Exception)
	Store(offset uint64, width uint8, value uint64) *trapcause.Exception
	Size() uint64
}
