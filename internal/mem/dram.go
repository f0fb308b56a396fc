// Package mem implements DRAM: a contiguous little-endian byte array
// mapped at a fixed physical base address.
package mem

import "rv64emu/internal/trapcause"

// DRAM is a flat byte array accessed at 8/16/32/64-bit widths, strictly
// little-endian for any supported width.
type DRAM struct {
	bytes []byte
}

// New allocates size bytes of DRAM, zeroed.
func New(size uint64) *DRAM {
	return &DRAM{bytes: make([]byte, size)}
}

// Size returns the number of bytes backing this DRAM.
func (d *DRAM) Size() uint64 { return uint64(len(d.bytes)) }

// Bytes exposes the raw backing array so a loader can populate it before
// the first fetch.
func (d *DRAM) Bytes() []byte { return d.bytes }

// Load reads width bits starting at offset, little-endian.
func (d *DRAM) Load(offset uint64, width uint8) (uint64, *trapcause.Exception) {
	n := uint64(width / 8)
	if offset+n > uint64(len(d.bytes)) {
		return 0, trapcause.New(trapcause.LoadAccessFault)
	}
	var v uint64
	for i := uint64(0); i < n; i++ {
		v |= uint64(d.bytes[offset+i]) << (8 * i)
	}
	return v, nil
}

// Store writes the low width bits of value at offset, little-endian.
func (d *DRAM) Store(offset uint64, width uint8, value uint64) *trapcause.Exception {
	n := uint64(width / 8)
	if offset+n > uint64(len(d.bytes)) {
		return trapcause.New(trapcause.StoreAMOAccessFault)
	}
	for i := uint64(0); i < n; i++ {
		d.bytes[offset+i] = byte(value >> (8 * i))
	}
	return nil
}
