// Package bus routes loads and stores to the memory-mapped device whose
// address window contains the physical address.
package bus

import (
	"sort"

	"rv64emu/internal/device"
	"rv64emu/internal/trapcause"
)

type window struct {
	base uint64
	dev  device.Device
}

// Bus is the address router. Devices are registered once at machine
// construction and never removed.
type Bus struct {
	windows []window
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{}
}

// Register adds a device window at the given physical base address.
// Windows are kept sorted by base so Load/Store can binary-search.
func (b *Bus) Register(base uint64, dev device.Device) {
	b.windows = append(b.windows, window{base: base, dev: dev})
	sort.Slice(b.windows, func(i, j int) bool { return b.windows[i].base < b.windows[j].base })
}

// find returns the window covering pa, or ok=false.
func (b *Bus) find(pa uint64) (window, bool) {
	i := sort.Search(len(b.windows), func(i int) bool { return b.windows[i].base > pa })
	if i == 0 {
		return window{}, false
	}
	w := b.windows[i-1]
	if pa < w.base || pa >= w.base+w.dev.Size() {
		return window{}, false
	}
	return w, true
}

// Load reads width bits from physical address pa.
func (b *Bus) Load(pa uint64, width uint8) (uint64, *trapcause.Exception) {
	w, ok := b.find(pa)
	if !ok {
		return 0, trapcause.NewWithTval(trapcause.LoadAccessFault, pa)
	}
	return w.dev.Load(pa-w.base, width)
}

// Store writes width bits of value to physical address pa.
func (b *Bus) Store(pa uint64, width uint8, value uint64) *trapcause.Exception {
	w, ok := b.find(pa)
	if !ok {
		return trapcause.NewWithTval(trapcause.StoreAMOAccessFault, pa)
	}
	return w.dev.Store(pa-w.base, width, value)
}
