// Package virtio implements a legacy (pre-1.0) VirtIO MMIO block device:
// config registers plus a disk byte array, performing queue processing
// and DMA against DRAM through the bus on notify.
package virtio

import (
	"rv64emu/internal/bus"
	"rv64emu/internal/trapcause"
)

// IRQ is VirtIO's line on the PLIC.
const IRQ = 1

// Size is the VirtIO device's address-window size.
const Size = 0x1000

// Register offsets.
const (
	offMagic           = 0x000
	offVersion         = 0x004
	offDeviceID        = 0x008
	offVendorID        = 0x00c
	offDeviceFeatures  = 0x010
	offDriverFeatures  = 0x020
	offGuestPageSize   = 0x028
	offQueueSel        = 0x030
	offQueueNumMax     = 0x034
	offQueueNum        = 0x038
	offQueuePFN        = 0x040
	offQueueNotify     = 0x050
	offStatus          = 0x070
)

const (
	magicValue   = 0x74726976
	versionValue = 1
	deviceIDDisk = 2
	vendorID     = 0x554d4551
	queueNumMax  = 8
	pageSizeDefault = 4096
)

// VirtIO is the legacy block device: register file plus a raw disk byte
// array, addressed by byte index with 512-byte sectors.
type VirtIO struct {
	deviceFeatures uint32
	driverFeatures uint32
	guestPageSize  uint32
	queueSel       uint32
	queueNum       uint32
	queuePFN       uint32
	status         uint32

	notifyPending bool
	nextID        uint64

	disk []byte
}

// New constructs a VirtIO block device backed by disk (raw bytes, sector
// size 512, no partition table interpretation).
func New(disk []byte) *VirtIO {
	return &VirtIO{guestPageSize: pageSizeDefault, disk: disk}
}

// Disk exposes the raw backing array so a loader can populate it before
// first use.
func (v *VirtIO) Disk() []byte { return v.disk }

func (v *VirtIO) Load(offset uint64, width uint8) (uint64, *trapcause.Exception) {
	if width != 32 {
		return 0, trapcause.New(trapcause.LoadAccessFault)
	}
	switch offset {
	case offMagic:
		return magicValue, nil
	case offVersion:
		return versionValue, nil
	case offDeviceID:
		return deviceIDDisk, nil
	case offVendorID:
		return vendorID, nil
	case offDeviceFeatures:
		return uint64(v.deviceFeatures), nil
	case offDriverFeatures:
		return uint64(v.driverFeatures), nil
	case offGuestPageSize:
		return uint64(v.guestPageSize), nil
	case offQueueSel:
		return uint64(v.queueSel), nil
	case offQueueNumMax:
		return queueNumMax, nil
	case offQueueNum:
		return uint64(v.queueNum), nil
	case offQueuePFN:
		return uint64(v.queuePFN), nil
	case offStatus:
		return uint64(v.status), nil
	default:
		return 0, nil
	}
}

func (v *VirtIO) Store(offset uint64, width uint8, value uint64) *trapcause.Exception {
	if width != 32 {
		return trapcause.New(trapcause.StoreAMOAccessFault)
	}
	val := uint32(value)
	switch offset {
	case offDriverFeatures:
		v.driverFeatures = val
	case offGuestPageSize:
		v.guestPageSize = val
	case offQueueSel:
		v.queueSel = val
	case offQueueNum:
		v.queueNum = val
	case offQueuePFN:
		v.queuePFN = val
	case offQueueNotify:
		v.notifyPending = true
	case offStatus:
		v.status = val
	default:
		// Other legacy fields (e.g. device_features) are read-only or
		// unused by this simplified model; accept and ignore the write.
	}
	return nil
}

func (v *VirtIO) Size() uint64 { return Size }

// IsInterrupting consumes the edge-triggered notify-pending flag: returns
// true once, then clears it.
func (v *VirtIO) IsInterrupting() bool {
	if v.notifyPending {
		v.notifyPending = false
		return true
	}
	return false
}

// DiskAccess performs the legacy virtqueue walk and DMA copy between DRAM
// (reached through b) and the disk array. It takes an explicit bus handle
// rather than storing one, since the bus and the device graph it routes
// to are constructed together and neither outlives the other.
func (v *VirtIO) DiskAccess(b *bus.Bus) {
	descAddr := uint64(v.queuePFN) * uint64(v.guestPageSize)
	availAddr := descAddr + 0x40
	usedAddr := descAddr + 4096

	offset, _ := b.Load(availAddr+1, 16)
	index, _ := b.Load(availAddr+(offset%8)+2, 16)

	desc0 := descAddr + 16*index
	addr0, _ := b.Load(desc0, 64)
	next0, _ := b.Load(desc0+14, 16)

	desc1 := descAddr + 16*next0
	addr1, _ := b.Load(desc1, 64)
	len1, _ := b.Load(desc1+8, 32)
	flags1, _ := b.Load(desc1+12, 16)

	sector, _ := b.Load(addr0+8, 64)

	if flags1&2 == 0 {
		// Write: guest DRAM -> disk.
		for i := uint64(0); i < len1; i++ {
			val, _ := b.Load(addr1+i, 8)
			v.writeDiskByte(sector*512+i, byte(val))
		}
	} else {
		// Read: disk -> guest DRAM.
		for i := uint64(0); i < len1; i++ {
			_ = b.Store(addr1+i, 8, uint64(v.readDiskByte(sector*512+i)))
		}
	}

	v.nextID++
	_ = b.Store(usedAddr+2, 16, v.nextID%8)
}

func (v *VirtIO) readDiskByte(addr uint64) byte {
	if addr >= uint64(len(v.disk)) {
		return 0
	}
	return v.disk[addr]
}

func (v *VirtIO) writeDiskByte(addr uint64, val byte) {
	if addr >= uint64(len(v.disk)) {
		return
	}
	v.disk[addr] = val
}
