// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package device

// Family tags the kernel device-naming convention a Disk was classified
// from. Per the design notes, disk polymorphism is a tagged variant holding
// a shared BasicDisk, never an inheritance hierarchy.
type Family int

const (
	// FamilySCSI matches sd[a-z]+ (SCSI/SATA/USB mass storage)
	FamilySCSI Family = iota
	// FamilyNVMe matches nvme\d+n\d+
	FamilyNVMe
	// FamilyMMC matches mmcblk\d+
	FamilyMMC
	// FamilyVirtio matches vd[a-z]+
	FamilyVirtio
	// FamilyMock is a synthetic, non-sysfs-backed disk used by tests.
	FamilyMock
)

func (f Family) String() string {
	switch f {
	case FamilySCSI:
		return "scsi"
	case FamilyNVMe:
		return "nvme"
	case FamilyMMC:
		return "mmc"
	case FamilyVirtio:
		return "virtio"
	case FamilyMock:
		return "mock"
	default:
		return "unknown"
	}
}

// BasicDisk is the shared representation behind every Disk family. Generic
// code reaches it through BlockDevice.AsBasicDisk, never through a
// family-specific type; planner, strategy and superblock do not take it at
// all (they work on byte sizes, a *planner.Planner and an io.ReaderAt).
type BasicDisk struct {
	Name        string
	SectorCount uint64
	DevicePath  string
	Model       string
	Vendor      string
	PartitionList []Partition
}

// BlockDevice is the common interface implemented by every discovered
// device: a physical/virtual Disk or a LoopDevice.
type BlockDevice interface {
	DeviceName() string
	DevPath() string
	Sectors() uint64
	Parts() []Partition
	AsBasicDisk() *BasicDisk
}

// Disk is a BasicDisk tagged with the kernel naming family it was
// classified from.
type Disk struct {
	BasicDisk
	Family Family
}

// DeviceName implements BlockDevice.
func (d *Disk) DeviceName() string { return d.Name }

// DevPath implements BlockDevice.
func (d *Disk) DevPath() string { return d.DevicePath }

// Sectors implements BlockDevice.
func (d *Disk) Sectors() uint64 { return d.SectorCount }

// Parts implements BlockDevice.
func (d *Disk) Parts() []Partition { return d.PartitionList }

// AsBasicDisk implements BlockDevice. It is the single accessor the design
// notes call for in place of inheritance: anything that wants to treat this
// Disk generically asks for its BasicDisk, rather than this type being one.
func (d *Disk) AsBasicDisk() *BasicDisk { return &d.BasicDisk }

// LoopDevice describes a kernel loop device (name pattern loop\d+). It may
// optionally be backed by a file and may optionally expose an embedded
// BasicDisk describing the block device the kernel presents for it.
type LoopDevice struct {
	Name        string
	DevicePath  string
	BackingFile string // empty if not currently backed
	Inner       *BasicDisk
}

// DeviceName implements BlockDevice.
func (l *LoopDevice) DeviceName() string { return l.Name }

// DevPath implements BlockDevice.
func (l *LoopDevice) DevPath() string { return l.DevicePath }

// Sectors implements BlockDevice.
func (l *LoopDevice) Sectors() uint64 {
	if l.Inner == nil {
		return 0
	}
	return l.Inner.SectorCount
}

// Parts implements BlockDevice.
func (l *LoopDevice) Parts() []Partition {
	if l.Inner == nil {
		return nil
	}
	return l.Inner.PartitionList
}

// AsBasicDisk implements BlockDevice. Returns nil if the loop device has no
// backing file attached (and hence no exposed block geometry).
func (l *LoopDevice) AsBasicDisk() *BasicDisk { return l.Inner }

// IsBacked reports whether this loop device currently has a backing file.
func (l *LoopDevice) IsBacked() bool { return l.BackingFile != "" }
