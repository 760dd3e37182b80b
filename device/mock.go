// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package device

// NewMockDisk builds a synthetic, non-sysfs-backed Disk for tests, grounded
// on the reference implementation's disks::mock crate. name should match
// `mock*` by convention but this is not enforced.
func NewMockDisk(name string, sectors uint64, partitions []Partition) *Disk {
	return &Disk{
		BasicDisk: BasicDisk{
			Name:          name,
			SectorCount:   sectors,
			DevicePath:    "/dev/" + name,
			PartitionList: partitions,
		},
		Family: FamilyMock,
	}
}
