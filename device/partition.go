// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package device

import "path/filepath"

// SectorSize is the only sector size this system supports.
const SectorSize = 512

// Partition describes a single partition's geometry as read from sysfs.
// Start and End are taken from sysfs as they are: readPartition does not
// check that Start < End or that End lies within the owning disk's
// SectorCount.
type Partition struct {
	Name       string
	Number     int
	Start      uint64 // in 512-byte sectors
	End        uint64 // in 512-byte sectors
	SysfsPath  string
	DevicePath string
}

// Size returns the partition's length in sectors.
func (p Partition) Size() uint64 {
	return p.End - p.Start
}

// readPartition reads the `partition`, `start`, and `size` attributes of a
// sysfs node. If any of the three is absent or unparsable the partition is
// rejected (ok == false) rather than producing a partial record.
func readPartition(devDir, sysfsRoot, diskName, entryName string) (Partition, bool) {
	nodePath := filepath.Join(sysfsRoot, "sys", "class", "block", diskName, entryName)

	if !attrExists(nodePath, "partition") {
		return Partition{}, false
	}

	number, ok := readAttrUint64(nodePath, "partition")
	if !ok {
		return Partition{}, false
	}

	start, ok := readAttrUint64(nodePath, "start")
	if !ok {
		return Partition{}, false
	}

	size, ok := readAttrUint64(nodePath, "size")
	if !ok {
		return Partition{}, false
	}

	return Partition{
		Name:       entryName,
		Number:     int(number),
		Start:      start,
		End:        start + size,
		SysfsPath:  nodePath,
		DevicePath: filepath.Join(devDir, entryName),
	}, true
}
