// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package device

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/blsforme/provision-disk/errors"
	"github.com/blsforme/provision-disk/log"
)

var (
	scsiExp   = regexp.MustCompile(`^sd[a-z]+$`)
	nvmeExp   = regexp.MustCompile(`^nvme\d+n\d+$`)
	mmcExp    = regexp.MustCompile(`^mmcblk\d+$`)
	virtioExp = regexp.MustCompile(`^vd[a-z]+$`)
	loopExp   = regexp.MustCompile(`^loop\d+$`)
)

// Discover lists <sysroot>/sys/class/block, sorts the children
// lexicographically, and classifies each one in order SCSI -> NVMe -> MMC ->
// virtio -> loopback. Entries matching none of these are silently ignored.
// A top-level directory listing failure is the only error Discover returns.
func Discover(sysroot string) ([]BlockDevice, error) {
	blockDir := filepath.Join(sysroot, "sys", "class", "block")

	entries, err := os.ReadDir(blockDir)
	if err != nil {
		return nil, errors.Wrap(err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	devices := make([]BlockDevice, 0, len(names))
	for _, name := range names {
		if bd, ok := Classify(sysroot, name); ok {
			devices = append(devices, bd)
		}
	}

	return devices, nil
}

// Classify pattern-matches a single sysfs block-node name against each known
// family and, on a match, builds the corresponding BlockDevice. It never
// errors: a name matching nothing yields ok == false.
func Classify(sysroot, name string) (BlockDevice, bool) {
	switch {
	case scsiExp.MatchString(name):
		return classifyDisk(sysroot, name, FamilySCSI), true
	case nvmeExp.MatchString(name):
		return classifyDisk(sysroot, name, FamilyNVMe), true
	case mmcExp.MatchString(name):
		return classifyDisk(sysroot, name, FamilyMMC), true
	case virtioExp.MatchString(name):
		return classifyDisk(sysroot, name, FamilyVirtio), true
	case loopExp.MatchString(name):
		return classifyLoop(sysroot, name), true
	default:
		return nil, false
	}
}

func classifyDisk(sysroot, name string, family Family) *Disk {
	nodePath := filepath.Join(sysroot, "sys", "class", "block", name)
	devDir := filepath.Join(sysroot, "dev")

	sectors, _ := readAttrUint64(nodePath, "size")
	model, _ := readAttrString(nodePath, "device/model")
	vendor, _ := readAttrString(nodePath, "device/vendor")

	d := &Disk{
		BasicDisk: BasicDisk{
			Name:        name,
			SectorCount: sectors,
			DevicePath:  filepath.Join(devDir, name),
			Model:       model,
			Vendor:      vendor,
		},
		Family: family,
	}

	d.PartitionList = readPartitions(sysroot, devDir, name)

	log.Debug("classified %s as %s disk (%d sectors)", name, family, sectors)

	return d
}

func classifyLoop(sysroot, name string) *LoopDevice {
	nodePath := filepath.Join(sysroot, "sys", "class", "block", name)
	devDir := filepath.Join(sysroot, "dev")

	ld := &LoopDevice{
		Name:       name,
		DevicePath: filepath.Join(devDir, name),
	}

	if backing, ok := readAttrString(nodePath, "loop/backing_file"); ok {
		ld.BackingFile = backing

		sectors, _ := readAttrUint64(nodePath, "size")
		ld.Inner = &BasicDisk{
			Name:          name,
			SectorCount:   sectors,
			DevicePath:    ld.DevicePath,
			PartitionList: readPartitions(sysroot, devDir, name),
		}
	}

	return ld
}

// readPartitions lists a disk's sysfs subdirectory and runs the partition
// reader over every entry exposing a `partition` attribute, returning the
// accepted partitions sorted by partition number.
func readPartitions(sysroot, devDir, diskName string) []Partition {
	nodePath := filepath.Join(sysroot, "sys", "class", "block", diskName)

	entries, err := os.ReadDir(nodePath)
	if err != nil {
		return nil
	}

	var parts []Partition
	for _, e := range entries {
		if p, ok := readPartition(devDir, sysroot, diskName, e.Name()); ok {
			parts = append(parts, p)
		}
	}

	sort.Slice(parts, func(i, j int) bool {
		return parts[i].Number < parts[j].Number
	})

	return parts
}
