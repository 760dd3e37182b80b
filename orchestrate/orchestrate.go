// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Package orchestrate drives the end-to-end disk-provisioning pipeline: a
// sparse file (or an existing block device) is attached as a loop device if
// needed, a fresh GPT is written to cover the planner's accepted layout, the
// kernel is told about the new partitions via BLKPG, and the device pool is
// re-discovered so callers see the result the way they'd see any other
// freshly-partitioned disk.
package orchestrate

import (
	"fmt"
	"os"
	"path/filepath"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/google/uuid"

	"github.com/blsforme/provision-disk/blkpg"
	"github.com/blsforme/provision-disk/device"
	"github.com/blsforme/provision-disk/errors"
	"github.com/blsforme/provision-disk/log"
	"github.com/blsforme/provision-disk/loopback"
	"github.com/blsforme/provision-disk/planner"
	"github.com/blsforme/provision-disk/sparsefile"
	"github.com/blsforme/provision-disk/utils"
)

// gptPartitionType is the GPT type GUID this pipeline assigns every
// partition it creates: the generic "Linux filesystem data" type. Role-
// specific type GUIDs (ESP, swap, root) are a documented follow-up, not
// implemented here.
const gptPartitionType = gpt.LinuxFilesystem

// Target names the device orchestration should operate against: either a
// path to a regular file (the demonstration/dry-run flow, wrapped in a
// freshly attached loop device) or a path to a real block device.
type Target struct {
	Path            string
	SparseSizeBytes uint64 // only consulted when Path does not yet exist
}

// Result reports what orchestration actually did, for the CLI driver to
// print or log.
type Result struct {
	DevicePath   string
	Partitions   []gpt.Partition
	Rediscovered []device.Partition
}

// Run creates (if necessary) the backing file, attaches a loop device (if
// the target is a regular file), writes a protective-MBR-plus-GPT table
// built from p's accepted layout, BLKPG-syncs the kernel's partition table,
// and re-reads the resulting partitions from sysfs.
//
// sysroot is passed through to the post-sync re-discovery step; pass "/" to
// use the live system's sysfs.
func Run(target Target, p *planner.Planner, sysroot string) (*Result, error) {
	devicePath := target.Path

	exists, err := utils.FileExists(target.Path)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	if !exists {
		if target.SparseSizeBytes == 0 {
			return nil, errors.ValidationErrorf("target %q does not exist and no sparse size was given", target.Path)
		}
		if err := utils.MkdirAll(filepath.Dir(target.Path), 0o755); err != nil {
			return nil, err
		}
		log.Info("Creating sparse backing file %s (%d bytes)", target.Path, target.SparseSizeBytes)
		if err := sparsefile.Create(target.Path, target.SparseSizeBytes); err != nil {
			return nil, errors.Wrap(err)
		}
	}

	info, err := os.Stat(devicePath)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	if info.Mode().IsRegular() {
		loop, attachErr := attachLoop(devicePath)
		if attachErr != nil {
			return nil, attachErr
		}
		devicePath = loop.Path
		defer func() {
			if derr := loop.Detach(); derr != nil {
				log.Warning("failed to detach loop device %s: %v", loop.Path, derr)
			}
			if cerr := loop.Close(); cerr != nil {
				log.Warning("failed to close loop device handle %s: %v", loop.Path, cerr)
			}
		}()
	}

	gptPartitions, err := writeGPT(devicePath, p)
	if err != nil {
		return nil, err
	}

	existing, err := readExistingPartitions(devicePath)
	if err != nil {
		log.Warning("could not enumerate existing partitions on %s before BLKPG sync: %v", devicePath, err)
	}

	entries := make([]blkpg.GPTEntry, len(gptPartitions))
	for i, part := range gptPartitions {
		entries[i] = blkpg.GPTEntry{
			Number:   int32(i + 1),
			FirstLBA: part.Start,
			LastLBA:  part.End, // both part.End and GPTEntry.LastLBA are inclusive
		}
	}
	if err := blkpg.SyncGPTPartitions(devicePath, existing, entries); err != nil {
		return nil, errors.Wrap(err)
	}

	rediscovered, err := rediscoverPartitions(sysroot, devicePath)
	if err != nil {
		log.Warning("post-apply re-discovery failed for %s: %v", devicePath, err)
	}

	return &Result{
		DevicePath:   devicePath,
		Partitions:   gptPartitions,
		Rediscovered: rediscovered,
	}, nil
}

// attachLoop allocates a free loop device and binds backingFile to it.
func attachLoop(backingFile string) (*loopback.LoopDevice, error) {
	loop, err := loopback.Create()
	if err != nil {
		return nil, errors.Wrap(err)
	}
	if err := loop.Attach(backingFile); err != nil {
		loop.Close()
		return nil, errors.Wrap(err)
	}
	return loop, nil
}

// baseDeviceName strips the /dev/ prefix a loop or disk device path carries,
// yielding the sysfs class/block entry name device.Discover reports.
func baseDeviceName(devicePath string) (string, error) {
	const prefix = "/dev/"
	if len(devicePath) <= len(prefix) || devicePath[:len(prefix)] != prefix {
		return "", errors.ValidationErrorf("expected a /dev/ device path, got %q", devicePath)
	}
	return devicePath[len(prefix):], nil
}

// writeGPT builds a gpt.Table from p's accepted layout (one gpt.Partition
// per planner.Region, LBA-addressed in 512-byte sectors) and persists it to
// devicePath via go-diskfs. The protective MBR is written implicitly by the
// GPT table write — this pipeline never hand-rolls MBR bytes.
func writeGPT(devicePath string, p *planner.Planner) ([]gpt.Partition, error) {
	disk, err := diskfs.Open(devicePath)
	if err != nil {
		return nil, errors.Wrap(err)
	}

	layout := p.CurrentLayout()
	partitions := make([]*gpt.Partition, len(layout))
	result := make([]gpt.Partition, len(layout))
	for i, region := range layout {
		startLBA := region.Start / device.SectorSize
		endLBA := region.End / device.SectorSize // exclusive; gpt.Partition.End is the inclusive last LBA
		part := &gpt.Partition{
			Start: startLBA,
			End:   endLBA - 1,
			Type:  gptPartitionType,
			Name:  fmt.Sprintf("partition-%d", i+1),
			GUID:  uuid.New().String(),
		}
		partitions[i] = part
		result[i] = *part
	}

	table := &gpt.Table{
		Partitions:         partitions,
		LogicalSectorSize:  device.SectorSize,
		PhysicalSectorSize: device.SectorSize,
		ProtectiveMBR:      true,
	}

	disk.Table = table
	if err := disk.Table.Write(); err != nil {
		return nil, errors.Wrap(err)
	}

	return result, nil
}

func readExistingPartitions(devicePath string) ([]device.Partition, error) {
	sysfsName, err := baseDeviceName(devicePath)
	if err != nil {
		return nil, err
	}
	pool, err := device.Discover("/")
	if err != nil {
		return nil, err
	}
	for _, d := range pool {
		if d.DeviceName() == sysfsName {
			return d.Parts(), nil
		}
	}
	return nil, nil
}

func rediscoverPartitions(sysroot, devicePath string) ([]device.Partition, error) {
	sysfsName, err := baseDeviceName(devicePath)
	if err != nil {
		return nil, err
	}
	pool, err := device.Discover(sysroot)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	for _, d := range pool {
		if d.DeviceName() == sysfsName {
			return d.Parts(), nil
		}
	}
	return nil, errors.ValidationErrorf("device %s missing from pool after re-discovery", devicePath)
}
