// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Package blkpg notifies the kernel's in-core partition table about
// changes made to an on-disk GPT, using the BLKPG ioctl family. Nothing
// here touches the on-disk bytes; it only tells the kernel what partition
// devices to expose for a block device whose backing GPT has already been
// rewritten.
package blkpg

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/blsforme/provision-disk/device"
	"github.com/blsforme/provision-disk/errors"
	"github.com/blsforme/provision-disk/log"
)

// AddPartition instructs the kernel to expose a new partition with the
// given numeric index and byte range on the block device underlying fd.
func AddPartition(fd uintptr, number int32, startBytes, lengthBytes int64) error {
	log.Debug("Adding kernel partition %d: start=%d length=%d", number, startBytes, lengthBytes)
	if err := doBlkpg(fd, unix.BLKPG_ADD_PARTITION, number, startBytes, lengthBytes); err != nil {
		log.Error("Failed to add kernel partition %d: %v", number, err)
		return err
	}
	return nil
}

// DeletePartition removes the kernel-side partition entry numbered number
// from the block device underlying fd.
func DeletePartition(fd uintptr, number int32) error {
	log.Debug("Deleting kernel partition %d", number)
	if err := doBlkpg(fd, unix.BLKPG_DEL_PARTITION, number, 0, 0); err != nil {
		log.Error("Failed to delete kernel partition %d: %v", number, err)
		return err
	}
	return nil
}

func doBlkpg(fd uintptr, op int32, number int32, startBytes, lengthBytes int64) error {
	part := unix.BlkpgPartition{
		Start:  startBytes,
		Length: lengthBytes,
		Pno:    number,
	}
	arg := unix.BlkpgIoctlArg{
		Op:      op,
		Flags:   0,
		Datalen: int32(unsafe.Sizeof(part)),
		Data:    (*byte)(unsafe.Pointer(&part)),
	}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, unix.BLKPG, uintptr(unsafe.Pointer(&arg)))
	if errno != 0 {
		return errors.Wrap(errno)
	}
	return nil
}

// GPTEntry is the minimal slice of a parsed GPT entry that SyncGPTPartitions
// needs: a 1-based partition number and its LBA extent.
type GPTEntry struct {
	Number   int32
	FirstLBA uint64
	LastLBA  uint64
}

// SyncGPTPartitions brings the kernel's partition table for path in line
// with entries. It opens path read-only, deletes every partition listed in
// existing, which the caller reads from the kernel's view of the disk
// (failures tolerated, since a concurrent kernel rescan may have already
// dropped one), then
// adds every entry from entries. A failure adding any entry is fatal,
// since it means the kernel and the on-disk GPT have diverged.
func SyncGPTPartitions(path string, existing []device.Partition, entries []GPTEntry) error {
	log.Info("Synchronizing kernel partition table for %s", path)

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err)
	}
	defer f.Close()

	fd := f.Fd()

	for _, p := range existing {
		if err := DeletePartition(fd, int32(p.Number)); err != nil {
			log.Debug("Ignoring delete failure for partition %d (likely already gone): %v", p.Number, err)
		}
	}

	const sectorSize = 512
	for _, entry := range entries {
		start := int64(entry.FirstLBA) * sectorSize
		length := int64(entry.LastLBA-entry.FirstLBA+1) * sectorSize
		if err := AddPartition(fd, entry.Number, start, length); err != nil {
			return err
		}
	}

	log.Info("Kernel partition table for %s now matches %d GPT entries", path, len(entries))
	return nil
}
