// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package blkpg

import (
	"os"
	"testing"

	"github.com/blsforme/provision-disk/device"
)

func TestSyncGPTPartitionsFailsOnMissingDevice(t *testing.T) {
	err := SyncGPTPartitions("/nonexistent-device-xyz", nil, nil)
	if err == nil {
		t.Fatal("expected SyncGPTPartitions to fail opening a nonexistent device path")
	}
}

func TestSyncGPTPartitionsStopsAtFirstAddFailure(t *testing.T) {
	// AddPartition against a regular file (not a real block device) is
	// expected to fail the BLKPG ioctl with ENOTTY; SyncGPTPartitions must
	// surface that failure rather than continue to later entries.
	dir := t.TempDir()
	path := dir + "/not-a-block-device"
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	entries := []GPTEntry{
		{Number: 1, FirstLBA: 2048, LastLBA: 4095},
		{Number: 2, FirstLBA: 4096, LastLBA: 8191},
	}

	err = SyncGPTPartitions(path, []device.Partition{{Number: 1}}, entries)
	if err == nil {
		t.Fatal("expected SyncGPTPartitions to fail against a non-block-device path")
	}
}
