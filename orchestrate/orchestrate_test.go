// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package orchestrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blsforme/provision-disk/planner"
)

func TestBaseDeviceNameStripsDevPrefix(t *testing.T) {
	name, err := baseDeviceName("/dev/loop7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "loop7" {
		t.Fatalf("expected %q, got %q", "loop7", name)
	}
}

func TestBaseDeviceNameRejectsNonDevPath(t *testing.T) {
	if _, err := baseDeviceName("relative/path"); err == nil {
		t.Fatal("expected an error for a path outside /dev/")
	}
}

func TestRunFailsWhenTargetMissingAndNoSparseSize(t *testing.T) {
	dir := t.TempDir()
	target := Target{Path: filepath.Join(dir, "missing.img")}
	p := planner.New(1<<30, nil)

	if _, err := Run(target, p, ""); err == nil {
		t.Fatal("expected an error when the target is missing and no sparse size is given")
	}
}

func TestRunCreatesMissingParentDirectoryForSparseFile(t *testing.T) {
	dir := t.TempDir()
	target := Target{
		Path:            filepath.Join(dir, "nested", "disk.img"),
		SparseSizeBytes: 10 << 20,
	}
	p := planner.New(1<<30, nil)

	// Run will still error out once it tries to attach a loop device (this
	// test has no /dev/loop-control access), but the nested parent directory
	// and the sparse backing file should exist by the time it gets there.
	_, _ = Run(target, p, "")

	if _, err := os.Stat(filepath.Dir(target.Path)); err != nil {
		t.Fatalf("expected parent directory to have been created: %v", err)
	}
	if _, err := os.Stat(target.Path); err != nil {
		t.Fatalf("expected sparse backing file to have been created: %v", err)
	}
}
