// Copyright © 2019 Intel Corporation
//
// SPDX-License-Identifier: GPL-3.0-only

package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMkdirAll(t *testing.T) {
	dir, err := os.MkdirTemp("", "provision-disk-utils")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	target := filepath.Join(dir, "a", "b", "c")
	if err := MkdirAll(target, 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}

	// Calling again on an existing path must be a no-op, not an error.
	if err := MkdirAll(target, 0755); err != nil {
		t.Fatalf("MkdirAll() on existing path failed: %v", err)
	}
}

func TestFileExists(t *testing.T) {
	dir, err := os.MkdirTemp("", "provision-disk-utils")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	present := filepath.Join(dir, "present")
	if err := os.WriteFile(present, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ok, err := FileExists(present)
	if err != nil || !ok {
		t.Fatalf("FileExists() = %v, %v; want true, nil", ok, err)
	}

	ok, err = FileExists(filepath.Join(dir, "missing"))
	if err != nil || ok {
		t.Fatalf("FileExists() = %v, %v; want false, nil", ok, err)
	}
}

func TestStringSliceContains(t *testing.T) {
	sl := []string{"boot", "root", "home"}

	if !StringSliceContains(sl, "root") {
		t.Fatal("expected root to be contained")
	}

	if StringSliceContains(sl, "swap") {
		t.Fatal("did not expect swap to be contained")
	}
}
