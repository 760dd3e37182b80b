// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Package device discovers and classifies Linux block devices from a sysfs
// tree, and reads their partition geometry.
package device

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// readAttrString reads a scalar sysfs attribute and trims trailing whitespace.
// Absence or any I/O error yields ("", false) rather than an error: discovery
// degrades to zero/None on any kernel oddity, never panics.
func readAttrString(nodePath, attr string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(nodePath, attr))
	if err != nil {
		return "", false
	}

	v := strings.TrimRight(string(data), "\n\r\t ")
	if v == "" {
		return "", false
	}

	return v, true
}

// readAttrUint64 reads a sysfs attribute and parses it as an unsigned integer.
// Absence, I/O error, and parse failure are indistinguishable to the caller.
func readAttrUint64(nodePath, attr string) (uint64, bool) {
	v, ok := readAttrString(nodePath, attr)
	if !ok {
		return 0, false
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

// attrExists reports whether the named sysfs attribute file is present,
// without attempting to parse its content.
func attrExists(nodePath, attr string) bool {
	_, err := os.Stat(filepath.Join(nodePath, attr))
	return err == nil
}
