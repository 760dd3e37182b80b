// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Package sparsefile creates backing files for loop devices without
// allocating the blocks their logical size implies: an install image or a
// disk strategy's scratch target often wants a multi-gigabyte file that
// occupies almost no space until something actually writes into it.
package sparsefile

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/blsforme/provision-disk/errors"
	"github.com/blsforme/provision-disk/log"
)

// Create creates (or truncates, if it already exists) the file at path and
// sets its logical length to sizeBytes without writing any data. No blocks
// are allocated beyond what the filesystem needs to record the hole.
func Create(path string, sizeBytes uint64) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrap(err)
	}
	defer f.Close()

	if err := unix.Ftruncate(int(f.Fd()), int64(sizeBytes)); err != nil {
		return errors.Wrap(err)
	}

	log.Debug("Created sparse file %s with logical size %d bytes", path, sizeBytes)
	return nil
}
