// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Package loopback drives the kernel loop-control interface: allocate a
// free loop device, attach a backing file to it, and detach it again. A
// LoopDevice moves through a small state machine:
//
//	(none) --Create--> created --Attach(file)--> attached --Detach--> created
//
// The device node's file descriptor is retained by the LoopDevice for its
// whole lifetime; closing it releases the descriptor but does not itself
// detach the backing file — the kernel keeps the binding until an explicit
// Detach or, if autoclear was requested, until last-close.
package loopback

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/blsforme/provision-disk/errors"
	"github.com/blsforme/provision-disk/log"
)

const loopControlPath = "/dev/loop-control"

// LoopDevice is an open handle to a kernel loop device.
type LoopDevice struct {
	file     *os.File
	Path     string
	attached bool
}

// Create opens /dev/loop-control, asks the kernel for the next free loop
// device number, and opens the corresponding device node read-write. The
// returned LoopDevice is not yet attached to any backing file.
func Create() (*LoopDevice, error) {
	ctrl, err := os.OpenFile(loopControlPath, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	defer ctrl.Close()

	devno, err := unix.IoctlRetInt(int(ctrl.Fd()), unix.LOOP_CTL_GET_FREE)
	if err != nil {
		return nil, errors.Wrap(err)
	}

	path := devicePath(devno)
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrap(err)
	}

	log.Debug("Allocated loop device %s", path)
	return &LoopDevice{file: file, Path: path}, nil
}

func devicePath(devno int) string {
	return "/dev/loop" + strconv.Itoa(devno)
}

// Attach binds backingFile to the loop device. A no-op status update is
// re-issued immediately after binding, since some kernels otherwise leave
// the new backing invisible to userspace until it is touched. Fails if the
// device is already attached or the backing file cannot be opened.
func (l *LoopDevice) Attach(backingFile string) error {
	if l.attached {
		return errors.ValidationErrorf("loop device %s is already attached", l.Path)
	}

	f, err := os.OpenFile(backingFile, os.O_RDWR, 0)
	if err != nil {
		return errors.Wrap(err)
	}
	defer f.Close()

	if err := unix.IoctlSetInt(int(l.file.Fd()), unix.LOOP_SET_FD, int(f.Fd())); err != nil {
		return errors.Wrap(err)
	}

	info := &unix.LoopInfo64{}
	if err := unix.IoctlLoopSetStatus64(int(l.file.Fd()), info); err != nil {
		return errors.Wrap(err)
	}

	l.attached = true
	log.Debug("Attached %s to %s", backingFile, l.Path)
	return nil
}

// Detach unbinds the current backing file, if any. It is idempotent: a
// detach on an already-detached device is tolerated, matching the kernel's
// own EINVAL-means-already-clear behavior.
func (l *LoopDevice) Detach() error {
	if err := unix.IoctlSetInt(int(l.file.Fd()), unix.LOOP_CLR_FD, 0); err != nil {
		if err != unix.ENXIO && err != unix.EINVAL {
			return errors.Wrap(err)
		}
	}
	l.attached = false
	log.Debug("Detached %s", l.Path)
	return nil
}

// Attached reports whether a backing file is currently bound.
func (l *LoopDevice) Attached() bool {
	return l.attached
}

// Close releases the loop device node's file descriptor without detaching
// any backing file that may still be bound.
func (l *LoopDevice) Close() error {
	return l.file.Close()
}

// Fd returns the raw file descriptor of the loop device node, for callers
// that need to pass it to other ioctl-based operations (e.g. blkpg).
func (l *LoopDevice) Fd() uintptr {
	return l.file.Fd()
}
