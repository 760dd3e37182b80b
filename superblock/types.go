// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Package superblock detects and decodes filesystem superblocks from a
// random-access byte source (a loop device, a regular file, or any other
// io.ReaderAt). Every parser is a pure, side-effect-free reinterpretation of
// a fixed-size window of bytes: a magic-number probe at a fixed offset, and
// if that matches, a fixed-layout record read at a second fixed offset.
// A magic mismatch or short read is reported as "no match", never as an
// error — only Detect, once every known filesystem has been tried and none
// matched, returns an actual error.
package superblock

import (
	"io"
	"strings"

	"github.com/blsforme/provision-disk/errors"
)

// Kind identifies one of the filesystem or container formats this package
// can detect.
type Kind int

const (
	KindUnknown Kind = iota
	KindExt4
	KindBtrfs
	KindF2FS
	KindXfs
	KindLuks2
	// KindFAT16 and KindFAT32 are never returned by Detect; FAT is a
	// standalone detector reached via DetectFAT, not part of the union.
	KindFAT16
	KindFAT32
)

func (k Kind) String() string {
	switch k {
	case KindExt4:
		return "ext4"
	case KindBtrfs:
		return "btrfs"
	case KindF2FS:
		return "f2fs"
	case KindXfs:
		return "xfs"
	case KindLuks2:
		return "luks2"
	case KindFAT16:
		return "fat16"
	case KindFAT32:
		return "fat32"
	default:
		return "unknown"
	}
}

// Superblock is the common interface every detected filesystem record
// implements. LUKS2's richer JSON configuration is reached via a type
// assertion to *Luks2 and a call to ReadConfig.
type Superblock interface {
	Kind() Kind
	UUID() (string, error)
	Label() (string, error)
}

// ErrUnknownSuperblock is returned by Detect when no registered parser's
// magic number matched.
var ErrUnknownSuperblock = errors.ValidationErrorf("unknown superblock")

// ErrInvalidSuperblock is returned when a magic number matched but the
// record or its associated metadata (e.g. LUKS2's JSON area) could not be
// decoded.
var ErrInvalidSuperblock = errors.ValidationErrorf("invalid superblock")

// ErrUnsupportedFeature is returned when a requested operation does not
// apply to the detected format or configuration (e.g. deriving a keyslot
// key for a non-PBKDF2 KDF type).
var ErrUnsupportedFeature = errors.ValidationErrorf("unsupported feature")

// readAt reads exactly len(buf) bytes starting at offset, reporting false on
// any short read or I/O error rather than propagating it — per this
// package's "no match, not an error" detection contract.
func readAt(r io.ReaderAt, offset int64, size int) ([]byte, bool) {
	buf := make([]byte, size)
	n, err := r.ReadAt(buf, offset)
	if err != nil || n != size {
		return nil, false
	}
	return buf, true
}

func trimNUL(s string) string {
	return strings.TrimRight(s, "\x00")
}
