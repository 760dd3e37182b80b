// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package superblock

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"
)

const (
	btrfsStructOffset = 0x10000
	btrfsStructSize   = 555 // through the end of the 256-byte label field
	btrfsMagicOffset  = 0x40
	btrfsMagicSize    = 8
	btrfsMagic        = 0x4D5F53665248425F // "_BHRfS_M" read little-endian

	btrfsFsidOffset  = 32
	btrfsLabelOffset = 299
	btrfsLabelLength = 256
)

// Btrfs is a parsed BTRFS primary superblock (the copy at byte offset
// 0x10000), limited to the fields this package exposes.
type Btrfs struct {
	raw []byte
}

func btrfsFromReaderAt(r io.ReaderAt) (*Btrfs, bool) {
	magicBuf, ok := readAt(r, btrfsStructOffset+btrfsMagicOffset, btrfsMagicSize)
	if !ok || binary.LittleEndian.Uint64(magicBuf) != btrfsMagic {
		return nil, false
	}

	raw, ok := readAt(r, btrfsStructOffset, btrfsStructSize)
	if !ok {
		return nil, false
	}
	return &Btrfs{raw: raw}, true
}

// Kind returns KindBtrfs.
func (b *Btrfs) Kind() Kind { return KindBtrfs }

// UUID returns the filesystem's fsid, hyphenated.
func (b *Btrfs) UUID() (string, error) {
	id, err := uuid.FromBytes(b.raw[btrfsFsidOffset : btrfsFsidOffset+16])
	if err != nil {
		return "", ErrInvalidSuperblock
	}
	return id.String(), nil
}

// Label returns the volume label, NUL-trimmed.
func (b *Btrfs) Label() (string, error) {
	return trimNUL(string(b.raw[btrfsLabelOffset : btrfsLabelOffset+btrfsLabelLength])), nil
}
