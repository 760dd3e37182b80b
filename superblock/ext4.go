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
	ext4StructOffset = 1024
	ext4StructSize   = 136 // through the end of volume_name; trailing fields unused by detection
	ext4MagicOffset  = 56  // relative to ext4StructOffset
	ext4MagicSize    = 2
	ext4Magic        = 0xEF53

	ext4UUIDOffset   = 104
	ext4LabelOffset  = 120
	ext4LabelLength  = 16
)

// Ext4 is a parsed EXT4 primary superblock, limited to the fields this
// package exposes (UUID and volume label).
type Ext4 struct {
	raw []byte
}

func ext4FromReaderAt(r io.ReaderAt) (*Ext4, bool) {
	magicBuf, ok := readAt(r, ext4StructOffset+ext4MagicOffset, ext4MagicSize)
	if !ok || binary.LittleEndian.Uint16(magicBuf) != ext4Magic {
		return nil, false
	}

	raw, ok := readAt(r, ext4StructOffset, ext4StructSize)
	if !ok {
		return nil, false
	}
	return &Ext4{raw: raw}, true
}

// Kind returns KindExt4.
func (e *Ext4) Kind() Kind { return KindExt4 }

// UUID returns the 128-bit filesystem identifier, hyphenated.
func (e *Ext4) UUID() (string, error) {
	id, err := uuid.FromBytes(e.raw[ext4UUIDOffset : ext4UUIDOffset+16])
	if err != nil {
		return "", ErrInvalidSuperblock
	}
	return id.String(), nil
}

// Label returns the volume name, NUL-trimmed.
func (e *Ext4) Label() (string, error) {
	return trimNUL(string(e.raw[ext4LabelOffset : ext4LabelOffset+ext4LabelLength])), nil
}
