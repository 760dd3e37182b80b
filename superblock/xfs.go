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
	xfsStructOffset = 0
	xfsStructSize   = 120 // through the end of the 12-byte fname field
	xfsMagicOffset  = 0
	xfsMagicSize    = 4
	xfsMagic        = 0x58465342 // "XFSB"

	xfsUUIDOffset       = 32
	xfsVersionNumOffset = 100
	xfsFnameOffset      = 108
	xfsFnameLength      = 12
)

// XFS is a parsed XFS primary superblock, limited to the fields this
// package exposes. Every multi-byte integer in an XFS superblock is
// big-endian.
type XFS struct {
	raw []byte
}

func xfsFromReaderAt(r io.ReaderAt) (*XFS, bool) {
	magicBuf, ok := readAt(r, xfsStructOffset+xfsMagicOffset, xfsMagicSize)
	if !ok || binary.BigEndian.Uint32(magicBuf) != xfsMagic {
		return nil, false
	}

	raw, ok := readAt(r, xfsStructOffset, xfsStructSize)
	if !ok {
		return nil, false
	}
	return &XFS{raw: raw}, true
}

// Kind returns KindXfs.
func (x *XFS) Kind() Kind { return KindXfs }

// UUID returns the 128-bit filesystem identifier, hyphenated.
func (x *XFS) UUID() (string, error) {
	id, err := uuid.FromBytes(x.raw[xfsUUIDOffset : xfsUUIDOffset+16])
	if err != nil {
		return "", ErrInvalidSuperblock
	}
	return id.String(), nil
}

// Label returns the 12-byte ASCII fname field, NUL-trimmed.
func (x *XFS) Label() (string, error) {
	return trimNUL(string(x.raw[xfsFnameOffset : xfsFnameOffset+xfsFnameLength])), nil
}

// VersionNum returns the raw big-endian versionnum field, exposed because
// it encodes which optional on-disk features this filesystem uses.
func (x *XFS) VersionNum() uint16 {
	return binary.BigEndian.Uint16(x.raw[xfsVersionNumOffset : xfsVersionNumOffset+2])
}
