// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package superblock

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
)

const (
	f2fsStructOffset = 1024
	f2fsStructSize   = 1148 // through the end of the 512*u16 volume_name field
	f2fsMagicOffset  = 0
	f2fsMagicSize    = 4
	f2fsMagic        = 0xF2F52010

	f2fsUUIDOffset       = 108
	f2fsVolumeNameOffset = 124
	f2fsVolumeNameBytes  = 512 * 2 // 512 UTF-16LE code units
)

// F2FS is a parsed F2FS primary superblock, limited to the fields this
// package exposes.
type F2FS struct {
	raw []byte
}

func f2fsFromReaderAt(r io.ReaderAt) (*F2FS, bool) {
	magicBuf, ok := readAt(r, f2fsStructOffset+f2fsMagicOffset, f2fsMagicSize)
	if !ok || binary.LittleEndian.Uint32(magicBuf) != f2fsMagic {
		return nil, false
	}

	raw, ok := readAt(r, f2fsStructOffset, f2fsStructSize)
	if !ok {
		return nil, false
	}
	return &F2FS{raw: raw}, true
}

// Kind returns KindF2FS.
func (f *F2FS) Kind() Kind { return KindF2FS }

// UUID returns the 128-bit filesystem identifier, hyphenated.
func (f *F2FS) UUID() (string, error) {
	id, err := uuid.FromBytes(f.raw[f2fsUUIDOffset : f2fsUUIDOffset+16])
	if err != nil {
		return "", ErrInvalidSuperblock
	}
	return id.String(), nil
}

// Label decodes the UTF-16LE volume_name field, NUL-trimmed.
func (f *F2FS) Label() (string, error) {
	raw := f.raw[f2fsVolumeNameOffset : f2fsVolumeNameOffset+f2fsVolumeNameBytes]

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := decoder.Bytes(raw)
	if err != nil {
		return "", ErrInvalidSuperblock
	}
	return trimNUL(string(decoded)), nil
}
