// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package superblock

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

const (
	fatMagicOffset = 0x1FE
	fatMagicSize   = 2

	fatLengthOffset     = 22 // u16 LE, within the common boot-sector prefix
	fat32LengthOffset   = 36 // u32 LE, first field of the FAT32-only area
	fatSharedAreaOffset = 36 // where the FAT16/FAT32 union begins

	// Offsets of the fields shared between FAT16 and FAT32, relative to
	// where each variant's "common" sub-structure begins.
	fatCommonVolIDOffset    = 3
	fatCommonVolLabelOffset = 7
	fatCommonVolLabelLength = 11

	fat16CommonOffset = fatSharedAreaOffset // FAT16's common fields start the shared area
	fat32CommonOffset = fatSharedAreaOffset + 28 // FAT32 has 28 bytes of its own fields first

	fatBootSectorSize = 512
)

var fatMagic = [2]byte{0x55, 0xAA}

// FAT is a parsed FAT16 or FAT32 boot sector, limited to the fields this
// package exposes. Unlike the other detectors in this package, FAT is
// reached via DetectFAT, not Detect, since it shares no common union with
// the journaling filesystems.
type FAT struct {
	raw     []byte
	is32Bit bool
}

// DetectFAT probes r for a FAT16 or FAT32 boot sector.
func DetectFAT(r io.ReaderAt) (*FAT, bool) {
	magicBuf, ok := readAt(r, fatMagicOffset, fatMagicSize)
	if !ok {
		return nil, false
	}
	var m [2]byte
	copy(m[:], magicBuf)
	if m != fatMagic {
		return nil, false
	}

	raw, ok := readAt(r, 0, fatBootSectorSize)
	if !ok {
		return nil, false
	}

	fatLength := binary.LittleEndian.Uint16(raw[fatLengthOffset : fatLengthOffset+2])
	fat32Length := binary.LittleEndian.Uint32(raw[fat32LengthOffset : fat32LengthOffset+4])

	return &FAT{raw: raw, is32Bit: fatLength == 0 && fat32Length != 0}, true
}

// Kind returns KindFAT16 or KindFAT32.
func (f *FAT) Kind() Kind {
	if f.is32Bit {
		return KindFAT32
	}
	return KindFAT16
}

func (f *FAT) commonOffset() int {
	if f.is32Bit {
		return fat32CommonOffset
	}
	return fat16CommonOffset
}

// UUID renders the 32-bit volume ID as the conventional XXXX-XXXX form.
func (f *FAT) UUID() (string, error) {
	off := f.commonOffset() + fatCommonVolIDOffset
	volID := binary.LittleEndian.Uint32(f.raw[off : off+4])
	return fmt.Sprintf("%04X-%04X", volID>>16, volID&0xFFFF), nil
}

// Label returns the 11-byte ASCII volume label, space-trimmed.
func (f *FAT) Label() (string, error) {
	off := f.commonOffset() + fatCommonVolLabelOffset
	return strings.TrimRight(string(f.raw[off:off+fatCommonVolLabelLength]), " "), nil
}
