// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package superblock

import (
	"encoding/binary"
	"io"
)

const (
	luks2StructOffset = 0
	luks2StructSize   = 208 // through the end of the 40-byte uuid field
	luks2MagicOffset  = 0
	luks2MagicSize    = 6

	luks2VersionOffset = 6
	luks2HdrSizeOffset = 8
	luks2LabelOffset   = 24
	luks2LabelLength   = 48
	luks2UUIDOffset    = 168
	luks2UUIDLength    = 40

	// luks2JSONAreaBase is where the JSON metadata area begins relative to
	// the start of the header, regardless of hdr_size.
	luks2JSONAreaBase = 4096
)

var (
	luks2Magic = [6]byte{'L', 'U', 'K', 'S', 0xba, 0xbe}
	skul2Magic = [6]byte{'S', 'K', 'U', 'L', 0xba, 0xbe}
)

// Luks2 is a parsed LUKS2 on-disk header, limited to the fields this package
// exposes directly. The richer JSON configuration area is read separately
// via ReadConfig, since it requires knowing HdrSize up front.
type Luks2 struct {
	raw []byte
}

func luks2FromReaderAt(r io.ReaderAt) (*Luks2, bool) {
	magicBuf, ok := readAt(r, luks2StructOffset+luks2MagicOffset, luks2MagicSize)
	if !ok {
		return nil, false
	}
	var m [6]byte
	copy(m[:], magicBuf)
	if m != luks2Magic && m != skul2Magic {
		return nil, false
	}

	raw, ok := readAt(r, luks2StructOffset, luks2StructSize)
	if !ok {
		return nil, false
	}
	return &Luks2{raw: raw}, true
}

// Kind returns KindLuks2.
func (l *Luks2) Kind() Kind { return KindLuks2 }

// Version returns the LUKS format version (2 for every header this package
// recognizes, since only the LUKS2/SKUL2 magics are accepted).
func (l *Luks2) Version() uint16 {
	return binary.BigEndian.Uint16(l.raw[luks2VersionOffset : luks2VersionOffset+2])
}

// HdrSize returns the total header size in bytes, including the trailing
// JSON metadata area.
func (l *Luks2) HdrSize() uint64 {
	return binary.BigEndian.Uint64(l.raw[luks2HdrSizeOffset : luks2HdrSizeOffset+8])
}

// UUID returns LUKS2's 40-byte ASCII UUID field verbatim (LUKS2 stores a
// hyphenated UUID string on disk, not a 128-bit sequence like the other
// filesystems this package detects).
func (l *Luks2) UUID() (string, error) {
	return trimNUL(string(l.raw[luks2UUIDOffset : luks2UUIDOffset+luks2UUIDLength])), nil
}

// Label returns the 48-byte ASCII label field, NUL-trimmed. LUKS2 volumes
// are commonly labeled in the JSON config area instead; this field is often
// empty.
func (l *Luks2) Label() (string, error) {
	return trimNUL(string(l.raw[luks2LabelOffset : luks2LabelOffset+luks2LabelLength])), nil
}

// ReadConfig reads and parses the JSON metadata area that follows the
// binary header: hdr_size-4096 bytes starting immediately after the fixed
// 4096-byte header region.
func (l *Luks2) ReadConfig(r io.ReaderAt) (*Luks2Config, error) {
	jsonSize := int64(l.HdrSize()) - luks2JSONAreaBase
	if jsonSize <= 0 {
		return nil, ErrInvalidSuperblock
	}

	buf, ok := readAt(r, luks2JSONAreaBase, int(jsonSize))
	if !ok {
		return nil, ErrInvalidSuperblock
	}

	return parseLuks2Config(trimNUL(string(buf)))
}
