// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package superblock

import "io"

// Detect tries every registered filesystem parser, in a fixed order
// (EXT4, BTRFS, F2FS, XFS, LUKS2), and returns the first match. It returns
// ErrUnknownSuperblock if none of them recognize r's contents. FAT is not
// part of this union; use DetectFAT directly.
func Detect(r io.ReaderAt) (Superblock, error) {
	if sb, ok := ext4FromReaderAt(r); ok {
		return sb, nil
	}
	if sb, ok := btrfsFromReaderAt(r); ok {
		return sb, nil
	}
	if sb, ok := f2fsFromReaderAt(r); ok {
		return sb, nil
	}
	if sb, ok := xfsFromReaderAt(r); ok {
		return sb, nil
	}
	if sb, ok := luks2FromReaderAt(r); ok {
		return sb, nil
	}
	return nil, ErrUnknownSuperblock
}
