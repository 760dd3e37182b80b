// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Package units converts between byte counts and their human-readable
// decimal (SI, kB/MB/GB...) or binary (IEC, KiB/MiB/GiB...) representations,
// grounded on the teacher's storage.HumanReadableSizeXB/XiB helpers.
package units

import (
	"strconv"
	"strings"

	"github.com/blsforme/provision-disk/errors"
)

// Unit identifies one of the size suffixes a strategy document may annotate
// a number with.
type Unit int

// The strategy document's recognized unit suffixes.
const (
	B Unit = iota
	KB
	MB
	GB
	TB
	KiB
	MiB
	GiB
	TiB
)

// Bytes returns the number of bytes one unit of u represents.
func (u Unit) Bytes() uint64 {
	switch u {
	case B:
		return 1
	case KB:
		return 1000
	case MB:
		return 1000 * 1000
	case GB:
		return 1000 * 1000 * 1000
	case TB:
		return 1000 * 1000 * 1000 * 1000
	case KiB:
		return 1 << 10
	case MiB:
		return 1 << 20
	case GiB:
		return 1 << 30
	case TiB:
		return 1 << 40
	default:
		return 1
	}
}

// ParseUnit parses one of b, kb, mb, gb, tb, kib, mib, gib, tib
// (case-insensitive) into a Unit.
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(s) {
	case "b":
		return B, true
	case "kb":
		return KB, true
	case "mb":
		return MB, true
	case "gb":
		return GB, true
	case "tb":
		return TB, true
	case "kib":
		return KiB, true
	case "mib":
		return MiB, true
	case "gib":
		return GiB, true
	case "tib":
		return TiB, true
	default:
		return 0, false
	}
}

type scale struct {
	suffix    string
	mask      float64
	precision int
}

var decimalScales = []scale{
	{"PB", 1e15, 5},
	{"TB", 1e12, 4},
	{"GB", 1e9, 3},
	{"MB", 1e6, 2},
	{"KB", 1e3, 1},
	{"B", 1, 0},
}

var binaryScales = []scale{
	{"PiB", 1 << 50, 5},
	{"TiB", 1 << 40, 4},
	{"GiB", 1 << 30, 3},
	{"MiB", 1 << 20, 2},
	{"KiB", 1 << 10, 1},
	{"B", 1, 0},
}

func humanReadable(scales []scale, size uint64) string {
	if size == 0 {
		return "0"
	}

	value := float64(size)
	for _, s := range scales {
		scaled := value / s.mask
		if scaled < 1.0 && s.suffix != "B" {
			continue
		}

		formatted := strconv.FormatFloat(scaled, 'f', s.precision, 64)
		if s.precision > 0 {
			formatted = strings.TrimRight(strings.TrimRight(formatted, "0"), ".")
		}
		if s.suffix != "B" {
			formatted += s.suffix
		}
		return formatted
	}

	return "0"
}

// HumanReadableXB renders size bytes as the closest decimal unit (10MB, 1GB, ...).
func HumanReadableXB(size uint64) string {
	return humanReadable(decimalScales, size)
}

// HumanReadableXiB renders size bytes as the closest binary unit (10MiB, 1GiB, ...).
func HumanReadableXiB(size uint64) string {
	return humanReadable(binaryScales, size)
}

// ParseSize parses a string like "512", "1.5gib", "40GB" into a byte count.
// A bare number with no recognized suffix is parsed as a plain byte count.
func ParseSize(str string) (uint64, error) {
	str = strings.TrimSpace(strings.ToLower(str))
	if str == "" {
		return 0, errors.ValidationErrorf("empty size")
	}

	i := len(str)
	for i > 0 && (str[i-1] < '0' || str[i-1] > '9') && str[i-1] != '.' {
		i--
	}

	numPart := str[:i]
	unitPart := str[i:]

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, errors.ValidationErrorf("invalid size %q: %v", str, err)
	}

	if unitPart == "" {
		return uint64(value), nil
	}

	unit, ok := ParseUnit(unitPart)
	if !ok {
		return 0, errors.ValidationErrorf("unknown size unit %q", unitPart)
	}

	return uint64(value * float64(unit.Bytes())), nil
}
