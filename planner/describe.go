// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package planner

import (
	"fmt"

	"github.com/blsforme/provision-disk/units"
)

func regionLine(n int, r Region) string {
	return fmt.Sprintf("#%-3d %14d..%-14d (%s)", n, r.Start, r.End, units.HumanReadableXiB(r.Size()))
}
