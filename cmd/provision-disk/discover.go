// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/blsforme/provision-disk/device"
	"github.com/blsforme/provision-disk/units"
)

func runDiscover(flags *flag.FlagSet, args []string, configPath, sysroot, logFile *string) {
	if err := flags.Parse(args); err != nil {
		fatal(err)
	}

	cfg, err := loadConfig(*configPath, *sysroot, *logFile)
	if err != nil {
		fatal(err)
	}

	pool, err := device.Discover(cfg.SysRoot)
	if err != nil {
		fatal(err)
	}

	if len(pool) == 0 {
		fmt.Println("no block devices discovered")
		return
	}

	for _, d := range pool {
		fmt.Printf("%s\t%s\n", d.DevPath(), units.HumanReadableXiB(d.Sectors()*device.SectorSize))
		for _, p := range d.Parts() {
			fmt.Printf("  %s\t%s\n", p.DevicePath, units.HumanReadableXiB(p.Size()*device.SectorSize))
		}
	}
}
