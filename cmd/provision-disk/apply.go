// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/leonelquinteros/gotext"
	flag "github.com/spf13/pflag"

	"github.com/blsforme/provision-disk/cmd"
	"github.com/blsforme/provision-disk/errors"
	"github.com/blsforme/provision-disk/log"
	"github.com/blsforme/provision-disk/orchestrate"
	"github.com/blsforme/provision-disk/provisioner"
	"github.com/blsforme/provision-disk/utils"
)

func runApply(flags *flag.FlagSet, args []string, configPath, sysroot, logFile *string) {
	var strategyPath string
	var diskVariable string
	var sparseSizeMiB uint64
	flags.StringVar(&strategyPath, "strategy", "", "path to a strategy document")
	flags.StringVar(&diskVariable, "disk", "", "the find-disk variable name identifying which plan's device to apply")
	flags.Uint64Var(&sparseSizeMiB, "sparse-size-mib", 0, "size in MiB of the sparse backing file to create, if --sysroot/--disk names a path that doesn't yet exist")
	if err := flags.Parse(args); err != nil {
		fatal(err)
	}
	if strategyPath == "" || diskVariable == "" {
		fatal(errors.ValidationErrorf("--strategy and --disk are both required"))
	}
	if !utils.IsRoot() {
		fatal(errors.ValidationErrorf("apply requires root: loop-device attach and BLKPG both need CAP_SYS_ADMIN"))
	}

	cfg, err := loadConfig(*configPath, *sysroot, *logFile)
	if err != nil {
		fatal(err)
	}

	lock, err := acquireLock(cfg.LockFile)
	if err != nil {
		fatal(err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warning("failed to release lock %s: %v", cfg.LockFile, err)
		}
	}()

	pv, err := buildProvisioner(cfg.SysRoot, strategyPath)
	if err != nil {
		fatal(err)
	}

	plans := pv.Plan()
	var chosen *provisioner.Plan
	var knownVariables []string
	for i := range plans {
		if _, ok := plans[i].Assignments[diskVariable]; ok {
			chosen = &plans[i]
			break
		}
		for name := range plans[i].Assignments {
			if !utils.StringSliceContains(knownVariables, name) {
				knownVariables = append(knownVariables, name)
			}
		}
	}
	if chosen == nil {
		fatal(errors.ValidationErrorf("no plan assigns a device to %q (known find-disk variables: %v)", diskVariable, knownVariables))
	}

	dp := chosen.Assignments[diskVariable]
	if !dp.Applied {
		fatal(errors.ValidationErrorf("strategy apply failed for %s before orchestration could begin", dp.Device.DevPath()))
	}

	target := orchestrate.Target{
		Path:            dp.Device.DevPath(),
		SparseSizeBytes: sparseSizeMiB << 20,
	}

	result, err := orchestrate.Run(target, dp.Planner, cfg.SysRoot)
	if err != nil {
		fatal(err)
	}

	fmt.Println(gotext.Get("provisioned %s with %d partitions", result.DevicePath, len(result.Partitions)))

	for _, postSync := range []string{"partprobe", "udevadm"} {
		var cmdArgs []string
		switch postSync {
		case "partprobe":
			cmdArgs = []string{"partprobe", "--summary", result.DevicePath}
		case "udevadm":
			cmdArgs = []string{"udevadm", "settle"}
		}
		if err := cmd.RunAndLog(cmdArgs...); err != nil {
			log.Warning("%s refresh failed (continuing): %v", postSync, err)
		}
	}

	notifyReady()
}
