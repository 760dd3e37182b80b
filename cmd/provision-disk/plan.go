// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/blsforme/provision-disk/device"
	"github.com/blsforme/provision-disk/errors"
	"github.com/blsforme/provision-disk/log"
	"github.com/blsforme/provision-disk/provisioner"
	"github.com/blsforme/provision-disk/strategydoc"
)

// reportDividerWidth returns the terminal's column width when stdout is a
// real terminal, falling back to 80 columns when it's redirected to a file
// or pipe (term.GetSize errors in that case).
func reportDividerWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 80
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func buildProvisioner(sysRoot, strategyPath string) (*provisioner.Provisioner, error) {
	pool, err := device.Discover(sysRoot)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(strategyPath)
	if err != nil {
		return nil, errors.Wrap(err)
	}
	defer f.Close()

	result, err := strategydoc.Parse(f)
	if err != nil {
		return nil, err
	}
	for _, d := range result.Diagnostics {
		log.Warning("%s", d)
	}

	resolved, diags := strategydoc.ResolveInheritance(result.Strategies)
	for _, d := range diags {
		log.Warning("%s", d)
	}

	pv := provisioner.New()
	for _, d := range pool {
		pv.PushDevice(d)
	}
	for _, def := range resolved {
		pv.AddStrategy(def)
	}
	return pv, nil
}

func runPlan(flags *flag.FlagSet, args []string, configPath, sysroot, logFile *string) {
	var strategyPath string
	flags.StringVar(&strategyPath, "strategy", "", "path to a strategy document")
	if err := flags.Parse(args); err != nil {
		fatal(err)
	}
	if strategyPath == "" {
		fatal(errors.ValidationErrorf("--strategy is required"))
	}

	cfg, err := loadConfig(*configPath, *sysroot, *logFile)
	if err != nil {
		fatal(err)
	}

	pv, err := buildProvisioner(cfg.SysRoot, strategyPath)
	if err != nil {
		fatal(err)
	}

	plans := pv.Plan()
	if len(plans) == 0 {
		fmt.Println(gotext.Get("no satisfiable plan found for the given strategy document and device pool"))
		return
	}

	divider := strings.Repeat("=", reportDividerWidth())

	for i, p := range plans {
		fmt.Println(divider)
		fmt.Println(gotext.Get("plan %d/%d", i+1, len(plans)))
		fmt.Println(provisioner.NewPlanReport(p).String())
	}
}
