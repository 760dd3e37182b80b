// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/blsforme/provision-disk/errors"
	"github.com/blsforme/provision-disk/superblock"
)

func runInspect(flags *flag.FlagSet, args []string, logFile *string) {
	if err := flags.Parse(args); err != nil {
		fatal(err)
	}
	remaining := flags.Args()
	if len(remaining) != 1 {
		fatal(errors.ValidationErrorf("inspect takes exactly one path argument"))
	}
	path := remaining[0]

	f, err := os.Open(path)
	if err != nil {
		fatal(errors.Wrap(err))
	}
	defer f.Close()

	sb, err := superblock.Detect(f)
	if err != nil {
		fatal(err)
	}

	uuid, uuidErr := sb.UUID()
	label, labelErr := sb.Label()

	fmt.Printf("path:  %s\n", path)
	fmt.Printf("kind:  %s\n", sb.Kind())
	if uuidErr == nil {
		fmt.Printf("uuid:  %s\n", uuid)
	}
	if labelErr == nil && label != "" {
		fmt.Printf("label: %s\n", label)
	}
}
