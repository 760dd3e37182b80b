// Copyright © 2018 Intel Corporation
//
// SPDX-License-Identifier: GPL-3.0-only

// Package cmd shells out to external helper programs (partprobe, udevadm)
// and pipes their output through the logger rather than letting it go
// straight to the terminal.
package cmd

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/blsforme/provision-disk/errors"
	"github.com/blsforme/provision-disk/log"
)

type runLogger struct{}

func (rl runLogger) Write(p []byte) (n int, err error) {
	for _, curr := range strings.Split(string(p), "\n") {
		if curr == "" {
			continue
		}

		log.Debug(curr)
	}
	return len(p), nil
}

// RunAndLog executes a command and writes its combined output to the
// default logger at debug level.
func RunAndLog(args ...string) error {
	return Run(runLogger{}, args...)
}

func run(writer io.Writer, args ...string) error {
	log.Debug("%s", strings.Join(args, " "))

	exe := args[0]
	cmdArgs := args[1:]

	c := exec.Command(exe, cmdArgs...)
	c.Stdout = writer
	c.Stderr = writer
	c.Stdin = os.Stdin

	if err := c.Run(); err != nil {
		return errors.Wrap(err)
	}
	return nil
}

// Run executes a command and uses writer for both stdout and stderr.
func Run(writer io.Writer, args ...string) error {
	return run(writer, args...)
}
