// Copyright © 2024 Blsforme Project
//
// SPDX-License-Identifier: GPL-3.0-only

// Command provision-disk discovers block devices, compiles and applies
// strategy documents against them, and inspects filesystem superblocks.
package main

import (
	"fmt"
	"os"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/leonelquinteros/gotext"
	"github.com/nightlyone/lockfile"
	flag "github.com/spf13/pflag"

	"github.com/blsforme/provision-disk/conf"
	"github.com/blsforme/provision-disk/errors"
	"github.com/blsforme/provision-disk/log"
)

func init() {
	locale := os.Getenv("LC_ALL")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	if locale == "" {
		locale = "en_US"
	}
	gotext.Configure("/usr/share/locale", locale, "provision-disk")
}

func fatal(err error) {
	if errors.IsValidationError(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	log.ErrorError(err)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	sub := os.Args[1]
	args := os.Args[2:]

	var configPath string
	var sysroot string
	var logFile string

	flags := flag.NewFlagSet(sub, flag.ExitOnError)
	flags.StringVar(&configPath, "config", "", "path to a provision-disk.yaml configuration file")
	flags.StringVar(&sysroot, "sysroot", "", "root under which /sys and /dev are resolved (overrides config)")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	switch sub {
	case "discover":
		runDiscover(flags, args, &configPath, &sysroot, &logFile)
	case "plan":
		runPlan(flags, args, &configPath, &sysroot, &logFile)
	case "apply":
		runApply(flags, args, &configPath, &sysroot, &logFile)
	case "inspect":
		runInspect(flags, args, &logFile)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintln(os.Stderr, gotext.Get("unknown subcommand %q", sub))
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, gotext.Get(`usage: provision-disk <subcommand> [flags]

subcommands:
  discover                          list discovered block devices
  plan     --strategy <file>        compile a strategy document against the pool and print the resulting plans
  apply    --strategy <file> --disk <name>
                                     like plan, but also provisions the chosen device
  inspect  <path>                    probe a path or block device for a recognized filesystem superblock`))
}

func loadConfig(configPath, sysroot, logFile string) (*conf.Config, error) {
	cfg, err := conf.Load(configPath)
	if err != nil {
		return nil, err
	}
	if sysroot != "" {
		cfg.SysRoot = sysroot
	}

	if logFile != "" {
		f, err := log.SetOutputFilename(logFile)
		if err != nil {
			return nil, errors.Wrap(err)
		}
		_ = f // left open for the process lifetime; the OS closes it on exit
	}
	log.SetLogLevel(cfg.LogLevel)

	return cfg, nil
}

// acquireLock takes an advisory process lock for the duration of apply: the
// loop-device/BLKPG surface this command drives is a process-wide kernel
// resource, so two concurrent applies must fail fast rather than race.
func acquireLock(path string) (lockfile.Lockfile, error) {
	lock, err := lockfile.New(path)
	if err != nil {
		return "", errors.Wrap(err)
	}
	if err := lock.TryLock(); err != nil {
		return "", errors.ValidationErrorf("could not acquire lock %s: %v", path, err)
	}
	return lock, nil
}

// notifyReady tells systemd this process has finished its unit of work, a
// no-op outside a systemd service context (NOTIFY_SOCKET unset).
func notifyReady() {
	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debug("systemd readiness notification failed: %v", err)
	} else if sent {
		log.Debug("notified systemd readiness")
	}
}
