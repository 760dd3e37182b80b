// Copyright © 2018 Intel Corporation
//
// SPDX-License-Identifier: GPL-3.0-only

// Package conf resolves and loads this program's runtime configuration.
package conf

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/blsforme/provision-disk/errors"
)

const (
	// ConfigFile is the default configuration file name looked up under
	// XDG_CONFIG_HOME and the system-wide default directory.
	ConfigFile = "provision-disk.yaml"

	// DefaultConfigDir is the system wide default configuration directory
	DefaultConfigDir = "/etc/provision-disk"

	// appName is used to build the XDG config subdirectory
	appName = "provision-disk"
)

// Config is the runtime configuration for the provisioner and its CLI driver.
// Core library packages never read this directly; only the CLI driver (cmd/provision-disk)
// constructs one and threads its fields down as explicit arguments.
type Config struct {
	// SysRoot is the root under which /sys and /dev are resolved, for testing
	// against a fixture tree instead of the live kernel.
	SysRoot string `yaml:"sysroot"`

	// DeviceDir is the directory containing device nodes, normally <SysRoot>/dev.
	DeviceDir string `yaml:"device_dir"`

	// LockFile is the advisory lock acquired around apply operations.
	LockFile string `yaml:"lock_file"`

	// LogLevel is one of log.LogLevelError .. log.LogLevelVerbose.
	LogLevel int `yaml:"log_level"`

	// DefaultAlignment is the partition alignment in bytes, normally 1 MiB.
	DefaultAlignment uint64 `yaml:"default_alignment"`
}

// Default returns the compiled-in configuration defaults.
func Default() *Config {
	return &Config{
		SysRoot:          "/",
		DeviceDir:        "/dev",
		LockFile:         "/run/provision-disk.lock",
		LogLevel:         3, // log.LogLevelInfo
		DefaultAlignment: 1 << 20,
	}
}

func (c *Config) fillDefaults() {
	def := Default()

	if c.SysRoot == "" {
		c.SysRoot = def.SysRoot
	}
	if c.DeviceDir == "" {
		c.DeviceDir = def.DeviceDir
	}
	if c.LockFile == "" {
		c.LockFile = def.LockFile
	}
	if c.LogLevel == 0 {
		c.LogLevel = def.LogLevel
	}
	if c.DefaultAlignment == 0 {
		c.DefaultAlignment = def.DefaultAlignment
	}
}

// xdgConfigPath returns <XDG_CONFIG_HOME or ~/.config>/provision-disk/provision-disk.yaml
func xdgConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName, ConfigFile), nil
}

// Load resolves the configuration file in priority order: explicit path (if non-empty),
// then the XDG user config, then the system-wide default directory. If none of those
// exist, Load returns the compiled-in defaults without error.
func Load(explicit string) (*Config, error) {
	candidates := make([]string, 0, 3)

	if explicit != "" {
		candidates = append(candidates, explicit)
	}

	if xdg, err := xdgConfigPath(); err == nil {
		candidates = append(candidates, xdg)
	}

	candidates = append(candidates, filepath.Join(DefaultConfigDir, ConfigFile))

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrap(err)
		}

		cfg := &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.ValidationErrorf("parsing %s: %v", path, err)
		}

		cfg.fillDefaults()
		return cfg, nil
	}

	if explicit != "" {
		return nil, errors.ValidationErrorf("configuration file not found: %s", explicit)
	}

	return Default(), nil
}
