// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package testconfig loads the test configuration describing the devices
// available on a test machine.
package testconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/devdax-harness/devdax"
	"github.com/hashicorp/devdax-harness/devdax/ndctl"
	"github.com/hashicorp/devdax-harness/helper/hcl"
	"github.com/hashicorp/go-multierror"
)

const (
	// EnvConfigPath names the test configuration file when no path is
	// given explicitly.
	EnvConfigPath = "DEVDAX_TESTCONFIG"

	// EnvDevicePath overrides device_dax_path with a comma separated list
	// of device paths.
	EnvDevicePath = "DEVDAX_PATH"
)

// Config is the test configuration of a machine.
type Config struct {
	// DeviceDaxPath is the ordered pool of device-dax devices tests may
	// use. Duplicates are allowed and count as separate devices.
	DeviceDaxPath []string `hcl:"device_dax_path,optional"`

	// Ndctl and Pmemdetect locate the inspection tools.
	Ndctl      string `hcl:"ndctl,optional"`
	Pmemdetect string `hcl:"pmemdetect,optional"`

	// InspectTimeout bounds each invocation of an inspection tool.
	InspectTimeout time.Duration `hcl:"inspect_timeout,optional"`

	// CacheSize is the number of device properties remembered between
	// inspections.
	CacheSize int `hcl:"cache_size,optional"`

	// MaxRequirements, when positive, is the largest number of device-dax
	// requirements a single test may declare; tests declaring more are
	// skipped. Zero means no limit.
	MaxRequirements int `hcl:"max_requirements,optional"`
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Ndctl:           ndctl.DefaultBinary,
		Pmemdetect:      ndctl.DefaultPmemdetectBinary,
		InspectTimeout:  ndctl.DefaultTimeout,
		CacheSize:       devdax.DefaultCacheSize,
	}
}

// Copy returns a deep copy of the configuration.
func (c *Config) Copy() *Config {
	if c == nil {
		return nil
	}
	nc := *c
	nc.DeviceDaxPath = append([]string(nil), c.DeviceDaxPath...)
	return &nc
}

// Merge returns a new configuration with the set values of b taking
// precedence over those of c.
func (c *Config) Merge(b *Config) *Config {
	result := c.Copy()
	if b == nil {
		return result
	}
	if len(b.DeviceDaxPath) != 0 {
		result.DeviceDaxPath = append([]string(nil), b.DeviceDaxPath...)
	}
	if b.Ndctl != "" {
		result.Ndctl = b.Ndctl
	}
	if b.Pmemdetect != "" {
		result.Pmemdetect = b.Pmemdetect
	}
	if b.InspectTimeout != 0 {
		result.InspectTimeout = b.InspectTimeout
	}
	if b.CacheSize != 0 {
		result.CacheSize = b.CacheSize
	}
	if b.MaxRequirements != 0 {
		result.MaxRequirements = b.MaxRequirements
	}
	return result
}

// Validate returns every problem found in the configuration.
func (c *Config) Validate() error {
	var mErr *multierror.Error
	for i, p := range c.DeviceDaxPath {
		if strings.TrimSpace(p) == "" {
			mErr = multierror.Append(mErr, fmt.Errorf("device_dax_path[%d] is empty", i))
		}
	}
	if c.InspectTimeout < 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("inspect_timeout must not be negative, got %s", c.InspectTimeout))
	}
	if c.CacheSize < 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize))
	}
	if c.MaxRequirements < 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("max_requirements must not be negative, got %d", c.MaxRequirements))
	}
	return mErr.ErrorOrNil()
}

// Parse decodes an HCL test configuration on top of the defaults.
func Parse(src []byte, filename string) (*Config, error) {
	var parsed Config
	if diags := hcl.NewParser().Parse(src, &parsed, filename); diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	c := Default().Merge(&parsed)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid test configuration %s: %w", filename, err)
	}
	return c, nil
}

// Load reads the test configuration at path. An empty path falls back to
// $DEVDAX_TESTCONFIG; if that is unset too the defaults are used. In every
// case $DEVDAX_PATH, if set, replaces the configured device pool.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	c := Default()
	if path != "" {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read test configuration: %w", err)
		}
		if c, err = Parse(src, path); err != nil {
			return nil, err
		}
	}

	if env := os.Getenv(EnvDevicePath); env != "" {
		c.DeviceDaxPath = splitPaths(env)
	}
	return c, nil
}

func splitPaths(s string) []string {
	var paths []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
