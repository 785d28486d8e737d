// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package ci

import (
	"os"
	"strconv"
	"strings"
	"testing"
)

const (
	// EnvSlowTest enables tests that walk large search spaces.
	EnvSlowTest = "DEVDAX_SLOW_TEST"

	// EnvRealDevices lists, comma separated, device-dax devices that tests
	// may inspect with the real tools. They are only read, never written.
	EnvRealDevices = "DEVDAX_REAL_DEVICES"
)

// SkipSlow skips a slow test unless DEVDAX_SLOW_TEST is set to a true value.
func SkipSlow(t *testing.T, reason string) {
	run, err := strconv.ParseBool(os.Getenv(EnvSlowTest))
	if !run || err != nil {
		t.Skipf("Skipping slow test: %s", reason)
	}
}

// RealDevices returns the device-dax devices named by DEVDAX_REAL_DEVICES,
// skipping the test when there are none.
func RealDevices(t *testing.T) []string {
	devices := splitDevices(os.Getenv(EnvRealDevices))
	if len(devices) == 0 {
		t.Skipf("Skipping test against real devices: %s is not set", EnvRealDevices)
	}
	return devices
}

func splitDevices(s string) []string {
	var devices []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.TrimSpace(d); d != "" {
			devices = append(devices, d)
		}
	}
	return devices
}

// Parallel runs t in parallel, unless CI is set to a true value.
//
// In CI we get better performance by running tests in serial while not
// restricting GOMAXPROCS.
func Parallel(t *testing.T) {
	isCI, err := strconv.ParseBool(os.Getenv("CI"))
	if !isCI || err != nil {
		t.Parallel()
	}
}
