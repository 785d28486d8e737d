// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import (
	"runtime"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-set/v3"
)

// unsupportedOS lists the platforms without device-dax support.
var unsupportedOS = map[string]string{
	"windows": "Windows",
}

// FilterRequest carries everything Filter needs to decide whether a test
// can run against the configured devices.
type FilterRequest struct {
	// TestID identifies the test in Registry.
	TestID string

	// Enabled is false when the test has already been disabled for the
	// current platform.
	Enabled bool

	// GOOS overrides runtime.GOOS when set.
	GOOS string

	// Devices is the configured device pool, in configuration order.
	Devices []string

	Registry  *Registry
	Inspector Inspector

	// MaxRequirements, when positive, bounds the number of requirements a
	// test may declare. Zero means no limit.
	MaxRequirements int
}

// Filter decides whether the test in req can run and which devices it gets.
// Checks run in order and the first one to fail decides the outcome:
//
//   - no device-dax requirement registered: nil, nil
//   - platform without device-dax support and the test enabled: *FailError
//   - no devices configured, or fewer than required: *SkipError
//   - a configured path that is not a device-dax device: *FailError
//   - a configured device whose size or alignment cannot be read: *FailError
//   - a requirement name declared twice: *FailError
//   - more requirements than a positive MaxRequirements: *SkipError
//   - no assignment of devices to requirements: *SkipError
//
// Otherwise the assignment is returned.
func Filter(logger hclog.Logger, req *FilterRequest) (*Assignment, error) {
	logger = logger.Named("filter").With("test", req.TestID)

	required, _ := Requirements(req.Registry, req.TestID)
	if len(required) == 0 {
		return nil, nil
	}

	goos := req.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	if platform, ok := unsupportedOS[goos]; ok && req.Enabled {
		return nil, failf("dax device functionality required by %q is not available on %s. "+
			"Please disable the test for this platform", req.TestID, platform)
	}

	if len(req.Devices) == 0 {
		return nil, skipf("No dax devices defined in testconfig")
	}

	if len(required) > len(req.Devices) {
		return nil, skipf("Not enough dax devices defined in testconfig (%d needed)", len(required))
	}

	for _, path := range req.Devices {
		if !req.Inspector.IsDevDax(path) {
			return nil, failf("%s is not a dax device", path)
		}
	}

	// A device that cannot be inspected points at a broken tool, not at a
	// device too small for the test.
	for _, path := range req.Devices {
		if _, err := req.Inspector.DevSize(path); err != nil {
			return nil, failf("inspecting %s failed: %v", path, err)
		}
		if _, err := req.Inspector.DevAlignment(path); err != nil {
			return nil, failf("inspecting %s failed: %v", path, err)
		}
	}

	names := set.New[string](len(required))
	for _, r := range required {
		if !names.Insert(r.Name) {
			return nil, failf("dax device requirement %q is declared more than once by %q", r.Name, req.TestID)
		}
	}

	if req.MaxRequirements > 0 && len(required) > req.MaxRequirements {
		return nil, skipf("Too many dax devices required (%d, at most %d can be matched)",
			len(required), req.MaxRequirements)
	}

	bindings, ok := NewMatcher(logger, req.Inspector).Match(req.Devices, required)
	if !ok {
		return nil, skipf("Dax devices in test configuration do not meet test requirements")
	}

	assignment, err := NewAssignment(bindings)
	if err != nil {
		return nil, failf("invalid dax device requirements for %q: %v", req.TestID, err)
	}

	logger.Debug("assigned dax devices", "devices", bindings)
	return assignment, nil
}
