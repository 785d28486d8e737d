// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/devdax-harness/devdax"
	"github.com/hashicorp/devdax-harness/testconfig"
	"github.com/shoenig/test/must"
)

const (
	mib = uint64(1) << 20
	gib = uint64(1) << 30
)

// testDevices is the device table most command tests inspect.
func testDevices() map[string]devdax.MockDevice {
	return map[string]devdax.MockDevice{
		"/dev/dax0.0": {Size: 1 * gib, Alignment: 2 * mib},
		"/dev/dax1.0": {Size: 16 * gib, Alignment: 1 * gib},
	}
}

// testConfig writes a test configuration with the given device pool and
// returns its path. The device pool override from the environment is
// cleared for the duration of the test.
func testConfig(t *testing.T, devices ...string) string {
	t.Helper()
	t.Setenv(testconfig.EnvDevicePath, "")
	t.Setenv(testconfig.EnvConfigPath, "")

	quoted := make([]string, 0, len(devices))
	for _, d := range devices {
		quoted = append(quoted, `"`+d+`"`)
	}
	src := "device_dax_path = [" + strings.Join(quoted, ", ") + "]\n"

	path := filepath.Join(t.TempDir(), "testconfig.hcl")
	must.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// testMeta returns a Meta writing to a mock Ui and inspecting devices
// through a mock.
func testMeta(devices map[string]devdax.MockDevice, verifier devdax.Verifier) (Meta, *cli.MockUi) {
	ui := cli.NewMockUi()
	return Meta{
		Ui:        ui,
		inspector: devdax.NewMockInspector(devices),
		verifier:  verifier,
	}, ui
}

// outputRow returns the first output line starting with prefix.
func outputRow(out, prefix string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}
