// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/devdax-harness/devdax"
	"github.com/shoenig/test/must"
)

func TestCheckCommand_Implements(t *testing.T) {
	var _ cli.Command = &CheckCommand{}
}

func TestCheckCommand_Fails(t *testing.T) {
	config := testConfig(t, "/dev/dax0.0")

	t.Run("no requirements", func(t *testing.T) {
		meta, ui := testMeta(testDevices(), nil)
		cmd := &CheckCommand{Meta: meta}

		code := cmd.Run([]string{"-config", config})
		must.Eq(t, exitFailure, code)
		must.StrContains(t, ui.ErrorWriter.String(), "at least one requirement")
		must.StrContains(t, ui.ErrorWriter.String(), commandErrorText(cmd))
	})

	t.Run("bad requirement", func(t *testing.T) {
		meta, ui := testMeta(testDevices(), nil)
		cmd := &CheckCommand{Meta: meta}

		code := cmd.Run([]string{"-config", config, "fs:align=bogus"})
		must.Eq(t, exitFailure, code)
		must.StrContains(t, ui.ErrorWriter.String(), "Error parsing requirement")
	})

	t.Run("bad log level", func(t *testing.T) {
		meta, ui := testMeta(testDevices(), nil)
		cmd := &CheckCommand{Meta: meta}

		code := cmd.Run([]string{"-config", config, "-log-level", "loud", "fs"})
		must.Eq(t, exitFailure, code)
		must.StrContains(t, ui.ErrorWriter.String(), `invalid log level "loud"`)
	})

	t.Run("missing config", func(t *testing.T) {
		meta, ui := testMeta(testDevices(), nil)
		cmd := &CheckCommand{Meta: meta}

		code := cmd.Run([]string{"-config", filepath.Join(t.TempDir(), "nope.hcl"), "fs"})
		must.Eq(t, exitFailure, code)
		must.StrContains(t, ui.ErrorWriter.String(), "failed to read test configuration")
	})

	t.Run("missing requirements file", func(t *testing.T) {
		meta, ui := testMeta(testDevices(), nil)
		cmd := &CheckCommand{Meta: meta}

		code := cmd.Run([]string{"-config", config, "-requirements", filepath.Join(t.TempDir(), "nope.hcl")})
		must.Eq(t, exitFailure, code)
		must.StrContains(t, ui.ErrorWriter.String(), "Error loading requirements")
	})
}

func TestCheckCommand_Assigned(t *testing.T) {
	config := testConfig(t, "/dev/dax0.0", "/dev/dax1.0")
	meta, ui := testMeta(testDevices(), nil)
	cmd := &CheckCommand{Meta: meta}

	code := cmd.Run([]string{"-config", config, "fs:align=1GiB", "log:max=2GiB"})
	must.Eq(t, exitAssigned, code, must.Sprint(ui.ErrorWriter.String()))

	out := ui.OutputWriter.String()
	must.StrContains(t, out, "Assignment")
	must.StrContains(t, outputRow(out, "Name"), "Constraints")
	must.StrContains(t, outputRow(out, "fs "), "/dev/dax1.0")
	must.StrContains(t, outputRow(out, "fs "), "align=1.0 GiB")
	must.StrContains(t, outputRow(out, "log "), "/dev/dax0.0")
	must.StrContains(t, outputRow(out, "log "), "2.0 MiB")
}

func TestCheckCommand_RequirementsFile(t *testing.T) {
	config := testConfig(t, "/dev/dax0.0", "/dev/dax1.0")

	reqs := filepath.Join(t.TempDir(), "requirements.hcl")
	must.NoError(t, os.WriteFile(reqs, []byte(`
devdax "fs" {
  alignment = "1GiB"
}
`), 0o644))

	meta, ui := testMeta(testDevices(), nil)
	cmd := &CheckCommand{Meta: meta}

	code := cmd.Run([]string{"-config", config, "-requirements", reqs, "any"})
	must.Eq(t, exitAssigned, code, must.Sprint(ui.ErrorWriter.String()))

	out := ui.OutputWriter.String()
	must.StrContains(t, outputRow(out, "fs "), "/dev/dax1.0")
	must.StrContains(t, outputRow(out, "any "), "/dev/dax0.0")
}

func TestCheckCommand_Skip(t *testing.T) {
	cases := []struct {
		name    string
		devices []string
		args    []string
		reason  string
	}{
		{
			name:   "no devices",
			args:   []string{"fs"},
			reason: "No dax devices defined in testconfig",
		},
		{
			name:    "not enough devices",
			devices: []string{"/dev/dax0.0"},
			args:    []string{"fs", "log"},
			reason:  "Not enough dax devices defined in testconfig (2 needed)",
		},
		{
			name:    "no match",
			devices: []string{"/dev/dax0.0", "/dev/dax1.0"},
			args:    []string{"big:min=32GiB"},
			reason:  "do not meet test requirements",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := testConfig(t, tc.devices...)
			meta, ui := testMeta(testDevices(), nil)
			cmd := &CheckCommand{Meta: meta}

			code := cmd.Run(append([]string{"-config", config}, tc.args...))
			must.Eq(t, exitSkip, code)
			must.StrContains(t, ui.ErrorWriter.String(), "Skipped: ")
			must.StrContains(t, ui.ErrorWriter.String(), tc.reason)
			must.Eq(t, "", ui.OutputWriter.String())
		})
	}
}

func TestCheckCommand_NotDevDax(t *testing.T) {
	config := testConfig(t, "/dev/dax0.0", "/dev/pmem0")
	meta, ui := testMeta(testDevices(), nil)
	cmd := &CheckCommand{Meta: meta}

	code := cmd.Run([]string{"-config", config, "fs"})
	must.Eq(t, exitFailure, code)
	must.StrContains(t, ui.ErrorWriter.String(), "Failed: /dev/pmem0 is not a dax device")
}

func TestCheckCommand_Verify(t *testing.T) {
	t.Run("passes", func(t *testing.T) {
		config := testConfig(t, "/dev/dax0.0", "/dev/dax1.0")
		verifier := &devdax.MockVerifier{}
		meta, ui := testMeta(testDevices(), verifier)
		cmd := &CheckCommand{Meta: meta}

		code := cmd.Run([]string{"-config", config, "-verify", "fs:align=1GiB", "log"})
		must.Eq(t, exitAssigned, code, must.Sprint(ui.ErrorWriter.String()))
		must.Eq(t, []string{"/dev/dax1.0", "/dev/dax0.0"}, verifier.Verified())
	})

	t.Run("fails", func(t *testing.T) {
		config := testConfig(t, "/dev/dax0.0", "/dev/dax1.0")
		verifier := &devdax.MockVerifier{Failures: map[string]string{
			"/dev/dax1.0": "bad device",
		}}
		meta, ui := testMeta(testDevices(), verifier)
		cmd := &CheckCommand{Meta: meta}

		code := cmd.Run([]string{"-config", config, "-verify", "fs:align=1GiB"})
		must.Eq(t, exitFailure, code)
		must.StrContains(t, ui.ErrorWriter.String(), "Device verification failed")
		must.StrContains(t, ui.ErrorWriter.String(), "checking /dev/dax1.0 failed: bad device")
	})
}

func TestCheckCommand_AutocompleteFlags(t *testing.T) {
	cmd := &CheckCommand{}
	flags := cmd.AutocompleteFlags()
	for _, name := range []string{"-config", "-log-level", "-requirements", "-verify"} {
		_, ok := flags[name]
		must.True(t, ok, must.Sprintf("missing completion for %s", name))
	}
}

func TestCheckCommand_DeviceFlag(t *testing.T) {
	config := testConfig(t)
	meta, ui := testMeta(testDevices(), nil)
	cmd := &CheckCommand{Meta: meta}

	code := cmd.Run([]string{"-config", config, "-device", "/dev/dax0.0", "-device", "/dev/dax0.0", "a", "b"})
	must.Eq(t, exitAssigned, code, must.Sprint(ui.ErrorWriter.String()))

	out := ui.OutputWriter.String()
	must.StrContains(t, outputRow(out, "a "), "/dev/dax0.0")
	must.StrContains(t, outputRow(out, "b "), "/dev/dax0.0")
}
