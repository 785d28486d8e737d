// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/devdax-harness/devdax"
	flaghelper "github.com/hashicorp/devdax-harness/helper/flags"
	"github.com/hashicorp/devdax-harness/testconfig"
	"github.com/posener/complete"
)

const (
	// checkTestID is the test the requirements given on the command line
	// are registered for.
	checkTestID = "devdax-check"

	// Exit codes of the check command.
	exitAssigned = 0
	exitFailure  = 1
	exitSkip     = 2
)

type CheckCommand struct {
	Meta
}

func (c *CheckCommand) Help() string {
	helpText := `
Usage: devdax check [options] <requirement>...

  Check whether the configured device-dax devices satisfy a set of
  requirements, the way a test declaring them would be filtered, and print
  the device bound to each requirement.

  A requirement is a name optionally followed by constraints:

    name[:align=<size>,min=<size>,max=<size>]

  Sizes accept units such as 4KiB, 2MiB or 1GB.

  The command exits with status 0 when every requirement is bound to a
  device, 2 when a test declaring the requirements would be skipped and 1
  on a misconfiguration or any other error.

General Options:

  ` + generalOptionsUsage() + `

Check Options:

  -device=<path>
    Check against the given device instead of the configured device pool.
    May be given more than once; the order of the flags is the order of
    the pool and a device given twice counts as two devices.

  -requirements=<path>
    Read requirements from an HCL file of devdax blocks. May be given more
    than once; requirements from files come before those given as
    arguments.

  -verify
    Run the device verification tool against every bound device.
`
	return strings.TrimSpace(helpText)
}

func (c *CheckCommand) Synopsis() string {
	return "Check the configured devices against device-dax requirements"
}

func (c *CheckCommand) AutocompleteFlags() complete.Flags {
	return mergeAutocompleteFlags(c.Meta.AutocompleteFlags(FlagSetConfig),
		complete.Flags{
			"-device":       complete.PredictFiles("/dev/dax*"),
			"-requirements": complete.PredictFiles("*.hcl"),
			"-verify":       complete.PredictNothing,
		})
}

func (c *CheckCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *CheckCommand) Name() string { return "check" }

func (c *CheckCommand) Run(args []string) int {
	var reqFiles, devices flaghelper.StringFlag
	var verify bool

	flags := c.Meta.FlagSet(c.Name(), FlagSetConfig)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.Var(&reqFiles, "requirements", "")
	flags.Var(&devices, "device", "")
	flags.BoolVar(&verify, "verify", false, "")

	if err := flags.Parse(args); err != nil {
		return exitFailure
	}

	logger, err := c.logger()
	if err != nil {
		c.Ui.Error(err.Error())
		c.Ui.Error(commandErrorText(c))
		return exitFailure
	}
	c.setupLogUI(logger)

	var reqs []devdax.Requirement
	for _, path := range reqFiles {
		fileReqs, err := testconfig.LoadRequirements(path)
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Error loading requirements: %s", err))
			return exitFailure
		}
		reqs = append(reqs, fileReqs...)
	}
	for _, arg := range flags.Args() {
		req, err := devdax.ParseRequirement(arg)
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Error parsing requirement: %s", err))
			c.Ui.Error(commandErrorText(c))
			return exitFailure
		}
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		c.Ui.Error("This command takes at least one requirement")
		c.Ui.Error(commandErrorText(c))
		return exitFailure
	}

	config, err := c.loadConfig()
	if err != nil {
		c.Ui.Error(err.Error())
		return exitFailure
	}
	if len(devices) != 0 {
		config.DeviceDaxPath = devices
	}

	inspector, err := c.newInspector(logger, config)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error setting up device inspection: %s", err))
		return exitFailure
	}

	registry := devdax.NewRegistry()
	devdax.RequireDevDax(registry, checkTestID, reqs)

	assignment, err := devdax.Filter(logger, &devdax.FilterRequest{
		TestID:          checkTestID,
		Enabled:         true,
		Devices:         config.DeviceDaxPath,
		Registry:        registry,
		Inspector:       inspector,
		MaxRequirements: config.MaxRequirements,
	})
	switch {
	case devdax.IsSkip(err):
		c.Ui.Warn(wrapAtLength(fmt.Sprintf("Skipped: %s", err)))
		return exitSkip
	case err != nil:
		c.Ui.Error(wrapAtLength(fmt.Sprintf("Failed: %s", err)))
		return exitFailure
	}

	if verify {
		if err := assignment.Setup(context.Background(), c.newVerifier(logger, config)); err != nil {
			c.Ui.Error(fmt.Sprintf("Device verification failed: %s", err))
			return exitFailure
		}
	}

	c.Ui.Output(c.Colorize().Color("[bold]Assignment[reset]"))
	c.Ui.Output(formatAssignment(assignment))
	return exitAssigned
}

// formatAssignment renders one row per binding, in assignment order.
func formatAssignment(a *devdax.Assignment) string {
	rows := make([]string, 0, a.Len()+1)
	rows = append(rows, "Name|Path|Size|Alignment|Constraints")
	for _, b := range a.Bindings() {
		rows = append(rows, fmt.Sprintf("%s|%s|%s|%s|%s",
			b.Name(), b.Path, formatBytes(b.Size), formatBytes(b.Alignment),
			b.Requirement.Constraints()))
	}
	return formatList(rows)
}
