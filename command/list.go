// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"fmt"
	"strings"

	"github.com/hashicorp/devdax-harness/devdax"
	"github.com/hashicorp/go-hclog"
	"github.com/posener/complete"
)

type ListCommand struct {
	Meta
}

func (c *ListCommand) Help() string {
	helpText := `
Usage: devdax list [options]

  List the device-dax devices of the test configuration in configuration
  order, together with whether each one really is a device-dax device and
  its size and alignment.

General Options:

  ` + generalOptionsUsage()
	return strings.TrimSpace(helpText)
}

func (c *ListCommand) Synopsis() string {
	return "List the configured device-dax devices"
}

func (c *ListCommand) AutocompleteFlags() complete.Flags {
	return c.Meta.AutocompleteFlags(FlagSetConfig)
}

func (c *ListCommand) AutocompleteArgs() complete.Predictor {
	return complete.PredictNothing
}

func (c *ListCommand) Name() string { return "list" }

func (c *ListCommand) Run(args []string) int {
	flags := c.Meta.FlagSet(c.Name(), FlagSetConfig)
	flags.Usage = func() { c.Ui.Output(c.Help()) }

	if err := flags.Parse(args); err != nil {
		return 1
	}

	if len(flags.Args()) != 0 {
		c.Ui.Error("This command takes no arguments")
		c.Ui.Error(commandErrorText(c))
		return 1
	}

	logger, err := c.logger()
	if err != nil {
		c.Ui.Error(err.Error())
		c.Ui.Error(commandErrorText(c))
		return 1
	}
	c.setupLogUI(logger)

	config, err := c.loadConfig()
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	if len(config.DeviceDaxPath) == 0 {
		c.Ui.Output("No dax devices defined in testconfig")
		return 0
	}

	inspector, err := c.newInspector(logger, config)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error setting up device inspection: %s", err))
		return 1
	}

	rows := make([]string, 0, len(config.DeviceDaxPath)+1)
	rows = append(rows, "Path|DevDax|Size|Alignment")
	for _, path := range config.DeviceDaxPath {
		rows = append(rows, deviceRow(logger, inspector, path))
	}

	c.Ui.Output(formatList(rows))
	return 0
}

// deviceRow describes a single configured device. Properties that cannot be
// read are left empty.
func deviceRow(logger hclog.Logger, inspector devdax.Inspector, path string) string {
	if !inspector.IsDevDax(path) {
		return fmt.Sprintf("%s|false||", path)
	}

	size, err := inspector.DevSize(path)
	if err != nil {
		logger.Warn("failed to read device size", "path", path, "error", err)
	}
	alignment, err := inspector.DevAlignment(path)
	if err != nil {
		logger.Warn("failed to read device alignment", "path", path, "error", err)
	}
	return fmt.Sprintf("%s|true|%s|%s", path, formatBytes(size), formatBytes(alignment))
}
