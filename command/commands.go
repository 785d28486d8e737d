// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"os"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/devdax-harness/version"
	colorable "github.com/mattn/go-colorable"
)

const (
	// EnvDevDaxCLINoColor is an env var that toggles colored UI output.
	EnvDevDaxCLINoColor = `DEVDAX_CLI_NO_COLOR`

	// EnvDevDaxCLIForceColor is an env var that forces colored UI output.
	EnvDevDaxCLIForceColor = `DEVDAX_CLI_FORCE_COLOR`
)

// Commands returns the mapping of CLI commands for devdax. The meta
// parameter lets you set meta options for all commands.
func Commands(metaPtr *Meta) map[string]cli.CommandFactory {
	if metaPtr == nil {
		metaPtr = new(Meta)
	}

	meta := *metaPtr
	if meta.Ui == nil {
		meta.Ui = &cli.BasicUi{
			Reader:      os.Stdin,
			Writer:      colorable.NewColorableStdout(),
			ErrorWriter: colorable.NewColorableStderr(),
		}
	}

	all := map[string]cli.CommandFactory{
		"check": func() (cli.Command, error) {
			return &CheckCommand{
				Meta: meta,
			}, nil
		},
		"list": func() (cli.Command, error) {
			return &ListCommand{
				Meta: meta,
			}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{
				Version: version.GetVersion(),
				Ui:      meta.Ui,
			}, nil
		},
	}

	return all
}
