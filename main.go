// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/devdax-harness/command"
	"github.com/hashicorp/devdax-harness/version"
	colorable "github.com/mattn/go-colorable"
)

func main() {
	os.Exit(Run(os.Args[1:]))
}

func Run(args []string) int {
	// Create the meta object
	metaPtr := new(command.Meta)
	metaPtr.SetupUi(args)

	cli := &cli.CLI{
		Name:                       "devdax",
		Version:                    version.GetVersion().FullVersionNumber(false),
		Args:                       args,
		Commands:                   command.Commands(metaPtr),
		Autocomplete:               true,
		AutocompleteNoDefaultFlags: true,
		HelpFunc:                   cli.BasicHelpFunc("devdax"),
		HelpWriter:                 colorable.NewColorableStdout(),
	}

	exitCode, err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err.Error())
		return 1
	}

	return exitCode
}
