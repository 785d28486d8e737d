// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package logging adapts hclog loggers to the interfaces of the CLI.
package logging

import (
	"errors"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/go-hclog"
)

// ErrNotInteractive is returned when a logger backed Ui is asked for input.
var ErrNotInteractive = errors.New("input is not supported when output is logged")

var _ cli.Ui = (*HcLogUI)(nil)

// HcLogUI is a cli.Ui that writes every message through a logger. It is
// write only: Ask and AskSecret always fail.
type HcLogUI struct {
	Log hclog.Logger

	// OutputLevel is the level command output is logged at. The zero value
	// logs at info.
	OutputLevel hclog.Level
}

func (l *HcLogUI) Ask(string) (string, error) {
	return "", ErrNotInteractive
}

func (l *HcLogUI) AskSecret(string) (string, error) {
	return "", ErrNotInteractive
}

func (l *HcLogUI) Output(message string) {
	level := l.OutputLevel
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	l.Log.Log(level, message)
}

func (l *HcLogUI) Info(message string) {
	l.Log.Info(message)
}

func (l *HcLogUI) Error(message string) {
	l.Log.Error(message)
}

func (l *HcLogUI) Warn(message string) {
	l.Log.Warn(message)
}
