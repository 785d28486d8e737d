// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package logging

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/shoenig/test/must"
)

func testUI(level hclog.Level) (*HcLogUI, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Level:           hclog.Trace,
		Output:          &buf,
		DisableTime:     true,
		IncludeLocation: false,
	})
	return &HcLogUI{Log: logger, OutputLevel: level}, &buf
}

func TestHcLogUI_Levels(t *testing.T) {
	ui, buf := testUI(hclog.NoLevel)

	ui.Output("table")
	ui.Info("info")
	ui.Warn("careful")
	ui.Error("broken")

	out := buf.String()
	must.StrContains(t, out, "[INFO]  table")
	must.StrContains(t, out, "[INFO]  info")
	must.StrContains(t, out, "[WARN]  careful")
	must.StrContains(t, out, "[ERROR] broken")
}

func TestHcLogUI_OutputLevel(t *testing.T) {
	ui, buf := testUI(hclog.Debug)
	ui.Output("table")
	must.StrContains(t, buf.String(), "[DEBUG] table")
}

func TestHcLogUI_Ask(t *testing.T) {
	ui, _ := testUI(hclog.NoLevel)

	_, err := ui.Ask("name?")
	must.ErrorIs(t, err, ErrNotInteractive)

	_, err = ui.AskSecret("token?")
	must.ErrorIs(t, err, ErrNotInteractive)
}
