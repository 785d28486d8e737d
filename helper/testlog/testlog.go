// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package testlog creates loggers backed by testing.T to ease logging in
// tests.
package testlog

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// Logger is the methods of testing.T (or testing.B) needed by the test
// logger.
type Logger interface {
	Logf(format string, args ...interface{})
}

// Writer implements io.Writer on top of a Logger.
type Writer struct {
	t Logger
}

// Write to an underlying Logger. Never returns an error.
func (w *Writer) Write(p []byte) (n int, err error) {
	w.t.Logf("%s", p)
	return len(p), nil
}

// HCLogger returns a new test hc-logger.
//
// Default log level is TRACE. Set DEVDAX_TEST_LOG_LEVEL for custom log level.
func HCLogger(t Logger) hclog.InterceptLogger {
	level := hclog.Trace
	envLogLevel := os.Getenv("DEVDAX_TEST_LOG_LEVEL")
	if envLogLevel != "" {
		level = hclog.LevelFromString(envLogLevel)
	}
	opts := &hclog.LoggerOptions{
		Level:           level,
		Output:          &Writer{t},
		IncludeLocation: true,
	}
	return hclog.NewInterceptLogger(opts)
}
