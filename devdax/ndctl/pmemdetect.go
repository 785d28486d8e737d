// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package ndctl

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultPmemdetectBinary is the pmemdetect executable looked up on PATH.
const DefaultPmemdetectBinary = "pmemdetect"

func execCombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Pmemdetect verifies devices by running "pmemdetect -d" against them. It
// satisfies devdax.Verifier.
type Pmemdetect struct {
	binary  string
	timeout time.Duration
	logger  hclog.Logger

	run runFunc
}

// NewPmemdetect returns a Pmemdetect using opts.
func NewPmemdetect(logger hclog.Logger, opts Options) *Pmemdetect {
	return &Pmemdetect{
		binary:  opts.binary(DefaultPmemdetectBinary),
		timeout: opts.timeout(),
		logger:  logger.Named("pmemdetect"),
		run:     execCombinedOutput,
	}
}

// Verify returns an error carrying the tool output if pmemdetect does not
// accept path as a device-dax device.
func (p *Pmemdetect) Verify(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.run(ctx, p.binary, "-d", path)
	if err != nil {
		p.logger.Debug("device verification failed", "path", path, "error", err)
		return fmt.Errorf("%s -d %s failed: %w\n%s", p.binary, path, err, bytes.TrimSpace(out))
	}
	return nil
}
