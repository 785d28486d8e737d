// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package ndctl inspects device-dax devices using the ndctl and pmemdetect
// tools and the kernel's sysfs view of character devices.
package ndctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultBinary is the ndctl executable looked up on PATH.
	DefaultBinary = "ndctl"

	// DefaultTimeout bounds a single invocation of an external tool.
	DefaultTimeout = 30 * time.Second
)

// ErrDeviceNotFound is returned when ndctl does not list the device.
var ErrDeviceNotFound = errors.New("device not listed by ndctl")

// runFunc executes name with args and returns its standard output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Options configures the external tools.
type Options struct {
	// Binary is the path or name of the tool. Empty uses the default.
	Binary string

	// Timeout bounds each invocation. Zero uses DefaultTimeout.
	Timeout time.Duration
}

func (o Options) binary(def string) string {
	if o.Binary == "" {
		return def
	}
	return o.Binary
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Device is one device-dax device as reported by ndctl.
type Device struct {
	// Chardev is the character device name, e.g. "dax0.0".
	Chardev string

	// Namespace is the owning namespace, e.g. "namespace0.0".
	Namespace string

	Mode      string
	Size      uint64
	Alignment uint64
}

// Path returns the device node path of the device.
func (d *Device) Path() string {
	return filepath.Join("/dev", d.Chardev)
}

// Ndctl reports device-dax sizes and alignments by listing namespaces with
// ndctl. It satisfies devdax.Inspector.
type Ndctl struct {
	binary  string
	timeout time.Duration
	logger  hclog.Logger

	run      runFunc
	isDevDax func(path string) bool
}

// New returns an Ndctl using opts.
func New(logger hclog.Logger, opts Options) *Ndctl {
	return &Ndctl{
		binary:   opts.binary(DefaultBinary),
		timeout:  opts.timeout(),
		logger:   logger.Named("ndctl"),
		run:      execOutput,
		isDevDax: isDevDax,
	}
}

// List returns every device-dax device known to ndctl.
func (n *Ndctl) List(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	out, err := n.run(ctx, n.binary, "list", "-N", "-X")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("error executing %s: %w: %s", n.binary, err, bytes.TrimSpace(exitErr.Stderr))
		}
		return nil, fmt.Errorf("error executing %s: %w", n.binary, err)
	}

	devices, err := parseList(out)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s output: %w", n.binary, err)
	}
	return devices, nil
}

// Device returns the ndctl entry for the device-dax device at path.
func (n *Ndctl) Device(path string) (*Device, error) {
	devices, err := n.List(context.Background())
	if err != nil {
		n.logger.Debug("failed to list devices", "path", path, "error", err)
		return nil, err
	}

	chardev := filepath.Base(path)
	for _, d := range devices {
		if d.Chardev == chardev {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", path, ErrDeviceNotFound)
}

func (n *Ndctl) DevSize(path string) (uint64, error) {
	d, err := n.Device(path)
	if err != nil {
		return 0, err
	}
	return d.Size, nil
}

func (n *Ndctl) DevAlignment(path string) (uint64, error) {
	d, err := n.Device(path)
	if err != nil {
		return 0, err
	}
	return d.Alignment, nil
}

// IsDevDax returns whether path is a device-dax character device.
func (n *Ndctl) IsDevDax(path string) bool {
	ok := n.isDevDax(path)
	if !ok {
		n.logger.Debug("path is not a device-dax device", "path", path)
	}
	return ok
}

type namespace struct {
	Dev       string     `json:"dev"`
	Mode      string     `json:"mode"`
	Size      uint64     `json:"size"`
	Chardev   string     `json:"chardev"`
	Align     uint64     `json:"align"`
	DaxRegion *daxRegion `json:"daxregion"`
}

type daxRegion struct {
	ID      int         `json:"id"`
	Size    uint64      `json:"size"`
	Align   uint64      `json:"align"`
	Devices []daxDevice `json:"devices"`
}

type daxDevice struct {
	Chardev string `json:"chardev"`
	Size    uint64 `json:"size"`
	Align   uint64 `json:"align"`
	Mode    string `json:"mode"`
}

// parseList parses the output of "ndctl list -N -X". ndctl prints a single
// object rather than an array when exactly one namespace exists, and
// nothing at all when there are none.
func parseList(out []byte) ([]*Device, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, nil
	}

	var namespaces []namespace
	switch out[0] {
	case '[':
		if err := json.Unmarshal(out, &namespaces); err != nil {
			return nil, err
		}
	case '{':
		var ns namespace
		if err := json.Unmarshal(out, &ns); err != nil {
			return nil, err
		}
		namespaces = append(namespaces, ns)
	default:
		return nil, fmt.Errorf("malformed output: %q", limit(out, 64))
	}

	var devices []*Device
	for _, ns := range namespaces {
		if ns.DaxRegion == nil || len(ns.DaxRegion.Devices) == 0 {
			if ns.Chardev == "" {
				continue
			}
			devices = append(devices, &Device{
				Chardev:   ns.Chardev,
				Namespace: ns.Dev,
				Mode:      ns.Mode,
				Size:      ns.Size,
				Alignment: ns.Align,
			})
			continue
		}

		for _, dd := range ns.DaxRegion.Devices {
			d := &Device{
				Chardev:   dd.Chardev,
				Namespace: ns.Dev,
				Mode:      ns.Mode,
				Size:      dd.Size,
				Alignment: dd.Align,
			}
			if dd.Mode != "" {
				d.Mode = dd.Mode
			}
			if d.Size == 0 && dd.Chardev == ns.Chardev {
				d.Size = ns.Size
			}
			if d.Alignment == 0 {
				d.Alignment = ns.Align
			}
			if d.Alignment == 0 {
				d.Alignment = ns.DaxRegion.Align
			}
			devices = append(devices, d)
		}
	}

	return devices, nil
}

func limit(b []byte, length int) []byte {
	if len(b) < length {
		return b
	}
	return b[:length]
}
