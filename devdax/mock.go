// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// MockDevice describes a device known to a MockInspector.
type MockDevice struct {
	Size      uint64
	Alignment uint64

	// NotDevDax makes IsDevDax report false for the device.
	NotDevDax bool

	// Err, if set, is returned by every size and alignment query.
	Err error
}

// MockInspector is an Inspector backed by a fixed table of devices. Unknown
// paths are not device-dax devices.
type MockInspector struct {
	Devices map[string]MockDevice

	l     sync.Mutex
	calls map[string]int
}

// NewMockInspector returns a MockInspector for devices.
func NewMockInspector(devices map[string]MockDevice) *MockInspector {
	return &MockInspector{
		Devices: devices,
		calls:   make(map[string]int),
	}
}

func (m *MockInspector) lookup(path string) (MockDevice, error) {
	m.l.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[path]++
	m.l.Unlock()

	dev, ok := m.Devices[path]
	if !ok {
		return MockDevice{}, fmt.Errorf("no such device: %s", path)
	}
	if dev.Err != nil {
		return MockDevice{}, dev.Err
	}
	return dev, nil
}

func (m *MockInspector) DevSize(path string) (uint64, error) {
	dev, err := m.lookup(path)
	return dev.Size, err
}

func (m *MockInspector) DevAlignment(path string) (uint64, error) {
	dev, err := m.lookup(path)
	return dev.Alignment, err
}

func (m *MockInspector) IsDevDax(path string) bool {
	dev, ok := m.Devices[path]
	return ok && !dev.NotDevDax
}

// Calls returns the number of size and alignment queries made for path.
func (m *MockInspector) Calls(path string) int {
	m.l.Lock()
	defer m.l.Unlock()
	return m.calls[path]
}

// MockVerifier is a Verifier that fails for the paths in Failures, using
// the mapped value as the tool output.
type MockVerifier struct {
	Failures map[string]string

	l        sync.Mutex
	verified []string
}

func (m *MockVerifier) Verify(_ context.Context, path string) error {
	m.l.Lock()
	m.verified = append(m.verified, path)
	m.l.Unlock()

	if out, ok := m.Failures[path]; ok {
		return errors.New(out)
	}
	return nil
}

// Verified returns every path passed to Verify, in call order.
func (m *MockVerifier) Verified() []string {
	m.l.Lock()
	defer m.l.Unlock()
	return append([]string(nil), m.verified...)
}
