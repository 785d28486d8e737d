// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/devdax-harness/ci"
	"github.com/hashicorp/devdax-harness/helper/pointer"
	"github.com/hashicorp/devdax-harness/helper/testlog"
	"github.com/shoenig/test/must"
)

func testFilterRequest(devices []string, reqs ...Requirement) *FilterRequest {
	reg := NewRegistry()
	if len(reqs) > 0 {
		RequireDevDax(reg, "TestDevDax", reqs)
	}
	return &FilterRequest{
		TestID:   "TestDevDax",
		Enabled:  true,
		GOOS:     "linux",
		Devices:  devices,
		Registry: reg,
		Inspector: NewMockInspector(map[string]MockDevice{
			"/dev/dax0.0": {Size: gib, Alignment: 2 * mib},
			"/dev/dax1.0": {Size: 2048, Alignment: 4 * kib},
			"/dev/dax2.0": {Size: gib, Alignment: 4 * kib},
			"/dev/pmem0":  {Size: gib, Alignment: 4 * kib, NotDevDax: true},
		}),
	}
}

func TestFilter_NoRequirement(t *testing.T) {
	ci.Parallel(t)

	a, err := Filter(testlog.HCLogger(t), testFilterRequest([]string{"/dev/dax0.0"}))
	must.NoError(t, err)
	must.Nil(t, a)

	// an empty declaration is no declaration
	req := testFilterRequest([]string{"/dev/dax0.0"})
	RequireDevDax(req.Registry, req.TestID, nil)
	a, err = Filter(testlog.HCLogger(t), req)
	must.NoError(t, err)
	must.Nil(t, a)
}

func TestFilter_Windows(t *testing.T) {
	ci.Parallel(t)

	req := testFilterRequest([]string{"/dev/dax0.0"}, Requirement{Name: "dd"})
	req.GOOS = "windows"

	_, err := Filter(testlog.HCLogger(t), req)
	must.True(t, IsFail(err))
	must.EqError(t, err, `dax device functionality required by "TestDevDax" is not available on Windows. `+
		"Please disable the test for this platform")

	// a disabled test falls through to the remaining checks
	req.Enabled = false
	a, err := Filter(testlog.HCLogger(t), req)
	must.NoError(t, err)
	must.Eq(t, "/dev/dax0.0", a.Path("dd"))
}

func TestFilter_NoDevices(t *testing.T) {
	ci.Parallel(t)

	req := testFilterRequest(nil, Requirement{Name: "a"}, Requirement{Name: "b"})
	_, err := Filter(testlog.HCLogger(t), req)
	must.True(t, IsSkip(err))
	must.EqError(t, err, "No dax devices defined in testconfig")
}

func TestFilter_NotEnoughDevices(t *testing.T) {
	ci.Parallel(t)

	req := testFilterRequest([]string{"/dev/dax0.0"}, Requirement{Name: "a"}, Requirement{Name: "b"})
	_, err := Filter(testlog.HCLogger(t), req)
	must.True(t, IsSkip(err))
	must.EqError(t, err, "Not enough dax devices defined in testconfig (2 needed)")
}

// testPool returns n identical 1GiB devices. With lastNotDevDax the last
// one is not a device-dax device.
func testPool(n int, lastNotDevDax bool) ([]string, *MockInspector) {
	devices := make(map[string]MockDevice, n)
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("/dev/dax%d.0", i)
		devices[path] = MockDevice{Size: gib, Alignment: 4 * kib}
		paths = append(paths, path)
	}
	if lastNotDevDax {
		dev := devices[paths[n-1]]
		dev.NotDevDax = true
		devices[paths[n-1]] = dev
	}
	return paths, NewMockInspector(devices)
}

func testNamedRequirements(n int) []Requirement {
	reqs := make([]Requirement, 0, n)
	for i := 0; i < n; i++ {
		reqs = append(reqs, Requirement{Name: fmt.Sprintf("dd%d", i)})
	}
	return reqs
}

func TestFilter_MaxRequirements(t *testing.T) {
	ci.Parallel(t)

	t.Run("unlimited by default", func(t *testing.T) {
		paths, inspector := testPool(9, false)
		req := testFilterRequest(paths, testNamedRequirements(9)...)
		req.Inspector = inspector

		a, err := Filter(testlog.HCLogger(t), req)
		must.NoError(t, err)
		must.Eq(t, 9, a.Len())
		must.Eq(t, "/dev/dax8.0", a.Path("dd8"))
	})

	t.Run("limit skips", func(t *testing.T) {
		req := testFilterRequest([]string{"/dev/dax0.0", "/dev/dax2.0"}, Requirement{Name: "a"}, Requirement{Name: "b"})
		req.MaxRequirements = 1
		_, err := Filter(testlog.HCLogger(t), req)
		must.True(t, IsSkip(err))
		must.EqError(t, err, "Too many dax devices required (2, at most 1 can be matched)")
	})

	t.Run("not a dax device wins over the limit", func(t *testing.T) {
		paths, inspector := testPool(9, true)
		req := testFilterRequest(paths, testNamedRequirements(9)...)
		req.Inspector = inspector
		req.MaxRequirements = 8

		_, err := Filter(testlog.HCLogger(t), req)
		must.True(t, IsFail(err))
		must.EqError(t, err, "/dev/dax8.0 is not a dax device")
	})
}

func TestFilter_InspectionFailure(t *testing.T) {
	ci.Parallel(t)

	inspector := NewMockInspector(map[string]MockDevice{
		"/dev/dax0.0": {Size: gib, Alignment: 2 * mib},
		"/dev/dax1.0": {Err: errors.New(`exec: "ndctl": executable file not found in $PATH`)},
	})
	req := testFilterRequest([]string{"/dev/dax0.0", "/dev/dax1.0"}, Requirement{Name: "dd"})
	req.Inspector = inspector

	_, err := Filter(testlog.HCLogger(t), req)
	must.True(t, IsFail(err))
	must.False(t, IsSkip(err))
	must.EqError(t, err, `inspecting /dev/dax1.0 failed: exec: "ndctl": executable file not found in $PATH`)
}

func TestFilter_NotDevDax(t *testing.T) {
	ci.Parallel(t)

	inspector := NewMockInspector(map[string]MockDevice{
		"/dev/dax0.0": {Size: gib, Alignment: 2 * mib},
		"/dev/pmem0":  {Size: gib, Alignment: 4 * kib, NotDevDax: true},
	})
	req := testFilterRequest([]string{"/dev/dax0.0", "/dev/pmem0"}, Requirement{Name: "a"})
	req.Inspector = inspector

	_, err := Filter(testlog.HCLogger(t), req)
	must.True(t, IsFail(err))
	must.EqError(t, err, "/dev/pmem0 is not a dax device")

	// validation happens before any matching
	must.Eq(t, 0, inspector.Calls("/dev/dax0.0"))
}

func TestFilter_NoAssignment(t *testing.T) {
	ci.Parallel(t)

	req := testFilterRequest([]string{"/dev/dax1.0"}, Requirement{Name: "dd", MinSize: pointer.Of(uint64(4096))})
	_, err := Filter(testlog.HCLogger(t), req)
	must.True(t, IsSkip(err))
	must.False(t, IsFail(err))
	must.EqError(t, err, "Dax devices in test configuration do not meet test requirements")
}

func TestFilter_DuplicateNames(t *testing.T) {
	ci.Parallel(t)

	req := testFilterRequest([]string{"/dev/dax0.0", "/dev/dax2.0"}, Requirement{Name: "dd"}, Requirement{Name: "dd"})
	_, err := Filter(testlog.HCLogger(t), req)
	must.True(t, IsFail(err))
	must.ErrorContains(t, err, `"dd" is declared more than once`)
}

func TestFilter_Assigned(t *testing.T) {
	ci.Parallel(t)

	req := testFilterRequest(
		[]string{"/dev/dax0.0", "/dev/dax2.0"},
		Requirement{Name: "any"},
		Requirement{Name: "small_align", Alignment: pointer.Of(4 * kib)},
	)

	a, err := Filter(testlog.HCLogger(t), req)
	must.NoError(t, err)
	must.NotNil(t, a)
	must.Eq(t, "/dev/dax0.0", a.Path("any"))
	must.Eq(t, "/dev/dax2.0", a.Path("small_align"))

	b, ok := a.Get("small_align")
	must.True(t, ok)
	must.Eq(t, 4*kib, b.Alignment)
}

func TestIsSkipIsFail(t *testing.T) {
	ci.Parallel(t)

	must.False(t, IsSkip(nil))
	must.False(t, IsFail(nil))
	must.True(t, IsSkip(skipf("skip %d", 1)))
	must.True(t, IsFail(failf("fail %d", 1)))
	must.False(t, IsSkip(failf("fail")))
}
