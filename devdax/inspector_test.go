// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import (
	"errors"
	"testing"

	"github.com/hashicorp/devdax-harness/ci"
	"github.com/hashicorp/devdax-harness/helper/testlog"
	"github.com/shoenig/test/must"
)

func TestCachingInspector(t *testing.T) {
	ci.Parallel(t)

	mock := NewMockInspector(map[string]MockDevice{
		"/dev/dax0.0": {Size: gib, Alignment: 2 * mib},
		"/dev/dax1.0": {Err: errors.New("no ndctl")},
	})
	c, err := NewCachingInspector(testlog.HCLogger(t), mock, 0)
	must.NoError(t, err)

	for i := 0; i < 3; i++ {
		size, err := c.DevSize("/dev/dax0.0")
		must.NoError(t, err)
		must.Eq(t, gib, size)

		align, err := c.DevAlignment("/dev/dax0.0")
		must.NoError(t, err)
		must.Eq(t, 2*mib, align)
	}
	must.Eq(t, 2, mock.Calls("/dev/dax0.0"))

	// errors are not cached
	for i := 0; i < 2; i++ {
		_, err := c.DevSize("/dev/dax1.0")
		must.Error(t, err)
	}
	must.Eq(t, 2, mock.Calls("/dev/dax1.0"))

	must.True(t, c.IsDevDax("/dev/dax0.0"))
	must.False(t, c.IsDevDax("/dev/dax9.0"))

	c.Purge()
	_, err = c.DevSize("/dev/dax0.0")
	must.NoError(t, err)
	must.Eq(t, 3, mock.Calls("/dev/dax0.0"))
}

func TestCachingInspector_Matcher(t *testing.T) {
	ci.Parallel(t)

	mock := NewMockInspector(map[string]MockDevice{
		"A": {Size: gib, Alignment: 4 * kib},
		"B": {Size: gib, Alignment: 4 * kib},
	})
	c, err := NewCachingInspector(testlog.HCLogger(t), mock, 8)
	must.NoError(t, err)

	// three requirements, two devices: every ordering fails
	reqs := []Requirement{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	_, ok := NewMatcher(testlog.HCLogger(t), c).Match([]string{"A", "B"}, reqs)
	must.False(t, ok)

	// one size and one alignment query per device, however many orderings
	must.Eq(t, 2, mock.Calls("A"))
	must.Eq(t, 2, mock.Calls("B"))
}
