// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

//go:build linux

package ndctl

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// sysfsRoot is where the kernel exposes character device attributes.
var sysfsRoot = "/sys"

// isDevDax reports whether path is a character device whose sysfs
// subsystem is "dax".
func isDevDax(path string) bool {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return false
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		return false
	}

	rdev := uint64(st.Rdev)
	subsystem := filepath.Join(sysfsRoot, "dev", "char",
		fmt.Sprintf("%d:%d", unix.Major(rdev), unix.Minor(rdev)), "subsystem")

	target, err := filepath.EvalSymlinks(subsystem)
	if err != nil {
		return false
	}
	return filepath.Base(target) == "dax"
}
