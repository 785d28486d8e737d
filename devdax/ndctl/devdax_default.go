// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

//go:build !linux

package ndctl

// isDevDax always reports false; device-dax only exists on Linux.
func isDevDax(string) bool {
	return false
}
