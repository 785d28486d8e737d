// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package version carries the build information of the devdax binary.
package version

import (
	"fmt"
	"strings"
	"time"
)

var (
	// BuildDate is the time of the git commit used to build the program,
	// in RFC3339 format. It is filled in by the linker.
	BuildDate string

	// GitCommit and GitDescribe are filled in by the linker.
	GitCommit   string
	GitDescribe string

	// Version is the main version number of the harness.
	Version = "0.1.0"

	// VersionPrerelease marks a pre-release such as "dev" or "rc1". Empty
	// means a final release.
	VersionPrerelease = "dev"

	// VersionMetadata further describes the build type.
	VersionMetadata = ""
)

// VersionInfo describes a build.
type VersionInfo struct {
	BuildDate         time.Time
	Revision          string
	Version           string
	VersionPrerelease string
	VersionMetadata   string
}

// GetVersion returns the build information of the running binary.
func GetVersion() *VersionInfo {
	ver := Version
	rel := VersionPrerelease
	if GitDescribe != "" {
		ver = GitDescribe
		rel = ""
	}

	// on parse error, will be zero value time.Time{}
	built, _ := time.Parse(time.RFC3339, BuildDate)

	return &VersionInfo{
		BuildDate:         built,
		Revision:          GitCommit,
		Version:           ver,
		VersionPrerelease: rel,
		VersionMetadata:   VersionMetadata,
	}
}

// VersionNumber returns the semantic version, e.g. 0.1.0-dev+ent.
func (c *VersionInfo) VersionNumber() string {
	version := c.Version
	if c.VersionPrerelease != "" {
		version = fmt.Sprintf("%s-%s", version, c.VersionPrerelease)
	}
	if c.VersionMetadata != "" {
		version = fmt.Sprintf("%s+%s", version, c.VersionMetadata)
	}
	return version
}

// FullVersionNumber returns the version line printed by the version
// command, followed by the build date and, if rev is set, the revision.
func (c *VersionInfo) FullVersionNumber(rev bool) string {
	lines := []string{"devdax v" + c.VersionNumber()}
	if !c.BuildDate.IsZero() {
		lines = append(lines, "BuildDate "+c.BuildDate.Format(time.RFC3339))
	}
	if rev && c.Revision != "" {
		lines = append(lines, "Revision "+c.Revision)
	}
	return strings.Join(lines, "\n")
}
