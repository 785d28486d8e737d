// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package testconfig

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/devdax-harness/devdax"
	"github.com/hashicorp/devdax-harness/helper/hcl"
)

// ErrNoRequirements is returned when a requirements file declares nothing.
var ErrNoRequirements = errors.New("no devdax requirements declared")

// RequirementsFile is a set of device-dax requirements kept in HCL:
//
//	devdax "fs" {
//	  alignment = "2MiB"
//	  min_size  = "1GiB"
//	}
type RequirementsFile struct {
	DevDax []*RequirementBlock `hcl:"devdax,block"`
}

// RequirementBlock is a single devdax block. Sizes accept humanized strings
// ("2MiB", "4 KB") or plain byte counts.
type RequirementBlock struct {
	Name      string  `hcl:"name,label"`
	Alignment *uint64 `hcl:"alignment,optional"`
	MinSize   *uint64 `hcl:"min_size,optional"`
	MaxSize   *uint64 `hcl:"max_size,optional"`
}

// Requirement converts the block into a devdax.Requirement.
func (b *RequirementBlock) Requirement() devdax.Requirement {
	return devdax.Requirement{
		Name:      b.Name,
		Alignment: b.Alignment,
		MinSize:   b.MinSize,
		MaxSize:   b.MaxSize,
	}.Copy()
}

// ParseRequirements decodes a requirements file, preserving the order the
// blocks are declared in.
func ParseRequirements(src []byte, filename string) ([]devdax.Requirement, error) {
	var file RequirementsFile
	if diags := hcl.NewParser().Parse(src, &file, filename); diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}
	if len(file.DevDax) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoRequirements)
	}

	reqs := make([]devdax.Requirement, 0, len(file.DevDax))
	for _, b := range file.DevDax {
		reqs = append(reqs, b.Requirement())
	}
	return reqs, nil
}

// LoadRequirements reads and decodes the requirements file at path.
func LoadRequirements(path string) ([]devdax.Requirement, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements: %w", err)
	}
	return ParseRequirements(src, path)
}
