// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/devdax-harness/helper/pointer"
)

// Requirement describes a device-dax device a test needs. Its constraints
// never change once declared; the device bound to it during matching lives
// in a separate Binding.
//
// A nil (or zero) constraint imposes no restriction.
type Requirement struct {
	// Name identifies the device within the test and is the key the bound
	// device is looked up by in the resulting Assignment.
	Name string

	// Alignment, if set, must equal the device alignment exactly.
	Alignment *uint64

	// MinSize and MaxSize are inclusive bounds on the device size.
	MinSize *uint64
	MaxSize *uint64
}

func (r Requirement) String() string {
	return r.Name
}

// Copy returns a deep copy of the requirement.
func (r Requirement) Copy() Requirement {
	return Requirement{
		Name:      r.Name,
		Alignment: pointer.Copy(r.Alignment),
		MinSize:   pointer.Copy(r.MinSize),
		MaxSize:   pointer.Copy(r.MaxSize),
	}
}

// Equal returns whether both requirements declare the same name and
// constraints.
func (r Requirement) Equal(o Requirement) bool {
	return r.Name == o.Name &&
		pointer.Eq(r.Alignment, o.Alignment) &&
		pointer.Eq(r.MinSize, o.MinSize) &&
		pointer.Eq(r.MaxSize, o.MaxSize)
}

// Fits returns whether a device of the given size and alignment satisfies
// every constraint of the requirement.
func (r Requirement) Fits(size, alignment uint64) bool {
	if isSet(r.MinSize) && size < *r.MinSize {
		return false
	}
	if isSet(r.MaxSize) && size > *r.MaxSize {
		return false
	}
	if isSet(r.Alignment) && alignment != *r.Alignment {
		return false
	}
	return true
}

// Constraints returns a human readable summary of the declared constraints,
// e.g. "align=2.0 MiB, min=1.0 GiB".
func (r Requirement) Constraints() string {
	var parts []string
	if isSet(r.Alignment) {
		parts = append(parts, "align="+humanize.IBytes(*r.Alignment))
	}
	if isSet(r.MinSize) {
		parts = append(parts, "min="+humanize.IBytes(*r.MinSize))
	}
	if isSet(r.MaxSize) {
		parts = append(parts, "max="+humanize.IBytes(*r.MaxSize))
	}
	return strings.Join(parts, ", ")
}

func isSet(v *uint64) bool {
	return v != nil && *v != 0
}

// ParseRequirement parses a requirement from its command line form:
//
//	name[:key=value[,key=value...]]
//
// where key is one of "align", "min" or "max" and value is a byte size such
// as "4096", "2MiB" or "1 GB".
func ParseRequirement(s string) (Requirement, error) {
	name, rest, hasConstraints := strings.Cut(strings.TrimSpace(s), ":")
	if name == "" {
		return Requirement{}, fmt.Errorf("requirement %q is missing a name", s)
	}

	req := Requirement{Name: name}
	if !hasConstraints || rest == "" {
		return req, nil
	}

	for _, kv := range strings.Split(rest, ",") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return Requirement{}, fmt.Errorf("requirement %q: constraint %q must be of the form key=value", name, kv)
		}

		size, err := humanize.ParseBytes(strings.TrimSpace(value))
		if err != nil {
			return Requirement{}, fmt.Errorf("requirement %q: invalid size for %q: %w", name, key, err)
		}

		switch strings.TrimSpace(key) {
		case "align", "alignment":
			req.Alignment = pointer.Of(size)
		case "min", "min_size":
			req.MinSize = pointer.Of(size)
		case "max", "max_size":
			req.MaxSize = pointer.Of(size)
		default:
			return Requirement{}, fmt.Errorf("requirement %q: unknown constraint %q", name, key)
		}
	}

	return req, nil
}

// Binding is the per-attempt record of a Requirement bound to a real
// device. A fresh Binding is built for every matching attempt so that a
// failed attempt never leaks state into the next one.
type Binding struct {
	Requirement Requirement

	// Path, Size and Alignment are only meaningful once Assigned is true.
	Path      string
	Size      uint64
	Alignment uint64
	Assigned  bool
}

// NewBinding returns an unassigned binding for req.
func NewBinding(req Requirement) *Binding {
	return &Binding{Requirement: req.Copy()}
}

// Name returns the name of the bound requirement.
func (b *Binding) Name() string {
	return b.Requirement.Name
}

func (b *Binding) String() string {
	if !b.Assigned {
		return b.Requirement.Name
	}
	return fmt.Sprintf("%s=%s", b.Requirement.Name, b.Path)
}

// TryAssign binds the device at path if its real size and alignment satisfy
// the requirement. The binding is only modified when true is returned. A
// device that cannot be inspected is treated as one that does not fit.
//
// path must already be known to be a device-dax device.
func (b *Binding) TryAssign(inspector Inspector, path string) bool {
	size, err := inspector.DevSize(path)
	if err != nil {
		return false
	}
	alignment, err := inspector.DevAlignment(path)
	if err != nil {
		return false
	}

	if !b.Requirement.Fits(size, alignment) {
		return false
	}

	b.Path = path
	b.Size = size
	b.Alignment = alignment
	b.Assigned = true
	return true
}

func (b *Binding) copy() Binding {
	nb := *b
	nb.Requirement = b.Requirement.Copy()
	return nb
}
