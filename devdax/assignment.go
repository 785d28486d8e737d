// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-set/v3"
)

// Assignment is the result of a successful match: every requirement of a
// test bound to a real device. It is immutable once built.
type Assignment struct {
	bindings []*Binding
	byName   map[string]*Binding
}

// NewAssignment builds an Assignment from bindings. Every binding must be
// assigned and requirement names must be unique.
func NewAssignment(bindings []*Binding) (*Assignment, error) {
	names := set.New[string](len(bindings))
	a := &Assignment{
		bindings: make([]*Binding, 0, len(bindings)),
		byName:   make(map[string]*Binding, len(bindings)),
	}

	for _, b := range bindings {
		if !b.Assigned {
			return nil, fmt.Errorf("requirement %q is not assigned to a device", b.Name())
		}
		if !names.Insert(b.Name()) {
			return nil, fmt.Errorf("duplicate requirement name %q", b.Name())
		}

		nb := b.copy()
		a.bindings = append(a.bindings, &nb)
		a.byName[nb.Name()] = &nb
	}

	return a, nil
}

func (a *Assignment) String() string {
	return RequirementKey
}

// Len returns the number of bound requirements.
func (a *Assignment) Len() int {
	return len(a.bindings)
}

// Get returns a copy of the binding for the named requirement.
func (a *Assignment) Get(name string) (Binding, bool) {
	b, ok := a.byName[name]
	if !ok {
		return Binding{}, false
	}
	return b.copy(), true
}

// Path returns the device path bound to the named requirement, or the empty
// string if there is no such requirement.
func (a *Assignment) Path(name string) string {
	if b, ok := a.byName[name]; ok {
		return b.Path
	}
	return ""
}

// Names returns the requirement names in assignment order.
func (a *Assignment) Names() []string {
	names := make([]string, 0, len(a.bindings))
	for _, b := range a.bindings {
		names = append(names, b.Name())
	}
	return names
}

// Bindings returns copies of all bindings in assignment order.
func (a *Assignment) Bindings() []Binding {
	out := make([]Binding, 0, len(a.bindings))
	for _, b := range a.bindings {
		out = append(out, b.copy())
	}
	return out
}

// Setup verifies every bound device with v before the test runs. All
// failures are reported, each as a *VerifyError.
func (a *Assignment) Setup(ctx context.Context, v Verifier) error {
	var mErr *multierror.Error
	for _, b := range a.bindings {
		if err := v.Verify(ctx, b.Path); err != nil {
			mErr = multierror.Append(mErr, &VerifyError{Path: b.Path, Err: err})
		}
	}
	return mErr.ErrorOrNil()
}
