// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package framework

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/hashicorp/devdax-harness/devdax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestSuite struct {
	Component string

	Cases       []TestCase
	Constraints Constraints
	Parallel    bool
	Slow        bool
}

// Environment describes the machine the tests run on.
type Environment struct {
	OS   string
	Arch string
	Tags map[string]struct{}
}

// LocalEnvironment returns the environment of the running process.
func LocalEnvironment(tags ...string) Environment {
	env := Environment{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
		Tags: make(map[string]struct{}, len(tags)),
	}
	for _, t := range tags {
		env.Tags[t] = struct{}{}
	}
	return env
}

type Constraints struct {
	OS   string
	Arch string
	Tags []string
}

func (c Constraints) matches(env Environment) error {
	if len(c.OS) != 0 && c.OS != env.OS {
		return fmt.Errorf("os constraint does not match environment")
	}

	if len(c.Arch) != 0 && c.Arch != env.Arch {
		return fmt.Errorf("arch constraint does not match environment")
	}

	for _, t := range c.Tags {
		if _, ok := env.Tags[t]; !ok {
			return fmt.Errorf("tags constraint failed, tag '%s' is not included in environment", t)
		}
	}
	return nil
}

// TestCase is the interface every test case implements, usually by
// embedding TC.
type TestCase interface {
	internalTestCase

	Name() string
}

type internalTestCase interface {
	SetT(*testing.T)
	setDevDax(*devdax.Assignment)
}

// BeforeAllTests is run once before any test of the case.
type BeforeAllTests interface {
	BeforeAll(*F)
}

// AfterAllTests is run once after every test of the case.
type AfterAllTests interface {
	AfterAll(*F)
}

// BeforeEachTest is run before each test of the case.
type BeforeEachTest interface {
	BeforeEach(*F)
}

// AfterEachTest is run after each test of the case.
type AfterEachTest interface {
	AfterEach(*F)
}

type TC struct {
	*assert.Assertions
	require *require.Assertions
	t       *testing.T

	devdax *devdax.Assignment
}

// DevDax returns the devices assigned to the case, or nil if the case
// declared no device-dax requirements.
func (tc *TC) DevDax() *devdax.Assignment {
	return tc.devdax
}

// Name returns an empty name; the framework then names the case after its
// type.
func (tc *TC) Name() string {
	return ""
}

func (tc *TC) T() *testing.T {
	return tc.t
}

func (tc *TC) SetT(t *testing.T) {
	tc.t = t
	tc.Assertions = assert.New(t)
	tc.require = require.New(t)
}

func (tc *TC) Require() *require.Assertions {
	return tc.require
}

func (tc *TC) setDevDax(a *devdax.Assignment) {
	tc.devdax = a
}

// F is handed to every test, before and after function. It carries the
// *testing.T of the running test and state shared between the before/after
// functions and the test.
type F struct {
	*assert.Assertions
	require *require.Assertions
	t       *testing.T

	id   string
	data map[string]any
}

func newF(t *testing.T, id string) *F {
	return &F{
		Assertions: assert.New(t),
		require:    require.New(t),
		t:          t,
		id:         id,
		data:       make(map[string]any),
	}
}

func (f *F) T() *testing.T {
	return f.t
}

func (f *F) Require() *require.Assertions {
	return f.require
}

// ID returns an identifier unique to the running test.
func (f *F) ID() string {
	return f.id
}

// Set stores a value for later retrieval with Value.
func (f *F) Set(key string, value any) {
	f.data[key] = value
}

// Value returns a value stored with Set.
func (f *F) Value(key string) any {
	return f.data[key]
}
