// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package framework

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/hashicorp/devdax-harness/ci"
	"github.com/hashicorp/devdax-harness/devdax"
	"github.com/hashicorp/devdax-harness/devdax/ndctl"
	"github.com/hashicorp/devdax-harness/testconfig"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-uuid"
)

// Framework runs test suites against the devices of a test configuration.
type Framework struct {
	suites []*TestSuite

	config    *testconfig.Config
	registry  *devdax.Registry
	inspector devdax.Inspector
	verifier  devdax.Verifier
	env       Environment
	logger    hclog.Logger
}

// Option configures a Framework.
type Option func(*Framework)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger hclog.Logger) Option {
	return func(f *Framework) { f.logger = logger }
}

// WithInspector replaces the ndctl based device inspection.
func WithInspector(i devdax.Inspector) Option {
	return func(f *Framework) { f.inspector = i }
}

// WithVerifier replaces the pmemdetect based device verification.
func WithVerifier(v devdax.Verifier) Option {
	return func(f *Framework) { f.verifier = v }
}

// WithEnvironment replaces the environment suite constraints are matched
// against.
func WithEnvironment(env Environment) Option {
	return func(f *Framework) { f.env = env }
}

// WithRegistry shares a requirement registry between frameworks.
func WithRegistry(r *devdax.Registry) Option {
	return func(f *Framework) { f.registry = r }
}

// New returns a Framework for the given test configuration. A nil config
// uses the defaults.
func New(config *testconfig.Config, opts ...Option) (*Framework, error) {
	if config == nil {
		config = testconfig.Default()
	}

	f := &Framework{
		config: config,
		env:    LocalEnvironment(),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.registry == nil {
		f.registry = devdax.NewRegistry()
	}

	toolOpts := func(binary string) ndctl.Options {
		return ndctl.Options{Binary: binary, Timeout: config.InspectTimeout}
	}
	if f.inspector == nil {
		f.inspector = ndctl.New(f.logger, toolOpts(config.Ndctl))
	}
	inspector, err := devdax.NewCachingInspector(f.logger, f.inspector, config.CacheSize)
	if err != nil {
		return nil, err
	}
	f.inspector = inspector

	if f.verifier == nil {
		f.verifier = ndctl.NewPmemdetect(f.logger, toolOpts(config.Pmemdetect))
	}

	return f, nil
}

// AddSuites adds test suites to the framework.
func (f *Framework) AddSuites(s ...*TestSuite) *Framework {
	f.suites = append(f.suites, s...)
	return f
}

// Registry returns the requirement registry of the framework.
func (f *Framework) Registry() *devdax.Registry {
	return f.registry
}

// RequireDevDax declares the device-dax devices the test case needs. The
// requirements are checked when the case runs.
func (f *Framework) RequireDevDax(c TestCase, reqs ...devdax.Requirement) {
	devdax.RequireDevDax(f.registry, caseName(c), reqs)
}

// RequireDevDaxFile declares the requirements kept in an HCL requirements
// file for the test case.
func (f *Framework) RequireDevDaxFile(c TestCase, path string) error {
	reqs, err := testconfig.LoadRequirements(path)
	if err != nil {
		return err
	}
	f.RequireDevDax(c, reqs...)
	return nil
}

// Run runs every suite as a subtest of t.
func (f *Framework) Run(t *testing.T) {
	for _, s := range f.suites {
		t.Run(s.Component, func(t *testing.T) {
			if s.Parallel {
				t.Parallel()
			}
			if err := s.Constraints.matches(f.env); err != nil {
				t.Skip(err.Error())
			}
			if s.Slow {
				ci.SkipSlow(t, s.Component)
			}

			for _, c := range s.Cases {
				f.runCase(t, c)
			}
		})
	}
}

// prepare decides whether the named case can run and which devices it
// gets.
func (f *Framework) prepare(name string) (*devdax.Assignment, error) {
	return devdax.Filter(f.logger, &devdax.FilterRequest{
		TestID:          name,
		Enabled:         true,
		GOOS:            f.env.OS,
		Devices:         f.config.DeviceDaxPath,
		Registry:        f.registry,
		Inspector:       f.inspector,
		MaxRequirements: f.config.MaxRequirements,
	})
}

func (f *Framework) runCase(t *testing.T, c TestCase) {
	name := caseName(c)
	t.Run(name, func(t *testing.T) {
		assignment, err := f.prepare(name)
		switch {
		case devdax.IsSkip(err):
			t.Skip(err.Error())
		case err != nil:
			t.Fatal(err.Error())
		}

		if assignment != nil {
			if err := assignment.Setup(context.Background(), f.verifier); err != nil {
				t.Fatal(err.Error())
			}
		}

		c.SetT(t)
		c.setDevDax(assignment)

		if before, ok := c.(BeforeAllTests); ok {
			before.BeforeAll(f.newF(t))
		}
		if after, ok := c.(AfterAllTests); ok {
			defer after.AfterAll(f.newF(t))
		}

		for _, method := range testMethods(c) {
			t.Run(method.Name, func(t *testing.T) {
				c.SetT(t)
				tf := f.newF(t)

				if before, ok := c.(BeforeEachTest); ok {
					before.BeforeEach(tf)
				}
				if after, ok := c.(AfterEachTest); ok {
					defer after.AfterEach(tf)
				}

				method.Func.Call([]reflect.Value{reflect.ValueOf(c), reflect.ValueOf(tf)})
			})
		}
	})
}

func (f *Framework) newF(t *testing.T) *F {
	id, err := uuid.GenerateUUID()
	if err != nil {
		t.Fatalf("failed to generate test id: %v", err)
	}
	return newF(t, id[:8])
}

var fType = reflect.TypeOf((*F)(nil))

// testMethods returns the methods of c that look like tests: exported,
// named Test*, and taking a single *F.
func testMethods(c TestCase) []reflect.Method {
	typ := reflect.TypeOf(c)

	var methods []reflect.Method
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		if !strings.HasPrefix(m.Name, "Test") {
			continue
		}
		if m.Type.NumIn() != 2 || m.Type.In(1) != fType || m.Type.NumOut() != 0 {
			continue
		}
		methods = append(methods, m)
	}
	return methods
}

// caseName returns the name of the test case, which is the name of its type
// unless the case provides its own.
func caseName(c TestCase) string {
	if name := c.Name(); name != "" {
		return name
	}

	typ := reflect.TypeOf(c)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ.Name()
}
