// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

/*
Package framework implements a model for developing test suites that need
device-dax devices. The model includes a top level Framework which TestSuites
can be added to. TestSuites include conditions under which the suite will run
and a list of TestCase implementations to run. TestCases can be implemented
with methods that run before/after each and all tests.

# Writing Tests

Tests follow a similar pattern as go tests. They are methods that must start
with 'Test' and instead of a *testing.T argument, a *framework.F is passed.
The receiver must implement the TestCase interface, usually by embedding TC.

	type PoolTestCase struct {
		framework.TC
	}

	func (tc *PoolTestCase) TestMapDevice(f *framework.F) {
		path := tc.DevDax().Path("pool")
		f.NotEmpty(path)
	}

	func TestPool(t *testing.T) {
		config, err := testconfig.Load("")
		require.NoError(t, err)

		fw, err := framework.New(config)
		require.NoError(t, err)

		tc := new(PoolTestCase)
		fw.RequireDevDax(tc, devdax.Requirement{
			Name:      "pool",
			Alignment: pointer.Of(uint64(2 << 20)),
		})

		fw.AddSuites(&framework.TestSuite{
			Component: "pool",
			Cases:     []framework.TestCase{tc},
		}).Run(t)
	}

By default a case is named after its type, "PoolTestCase" above; a case may
implement Name() to choose another name. Requirements are registered against
that name.

# Device-dax requirements

Before any test of a case runs, its registered requirements are matched
against the device_dax_path pool of the test configuration:

  - a case without requirements always runs and DevDax() returns nil
  - missing or unsuitable devices skip the case
  - a configured path that is not a device-dax device fails the case, as does
    running an enabled case on a platform without device-dax support

The assigned devices are verified with pmemdetect before the tests run and
are available through tc.DevDax().

# Before and After

Test cases may optionally implement additional interfaces to define setup
and teardown logic:

	BeforeEachTest
	AfterEachTest
	BeforeAllTests
	AfterAllTests

The *framework.F handed to every function offers ID(), unique to the running
test, and Set/Value to pass state from BeforeEach to the test and AfterEach.

# Testify Integration

TC and F embed testify assertions preconfigured with the current testing
context, and both offer Require() if that flavor is desired.
*/
package framework
