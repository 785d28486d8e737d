// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import (
	"errors"
	"fmt"
)

// SkipError reports that the environment cannot satisfy a test's
// requirements. The test should be skipped, not failed.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return e.Reason
}

// FailError reports that the environment is misconfigured for a test. The
// test must be failed so the problem gets fixed.
type FailError struct {
	Reason string
}

func (e *FailError) Error() string {
	return e.Reason
}

// VerifyError reports that a bound device did not pass verification.
type VerifyError struct {
	Path string
	Err  error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("checking %s failed: %v", e.Path, e.Err)
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

func skipf(format string, args ...any) error {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

func failf(format string, args ...any) error {
	return &FailError{Reason: fmt.Sprintf(format, args...)}
}

// IsSkip returns whether err asks for the test to be skipped.
func IsSkip(err error) bool {
	var skip *SkipError
	return errors.As(err, &skip)
}

// IsFail returns whether err reports a misconfigured environment.
func IsFail(err error) bool {
	var fail *FailError
	return errors.As(err, &fail)
}
