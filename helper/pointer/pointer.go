// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package pointer provides helper functions related to Go pointers.
package pointer

// Primitive represents basic types that are safe to do basic comparisons by
// pointer dereference (checking nullity first).
type Primitive interface {
	~string | ~bool | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Of returns a pointer to a.
func Of[A any](a A) *A {
	return &a
}

// Copy returns a new pointer to the value pointed to by a, or nil if a is nil.
func Copy[A any](a *A) *A {
	if a == nil {
		return nil
	}
	na := *a
	return &na
}

// Eq returns whether a and b are equal in underlying value.
//
// May only be used on pointers to primitive types, where the comparison is
// guaranteed to be sensible.
func Eq[P Primitive](a, b *P) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Deref returns the value pointed to by a, or the zero value of A if a is nil.
func Deref[A any](a *A) A {
	if a == nil {
		var zero A
		return zero
	}
	return *a
}
