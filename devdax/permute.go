// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package devdax

import "iter"

// permutations yields every ordering of the indices 0..n-1 in lexicographic
// order, starting with the identity. The yielded slice is reused between
// iterations and must not be retained. n == 0 yields a single empty
// ordering.
func permutations(n int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}

		for {
			if !yield(idx) {
				return
			}

			// find the rightmost ascent
			i := n - 2
			for i >= 0 && idx[i] >= idx[i+1] {
				i--
			}
			if i < 0 {
				return
			}

			j := n - 1
			for idx[j] <= idx[i] {
				j--
			}
			idx[i], idx[j] = idx[j], idx[i]

			for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
				idx[l], idx[r] = idx[r], idx[l]
			}
		}
	}
}
