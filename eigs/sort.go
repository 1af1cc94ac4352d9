// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eigs

import (
	"math"
	"math/cmplx"
	"sort"
)

// SortRule selects which eigenvalues are considered the "wanted" part of
// the spectrum. The rule is a total order over complex values used both to
// rank Ritz values during restarts and to order the final results.
type SortRule int

const (
	// LargestMagn selects eigenvalues with the largest magnitude.
	LargestMagn SortRule = iota
	// LargestReal selects eigenvalues with the largest real part.
	LargestReal
	// LargestImag selects eigenvalues with the largest magnitude of the
	// imaginary part.
	LargestImag
	// SmallestMagn selects eigenvalues with the smallest magnitude.
	SmallestMagn
	// SmallestReal selects eigenvalues with the smallest real part.
	SmallestReal
	// SmallestImag selects eigenvalues with the smallest magnitude of the
	// imaginary part.
	SmallestImag
)

// less reports whether a is more wanted than b under the rule.
func (r SortRule) less(a, b complex128) bool {
	switch r {
	case LargestMagn:
		return cmplx.Abs(a) > cmplx.Abs(b)
	case LargestReal:
		return real(a) > real(b)
	case LargestImag:
		return math.Abs(imag(a)) > math.Abs(imag(b))
	case SmallestMagn:
		return cmplx.Abs(a) < cmplx.Abs(b)
	case SmallestReal:
		return real(a) < real(b)
	case SmallestImag:
		return math.Abs(imag(a)) < math.Abs(imag(b))
	}
	panic(badSortRule)
}

// sortPermutation returns the permutation that orders vals by the rule.
// The sort is stable so that complex-conjugate pairs, which compare equal
// under every rule, stay adjacent in the order the eigendecomposition
// returned them.
func (r SortRule) sortPermutation(vals []complex128) []int {
	perm := make([]int, len(vals))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return r.less(vals[perm[a]], vals[perm[b]])
	})
	return perm
}
