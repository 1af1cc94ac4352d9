// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eigs

// NewGenEigsRealShift returns a shift-invert solver computing the nev
// eigenvalues of A closest to the real shift sigma, using an operator that
// solves (A-σI)·dst = x. The Arnoldi iteration runs on the transformed
// spectrum ν = 1/(λ-σ), where the eigenvalues near σ are extremal, and the
// wanted Ritz values are mapped back through λ = 1/ν + σ before the final
// ordering.
//
// rule ranks the transformed values ν during the iteration; LargestMagn
// selects the eigenvalues closest to sigma.
//
// The preconditions on nev and ncv are those of NewGenEigs.
func NewGenEigsRealShift(op RealShiftSolver, nev, ncv int, rule SortRule, sigma float64) *GenEigs {
	op.SetShift(sigma)
	g := NewGenEigs(op, nev, ncv, rule)
	g.transform = func(nu complex128) complex128 {
		return 1/nu + complex(sigma, 0)
	}
	return g
}
