// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eigs computes a few eigenvalues and eigenvectors of a large
// general real matrix with the implicitly restarted Arnoldi method.
//
// The matrix is accessed only through the MatOp interface, typically a
// matrix-vector product y = A·x or, for the shift-invert variant, a shifted
// solve y = (A-σI)⁻¹·x. The engine builds an orthonormal Krylov basis V and
// the Hessenberg projection H = Vᵀ·A·V, takes eigenpairs of H (Ritz pairs)
// as approximations to eigenpairs of A, and repeatedly shrinks and
// re-extends the subspace with implicitly shifted QR steps until the wanted
// Ritz pairs converge.
package eigs // import "github.com/jamestjsp/spectra/eigs"

// epsilon is the distance from 1 to the next larger float64, the unit
// roundoff used to derive the deflation and convergence thresholds.
const epsilon = 0x1p-52

// MatOp is the linear operator driving the Arnoldi iteration.
type MatOp interface {
	// Rows returns the dimension of the operator.
	Rows() int

	// MulVec computes dst = op(x). dst and x have length Rows and must
	// not overlap.
	MulVec(dst, x []float64)
}

// RealShiftSolver is a MatOp whose product is the shifted solve
// dst = (A - sigma*I)⁻¹·x. SetShift must be called before MulVec.
type RealShiftSolver interface {
	MatOp

	// SetShift sets the shift value for subsequent solves.
	SetShift(sigma float64)
}
