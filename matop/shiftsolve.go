// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matop

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// DenseGenRealShiftSolve is the shift-and-solve operator
// y = (A - sigma*I)⁻¹·x for a dense general matrix A and a real shift
// sigma. SetShift factorizes the shifted matrix once by LU with partial
// pivoting; each MulVec is then a pair of triangular solves.
type DenseGenRealShiftSolve struct {
	a    blas64.General
	lu   blas64.General
	ipiv []int

	factorized bool
}

// NewDenseGenRealShiftSolve returns an operator wrapping a copy of a.
// SetShift must be called before MulVec.
//
// NewDenseGenRealShiftSolve panics if a is not square.
func NewDenseGenRealShiftSolve(a blas64.General) *DenseGenRealShiftSolve {
	n := a.Rows
	if a.Cols != n {
		panic(badSquare)
	}
	c := blas64.General{Rows: n, Cols: n, Stride: max(1, n), Data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		copy(c.Data[i*c.Stride:i*c.Stride+n], a.Data[i*a.Stride:i*a.Stride+n])
	}
	return &DenseGenRealShiftSolve{a: c}
}

// Rows returns the dimension of A.
func (s *DenseGenRealShiftSolve) Rows() int { return s.a.Rows }

// SetShift factorizes A - sigma*I for subsequent solves.
//
// SetShift panics if the shifted matrix is singular to working precision,
// that is, if sigma is an eigenvalue of A.
func (s *DenseGenRealShiftSolve) SetShift(sigma float64) {
	n := s.a.Rows
	lu := blas64.General{Rows: n, Cols: n, Stride: max(1, n), Data: make([]float64, n*n)}
	copy(lu.Data, s.a.Data)
	for i := 0; i < n; i++ {
		lu.Data[i*lu.Stride+i] -= sigma
	}
	ipiv := make([]int, n)
	if !lapack64.Getrf(lu, ipiv) {
		panic(singular)
	}
	s.lu = lu
	s.ipiv = ipiv
	s.factorized = true
}

// MulVec computes dst = (A - sigma*I)⁻¹·x for the shift set by SetShift.
//
// MulVec panics if SetShift has not been called.
func (s *DenseGenRealShiftSolve) MulVec(dst, x []float64) {
	if !s.factorized {
		panic(noSetShift)
	}
	n := s.a.Rows
	switch {
	case len(dst) != n:
		panic(badLenDst)
	case len(x) != n:
		panic(badLenX)
	}
	copy(dst, x)
	lapack64.Getrs(blas.NoTrans, s.lu, blas64.General{Rows: n, Cols: 1, Stride: 1, Data: dst}, s.ipiv)
}
