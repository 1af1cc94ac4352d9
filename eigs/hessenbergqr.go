// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eigs

import (
	"math"

	"gonum.org/v1/gonum/blas/blas64"
)

// UpperHessenbergQR computes the QR factorization of an upper Hessenberg
// matrix H using n-1 Givens rotations,
//
//	H = Q·R,  Q = G₀·G₁·…·G_{n-2},
//
// and applies the orthogonal factor to vectors and matrices. It performs
// the single (real) shift step of an implicit restart: with the diagonal of
// H shifted by μ beforehand, RQ+μI equals QᵀHQ for the shift μ.
//
// The zero value is ready for use with Compute.
type UpperHessenbergQR struct {
	n    int
	r    blas64.General // Upper triangular factor.
	c, s []float64      // Rotation cosines and sines.

	computed bool
}

// Compute performs the QR factorization of h. Only the upper Hessenberg
// part of h is referenced; h itself is not modified.
//
// Compute panics if h is not square.
func (qr *UpperHessenbergQR) Compute(h blas64.General) {
	n := h.Rows
	if h.Cols != n {
		panic(badSquare)
	}
	qr.n = n
	qr.r = blas64.General{Rows: n, Cols: n, Stride: max(1, n), Data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		for j := max(0, i-1); j < n; j++ {
			qr.r.Data[i*qr.r.Stride+j] = h.Data[i*h.Stride+j]
		}
	}
	qr.c = make([]float64, max(0, n-1))
	qr.s = make([]float64, max(0, n-1))

	ld := qr.r.Stride
	for i := 0; i < n-1; i++ {
		// Rotation in the (i, i+1) plane eliminating the sub-diagonal
		// entry of column i.
		xi := qr.r.Data[i*ld+i]
		xj := qr.r.Data[(i+1)*ld+i]
		r := math.Hypot(xi, xj)
		if r <= epsilon {
			r = 0
			qr.c[i] = 1
			qr.s[i] = 0
		} else {
			qr.c[i] = xi / r
			qr.s[i] = -xj / r
		}
		qr.r.Data[i*ld+i] = r
		qr.r.Data[(i+1)*ld+i] = 0
		// Update the remainder of the two rows.
		c, s := qr.c[i], qr.s[i]
		for j := i + 1; j < n; j++ {
			tmp := qr.r.Data[i*ld+j]
			qr.r.Data[i*ld+j] = c*tmp - s*qr.r.Data[(i+1)*ld+j]
			qr.r.Data[(i+1)*ld+j] = s*tmp + c*qr.r.Data[(i+1)*ld+j]
		}
	}

	qr.computed = true
}

// MatrixR returns a copy of the upper triangular factor R.
//
// MatrixR panics if Compute has not been called.
func (qr *UpperHessenbergQR) MatrixR() blas64.General {
	if !qr.computed {
		panic(noCompute)
	}
	n := qr.n
	res := blas64.General{Rows: n, Cols: n, Stride: max(1, n), Data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		copy(res.Data[i*res.Stride:i*res.Stride+n], qr.r.Data[i*qr.r.Stride:i*qr.r.Stride+n])
	}
	return res
}

// MatrixRQ returns the product R·Q, which is again upper Hessenberg and
// equals QᵀHQ.
//
// MatrixRQ panics if Compute has not been called.
func (qr *UpperHessenbergQR) MatrixRQ() blas64.General {
	if !qr.computed {
		panic(noCompute)
	}
	rq := qr.MatrixR()
	ld := rq.Stride
	for i := 0; i < qr.n-1; i++ {
		// Right-multiplication by Gᵢ mixes columns i and i+1. Column i
		// gains a sub-diagonal entry in row i+1, restoring the
		// Hessenberg profile.
		c, s := qr.c[i], qr.s[i]
		for r := 0; r <= i+1; r++ {
			ri := rq.Data[r*ld+i]
			rj := rq.Data[r*ld+i+1]
			rq.Data[r*ld+i] = c*ri - s*rj
			rq.Data[r*ld+i+1] = s*ri + c*rj
		}
	}
	return rq
}

// ApplyQtY overwrites y with Qᵀ·y. y must have length n.
//
// ApplyQtY panics if Compute has not been called.
func (qr *UpperHessenbergQR) ApplyQtY(y []float64) {
	if !qr.computed {
		panic(noCompute)
	}
	if len(y) != qr.n {
		panic(badLenY)
	}
	for i := 0; i < qr.n-1; i++ {
		c, s := qr.c[i], qr.s[i]
		yi := y[i]
		y[i] = c*yi - s*y[i+1]
		y[i+1] = s*yi + c*y[i+1]
	}
}

// ApplyYQ overwrites y with y·Q. y must have n columns.
//
// ApplyYQ panics if Compute has not been called.
func (qr *UpperHessenbergQR) ApplyYQ(y blas64.General) {
	if !qr.computed {
		panic(noCompute)
	}
	if y.Cols != qr.n {
		panic(badDim)
	}
	for i := 0; i < qr.n-1; i++ {
		c, s := qr.c[i], qr.s[i]
		for r := 0; r < y.Rows; r++ {
			row := y.Data[r*y.Stride:]
			yi := row[i]
			row[i] = c*yi - s*row[i+1]
			row[i+1] = s*yi + c*row[i+1]
		}
	}
}
