// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eigs

import (
	"math"

	"gonum.org/v1/gonum/blas/blas64"
)

// DoubleShiftQR performs one implicit double-shift QR step on an upper
// Hessenberg matrix H using a real shift pair (s, t) that represents the
// complex-conjugate shifts μ and conj(μ) with s = μ+conj(μ) and
// t = μ·conj(μ).
//
// The step is mathematically equivalent to factoring
//
//	(H - μ·I)·(H - conj(μ)·I) = Q·R
//
// by Householder QR and forming Qᵀ·H·Q, but all arithmetic stays real and
// Q is never materialized. Because the shifted product is banded around the
// diagonal, each elimination needs only a 3-element Householder reflector
// applied to a constant-width window, so the step costs O(n) reflectors of
// O(n) work each instead of a dense O(n³) factorization.
//
// Sub-diagonal entries of H whose magnitude is below eps^0.9 are treated as
// exact zeros, splitting H into independent diagonal blocks that are
// reduced separately.
//
// The zero value is ready for use with Compute.
type DoubleShiftQR struct {
	n    int
	h    blas64.General // Working copy of H, updated in place to QᵀHQ.
	s, t float64
	u    []float64 // 3-element reflectors, u[3k:3k+3]; all-zero means identity.
	prec float64

	computed bool
}

// NewDoubleShiftQR computes a double-shift QR step on h with the shift pair
// (s, t). It is equivalent to calling Compute on a zero DoubleShiftQR.
//
// NewDoubleShiftQR panics if h is not square.
func NewDoubleShiftQR(h blas64.General, s, t float64) *DoubleShiftQR {
	var qr DoubleShiftQR
	qr.Compute(h, s, t)
	return &qr
}

// Compute performs the double-shift QR step on h with the shift pair
// (s, t). Only the upper Hessenberg part of h is referenced; h itself is
// not modified.
//
// Compute panics if h is not square.
func (qr *DoubleShiftQR) Compute(h blas64.General, s, t float64) {
	n := h.Rows
	if h.Cols != n {
		panic(badSquare)
	}
	qr.n = n
	qr.s = s
	qr.t = t
	qr.prec = math.Pow(epsilon, 0.9)
	qr.u = make([]float64, 3*n)

	// Copy the upper triangle and the sub-diagonal, dropping anything
	// below.
	qr.h = blas64.General{Rows: n, Cols: n, Stride: max(1, n), Data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		for j := max(0, i-1); j < n; j++ {
			qr.h.Data[i*qr.h.Stride+j] = h.Data[i*h.Stride+j]
		}
	}

	if n == 0 {
		qr.computed = true
		return
	}

	// Negligible sub-diagonal entries split H into independent diagonal
	// blocks. Zero them exactly and record the block boundaries.
	zeroInd := make([]int, 1, n+1)
	for i := 1; i < n-1; i++ {
		if math.Abs(qr.h.Data[i*qr.h.Stride+i-1]) <= qr.prec {
			qr.h.Data[i*qr.h.Stride+i-1] = 0
			zeroInd = append(zeroInd, i)
		}
	}
	zeroInd = append(zeroInd, n)

	for b := 0; b < len(zeroInd)-1; b++ {
		start := zeroInd[b]
		end := zeroInd[b+1] - 1
		qr.reduceBlock(start, end-start+1)
		// The reflectors only touched the diagonal block. Apply them to
		// the flanks so that the whole matrix is transformed: the block
		// of columns to the right from the left, and the block of rows
		// above from the right.
		if end < n-1 && end-start >= 2 {
			for j := start; j < end; j++ {
				qr.applyLeft(j, end+1, min(3, end-j+1), n-1-end, j)
			}
		}
		if start > 0 && end-start >= 2 {
			for j := start; j < end; j++ {
				qr.applyRight(qr.h, 0, j, start, min(3, end-j+1), j)
			}
		}
	}

	qr.computed = true
}

// reduceBlock performs the double-shift step on the m×m diagonal block with
// top-left corner (start, start), chasing the bulge down the sub-diagonal.
// The block has no zero sub-diagonal entries.
func (qr *DoubleShiftQR) reduceBlock(start, m int) {
	// Blocks of size 1 or 2 need no reduction.
	if m == 1 {
		qr.setReflector(0, 0, 0, start)
		return
	}
	if m == 2 {
		qr.setReflector(0, 0, 0, start)
		qr.setReflector(0, 0, 0, start+1)
		return
	}

	ld := qr.h.Stride
	at := func(i, j int) float64 { return qr.h.Data[(start+i)*ld+start+j] }

	// First column of (H-μI)(H-conj(μ)I) restricted to the block.
	x := at(0, 0)*(at(0, 0)-qr.s) + at(0, 1)*at(1, 0) + qr.t
	y := at(1, 0) * (at(0, 0) + at(1, 1) - qr.s)
	z := at(2, 1) * at(1, 0)
	qr.setReflector(x, y, z, start)
	// Introduce the bulge.
	qr.applyLeft(start, start, 3, m, start)
	qr.applyRight(qr.h, start, start, min(m, 4), 3, start)

	// Chase the bulge down one row at a time. Each reflector eliminates
	// the two entries below the sub-diagonal in column i-1 and is applied
	// only to the rows and columns it touches.
	for i := 1; i < m-2; i++ {
		qr.setReflector(at(i, i-1), at(i+1, i-1), at(i+2, i-1), start+i)
		qr.applyLeft(start+i, start+i-1, 3, m-i+1, start+i)
		qr.applyRight(qr.h, start, start+i, min(m, i+4), 3, start+i)
		// The eliminated entries are zero in exact arithmetic. Store them
		// as such so the result is exactly upper Hessenberg.
		qr.h.Data[(start+i+1)*ld+start+i-1] = 0
		qr.h.Data[(start+i+2)*ld+start+i-1] = 0
	}

	// The bulge ends at the bottom two rows, where a 2-element reflector
	// finishes the step.
	qr.setReflector(at(m-2, m-3), at(m-1, m-3), 0, start+m-2)
	qr.setReflector(0, 0, 0, start+m-1)
	qr.applyLeft(start+m-2, start+m-3, 2, 3, start+m-2)
	qr.applyRight(qr.h, start, start+m-2, m, 2, start+m-2)
	qr.h.Data[(start+m-1)*ld+start+m-3] = 0
}

// setReflector stores the unit Householder vector eliminating x2 and x3
// from (x1,x2,x3) as reflector k. A vector with negligible norm is stored
// as zero and acts as the identity.
func (qr *DoubleShiftQR) setReflector(x1, x2, x3 float64, k int) {
	tmp := x2*x2 + x3*x3
	// x1' = x1 - rho*||x|| with rho = -sign(x1) to avoid cancellation.
	var rho float64
	switch {
	case x1 < 0:
		rho = 1
	case x1 > 0:
		rho = -1
	}
	x1new := x1 - rho*math.Sqrt(x1*x1+tmp)
	norm := math.Sqrt(x1new*x1new + tmp)
	u := qr.u[3*k : 3*k+3]
	if norm <= qr.prec {
		u[0], u[1], u[2] = 0, 0, 0
		return
	}
	u[0] = x1new / norm
	u[1] = x2 / norm
	u[2] = x3 / norm
}

// applyLeft overwrites the nr×nc block of the working matrix at (r, c)
// with P·X where P = I - 2·u·uᵀ for reflector k and nr is 2 or 3.
func (qr *DoubleShiftQR) applyLeft(r, c, nr, nc, k int) {
	u := qr.u[3*k : 3*k+3]
	u0 := math.Sqrt2 * u[0]
	u1 := math.Sqrt2 * u[1]
	u2 := math.Sqrt2 * u[2]
	if u0*u0+u1*u1+u2*u2 <= qr.prec {
		return
	}
	ld := qr.h.Stride
	x0 := qr.h.Data[r*ld:]
	x1 := qr.h.Data[(r+1)*ld:]
	if nr == 2 {
		for j := c; j < c+nc; j++ {
			tmp := u0*x0[j] + u1*x1[j]
			x0[j] -= tmp * u0
			x1[j] -= tmp * u1
		}
		return
	}
	x2 := qr.h.Data[(r+2)*ld:]
	for j := c; j < c+nc; j++ {
		tmp := u0*x0[j] + u1*x1[j] + u2*x2[j]
		x0[j] -= tmp * u0
		x1[j] -= tmp * u1
		x2[j] -= tmp * u2
	}
}

// applyRight overwrites the nr×nc block of a at (r, c) with X·P where
// P = I - 2·u·uᵀ for reflector k and nc is 2 or 3.
func (qr *DoubleShiftQR) applyRight(a blas64.General, r, c, nr, nc, k int) {
	u := qr.u[3*k : 3*k+3]
	u0 := math.Sqrt2 * u[0]
	u1 := math.Sqrt2 * u[1]
	u2 := math.Sqrt2 * u[2]
	if u0*u0+u1*u1+u2*u2 <= qr.prec {
		return
	}
	for i := r; i < r+nr; i++ {
		row := a.Data[i*a.Stride:]
		if nc == 2 {
			tmp := u0*row[c] + u1*row[c+1]
			row[c] -= tmp * u0
			row[c+1] -= tmp * u1
			continue
		}
		tmp := u0*row[c] + u1*row[c+1] + u2*row[c+2]
		row[c] -= tmp * u0
		row[c+1] -= tmp * u1
		row[c+2] -= tmp * u2
	}
}

// MatrixQtHQ returns a copy of the transformed matrix QᵀHQ, which is again
// upper Hessenberg.
//
// MatrixQtHQ panics if Compute has not been called.
func (qr *DoubleShiftQR) MatrixQtHQ() blas64.General {
	if !qr.computed {
		panic(noCompute)
	}
	n := qr.n
	res := blas64.General{Rows: n, Cols: n, Stride: max(1, n), Data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		copy(res.Data[i*res.Stride:i*res.Stride+n], qr.h.Data[i*qr.h.Stride:i*qr.h.Stride+n])
	}
	return res
}

// ApplyQtY overwrites y with Qᵀ·y where Q = P₀·P₁·… is the accumulated
// orthogonal factor of the step. y must have length n.
//
// ApplyQtY panics if Compute has not been called.
func (qr *DoubleShiftQR) ApplyQtY(y []float64) {
	if !qr.computed {
		panic(noCompute)
	}
	if len(y) != qr.n {
		panic(badLenY)
	}
	for k := 0; k < qr.n-1; k++ {
		u := qr.u[3*k : 3*k+3]
		if u[0]*u[0]+u[1]*u[1]+u[2]*u[2] <= qr.prec {
			continue
		}
		// The third component is exactly zero for the trailing
		// reflector, so y[k+2] is never touched out of range.
		dot := y[k]*u[0] + y[k+1]*u[1]
		if math.Abs(u[2]) > qr.prec {
			dot += y[k+2] * u[2]
		}
		dot *= 2
		y[k] -= dot * u[0]
		y[k+1] -= dot * u[1]
		if math.Abs(u[2]) > qr.prec {
			y[k+2] -= dot * u[2]
		}
	}
}

// ApplyYQ overwrites y with y·Q where Q = P₀·P₁·… is the accumulated
// orthogonal factor of the step. y must have n columns.
//
// ApplyYQ panics if Compute has not been called.
func (qr *DoubleShiftQR) ApplyYQ(y blas64.General) {
	if !qr.computed {
		panic(noCompute)
	}
	if y.Cols != qr.n {
		panic(badDim)
	}
	if qr.n < 2 {
		return
	}
	for k := 0; k < qr.n-2; k++ {
		qr.applyRight(y, 0, k, y.Rows, 3, k)
	}
	qr.applyRight(y, 0, qr.n-2, y.Rows, 2, qr.n-2)
}
