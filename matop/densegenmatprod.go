// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matop

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// DenseGenMatProd is the matrix-vector product operator y = A·x for a
// dense general matrix A.
type DenseGenMatProd struct {
	a blas64.General
}

// NewDenseGenMatProd returns an operator wrapping a copy of a.
func NewDenseGenMatProd(a blas64.General) *DenseGenMatProd {
	c := blas64.General{Rows: a.Rows, Cols: a.Cols, Stride: max(1, a.Cols), Data: make([]float64, a.Rows*a.Cols)}
	for i := 0; i < a.Rows; i++ {
		copy(c.Data[i*c.Stride:i*c.Stride+a.Cols], a.Data[i*a.Stride:i*a.Stride+a.Cols])
	}
	return &DenseGenMatProd{a: c}
}

// Rows returns the number of rows of A.
func (p *DenseGenMatProd) Rows() int { return p.a.Rows }

// Cols returns the number of columns of A.
func (p *DenseGenMatProd) Cols() int { return p.a.Cols }

// MulVec computes dst = A·x. dst must have length Rows and x length Cols.
func (p *DenseGenMatProd) MulVec(dst, x []float64) {
	switch {
	case len(dst) != p.a.Rows:
		panic(badLenDst)
	case len(x) != p.a.Cols:
		panic(badLenX)
	}
	blas64.Gemv(blas.NoTrans, 1, p.a,
		blas64.Vector{N: p.a.Cols, Inc: 1, Data: x},
		0,
		blas64.Vector{N: p.a.Rows, Inc: 1, Data: dst})
}
