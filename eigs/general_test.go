// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eigs

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// randomGeneral returns a new n×n matrix filled with random numbers.
func randomGeneral(n int, rnd *rand.Rand) blas64.General {
	a := zeros(n, n)
	for i := range a.Data {
		a.Data[i] = rnd.NormFloat64()
	}
	return a
}

// randomHessenberg returns a new n×n upper Hessenberg matrix with random
// numbers on and above the sub-diagonal and zeros elsewhere.
func randomHessenberg(n int, rnd *rand.Rand) blas64.General {
	a := zeros(n, n)
	for i := 0; i < n; i++ {
		for j := max(0, i-1); j < n; j++ {
			a.Data[i*a.Stride+j] = rnd.NormFloat64()
		}
	}
	return a
}

func zeros(r, c int) blas64.General {
	return blas64.General{Rows: r, Cols: c, Stride: max(1, c), Data: make([]float64, r*c)}
}

func eye(n int) blas64.General {
	a := zeros(n, n)
	for i := 0; i < n; i++ {
		a.Data[i*a.Stride+i] = 1
	}
	return a
}

func cloneGeneral(a blas64.General) blas64.General {
	c := zeros(a.Rows, a.Cols)
	for i := 0; i < a.Rows; i++ {
		copy(c.Data[i*c.Stride:i*c.Stride+a.Cols], a.Data[i*a.Stride:i*a.Stride+a.Cols])
	}
	return c
}

// mulGeneral returns op(a)·op(b).
func mulGeneral(tA, tB blas.Transpose, a, b blas64.General) blas64.General {
	m, n := a.Rows, b.Cols
	if tA == blas.Trans {
		m = a.Cols
	}
	if tB == blas.Trans {
		n = b.Rows
	}
	c := zeros(m, n)
	blas64.Gemm(tA, tB, 1, a, b, 0, c)
	return c
}

// isUpperHessenberg returns whether h contains only zeros below the
// sub-diagonal.
func isUpperHessenberg(h blas64.General) bool {
	if h.Rows != h.Cols {
		panic("matrix not square")
	}
	n := h.Rows
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i > j+1 && h.Data[i*h.Stride+j] != 0 {
				return false
			}
		}
	}
	return true
}

// isUpperTriangular returns whether a contains only zeros below the
// diagonal.
func isUpperTriangular(a blas64.General) bool {
	n := a.Rows
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			if a.Data[i*a.Stride+j] != 0 {
				return false
			}
		}
	}
	return true
}

// isOrthonormal returns whether the columns of q are mutually orthonormal
// to within tol.
func isOrthonormal(q blas64.General, tol float64) bool {
	n := q.Cols
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dot := blas64.Dot(
				blas64.Vector{N: q.Rows, Inc: q.Stride, Data: q.Data[i:]},
				blas64.Vector{N: q.Rows, Inc: q.Stride, Data: q.Data[j:]},
			)
			if i == j {
				dot -= 1
			}
			if math.Abs(dot) > tol {
				return false
			}
		}
	}
	return true
}

func equalApproxGeneral(a, b blas64.General, tol float64) bool {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return false
	}
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			if math.Abs(a.Data[i*a.Stride+j]-b.Data[i*b.Stride+j]) > tol {
				return false
			}
		}
	}
	return true
}

// denseEigenvalues returns the full spectrum of a computed densely.
func denseEigenvalues(a blas64.General) []complex128 {
	var eig mat.Eigen
	ok := eig.Factorize(mat.NewDense(a.Rows, a.Cols, cloneGeneral(a).Data), mat.EigenNone)
	if !ok {
		panic("test: dense eigendecomposition failed")
	}
	return eig.Values(nil)
}

// panics returns whether fn panics, and the panic message.
func panics(fn func()) (panicked bool, message string) {
	defer func() {
		r := recover()
		panicked = r != nil
		if panicked {
			message = r.(string)
		}
	}()
	fn()
	return
}
