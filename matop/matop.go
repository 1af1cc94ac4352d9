// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matop provides dense matrix operator backends for the eigs
// solvers: the plain matrix-vector product and the real shift-and-solve
// operator used by shift-invert iterations.
package matop // import "github.com/jamestjsp/spectra/matop"

const (
	badSquare  = "matop: matrix is not square"
	badLenDst  = "matop: insufficient length of dst"
	badLenX    = "matop: insufficient length of x"
	singular   = "matop: A - sigma*I is singular"
	noSetShift = "matop: SetShift has not been called"
)
