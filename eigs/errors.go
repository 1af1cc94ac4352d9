// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eigs

const (
	// Precondition violations.
	badNev      = "eigs: nev must be greater than zero and less than the matrix dimension"
	badNcv      = "eigs: ncv must be greater than nev"
	badSquare   = "eigs: matrix is not square"
	badDim      = "eigs: dimension mismatch"
	badLenResid = "eigs: insufficient length of resid"
	badLenY     = "eigs: insufficient length of y"
	badSortRule = "eigs: invalid SortRule"
	zeroResid   = "eigs: initial residual vector cannot be zero"

	// Sequencing violations.
	noCompute = "eigs: Compute has not been called"
	noInit    = "eigs: Init has not been called"

	failedEigen = "eigs: eigendecomposition of the projected matrix failed"
)
