// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eigs

import (
	"math"
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// GenEigs computes a few eigenvalues and eigenvectors of a large general
// real matrix with the implicitly restarted Arnoldi method.
//
// The solver maintains an n×ncv orthonormal Krylov basis V, the ncv×ncv
// upper Hessenberg projection H = Vᵀ·A·V and the residual vector f. Each
// outer iteration extracts the Ritz pairs of H, tests the nev wanted pairs
// for convergence and, if necessary, purges the ncv-k unwanted Ritz values
// from the factorization with implicitly shifted QR steps before extending
// it back to order ncv.
//
// A GenEigs instance is not safe for concurrent use.
type GenEigs struct {
	op   MatOp
	n    int // Dimension of the operator.
	nev  int // Number of wanted eigenvalues.
	ncv  int // Dimension of the Krylov subspace, nev < ncv <= n.
	rule SortRule

	// transform is applied to the wanted Ritz values before the final
	// sort. It is nil for plain solvers and the spectral back-transform
	// for shift-invert solvers.
	transform func(complex128) complex128

	nmatop int // Number of operator applications.
	niter  int // Number of restart iterations.

	v blas64.General // n×ncv Krylov basis.
	h blas64.General // ncv×ncv Hessenberg projection.
	f []float64      // Residual vector.

	ritzVal  []complex128 // ncv Ritz values, ordered by rule.
	ritzVec  []complex128 // ncv×nev wanted Ritz vectors, row-major.
	ritzConv []bool       // Convergence flags of the nev wanted pairs.

	// prec = eps^(2/3) is the threshold below which quantities are
	// treated as zero in orthogonality and convergence tests.
	prec float64

	inited   bool
	computed bool
}

// NewGenEigs returns a solver computing the nev eigenvalues of op that are
// most wanted under rule, using a Krylov subspace of dimension ncv. Larger
// ncv means fewer restarts but more memory and work per iteration; ncv must
// satisfy nev < ncv and is clamped to the operator dimension. A common
// choice is ncv >= 2*nev+1.
//
// NewGenEigs panics if nev is not in [1, n) or if ncv <= nev, where n is
// the operator dimension.
func NewGenEigs(op MatOp, nev, ncv int, rule SortRule) *GenEigs {
	n := op.Rows()
	switch {
	case nev < 1 || nev >= n:
		panic(badNev)
	case ncv <= nev:
		panic(badNcv)
	}
	if ncv > n {
		ncv = n
	}
	return &GenEigs{
		op:   op,
		n:    n,
		nev:  nev,
		ncv:  ncv,
		rule: rule,
		prec: math.Pow(epsilon, 2.0/3),
	}
}

// Init allocates the factorization and performs the first Arnoldi step
// with the given seed vector. resid must have length n and nonzero norm.
//
// Init panics if resid has the wrong length or negligible norm.
func (g *GenEigs) Init(resid []float64) {
	if len(resid) != g.n {
		panic(badLenResid)
	}

	g.v = blas64.General{Rows: g.n, Cols: g.ncv, Stride: g.ncv, Data: make([]float64, g.n*g.ncv)}
	g.h = blas64.General{Rows: g.ncv, Cols: g.ncv, Stride: g.ncv, Data: make([]float64, g.ncv*g.ncv)}
	g.f = make([]float64, g.n)
	g.ritzVal = make([]complex128, g.ncv)
	g.ritzVec = make([]complex128, g.ncv*g.nev)
	g.ritzConv = make([]bool, g.nev)

	v := make([]float64, g.n)
	copy(v, resid)
	vnorm := floats.Norm(v, 2)
	if vnorm < g.prec {
		panic(zeroResid)
	}
	floats.Scale(1/vnorm, v)

	w := make([]float64, g.n)
	g.op.MulVec(w, v)
	g.nmatop++

	h00 := floats.Dot(v, w)
	g.h.Data[0] = h00
	for i := range w {
		g.f[i] = w[i] - h00*v[i]
	}
	g.setBasisColumn(0, v)

	g.inited = true
	g.computed = false
}

// InitRand initializes the solver with a random seed vector drawn from
// rnd. If rnd is nil a fixed-seed source is used, so the default is
// reproducible.
func (g *GenEigs) InitRand(rnd *rand.Rand) {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(1, 1))
	}
	resid := make([]float64, g.n)
	for i := range resid {
		resid[i] = rnd.Float64() - 0.5
	}
	g.Init(resid)
}

// Compute runs the restarted Arnoldi iteration until nev Ritz pairs have
// converged to the relative tolerance tol or maxit restarts have been
// taken, and returns the number of converged eigenpairs, at most nev.
//
// Exceeding the iteration budget is not an error; the converged subset is
// available through Eigenvalues and Eigenvectors regardless.
//
// Compute panics if Init has not been called.
func (g *GenEigs) Compute(maxit int, tol float64) int {
	if !g.inited {
		panic(noInit)
	}

	// The ncv-step Arnoldi factorization.
	g.factorizeFrom(1, g.ncv, g.f)
	g.retrieveRitzpair()

	var i, nconv int
	for i = 0; i < maxit; i++ {
		nconv = g.numConverged(tol)
		if nconv >= g.nev {
			break
		}
		g.restart(g.nevAdjusted(nconv))
	}
	g.sortRitzpair()
	g.niter += i + 1
	g.computed = true

	return min(g.nev, nconv)
}

// factorizeFrom extends an order-k Arnoldi factorization to order m,
// starting from the residual fk. Each step normalizes the residual into
// the next basis column, applies the operator and projects the result onto
// the orthogonal complement of the basis.
func (g *GenEigs) factorizeFrom(k, m int, fk []float64) {
	if m <= k {
		return
	}

	copy(g.f, fk)

	// Keep the leading k×k block of H and zero the rest.
	for i := 0; i < g.ncv; i++ {
		row := g.h.Data[i*g.h.Stride : i*g.h.Stride+g.ncv]
		if i >= k {
			for j := range row {
				row[j] = 0
			}
			continue
		}
		for j := k; j < g.ncv; j++ {
			row[j] = 0
		}
	}

	v := make([]float64, g.n)
	hc := make([]float64, g.ncv)
	w := make([]float64, g.n)
	fv := blas64.Vector{N: g.n, Inc: 1, Data: g.f}
	wv := blas64.Vector{N: g.n, Inc: 1, Data: w}
	for i := k; i < m; i++ {
		beta := floats.Norm(g.f, 2)
		for j := range v {
			v[j] = g.f[j] / beta
		}
		g.setBasisColumn(i, v)
		g.h.Data[i*g.h.Stride+i-1] = beta

		g.op.MulVec(w, v)
		g.nmatop++

		// hc = V₊ᵀ·w where V₊ is the first i+1 basis columns.
		vi := blas64.General{Rows: g.n, Cols: i + 1, Stride: g.v.Stride, Data: g.v.Data}
		hv := blas64.Vector{N: i + 1, Inc: 1, Data: hc}
		blas64.Gemv(blas.Trans, 1, vi, wv, 0, hv)
		for j := 0; j <= i; j++ {
			g.h.Data[j*g.h.Stride+i] = hc[j]
		}

		// f = w - V₊·hc.
		copy(g.f, w)
		blas64.Gemv(blas.NoTrans, -1, vi, hv, 1, fv)

		// One correction pass if f has drifted off the orthogonal
		// complement. The largest spurious component typically shows
		// up along the first basis vector, so <v₁, f> is the cheap
		// drift detector.
		v1f := blas64.Dot(fv, blas64.Vector{N: g.n, Inc: g.v.Stride, Data: g.v.Data})
		if v1f > g.prec || v1f < -g.prec {
			blas64.Gemv(blas.Trans, 1, vi, fv, 0, hv)
			hc[0] = v1f
			blas64.Gemv(blas.NoTrans, -1, vi, hv, 1, fv)
		}
	}
}

// retrieveRitzpair computes the eigenpairs of the projected matrix H,
// orders all ncv Ritz values by the selection rule and keeps the Ritz
// vectors of the nev wanted pairs.
func (g *GenEigs) retrieveRitzpair() {
	m := g.ncv
	hd := make([]float64, m*m)
	for i := 0; i < m; i++ {
		copy(hd[i*m:(i+1)*m], g.h.Data[i*g.h.Stride:i*g.h.Stride+m])
	}
	var eig mat.Eigen
	ok := eig.Factorize(mat.NewDense(m, m, hd), mat.EigenRight)
	if !ok {
		panic(failedEigen)
	}
	vals := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	perm := g.rule.sortPermutation(vals)
	for i := 0; i < m; i++ {
		g.ritzVal[i] = vals[perm[i]]
	}
	for j := 0; j < g.nev; j++ {
		for i := 0; i < m; i++ {
			g.ritzVec[i*g.nev+j] = vecs.At(i, perm[j])
		}
	}
}

// numConverged recomputes the convergence flags of the nev wanted Ritz
// pairs and returns their count. A pair (θ, y) has converged when its
// residual estimate |e_ncvᵀ·y|·‖f‖ is below tol·max(prec, |θ|).
func (g *GenEigs) numConverged(tol float64) int {
	fnorm := floats.Norm(g.f, 2)
	var nconv int
	for i := 0; i < g.nev; i++ {
		thresh := tol * math.Max(g.prec, cmplx.Abs(g.ritzVal[i]))
		resid := cmplx.Abs(g.ritzVec[(g.ncv-1)*g.nev+i]) * fnorm
		g.ritzConv[i] = resid < thresh
		if g.ritzConv[i] {
			nconv++
		}
	}
	return nconv
}

// nevAdjusted returns the number of Ritz values kept by the next restart.
// The count starts from nev, never splits a complex-conjugate pair and is
// padded with up to (ncv-nev)/2 already-converged values to accelerate
// convergence, following the dnaup2 heuristic of ARPACK.
func (g *GenEigs) nevAdjusted(nconv int) int {
	nev := g.nev
	if g.isConjPairAt(nev - 1) {
		nev++
	}
	nev += min(nconv, (g.ncv-nev)/2)
	if nev == 1 && g.ncv >= 6 {
		nev = g.ncv / 2
	} else if nev == 1 && g.ncv > 3 {
		nev = 2
	}
	if nev > g.ncv-2 {
		nev = g.ncv - 2
	}
	if nev < 1 {
		nev = 1
	}
	if g.isConjPairAt(nev - 1) {
		nev++
	}
	return nev
}

// isConjPairAt reports whether ritzVal[i] and ritzVal[i+1] form a
// complex-conjugate pair.
func (g *GenEigs) isConjPairAt(i int) bool {
	if i+1 >= g.ncv {
		return false
	}
	return isComplex(g.ritzVal[i], g.prec) && isConj(g.ritzVal[i], g.ritzVal[i+1], g.prec)
}

func isComplex(v complex128, eps float64) bool {
	return math.Abs(imag(v)) > eps
}

func isConj(a, b complex128, eps float64) bool {
	return cmplx.Abs(a-cmplx.Conj(b)) < eps
}

// restart purges the ncv-k unwanted Ritz values from the factorization by
// implicitly shifted QR steps, shrinks it to order k and extends it back
// to order ncv. A complex-conjugate pair of shifts is consumed by one real
// double-shift step; a real shift by one Givens single-shift step.
func (g *GenEigs) restart(k int) {
	if k >= g.ncv {
		return
	}

	var dsq DoubleShiftQR
	var hbq UpperHessenbergQR
	// em accumulates Qᵀ·e_ncv across the shift steps; its k-th entry
	// weights the old residual in the shrunk factorization.
	em := make([]float64, g.ncv)
	em[g.ncv-1] = 1

	for i := k; i < g.ncv; i++ {
		if g.isConjPairAt(i) {
			// One double-shift step consumes the pair μ, conj(μ)
			// with s = μ+conj(μ) and t = μ·conj(μ), keeping all
			// arithmetic real.
			re := real(g.ritzVal[i])
			im := imag(g.ritzVal[i])
			dsq.Compute(g.h, 2*re, re*re+im*im)

			dsq.ApplyYQ(g.v)
			g.h = dsq.MatrixQtHQ()
			dsq.ApplyQtY(em)
			i++
			continue
		}
		// Single real shift μ: factor H-μI = QR and swap to RQ+μI,
		// which equals QᵀHQ.
		mu := real(g.ritzVal[i])
		g.shiftDiag(-mu)
		hbq.Compute(g.h)

		hbq.ApplyYQ(g.v)
		g.h = hbq.MatrixRQ()
		g.shiftDiag(mu)
		hbq.ApplyQtY(em)
	}

	// Residual of the shrunk order-k factorization: the old residual
	// weighted by em plus the discarded basis direction weighted by the
	// new sub-diagonal entry.
	fk := make([]float64, g.n)
	hk := g.h.Data[k*g.h.Stride+k-1]
	for j := 0; j < g.n; j++ {
		fk[j] = g.f[j]*em[k-1] + g.v.Data[j*g.v.Stride+k]*hk
	}
	g.factorizeFrom(k, g.ncv, fk)
	g.retrieveRitzpair()
}

// sortRitzpair orders the first nev Ritz pairs by decreasing magnitude for
// retrieval, applying the configured spectral transform first.
func (g *GenEigs) sortRitzpair() {
	if g.transform != nil {
		for i := 0; i < g.nev; i++ {
			g.ritzVal[i] = g.transform(g.ritzVal[i])
		}
	}

	perm := LargestMagn.sortPermutation(g.ritzVal[:g.nev])

	val := make([]complex128, g.nev)
	vec := make([]complex128, g.ncv*g.nev)
	conv := make([]bool, g.nev)
	for i := 0; i < g.nev; i++ {
		val[i] = g.ritzVal[perm[i]]
		conv[i] = g.ritzConv[perm[i]]
		for r := 0; r < g.ncv; r++ {
			vec[r*g.nev+i] = g.ritzVec[r*g.nev+perm[i]]
		}
	}
	copy(g.ritzVal[:g.nev], val)
	copy(g.ritzVec, vec)
	copy(g.ritzConv, conv)
}

// Eigenvalues returns the converged eigenvalues, ordered by decreasing
// magnitude. The returned slice has length equal to the converged count,
// which may be less than nev.
//
// Eigenvalues panics if Compute has not been called.
func (g *GenEigs) Eigenvalues() []complex128 {
	if !g.computed {
		panic(noCompute)
	}
	var res []complex128
	for i := 0; i < g.nev; i++ {
		if g.ritzConv[i] {
			res = append(res, g.ritzVal[i])
		}
	}
	return res
}

// Eigenvectors returns the converged eigenvectors as the columns of an
// n×nconv matrix, in the order of Eigenvalues. The vectors are the kept
// Ritz vectors projected back to the original space, V·y. It returns nil
// if no pair converged.
//
// Eigenvectors panics if Compute has not been called.
func (g *GenEigs) Eigenvectors() *mat.CDense {
	if !g.computed {
		panic(noCompute)
	}
	var nconv int
	for i := 0; i < g.nev; i++ {
		if g.ritzConv[i] {
			nconv++
		}
	}
	if nconv == 0 {
		return nil
	}
	res := mat.NewCDense(g.n, nconv, nil)
	col := 0
	for c := 0; c < g.nev; c++ {
		if !g.ritzConv[c] {
			continue
		}
		for r := 0; r < g.n; r++ {
			var sum complex128
			for j := 0; j < g.ncv; j++ {
				sum += complex(g.v.Data[r*g.v.Stride+j], 0) * g.ritzVec[j*g.nev+c]
			}
			res.Set(r, col, sum)
		}
		col++
	}
	return res
}

// NumIterations returns the number of restart iterations taken by Compute.
func (g *GenEigs) NumIterations() int { return g.niter }

// NumOperations returns the number of operator applications.
func (g *GenEigs) NumOperations() int { return g.nmatop }

// setBasisColumn copies v into column j of the Krylov basis.
func (g *GenEigs) setBasisColumn(j int, v []float64) {
	for i := 0; i < g.n; i++ {
		g.v.Data[i*g.v.Stride+j] = v[i]
	}
}

// shiftDiag adds mu to the diagonal of the projected matrix.
func (g *GenEigs) shiftDiag(mu float64) {
	for i := 0; i < g.ncv; i++ {
		g.h.Data[i*g.h.Stride+i] += mu
	}
}
