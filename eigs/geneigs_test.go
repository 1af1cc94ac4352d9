// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eigs

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// denseOp is a plain dense matrix-vector product operator for tests.
type denseOp struct {
	a blas64.General
}

func (o denseOp) Rows() int { return o.a.Rows }

func (o denseOp) MulVec(dst, x []float64) {
	blas64.Gemv(blas.NoTrans, 1, o.a,
		blas64.Vector{N: o.a.Cols, Inc: 1, Data: x}, 0,
		blas64.Vector{N: o.a.Rows, Inc: 1, Data: dst})
}

// eigApproxEqual reports whether a approximates b or its conjugate. The
// conjugate is accepted because when a selection boundary falls inside a
// conjugate pair, the solver and a dense reference may legitimately pick
// different members of the pair.
func eigApproxEqual(a, b complex128, tol float64) bool {
	return cmplx.Abs(a-b) < tol || cmplx.Abs(a-cmplx.Conj(b)) < tol
}

// matchSpectra checks that got and want agree as multisets up to
// conjugation.
func matchSpectra(t *testing.T, got, want []complex128, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("got %v eigenvalues, want %v", len(got), len(want))
		return
	}
	used := make([]bool, len(want))
outer:
	for _, g := range got {
		for i, w := range want {
			if !used[i] && eigApproxEqual(g, w, tol) {
				used[i] = true
				continue outer
			}
		}
		t.Errorf("eigenvalue %v not found in reference spectrum %v", g, want)
	}
}

func TestGenEigs(t *testing.T) {
	for _, test := range []struct {
		n, nev, ncv int
		rule        SortRule
	}{
		{10, 2, 6, LargestMagn},
		{20, 4, 12, LargestMagn},
		{30, 3, 12, LargestReal},
		{50, 5, 16, LargestMagn},
		{40, 2, 10, SmallestReal},
	} {
		for seed := uint64(1); seed <= 3; seed++ {
			rnd := rand.New(rand.NewPCG(seed, seed))
			a := randomGeneral(test.n, rnd)

			g := NewGenEigs(denseOp{a}, test.nev, test.ncv, test.rule)
			g.InitRand(rnd)
			nconv := g.Compute(1000, 1e-10)
			if nconv != test.nev {
				t.Errorf("n=%v,nev=%v,ncv=%v,rule=%v,seed=%v: converged %v of %v pairs",
					test.n, test.nev, test.ncv, test.rule, seed, nconv, test.nev)
				continue
			}

			// The converged set must match the nev most wanted
			// eigenvalues of the dense spectrum.
			dense := denseEigenvalues(a)
			perm := test.rule.sortPermutation(dense)
			want := make([]complex128, test.nev)
			for i := range want {
				want[i] = dense[perm[i]]
			}
			scale := matScale(a)
			matchSpectra(t, g.Eigenvalues(), want, 1e-6*scale)

			checkEigenpairResiduals(t, a, g, 1e-8*scale)
		}
	}
}

// checkEigenpairResiduals verifies ‖A·v - λ·v‖ for every returned pair.
func checkEigenpairResiduals(t *testing.T, a blas64.General, g *GenEigs, tol float64) {
	t.Helper()
	vals := g.Eigenvalues()
	vecs := g.Eigenvectors()
	if vecs == nil {
		if len(vals) != 0 {
			t.Error("nil eigenvectors with nonempty eigenvalues")
		}
		return
	}
	n := a.Rows
	if r, c := vecs.Dims(); r != n || c != len(vals) {
		t.Errorf("eigenvector dimensions %v×%v, want %v×%v", r, c, n, len(vals))
		return
	}
	for j, lambda := range vals {
		var resid, vnorm float64
		for i := 0; i < n; i++ {
			var av complex128
			for k := 0; k < n; k++ {
				av += complex(a.Data[i*a.Stride+k], 0) * vecs.At(k, j)
			}
			d := av - lambda*vecs.At(i, j)
			resid += real(d)*real(d) + imag(d)*imag(d)
			v := vecs.At(i, j)
			vnorm += real(v)*real(v) + imag(v)*imag(v)
		}
		resid = math.Sqrt(resid)
		vnorm = math.Sqrt(vnorm)
		if resid > tol*math.Max(1, vnorm) {
			t.Errorf("eigenpair %v: residual %v exceeds %v", j, resid, tol)
		}
	}
}

// TestGenEigsScenario is the reference scenario: a 10×10 random matrix
// with nev=2, ncv=6 converges within the budget and returns the two
// largest-magnitude eigenvalues with small eigenpair residuals.
func TestGenEigsScenario(t *testing.T) {
	rnd := rand.New(rand.NewPCG(42, 42))
	a := randomGeneral(10, rnd)

	g := NewGenEigs(denseOp{a}, 2, 6, LargestMagn)
	g.InitRand(rnd)
	nconv := g.Compute(1000, 1e-10)
	if nconv != 2 {
		t.Fatalf("converged %v pairs, want 2", nconv)
	}

	dense := denseEigenvalues(a)
	perm := LargestMagn.sortPermutation(dense)
	want := []complex128{dense[perm[0]], dense[perm[1]]}
	matchSpectra(t, g.Eigenvalues(), want, 1e-6)
	checkEigenpairResiduals(t, a, g, 1e-8)

	if g.NumIterations() < 1 || g.NumIterations() > 1000 {
		t.Errorf("unexpected iteration count %v", g.NumIterations())
	}
	if g.NumOperations() < 6 {
		t.Errorf("unexpected operation count %v", g.NumOperations())
	}
}

// TestGenEigsBoundary exercises the maximum allowed nev and ncv: nev=n-1
// and ncv=n.
func TestGenEigsBoundary(t *testing.T) {
	rnd := rand.New(rand.NewPCG(5, 5))
	n := 6
	// Upper triangular matrix with well-separated eigenvalues on the
	// diagonal.
	a := zeros(n, n)
	diag := []float64{1, 2, 4, 8, 16, 32}
	for i := 0; i < n; i++ {
		a.Data[i*a.Stride+i] = diag[i]
		for j := i + 1; j < n; j++ {
			a.Data[i*a.Stride+j] = 0.1 * rnd.NormFloat64()
		}
	}

	g := NewGenEigs(denseOp{a}, n-1, n, LargestMagn)
	g.InitRand(rnd)
	nconv := g.Compute(1000, 1e-10)
	if nconv != n-1 {
		t.Fatalf("converged %v pairs, want %v", nconv, n-1)
	}
	want := []complex128{32, 16, 8, 4, 2}
	matchSpectra(t, g.Eigenvalues(), want, 1e-6)
}

// TestGenEigsOrthogonality checks the factorization invariants after
// Compute: the basis columns are orthonormal and the residual is
// orthogonal to all of them.
func TestGenEigsOrthogonality(t *testing.T) {
	rnd := rand.New(rand.NewPCG(11, 11))
	a := randomGeneral(20, rnd)

	g := NewGenEigs(denseOp{a}, 3, 9, LargestMagn)
	g.InitRand(rnd)
	g.Compute(1000, 1e-10)

	const tol = 1e-8
	if !isOrthonormal(g.v, tol) {
		t.Error("basis columns are not orthonormal")
	}
	fnorm := math.Max(1, blas64.Nrm2(blas64.Vector{N: g.n, Inc: 1, Data: g.f}))
	for j := 0; j < g.ncv; j++ {
		dot := blas64.Dot(
			blas64.Vector{N: g.n, Inc: 1, Data: g.f},
			blas64.Vector{N: g.n, Inc: g.v.Stride, Data: g.v.Data[j:]},
		)
		if math.Abs(dot) > tol*fnorm {
			t.Errorf("residual not orthogonal to basis column %v: dot=%v", j, dot)
		}
	}
}

// TestNevAdjusted pins the restart keep-count heuristic against known
// cases and checks that it never splits a conjugate pair.
func TestNevAdjusted(t *testing.T) {
	prec := math.Pow(epsilon, 2.0/3)
	realVals := []complex128{9, 8, 7, 6, 5, 4}
	pairAt1 := []complex128{9, 2 + 1i, 2 - 1i, 6, 5, 4}
	for _, test := range []struct {
		nev, ncv int
		ritz     []complex128
		nconv    int
		want     int
	}{
		{2, 6, realVals, 0, 2},
		{2, 6, realVals, 1, 3},
		{2, 6, realVals, 2, 4},
		// Wanted boundary inside the pair: bumped past it.
		{2, 6, pairAt1, 0, 3},
		// ncv/2 fallback for a keep-count of one.
		{1, 6, realVals, 0, 3},
		{1, 4, realVals[:4], 0, 2},
		// Clamp to ncv-2.
		{5, 6, realVals, 3, 4},
	} {
		g := &GenEigs{nev: test.nev, ncv: test.ncv, prec: prec, ritzVal: test.ritz}
		if got := g.nevAdjusted(test.nconv); got != test.want {
			t.Errorf("nev=%v,ncv=%v,nconv=%v: got %v, want %v",
				test.nev, test.ncv, test.nconv, got, test.want)
		}
	}

	// Property: the returned keep-count never splits a conjugate pair.
	rnd := rand.New(rand.NewPCG(2, 2))
	for trial := 0; trial < 100; trial++ {
		ncv := 6 + rnd.IntN(10)
		nev := 1 + rnd.IntN(ncv-2)
		ritz := make([]complex128, 0, ncv)
		for len(ritz) < ncv {
			if len(ritz)+1 < ncv && rnd.Float64() < 0.5 {
				re, im := rnd.NormFloat64(), 1+rnd.Float64()
				ritz = append(ritz, complex(re, im), complex(re, -im))
			} else {
				ritz = append(ritz, complex(rnd.NormFloat64(), 0))
			}
		}
		g := &GenEigs{nev: nev, ncv: ncv, prec: prec, ritzVal: ritz}
		k := g.nevAdjusted(rnd.IntN(nev + 1))
		if k < 1 || k > ncv {
			t.Fatalf("nev=%v,ncv=%v: keep-count %v out of range", nev, ncv, k)
		}
		if g.isConjPairAt(k - 1) {
			t.Errorf("nev=%v,ncv=%v: keep-count %v splits the pair %v, %v",
				nev, ncv, k, ritz[k-1], ritz[k])
		}
	}
}

func TestGenEigsPanics(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 1))
	a := randomGeneral(8, rnd)
	op := denseOp{a}

	if ok, msg := panics(func() { NewGenEigs(op, 0, 4, LargestMagn) }); !ok || msg != badNev {
		t.Error("expected panic for nev < 1")
	}
	if ok, _ := panics(func() { NewGenEigs(op, 8, 9, LargestMagn) }); !ok {
		t.Error("expected panic for nev >= n")
	}
	if ok, msg := panics(func() { NewGenEigs(op, 3, 3, LargestMagn) }); !ok || msg != badNcv {
		t.Error("expected panic for ncv <= nev")
	}

	// ncv larger than n is clamped, not an error.
	g := NewGenEigs(op, 3, 100, LargestMagn)
	if g.ncv != 8 {
		t.Errorf("ncv not clamped to n: got %v", g.ncv)
	}

	if ok, msg := panics(func() { g.Init(make([]float64, 8)) }); !ok || msg != zeroResid {
		t.Error("expected panic for zero seed vector")
	}
	if ok, _ := panics(func() { g.Init(make([]float64, 5)) }); !ok {
		t.Error("expected panic for seed vector of wrong length")
	}
	if ok, msg := panics(func() { g.Compute(10, 1e-10) }); !ok || msg != noInit {
		t.Error("expected panic for Compute before Init")
	}
	if ok, msg := panics(func() { g.Eigenvalues() }); !ok || msg != noCompute {
		t.Error("expected panic for Eigenvalues before Compute")
	}
	if ok, _ := panics(func() { g.Eigenvectors() }); !ok {
		t.Error("expected panic for Eigenvectors before Compute")
	}
}

// TestGenEigsNonConvergence checks that exhausting the iteration budget is
// reported structurally, not as an error.
func TestGenEigsNonConvergence(t *testing.T) {
	rnd := rand.New(rand.NewPCG(9, 9))
	a := randomGeneral(30, rnd)

	g := NewGenEigs(denseOp{a}, 4, 6, LargestMagn)
	g.InitRand(rnd)
	// One restart is not enough to converge four pairs of a 30×30
	// matrix with such a small subspace.
	nconv := g.Compute(1, 1e-14)
	if nconv > 4 {
		t.Fatalf("converged count %v exceeds nev", nconv)
	}
	if len(g.Eigenvalues()) != nconv {
		t.Errorf("Eigenvalues length %v does not match converged count %v", len(g.Eigenvalues()), nconv)
	}
}
