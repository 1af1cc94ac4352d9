// Copyright ©2026 The Spectra Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spectra is a collection of packages for computing a small number
// of eigenvalues and eigenvectors of large real matrices by iterative
// Krylov-subspace methods.
package spectra // import "github.com/jamestjsp/spectra"
