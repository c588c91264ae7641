// Copyright 2010 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// WARNING: This file uses //go:linkname to reach unexported vector kernels
// of math/big. These symbols are not part of Go's public API:
//
//  1. They may change or disappear in a future Go release.
//  2. Signatures must match math/big exactly; a mismatch corrupts memory.
//
// If this package stops compiling or misbehaves after a Go upgrade, review
// the declarations below against the current math/big sources.

package bigfft

import (
	"math/big"
	_ "unsafe" // Required for go:linkname
)

// Word is an alias for big.Word, the machine limb used by every kernel here.
type Word = big.Word

// addVV computes z = x + y element-wise and returns the carry.
//
//go:linkname addVV math/big.addVV
func addVV(z, x, y []Word) (c Word)

// subVV computes z = x - y element-wise and returns the borrow.
//
//go:linkname subVV math/big.subVV
func subVV(z, x, y []Word) (c Word)

// addVW computes z = x + y where y is a single word, and returns the carry.
//
//go:linkname addVW math/big.addVW
func addVW(z, x []Word, y Word) (c Word)

// subVW computes z = x - y where y is a single word, and returns the borrow.
//
//go:linkname subVW math/big.subVW
func subVW(z, x []Word, y Word) (c Word)

// shlVU computes z = x << s and returns the shifted-out high bits.
//
//go:linkname shlVU math/big.shlVU
func shlVU(z, x []Word, s uint) (c Word)

// mulAddVWW computes z = x*y + r and returns the high word.
//
//go:linkname mulAddVWW math/big.mulAddVWW
func mulAddVWW(z, x []Word, y, r Word) (c Word)

// addMulVVW computes z += x*y and returns the high word.
//
//go:linkname addMulVVW math/big.addMulVVW
func addMulVVW(z, x []Word, y Word) (c Word)
