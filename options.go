// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ufdecode

import "github.com/gaissmai/ufdecode/internal/cluster"

// Solver selects which per-cluster solver a decode call uses.
type Solver int

const (
	// SolverMatrix runs the incremental GF(2) PLU/RREF eliminator
	// (spec.md §4.5) and is correct for any parity-check matrix.
	SolverMatrix Solver = iota
	// SolverPeel runs the spanning-tree leaf-stripping solver (spec.md
	// §4.6). It is exact when every bit column of H has weight exactly 2
	// (e.g. surface-code-style checks); a weight-1 "dangling" bit can
	// never enter the spanning tree and is simply left at 0, so codes
	// with a handful of weight-1 boundary bits still decode correctly as
	// long as the error is recoverable through the weight-2 interior
	// (spec.md §4.6, Scenario A). This is not input-validated — a caller
	// choosing peel for a code it cannot correct gets a wrong e, not an
	// error.
	SolverPeel
)

func (s Solver) kind() cluster.SolverKind {
	if s == SolverPeel {
		return cluster.Peel
	}
	return cluster.Matrix
}

// Options configures a decode call. The zero value selects the matrix
// solver with unweighted, unbounded growth — every candidate bit on the
// boundary is added each growth step, as spec.md §4.2 describes when no
// weights are supplied.
type Options struct {
	// Solver picks the per-cluster solver.
	Solver Solver

	// BitWeights, when non-nil, must have one entry per bit of H. Growth
	// steps then add only the BitsPerStep cheapest candidate bits by
	// weight instead of the whole boundary (spec.md §4.2's weighted
	// variant).
	BitWeights []float64

	// BitsPerStep caps how many candidate bits a single growth step may
	// add when BitWeights is set. Zero means unbounded; a negative value is
	// rejected with ErrInvalidParameter.
	BitsPerStep int

	// ClusterCount is only used by DecodeBitSeeded: it is the number of
	// bit-seeded clusters grown side by side, one after another in each
	// growth pass (spec.md §4.8). It must be positive.
	ClusterCount int
}

func (o Options) validate(h matrixShape) error {
	if o.BitWeights != nil && len(o.BitWeights) != h.NumBits() {
		return &ErrShapeMismatch{Got: len(o.BitWeights), Want: h.NumBits()}
	}
	return nil
}

// matrixShape is the subset of gf2.Matrix Options.validate needs, kept
// local so this file does not have to import gf2 just for a shape check.
type matrixShape interface {
	NumBits() int
}
