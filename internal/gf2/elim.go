// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package gf2

import "github.com/bits-and-blooms/bitset"

// Eliminator is an incremental reduced row-echelon form (RREF) over GF(2)
// for a matrix whose columns and rows both grow over time.
//
// It is handed the cluster-local parity-check matrix as an ordered list of
// bit-columns (CSC, each column a bitset over cluster-local check rows) and
// maintains, across repeated Extend calls, a basis of reduced rows together
// with the combination of *original* rows that produced each one. That
// provenance combination is what lets a later Extend re-apply "stored row
// operations" to a newly-arrived column in O(basis size) bit ops instead of
// re-deriving the reduction from scratch — see spec.md §4.5 and Design
// Notes §9 (the pending-column/row counters here are derived, never
// re-zeroed).
//
// Eliminator is not safe for concurrent use; it belongs to exactly one
// Cluster for the lifetime of one decode call.
type Eliminator struct {
	cols []*bitset.BitSet // columns seen so far, over rows [0, numRows)
	rows int              // number of rows processed so far

	basisRows  []*bitset.BitSet // reduced rows, over columns [0, len(cols))
	basisCombo []*bitset.BitSet // which original rows XOR to this basis row
	basisPivot []uint           // pivot column per basis row

	zeroCombo []*bitset.BitSet // combinations that reduced to the zero row
}

// NewEliminator returns an empty incremental eliminator.
func NewEliminator() *Eliminator {
	return &Eliminator{}
}

// NumCols reports how many columns have been fed to the eliminator so far.
func (e *Eliminator) NumCols() int { return len(e.cols) }

// NumRows reports how many rows have been fed to the eliminator so far.
func (e *Eliminator) NumRows() int { return e.rows }

// Extend brings the eliminator up to date with the full current cluster
// local_pcm (cols, one bitset per cluster-local bit, each over cluster-local
// check rows) and the current number of cluster-local rows. Columns and
// rows already processed in a prior call are skipped; only the new suffix of
// each is folded in, per spec.md §4.5 steps 2a/2b.
func (e *Eliminator) Extend(cols []*bitset.BitSet, numRows int) {
	c0 := len(e.cols)
	w := len(cols)

	// step 2a: re-apply each basis row's provenance combination to the
	// newly arrived columns, instead of re-deriving the reduction.
	for i, combo := range e.basisCombo {
		row := e.basisRows[i]
		for c := c0; c < w; c++ {
			if parity(combo, cols[c]) {
				row.Set(uint(c))
			}
		}
	}

	// A row combination that reduced to zero over the old columns can
	// become nonzero once new columns arrive — a later bit connecting to
	// an already-enclosed check is the common case in cluster growth.
	// Re-evaluate every zeroCombo entry against the new columns and
	// promote any that are revived, instead of leaving a stale entry that
	// Solve would otherwise treat as a permanent consistency constraint.
	stale := e.zeroCombo
	e.zeroCombo = e.zeroCombo[:0]
	for _, combo := range stale {
		revived := bitset.New(uint(w))
		nonzero := false
		for c := c0; c < w; c++ {
			if parity(combo, cols[c]) {
				revived.Set(uint(c))
				nonzero = true
			}
		}
		if !nonzero {
			e.zeroCombo = append(e.zeroCombo, combo)
			continue
		}
		e.reduceAndInsert(revived, combo)
	}

	e.cols = append(e.cols, cols[c0:]...)

	r0 := e.rows
	e.rows = numRows

	// step 2b: partial RREF over the newly arrived rows.
	for j := r0; j < numRows; j++ {
		newRow := bitset.New(uint(w))
		for c := 0; c < w; c++ {
			if e.cols[c].Test(uint(j)) {
				newRow.Set(uint(c))
			}
		}
		combo := bitset.New(uint(numRows))
		combo.Set(uint(j))

		e.reduceAndInsert(newRow, combo)
	}
}

// reduceAndInsert eliminates row against the current basis pivots, then
// either records it as a fresh basis row (back-eliminating its pivot out of
// every other basis row to maintain full RREF) or, if it reduces to zero,
// records combo in zeroCombo.
func (e *Eliminator) reduceAndInsert(row, combo *bitset.BitSet) {
	for i, pivot := range e.basisPivot {
		if row.Test(pivot) {
			row.InPlaceSymmetricDifference(e.basisRows[i])
			combo.InPlaceSymmetricDifference(e.basisCombo[i])
		}
	}

	if row.None() {
		e.zeroCombo = append(e.zeroCombo, combo)
		return
	}

	pivot, _ := row.NextSet(0)

	for i, basisRow := range e.basisRows {
		if basisRow.Test(pivot) {
			basisRow.InPlaceSymmetricDifference(row)
			e.basisCombo[i].InPlaceSymmetricDifference(combo)
		}
	}

	e.basisRows = append(e.basisRows, row)
	e.basisCombo = append(e.basisCombo, combo)
	e.basisPivot = append(e.basisPivot, pivot)
}

// Solve tests whether localSyndrome (a bitset over the cluster-local rows
// fed to Extend so far) lies in the column span of the matrix, and if so
// returns the pivot columns set to 1 in a particular solution (every
// non-pivot/free column is left at 0). valid is false iff some row
// combination that reduced to zero sums to 1 against localSyndrome — spec.md
// §4.5 step 3's "projection onto non-pivot rows".
func (e *Eliminator) Solve(localSyndrome *bitset.BitSet) (valid bool, pivotCols []int) {
	for _, combo := range e.zeroCombo {
		if parity(combo, localSyndrome) {
			return false, nil
		}
	}

	for i, combo := range e.basisCombo {
		if parity(combo, localSyndrome) {
			pivotCols = append(pivotCols, int(e.basisPivot[i]))
		}
	}
	return true, pivotCols
}

func parity(a, b *bitset.BitSet) bool {
	return a.IntersectionCardinality(b)%2 == 1
}
