// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package cluster

import (
	"testing"

	"github.com/gaissmai/ufdecode/internal/gf2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repetitionCode returns the parity-check matrix of the length-n cyclic
// repetition code: check i compares bits i and i+1 (mod n).
func repetitionCode(n int) *gf2.SparseMatrix {
	checkBits := make([][]int, n)
	for i := 0; i < n; i++ {
		checkBits[i] = []int{i, (i + 1) % n}
	}
	return gf2.NewSparseMatrix(n, n, checkBits)
}

func TestClusterSolvesSingleBitError(t *testing.T) {
	h := repetitionCode(5)
	// single error at bit 2 flips checks 1 (bits 1,2) and 2 (bits 2,3).
	syndrome := []byte{0, 1, 1, 0, 0}

	mm := NewMembershipMap(5, 5)
	c := NewAtCheck(0, 1, h, syndrome, Matrix, mm)
	arena := []*Cluster{c}

	survivor := c.Grow(arena, mm, nil, 0)
	require.Equal(t, c.ID(), survivor)
	require.True(t, c.Valid())
	assert.Equal(t, []int{2}, c.Solution())
}

func TestAddBitClaimsCheckNeighborsAndQueuesMerge(t *testing.T) {
	h := repetitionCode(5)
	syndrome := make([]byte, 5)

	mm := NewMembershipMap(5, 5)
	a := NewAtCheck(0, 0, h, syndrome, Matrix, mm)
	b := NewAtCheck(1, 1, h, syndrome, Matrix, mm)
	arena := []*Cluster{a, b}

	survivor := a.Grow(arena, mm, nil, 0)

	require.Equal(t, a.ID(), survivor, "a has more bits than b and must absorb it")
	assert.False(t, b.Active())
	assert.True(t, a.Active())
	assert.Equal(t, a.ID(), mm.OwnerOfCheck(1))
	assert.Equal(t, a.ID(), mm.OwnerOfBit(0))
	assert.Equal(t, a.ID(), mm.OwnerOfBit(1))
}

func TestMergeKeepsLargerAndUnionsBoundaries(t *testing.T) {
	h := repetitionCode(6)
	syndrome := make([]byte, 6)

	mm := NewMembershipMap(6, 6)
	small := NewAtCheck(0, 3, h, syndrome, Matrix, mm)
	big := NewAtCheck(1, 0, h, syndrome, Matrix, mm)
	// give big more bits than small before merging them directly.
	big.addBit(0, mm)
	big.addBit(1, mm)

	survivor := Merge(small, big, mm)

	assert.Equal(t, big.ID(), survivor.ID(), "merge must keep the larger cluster")
	assert.False(t, small.Active())
	assert.True(t, big.Active())
	assert.True(t, survivor.checks.Test(3), "absorbed cluster's check must be present in survivor")
	assert.True(t, survivor.boundaryChecks.Test(3), "absorbed cluster's boundary check must be unioned into survivor")
}

func TestClusterDumpDoesNotPanic(t *testing.T) {
	h := repetitionCode(4)
	syndrome := make([]byte, 4)
	mm := NewMembershipMap(4, 4)
	c := NewAtCheck(0, 0, h, syndrome, Matrix, mm)

	var buf assertWriter
	c.Dump(&buf)
	assert.NotEmpty(t, buf.data)
}

type assertWriter struct{ data []byte }

func (w *assertWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}
