// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ufdecode

import (
	"testing"

	"github.com/gaissmai/ufdecode/internal/gf2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkSyndrome(h gf2.Matrix, e []byte) []byte {
	s := make([]byte, h.NumChecks())
	for check := 0; check < h.NumChecks(); check++ {
		var parity byte
		for _, bit := range h.CheckBits(check) {
			parity ^= e[bit]
		}
		s[check] = parity
	}
	return s
}

// fourBitChain is spec.md §8 Scenario A/B's 3-check, 4-bit matrix: bit
// neighbor sets {0:{0}, 1:{0,1}, 2:{1,2}, 3:{2}}.
func fourBitChain() *gf2.SparseMatrix {
	return gf2.NewSparseMatrix(3, 4, [][]int{
		{0, 1},
		{1, 2},
		{2, 3},
	})
}

func TestScenarioA_RepetitionSingleError(t *testing.T) {
	h := fourBitChain()
	s := []byte{1, 1, 0}

	d := NewDecoder(h)
	e, err := d.Decode(s, Options{Solver: SolverPeel})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 0, 0}, e)
	assert.Equal(t, s, checkSyndrome(h, e))
}

func TestScenarioB_TwoSeparatedErrors(t *testing.T) {
	h := fourBitChain()
	s := []byte{1, 0, 1}

	d := NewDecoder(h)
	e, err := d.Decode(s, Options{Solver: SolverPeel})
	require.NoError(t, err)
	assert.Equal(t, s, checkSyndrome(h, e), "peel result need not match the original error, only its syndrome")
}

func TestScenarioC_NoError(t *testing.T) {
	h := fourBitChain()
	s := make([]byte, 3)

	d := NewDecoder(h)
	e, err := d.Decode(s, Options{})
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 4), e)
}

func TestScenarioD_Trivial1x1(t *testing.T) {
	h := gf2.NewSparseMatrix(1, 1, [][]int{{0}})
	s := []byte{1}

	d := NewDecoder(h)
	e, err := d.Decode(s, Options{})
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, e)
}

// fourCycle is spec.md §8 Scenario E's 4-cycle: rows {0:{0,1},1:{1,2},2:{2,3},3:{3,0}}.
func fourCycle() *gf2.SparseMatrix {
	return gf2.NewSparseMatrix(4, 4, [][]int{
		{0, 1},
		{1, 2},
		{2, 3},
		{3, 0},
	})
}

func TestScenarioE_WeightedGrowthCap(t *testing.T) {
	h := fourCycle()
	s := []byte{1, 0, 1, 0}
	weights := []float64{0.1, 0.9, 0.2, 0.8}

	d := NewDecoder(h)
	e, err := d.Decode(s, Options{BitWeights: weights, BitsPerStep: 1})
	require.NoError(t, err)
	assert.Equal(t, s, checkSyndrome(h, e))
}

func TestIdempotence(t *testing.T) {
	h := fourCycle()
	s := []byte{1, 0, 1, 0}

	d := NewDecoder(h)
	e1, err := d.Decode(s, Options{})
	require.NoError(t, err)
	e2, err := d.Decode(s, Options{})
	require.NoError(t, err)
	assert.Equal(t, e1, e2)
}

func TestDecodeShapeMismatch(t *testing.T) {
	h := fourBitChain()
	d := NewDecoder(h)
	_, err := d.Decode([]byte{0, 0}, Options{})
	require.Error(t, err)
	var shapeErr *ErrShapeMismatch
	assert.ErrorAs(t, err, &shapeErr)
}

func TestDecodeInvalidSyndromeValue(t *testing.T) {
	h := fourBitChain()
	d := NewDecoder(h)
	_, err := d.Decode([]byte{0, 2, 0}, Options{})
	require.Error(t, err)
	var synErr *ErrInvalidSyndrome
	assert.ErrorAs(t, err, &synErr)
}

func TestDecodeInvalidBitsPerStep(t *testing.T) {
	h := fourBitChain()
	d := NewDecoder(h)
	_, err := d.Decode(make([]byte, 3), Options{BitsPerStep: -1})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestDecodeInvalidBitWeightsLength(t *testing.T) {
	h := fourBitChain()
	d := NewDecoder(h)
	_, err := d.Decode(make([]byte, 3), Options{BitWeights: []float64{1, 2}})
	require.Error(t, err)
	var shapeErr *ErrShapeMismatch
	assert.ErrorAs(t, err, &shapeErr)
}

func TestDecodeBitSeededMatchesSyndrome(t *testing.T) {
	h := fourCycle()
	s := []byte{1, 0, 1, 0}
	weights := []float64{0.1, 0.9, 0.2, 0.8}

	d := NewDecoder(h)
	e, err := d.DecodeBitSeeded(s, Options{BitWeights: weights, ClusterCount: 2})
	require.NoError(t, err)
	assert.Equal(t, s, checkSyndrome(h, e))
}

func TestDecodeBitSeededRequiresClusterCount(t *testing.T) {
	h := fourCycle()
	d := NewDecoder(h)
	_, err := d.DecodeBitSeeded(make([]byte, 4), Options{BitWeights: make([]float64, 4)})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
