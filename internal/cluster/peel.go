// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package cluster

import "github.com/bits-and-blooms/bitset"

// unionFind is a small disjoint-set structure over cluster-local check
// indices, used only to build the spanning forest for peel decoding.
// find uses iterative path halving rather than the original source's
// recursive path-chasing (spec.md Design Notes §9), so a pathologically
// long chain cannot grow the call stack.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]] // path halving
		x = u.parent[x]
	}
	return x
}

// union merges the sets containing a and b, returning true if they were
// previously distinct (i.e. the edge belongs in the spanning forest rather
// than closing a cycle).
func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	u.parent[ra] = rb
	return true
}

// PeelSolve runs spec.md §4.6's spanning-tree leaf-stripping decoder over
// the cluster's current (fully-grown) bit/check set, and returns the global
// bit indices it flips. It is only correct when every bit column of H has
// weight exactly 2; callers are responsible for checking that precondition
// (gf2.SparseMatrix.AllColumnsWeightTwo) before selecting the peel solver.
func (c *Cluster) PeelSolve() []int {
	numChecks := c.NumChecks()
	numBits := c.NumBits()

	uf := newUnionFind(numChecks)
	treeBits := bitset.New(uint(numBits))
	endpoints := make([][2]int, numBits)
	incident := make([][]int, numChecks)
	degree := make([]int, numChecks)

	for bit := 0; bit < numBits; bit++ {
		col := c.cols[bit]
		e0, ok0 := col.NextSet(0)
		if !ok0 {
			continue
		}
		e1, ok1 := col.NextSet(e0 + 1)
		if !ok1 {
			continue
		}

		if uf.union(int(e0), int(e1)) {
			treeBits.Set(uint(bit))
			endpoints[bit] = [2]int{int(e0), int(e1)}
			incident[e0] = append(incident[e0], bit)
			incident[e1] = append(incident[e1], bit)
			degree[e0]++
			degree[e1]++
		}
	}

	localSyndrome := make([]byte, numChecks)
	for local, global := range c.globalOfLocalCheck {
		localSyndrome[local] = c.syndrome[global]
	}

	removed := bitset.New(uint(numBits))
	inQueue := make([]bool, numChecks)
	queue := make([]int, 0, numChecks)
	for j := 0; j < numChecks; j++ {
		if degree[j] == 1 {
			queue = append(queue, j)
			inQueue[j] = true
		}
	}

	var erasureLocal []int

	for len(queue) > 0 {
		leaf := queue[0]
		queue = queue[1:]
		inQueue[leaf] = false

		if degree[leaf] != 1 {
			continue
		}

		bit := -1
		for _, cand := range incident[leaf] {
			if !removed.Test(uint(cand)) {
				bit = cand
				break
			}
		}
		if bit == -1 {
			continue
		}

		other := endpoints[bit][0]
		if other == leaf {
			other = endpoints[bit][1]
		}

		if localSyndrome[leaf] == 1 {
			erasureLocal = append(erasureLocal, bit)
			localSyndrome[other] ^= 1
			localSyndrome[leaf] = 0
		}

		removed.Set(uint(bit))
		degree[leaf]--
		degree[other]--
		if degree[other] == 1 && !inQueue[other] {
			queue = append(queue, other)
			inQueue[other] = true
		}
	}

	erasure := make([]int, len(erasureLocal))
	for i, bit := range erasureLocal {
		erasure[i] = c.globalOfLocalBit[bit]
	}
	return erasure
}
