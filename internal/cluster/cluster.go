// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package cluster

import (
	"fmt"
	"io"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/gaissmai/ufdecode/internal/gf2"
)

// SolverKind selects which per-cluster solver a Cluster's growth step
// invokes once it is done absorbing bits and merging, per spec.md §4.7/§4.6.
type SolverKind int

const (
	// Matrix selects the incremental GF(2) PLU/RREF solver (spec.md §4.5),
	// applicable to any parity-check matrix.
	Matrix SolverKind = iota
	// Peel selects the spanning-tree leaf-stripping solver (spec.md §4.6),
	// applicable only when every bit column of H has weight exactly 2.
	Peel
)

// Cluster is a connected subset of bits and checks grown around one or more
// unsatisfied checks. It is the central entity of spec.md §3; see that
// section for the full invariant list this type maintains.
type Cluster struct {
	id         ID
	active     bool
	valid      bool
	h          gf2.Matrix
	syndrome   []byte
	solverKind SolverKind

	bits              *bitset.BitSet // global bit ids
	checks            *bitset.BitSet // global check ids
	boundaryChecks    *bitset.BitSet // subset of checks, global ids
	enclosedSyndromes *bitset.BitSet // subset of checks, global ids

	localBitOf       map[int]int
	globalOfLocalBit []int

	localCheckOf       map[int]int
	globalOfLocalCheck []int

	cols []*bitset.BitSet // local_pcm: CSC, one bitset-over-local-rows per local bit
	elim *gf2.Eliminator

	// mirrored for spec fidelity/introspection only; the Eliminator itself
	// is the authority and never resets these to zero (Design Notes §9).
	pendingColStart, pendingRowStart int

	mergeList []ID

	solution []int // global bit indices, matrix-variant result
}

func newCluster(id ID, h gf2.Matrix, syndrome []byte, kind SolverKind) *Cluster {
	return &Cluster{
		id:                id,
		active:            true,
		h:                 h,
		syndrome:          syndrome,
		solverKind:        kind,
		bits:              bitset.New(uint(h.NumBits())),
		checks:            bitset.New(uint(h.NumChecks())),
		boundaryChecks:    bitset.New(uint(h.NumChecks())),
		enclosedSyndromes: bitset.New(uint(h.NumChecks())),
		localBitOf:        make(map[int]int),
		localCheckOf:      make(map[int]int),
		elim:              gf2.NewEliminator(),
	}
}

// NewAtCheck seeds a cluster at a single unsatisfied check, with no bits yet
// — the spec.md §4.5 edge case an empty local_pcm (zero columns) is
// explicitly allowed to start from, as long as at least one check exists.
func NewAtCheck(id ID, check int, h gf2.Matrix, syndrome []byte, kind SolverKind, mm *MembershipMap) *Cluster {
	c := newCluster(id, h, syndrome, kind)
	c.addCheck(check, mm, true)
	return c
}

// NewAtBit seeds a cluster at a single bit (spec.md §4.8, bit-seeded
// variant): the bit and all of its check neighbors are added immediately.
func NewAtBit(id ID, bit int, h gf2.Matrix, syndrome []byte, kind SolverKind, mm *MembershipMap) *Cluster {
	c := newCluster(id, h, syndrome, kind)
	c.addBit(bit, mm)
	return c
}

func (c *Cluster) ID() ID         { return c.id }
func (c *Cluster) Active() bool   { return c.active }
func (c *Cluster) Valid() bool    { return c.valid }
func (c *Cluster) NumBits() int   { return len(c.globalOfLocalBit) }
func (c *Cluster) NumChecks() int { return len(c.globalOfLocalCheck) }

// Solution returns the global bit indices the matrix solver set to 1, valid
// only once Valid reports true.
func (c *Cluster) Solution() []int { return c.solution }

// EnclosedParity returns the parity of the enclosed-syndrome set: 0 iff the
// necessary condition of spec.md §3 invariant 3 / §4.6's peel termination
// predicate holds.
func (c *Cluster) EnclosedParity() int { return int(c.enclosedSyndromes.Count() % 2) }

// Grow performs one growth step (spec.md §4.2): rebuild candidate bits from
// the boundary, select bits (all of them if unweighted, else the
// bitsPerStep cheapest by weight), add them, merge with any cluster
// discovered along the way, and — for the matrix solver — extend the
// incremental elimination. It returns the ID of the cluster that survives
// this step (itself, unless absorbed into a larger neighbor).
func (c *Cluster) Grow(arena []*Cluster, mm *MembershipMap, weights []float64, bitsPerStep int) ID {
	if !c.active {
		return c.id
	}
	c.mergeList = c.mergeList[:0]

	var candidates []int
	var emptyBoundary []uint
	for j, ok := c.boundaryChecks.NextSet(0); ok; j, ok = c.boundaryChecks.NextSet(j + 1) {
		contributed := false
		for _, i := range c.h.CheckBits(int(j)) {
			if mm.OwnerOfBit(i) != c.id {
				candidates = append(candidates, i)
				contributed = true
			}
		}
		if !contributed {
			emptyBoundary = append(emptyBoundary, j)
		}
	}
	for _, j := range emptyBoundary {
		c.boundaryChecks.Clear(j)
	}

	selected := candidates
	if weights != nil {
		selected = dedupInts(candidates)
		sort.Slice(selected, func(a, b int) bool { return weights[selected[a]] < weights[selected[b]] })
		if bitsPerStep > 0 && len(selected) > bitsPerStep {
			selected = selected[:bitsPerStep]
		}
	}

	for _, i := range selected {
		c.addBit(i, mm)
	}

	survivor := c
	for _, otherID := range c.mergeList {
		other := arena[otherID]
		if !other.active || other == survivor {
			continue
		}
		survivor = Merge(survivor, other, mm)
	}

	if survivor.solverKind == Matrix {
		survivor.applyIncrementalElimination()
	}

	return survivor.id
}

// addBit records bit i's column into local_pcm and claims its check
// neighbors, folding §4.2 step 4 and §4.3's add_bit together: discovering an
// unowned or foreign-owned check neighbor is how boundary checks and the
// merge list get populated, exactly as grow's orchestration describes it.
func (c *Cluster) addBit(i int, mm *MembershipMap) {
	if mm.OwnerOfBit(i) == c.id {
		return
	}

	localBit := len(c.globalOfLocalBit)
	c.globalOfLocalBit = append(c.globalOfLocalBit, i)
	c.localBitOf[i] = localBit
	mm.SetOwnerBit(i, c.id)
	c.bits.Set(uint(i))

	col := bitset.New(0)
	for _, j := range c.h.BitChecks(i) {
		switch owner := mm.OwnerOfCheck(j); owner {
		case c.id:
			// already local; nothing to claim.
		case NoOwner:
			c.addCheck(j, mm, true)
		default:
			c.mergeList = appendUniqueID(c.mergeList, owner)
			c.addCheck(j, mm, true)
		}
		col.Set(uint(c.localCheckOf[j]))
	}
	c.cols = append(c.cols, col)
}

// addCheck inserts check j into the cluster (idempotent), claiming
// ownership and, when boundary is set, marking it as having an as-yet
// unexplored external neighbor.
func (c *Cluster) addCheck(j int, mm *MembershipMap, boundary bool) {
	if _, ok := c.localCheckOf[j]; ok {
		mm.SetOwnerCheck(j, c.id)
		if boundary {
			c.boundaryChecks.Set(uint(j))
		}
		return
	}

	localCheck := len(c.globalOfLocalCheck)
	c.globalOfLocalCheck = append(c.globalOfLocalCheck, j)
	c.localCheckOf[j] = localCheck
	mm.SetOwnerCheck(j, c.id)
	c.checks.Set(uint(j))
	if boundary {
		c.boundaryChecks.Set(uint(j))
	}
	if c.syndrome[j] == 1 {
		c.enclosedSyndromes.Set(uint(j))
	}
}

// Merge absorbs b into a, keeping whichever of the two has more bits and
// deactivating the other — "merge smaller into larger", mirrored from
// bart's unionRec: the merge is destructive on the receiver and leaves the
// absorbed cluster's id permanently inactive (spec.md §4.4).
func Merge(a, b *Cluster, mm *MembershipMap) *Cluster {
	if b.NumBits() > a.NumBits() {
		a, b = b, a
	}

	for i, ok := b.bits.NextSet(0); ok; i, ok = b.bits.NextSet(i + 1) {
		a.addBit(int(i), mm)
	}
	for j, ok := b.checks.NextSet(0); ok; j, ok = b.checks.NextSet(j + 1) {
		a.addCheck(int(j), mm, false)
	}
	a.boundaryChecks.InPlaceUnion(b.boundaryChecks)
	a.enclosedSyndromes.InPlaceUnion(b.enclosedSyndromes)

	b.active = false
	return a
}

// applyIncrementalElimination extends the Eliminator with any columns/rows
// added since the last call and re-tests validity, per spec.md §4.5.
func (c *Cluster) applyIncrementalElimination() {
	c.elim.Extend(c.cols, len(c.globalOfLocalCheck))
	c.pendingColStart = c.elim.NumCols()
	c.pendingRowStart = c.elim.NumRows()

	localSyndrome := bitset.New(uint(len(c.globalOfLocalCheck)))
	for localIdx, globalCheck := range c.globalOfLocalCheck {
		if c.syndrome[globalCheck] == 1 {
			localSyndrome.Set(uint(localIdx))
		}
	}

	valid, pivotCols := c.elim.Solve(localSyndrome)
	c.valid = valid
	if !valid {
		c.solution = nil
		return
	}

	sol := make([]int, 0, len(pivotCols))
	for _, localBit := range pivotCols {
		sol = append(sol, c.globalOfLocalBit[localBit])
	}
	c.solution = sol
}

// Dump writes a plain textual summary of the cluster's current state,
// grounded on bart's dumper.go tree dumps: useful while debugging a stuck
// decode, not a logging facility.
func (c *Cluster) Dump(w io.Writer) {
	fmt.Fprintf(w, "cluster %d: active=%v valid=%v bits=%d checks=%d enclosed-parity=%d pending-col=%d pending-row=%d\n",
		c.id, c.active, c.valid, c.NumBits(), c.NumChecks(), c.EnclosedParity(), c.pendingColStart, c.pendingRowStart)
}

func appendUniqueID(list []ID, id ID) []ID {
	for _, x := range list {
		if x == id {
			return list
		}
	}
	return append(list, id)
}

func dedupInts(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
