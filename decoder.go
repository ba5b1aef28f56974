// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ufdecode

import (
	"sort"

	"github.com/gaissmai/ufdecode/internal/cluster"
	"github.com/gaissmai/ufdecode/internal/gf2"
)

// Decoder runs union-find decoding against a fixed parity-check matrix. H
// must be set before use (NewDecoder does this); a Decoder holds no state
// between calls, so one instance may be reused (but not shared concurrently,
// see spec.md §5).
type Decoder struct {
	H gf2.Matrix
}

// NewDecoder returns a Decoder for the given parity-check matrix. H must
// remain immutable for the lifetime of every Decode/DecodeBitSeeded call
// made against it.
func NewDecoder(h gf2.Matrix) *Decoder {
	return &Decoder{H: h}
}

func validateShape(h gf2.Matrix, syndrome []byte) error {
	if len(syndrome) != h.NumChecks() {
		return &ErrShapeMismatch{Got: len(syndrome), Want: h.NumChecks()}
	}
	for i, v := range syndrome {
		if v != 0 && v != 1 {
			return &ErrInvalidSyndrome{Check: i, Value: v}
		}
	}
	return nil
}

// Decode runs the syndrome-seeded loop of spec.md §4.7: a cluster is seeded
// at every unsatisfied check, clusters grow and merge until each is
// internally valid (or peel-terminated), and e is assembled from each
// cluster's solution/erasure.
func (d *Decoder) Decode(syndrome []byte, opts Options) (e []byte, err error) {
	defer recoverInvariant(&err)

	if err := validateShape(d.H, syndrome); err != nil {
		return nil, err
	}
	if opts.BitsPerStep < 0 {
		return nil, ErrInvalidParameter
	}
	if err := opts.validate(d.H); err != nil {
		return nil, err
	}

	kind := opts.Solver.kind()
	mm := cluster.NewMembershipMap(d.H.NumBits(), d.H.NumChecks())

	var arena []*cluster.Cluster
	var invalid []cluster.ID

	for i, v := range syndrome {
		if v != 1 {
			continue
		}
		if mm.OwnerOfCheck(i) != cluster.NoOwner {
			continue
		}
		c := cluster.NewAtCheck(cluster.ID(len(arena)), i, d.H, syndrome, kind, mm)
		arena = append(arena, c)
		invalid = append(invalid, c.ID())
	}

	for len(invalid) > 0 {
		sizeBefore := 0
		for _, c := range arena {
			if c.Active() {
				sizeBefore += c.NumBits() + c.NumChecks()
			}
		}

		seen := make(map[cluster.ID]bool)
		for _, id := range invalid {
			c := arena[id]
			if !c.Active() || seen[c.ID()] {
				continue
			}
			seen[c.ID()] = true
			survivorID := c.Grow(arena, mm, opts.BitWeights, opts.BitsPerStep)
			invariant(int(survivorID) < len(arena), "grow returned an id outside the arena")
		}

		invalid = invalid[:0]
		sizeAfter := 0
		for _, c := range arena {
			if !c.Active() {
				continue
			}
			sizeAfter += c.NumBits() + c.NumChecks()
			if kind == cluster.Peel {
				if c.EnclosedParity() != 0 {
					invalid = append(invalid, c.ID())
				}
			} else if !c.Valid() {
				invalid = append(invalid, c.ID())
			}
		}
		sort.Slice(invalid, func(a, b int) bool {
			return arena[invalid[a]].NumBits() < arena[invalid[b]].NumBits()
		})

		if len(invalid) > 0 && sizeAfter == sizeBefore {
			return nil, &ErrGrowthExhausted{}
		}
	}

	e = make([]byte, d.H.NumBits())
	for _, c := range arena {
		if !c.Active() {
			continue
		}
		var flipped []int
		if kind == cluster.Peel {
			flipped = c.PeelSolve()
		} else {
			flipped = c.Solution()
		}
		for _, b := range flipped {
			e[b] = 1
		}
	}
	return e, nil
}

// DecodeBitSeeded runs the bit-seeded variant of spec.md §4.8: clusters are
// seeded at the opts.ClusterCount most-likely-error bits (ascending
// BitWeights), then every active cluster is grown with the matrix solver,
// pass after pass and in no size order, until every syndrome check is owned
// by a valid cluster. opts.Solver is not consulted.
func (d *Decoder) DecodeBitSeeded(syndrome []byte, opts Options) (e []byte, err error) {
	defer recoverInvariant(&err)

	if err := validateShape(d.H, syndrome); err != nil {
		return nil, err
	}
	if opts.ClusterCount <= 0 {
		return nil, ErrInvalidParameter
	}
	if opts.BitsPerStep < 0 {
		return nil, ErrInvalidParameter
	}
	if len(opts.BitWeights) != d.H.NumBits() {
		return nil, &ErrShapeMismatch{Got: len(opts.BitWeights), Want: d.H.NumBits()}
	}

	n := d.H.NumBits()
	count := opts.ClusterCount
	if count > n {
		count = n
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return opts.BitWeights[order[a]] < opts.BitWeights[order[b]]
	})

	mm := cluster.NewMembershipMap(n, d.H.NumChecks())
	var arena []*cluster.Cluster
	var growing []cluster.ID

	for _, bit := range order[:count] {
		if mm.OwnerOfBit(bit) != cluster.NoOwner {
			continue
		}
		c := cluster.NewAtBit(cluster.ID(len(arena)), bit, d.H, syndrome, cluster.Matrix, mm)
		arena = append(arena, c)
		growing = append(growing, c.ID())
	}

	allCovered := func() bool {
		for i, v := range syndrome {
			if v != 1 {
				continue
			}
			owner := mm.OwnerOfCheck(i)
			if owner == cluster.NoOwner {
				return false
			}
			invariant(arena[owner].Active(), "membership map points at an inactive cluster")
			if !arena[owner].Valid() {
				return false
			}
		}
		return true
	}

	for !allCovered() {
		sizeBefore := 0
		for _, c := range arena {
			if c.Active() {
				sizeBefore += c.NumBits() + c.NumChecks()
			}
		}

		seen := make(map[cluster.ID]bool)
		for _, id := range growing {
			c := arena[id]
			if !c.Active() || seen[c.ID()] {
				continue
			}
			seen[c.ID()] = true
			c.Grow(arena, mm, opts.BitWeights, opts.BitsPerStep)
		}
		growing = growing[:0]

		sizeAfter := 0
		for _, c := range arena {
			if c.Active() {
				growing = append(growing, c.ID())
				sizeAfter += c.NumBits() + c.NumChecks()
			}
		}

		if sizeAfter == sizeBefore {
			return nil, &ErrGrowthExhausted{}
		}
	}

	e = make([]byte, n)
	for _, c := range arena {
		if !c.Active() {
			continue
		}
		for _, b := range c.Solution() {
			e[b] = 1
		}
	}
	return e, nil
}
