// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package cluster implements the growth-and-merge engine over the Tanner
// graph of a parity-check matrix: Cluster bookkeeping, boundary growth,
// merge semantics, and the two per-cluster solvers (peel and matrix).
package cluster

// ID identifies a Cluster within one decode call's arena. Membership maps
// store IDs rather than pointers, following the arena-by-index pattern bart
// uses for its node references (internal/nodes, noder.go): merges become a
// single array rewrite and every reference has a lifetime bounded by the
// call that created the arena.
type ID int

// NoOwner marks a bit or check that does not currently belong to any active
// cluster.
const NoOwner ID = -1

// MembershipMap is the two flat O(1) arrays spec.md §3/§4.1 calls for: one
// entry per global bit, one per global check, each either NoOwner or the ID
// of the cluster that currently owns that bit/check. It is the disjoint-set
// index AND the growth gate (a cluster's growth step tests ownership
// directly against this map, see Cluster.Grow).
type MembershipMap struct {
	bitOwner   []ID
	checkOwner []ID
}

// NewMembershipMap allocates a membership map for a matrix with n bits and m
// checks, all initially unowned.
func NewMembershipMap(n, m int) *MembershipMap {
	mm := &MembershipMap{
		bitOwner:   make([]ID, n),
		checkOwner: make([]ID, m),
	}
	for i := range mm.bitOwner {
		mm.bitOwner[i] = NoOwner
	}
	for j := range mm.checkOwner {
		mm.checkOwner[j] = NoOwner
	}
	return mm
}

func (mm *MembershipMap) OwnerOfBit(i int) ID    { return mm.bitOwner[i] }
func (mm *MembershipMap) OwnerOfCheck(j int) ID  { return mm.checkOwner[j] }
func (mm *MembershipMap) SetOwnerBit(i int, id ID)   { mm.bitOwner[i] = id }
func (mm *MembershipMap) SetOwnerCheck(j int, id ID) { mm.checkOwner[j] = id }
