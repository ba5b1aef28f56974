// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package ufdecode implements a union-find decoder for binary linear codes
// defined by a sparse GF(2) parity-check matrix H: given a syndrome s, it
// produces an error estimate e with H*e = s (mod 2).
//
// The decoder grows disjoint clusters outward from the unsatisfied checks of
// s, merging clusters that collide at a shared check, and solves each
// cluster's local linear system once it becomes self-consistent — either by
// spanning-tree peeling (codes whose bit columns all have weight 2, e.g.
// surface codes) or by incremental GF(2) elimination (general sparse LDPC
// codes). Both solvers live in internal/cluster; internal/gf2 provides the
// sparse matrix view and the incremental eliminator they share.
//
// Decode runs the syndrome-seeded variant: clusters are seeded at every
// unsatisfied check and grown until each is internally valid. DecodeBitSeeded
// runs the alternative variant seeded at individual bits instead, growing a
// fixed number of clusters until every unsatisfied check is covered by a
// valid cluster.
package ufdecode
