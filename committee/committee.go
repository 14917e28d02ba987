// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package committee is the canonical view of a DAG epoch's authority
// set: a fixed enumeration order, per-authority stake, and the quorum
// arithmetic every other component in this module defers to. The
// enumeration order is the single source of truth for every bitmap
// index used by votes and certificates — reordering it between two
// nodes silently breaks aggregate signature verification.
package committee

import (
	"sort"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/ids"
)

// AuthorityId identifies a committee member. It is opaque and totally
// ordered: ids.NodeID is already exactly this (20 bytes, comparable via
// Compare).
type AuthorityId = ids.NodeID

// Epoch fixes a committee's identity; a committee is only ever valid
// for one epoch.
type Epoch = uint64

// Stake is an unsigned share of voting weight.
type Stake = uint64

// Authority is one committee member: its identifier, voting weight,
// and BLS public key used to verify its votes once aggregated.
type Authority struct {
	ID        AuthorityId
	Stake     Stake
	ProtocolKey *bls.PublicKey
}

// Committee is the ordered, immutable view of an epoch's authority
// set. It is safe for concurrent read for the lifetime of the epoch.
type Committee struct {
	epoch      Epoch
	authorities []Authority
	index      map[AuthorityId]int // position in canonical enumeration
	total      Stake
}

// New builds a Committee for epoch e from the given authorities. The
// canonical enumeration order is lexicographic by AuthorityId, a
// deterministic tie-break every node computes identically.
func New(e Epoch, authorities []Authority) *Committee {
	ordered := make([]Authority, len(authorities))
	copy(ordered, authorities)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID.Compare(ordered[j].ID) < 0
	})

	idx := make(map[AuthorityId]int, len(ordered))
	var total Stake
	for i, a := range ordered {
		idx[a.ID] = i
		total += a.Stake
	}

	return &Committee{
		epoch:       e,
		authorities: ordered,
		index:       idx,
		total:       total,
	}
}

// Epoch returns the committee's fixed epoch.
func (c *Committee) Epoch() Epoch { return c.epoch }

// Size returns the number of authorities in the committee.
func (c *Committee) Size() int { return len(c.authorities) }

// Authorities returns the committee's authorities in canonical
// enumeration order. The returned slice must not be mutated.
func (c *Committee) Authorities() []Authority { return c.authorities }

// Authority returns the authority at canonical index i, and whether i
// was in range.
func (c *Committee) Authority(i int) (Authority, bool) {
	if i < 0 || i >= len(c.authorities) {
		return Authority{}, false
	}
	return c.authorities[i], true
}

// IndexOf returns the canonical enumeration index of id, or -1 if id
// is not a member.
func (c *Committee) IndexOf(id AuthorityId) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// StakeByID returns the stake of id, or 0 if id is not a member (which
// doubles as "no voting rights" for header validation).
func (c *Committee) StakeByID(id AuthorityId) Stake {
	if i, ok := c.index[id]; ok {
		return c.authorities[i].Stake
	}
	return 0
}

// TotalStake returns the sum of all authorities' stake.
func (c *Committee) TotalStake() Stake { return c.total }

// QuorumThreshold returns the minimum stake that constitutes "more
// than 2/3" of total stake: ⌊2·total/3⌋ + 1.
func (c *Committee) QuorumThreshold() Stake {
	return (2*c.total)/3 + 1
}
