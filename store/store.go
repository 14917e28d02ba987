// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store declares the persistence hooks a primary needs around
// certificates, headers, and per-peer vote bookkeeping. It never opens
// a database itself; it only declares the shape a caller's storage
// engine must expose, plus a reference in-memory implementation of
// that shape for tests and single-process use.
package store

import (
	"sync"

	"github.com/luxfi/narwhal/certificate"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/header"
	"github.com/luxfi/narwhal/vote"
)

// CertificateStore persists certificates and answers the round/parent
// queries the DAG walk and garbage collector need.
type CertificateStore interface {
	Write(c *certificate.Certificate) error
	Read(d certificate.Digest) (*certificate.Certificate, bool)
	ReadAll(ds []certificate.Digest) []*certificate.Certificate
	// Origins returns, for the given origin at the given round, the
	// certificates on record (there should be at most one per
	// (origin, round), but callers that haven't enforced that yet may
	// still need to see a conflicting set).
	Origins(origin committee.AuthorityId, round header.Round) []*certificate.Certificate
	// LatestRound returns the highest round an origin has a certificate
	// for, or (0, false) if none.
	LatestRound(origin committee.AuthorityId) (header.Round, bool)
	// GC removes every certificate at or below round, per authority.
	GC(round header.Round) int
}

// HeaderStore persists headers a primary authored or received votes
// for, keyed by digest.
type HeaderStore interface {
	Write(h *header.Header) error
	Read(d header.Digest) (*header.Header, bool)
}

// VoteInfoStore persists the single latest vote.Info cast per peer,
// enforcing at most one vote per round per peer: the vote itself is
// never retained, only enough to refuse a second vote for the same or
// an earlier round.
type VoteInfoStore interface {
	// Load returns the latest Info this store has for voter, or the
	// zero Info and false if none.
	Load(voter committee.AuthorityId) (vote.Info, bool)
	// Store records info as voter's latest, overwriting any prior
	// entry unconditionally. Callers enforce the monotonic-round rule
	// before calling Store.
	Store(voter committee.AuthorityId, info vote.Info) error
}

// InMemoryCertificateStore is a CertificateStore backed by plain maps
// guarded by a single RWMutex (grounded on dag.DAG's map-plus-mutex
// shape).
type InMemoryCertificateStore struct {
	mu        sync.RWMutex
	byDigest  map[certificate.Digest]*certificate.Certificate
	byOrigin  map[committee.AuthorityId]map[header.Round][]*certificate.Certificate
	latest    map[committee.AuthorityId]header.Round
}

// NewInMemoryCertificateStore returns an empty InMemoryCertificateStore.
func NewInMemoryCertificateStore() *InMemoryCertificateStore {
	return &InMemoryCertificateStore{
		byDigest: make(map[certificate.Digest]*certificate.Certificate),
		byOrigin: make(map[committee.AuthorityId]map[header.Round][]*certificate.Certificate),
		latest:   make(map[committee.AuthorityId]header.Round),
	}
}

// Write stores c, indexing it by digest and by (origin, round).
func (s *InMemoryCertificateStore) Write(c *certificate.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := c.Digest()
	s.byDigest[d] = c

	origin := c.Origin()
	round := c.Round()
	byRound, ok := s.byOrigin[origin]
	if !ok {
		byRound = make(map[header.Round][]*certificate.Certificate)
		s.byOrigin[origin] = byRound
	}
	byRound[round] = append(byRound[round], c)

	if cur, ok := s.latest[origin]; !ok || round > cur {
		s.latest[origin] = round
	}
	return nil
}

// Read returns the certificate stored under d, if any.
func (s *InMemoryCertificateStore) Read(d certificate.Digest) (*certificate.Certificate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byDigest[d]
	return c, ok
}

// ReadAll returns every certificate found among ds, in the order found
// (missing digests are skipped, not zero-padded).
func (s *InMemoryCertificateStore) ReadAll(ds []certificate.Digest) []*certificate.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*certificate.Certificate, 0, len(ds))
	for _, d := range ds {
		if c, ok := s.byDigest[d]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Origins returns the certificates recorded for (origin, round).
func (s *InMemoryCertificateStore) Origins(origin committee.AuthorityId, round header.Round) []*certificate.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byRound, ok := s.byOrigin[origin]
	if !ok {
		return nil
	}
	return byRound[round]
}

// LatestRound returns the highest round origin has a certificate for.
func (s *InMemoryCertificateStore) LatestRound(origin committee.AuthorityId) (header.Round, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.latest[origin]
	return r, ok
}

// GC deletes every certificate at or below round, returning the count
// removed.
func (s *InMemoryCertificateStore) GC(round header.Round) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for origin, byRound := range s.byOrigin {
		for r, certs := range byRound {
			if r > round {
				continue
			}
			for _, c := range certs {
				delete(s.byDigest, c.Digest())
			}
			removed += len(certs)
			delete(byRound, r)
		}
		if len(byRound) == 0 {
			delete(s.byOrigin, origin)
		}
	}
	return removed
}

// InMemoryHeaderStore is a HeaderStore backed by a single map guarded
// by an RWMutex.
type InMemoryHeaderStore struct {
	mu   sync.RWMutex
	byID map[header.Digest]*header.Header
}

// NewInMemoryHeaderStore returns an empty InMemoryHeaderStore.
func NewInMemoryHeaderStore() *InMemoryHeaderStore {
	return &InMemoryHeaderStore{byID: make(map[header.Digest]*header.Header)}
}

// Write stores h, keyed by its digest.
func (s *InMemoryHeaderStore) Write(h *header.Header) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[h.Digest()] = h
	return nil
}

// Read returns the header stored under d, if any.
func (s *InMemoryHeaderStore) Read(d header.Digest) (*header.Header, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.byID[d]
	return h, ok
}

// InMemoryVoteInfoStore is a VoteInfoStore backed by a single map
// guarded by an RWMutex.
type InMemoryVoteInfoStore struct {
	mu   sync.RWMutex
	byID map[committee.AuthorityId]vote.Info
}

// NewInMemoryVoteInfoStore returns an empty InMemoryVoteInfoStore.
func NewInMemoryVoteInfoStore() *InMemoryVoteInfoStore {
	return &InMemoryVoteInfoStore{byID: make(map[committee.AuthorityId]vote.Info)}
}

// Load returns voter's latest recorded Info, if any.
func (s *InMemoryVoteInfoStore) Load(voter committee.AuthorityId) (vote.Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.byID[voter]
	return info, ok
}

// Store overwrites voter's latest Info unconditionally.
func (s *InMemoryVoteInfoStore) Store(voter committee.AuthorityId, info vote.Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[voter] = info
	return nil
}
