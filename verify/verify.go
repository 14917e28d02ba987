// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package verify is the entry point peers and the primary call to
// admit a certificate (and, transitively, its header) into the local
// DAG. It adds nothing to certificate.Certificate.Verify beyond a
// small stateful cache of already-verified digests, so that a
// certificate reachable from several other certificates' Parents is
// not re-verified on every visit.
package verify

import (
	"sync"

	"github.com/luxfi/log"

	"github.com/luxfi/narwhal/certificate"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/workercache"
)

// Cache remembers which certificate digests already passed
// verification against a given committee epoch, so repeated DAG walks
// over shared ancestry don't redo BLS aggregate verification.
type Cache struct {
	mu    sync.RWMutex
	seen  map[committee.Epoch]map[certificate.Digest]struct{}
}

// NewCache returns an empty verification cache.
func NewCache() *Cache {
	return &Cache{seen: make(map[committee.Epoch]map[certificate.Digest]struct{})}
}

// Certificate verifies c against comm and wc, consulting and updating
// the cache. A certificate already recorded as verified for comm's
// epoch is accepted without redoing the check. logger may be nil.
func (vc *Cache) Certificate(c *certificate.Certificate, comm *committee.Committee, wc workercache.Cache, logger log.Logger) error {
	d := c.Digest()
	epoch := comm.Epoch()

	vc.mu.RLock()
	if byEpoch, ok := vc.seen[epoch]; ok {
		if _, ok := byEpoch[d]; ok {
			vc.mu.RUnlock()
			return nil
		}
	}
	vc.mu.RUnlock()

	if err := c.Verify(comm, wc, logger); err != nil {
		return err
	}

	vc.mu.Lock()
	byEpoch, ok := vc.seen[epoch]
	if !ok {
		byEpoch = make(map[certificate.Digest]struct{})
		vc.seen[epoch] = byEpoch
	}
	byEpoch[d] = struct{}{}
	vc.mu.Unlock()
	return nil
}

// Certificates verifies each of cs in order, short-circuiting (and
// returning the index of) the first failure. A caller verifying a
// batch of certificates pulled from a single peer response uses this
// instead of looping by hand, so the stop-on-first-bad-certificate
// behavior is centralized in one place.
func (vc *Cache) Certificates(cs []*certificate.Certificate, comm *committee.Committee, wc workercache.Cache, logger log.Logger) (int, error) {
	for i, c := range cs {
		if err := vc.Certificate(c, comm, wc, logger); err != nil {
			return i, err
		}
	}
	return -1, nil
}
