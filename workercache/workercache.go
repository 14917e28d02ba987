// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package workercache resolves (authority, worker id) pairs to
// registered worker metadata. Header validation needs to know that
// every worker a header's payload names actually belongs to that
// header's author; constructing and gossiping the real worker registry
// is out of scope, so this package is just the lookup contract plus an
// in-memory reference implementation.
package workercache

import (
	"github.com/luxfi/ids"
)

// WorkerId identifies one of an authority's workers.
type WorkerId = uint32

// WorkerInfo is the network-facing metadata for a registered worker.
// Address is left as an opaque string: transport/address formats are
// out of scope here.
type WorkerInfo struct {
	Address string
}

// Cache resolves a worker by its owning authority and worker id.
type Cache interface {
	// Worker returns the WorkerInfo for (authority, id), or ok=false if
	// no such worker is registered.
	Worker(authority ids.NodeID, id WorkerId) (WorkerInfo, bool)
}

// Static is an in-memory Cache, suitable for tests and for hosts that
// configure their worker set statically.
type Static struct {
	workers map[ids.NodeID]map[WorkerId]WorkerInfo
}

// NewStatic builds an empty Static cache.
func NewStatic() *Static {
	return &Static{workers: make(map[ids.NodeID]map[WorkerId]WorkerInfo)}
}

// Register adds a worker for the given authority.
func (s *Static) Register(authority ids.NodeID, id WorkerId, info WorkerInfo) {
	m, ok := s.workers[authority]
	if !ok {
		m = make(map[WorkerId]WorkerInfo)
		s.workers[authority] = m
	}
	m[id] = info
}

// Worker implements Cache.
func (s *Static) Worker(authority ids.NodeID, id WorkerId) (WorkerInfo, bool) {
	m, ok := s.workers[authority]
	if !ok {
		return WorkerInfo{}, false
	}
	info, ok := m[id]
	return info, ok
}
