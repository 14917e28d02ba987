// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package header is the authored, round-bound DAG node that references
// a payload of batch digests and the parent certificates of the
// previous round. A Header is immutable once its digest is computed;
// the digest itself is memoized in a write-once cell.
package header

import (
	"fmt"
	"sort"
	"sync"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/narwhal/canonical"
	"github.com/luxfi/narwhal/clock"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/dagerr"
	"github.com/luxfi/narwhal/digest"
	"github.com/luxfi/narwhal/workercache"
)

// AuthorityId is the header's author identifier.
type AuthorityId = committee.AuthorityId

// Round is the DAG height this header occupies.
type Round = uint64

// Epoch fixes the committee this header belongs to.
type Epoch = committee.Epoch

// Digest identifies a Header by the canonical serialization of its
// fields (author, round, epoch, created_at, payload, parents) — never
// the memoization cache itself.
type Digest digest.Digest

func (d Digest) String() string { return digest.Digest(d).String() }
func (d Digest) Short() string  { return digest.Digest(d).Short() }

// PayloadEntry is one (BatchDigest -> (WorkerId, Timestamp)) mapping,
// in the order it was inserted. Insertion order is part of the signed
// image, so this is an ordered list, not a Go map.
type PayloadEntry struct {
	BatchDigest digest.Digest
	WorkerID    workercache.WorkerId
	CreatedAt   clock.TimestampMs
}

// Payload is the insertion-ordered BatchDigest -> (WorkerId, Timestamp)
// mapping referenced by a header.
type Payload struct {
	entries []PayloadEntry
	index   map[digest.Digest]int
}

// NewPayload returns an empty Payload.
func NewPayload() *Payload {
	return &Payload{index: make(map[digest.Digest]int)}
}

// Insert appends (or, for an existing key, overwrites in place without
// changing its position) an entry. Matches IndexMap::insert semantics.
func (p *Payload) Insert(bd digest.Digest, workerID workercache.WorkerId, createdAt clock.TimestampMs) {
	if i, ok := p.index[bd]; ok {
		p.entries[i] = PayloadEntry{BatchDigest: bd, WorkerID: workerID, CreatedAt: createdAt}
		return
	}
	p.index[bd] = len(p.entries)
	p.entries = append(p.entries, PayloadEntry{BatchDigest: bd, WorkerID: workerID, CreatedAt: createdAt})
}

// Entries returns the payload entries in insertion order. The returned
// slice must not be mutated.
func (p *Payload) Entries() []PayloadEntry {
	if p == nil {
		return nil
	}
	return p.entries
}

// Len returns the number of entries in the payload.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Parents is the sorted set of parent CertificateDigests from round-1.
// BCS serializes a BTreeSet in sorted order, so canonical encoding
// requires the set be materialized sorted regardless of insertion
// order.
type Parents []digest.Digest

// NewParents builds a canonical (deduplicated, sorted) Parents set.
func NewParents(ds ...digest.Digest) Parents {
	seen := make(map[digest.Digest]struct{}, len(ds))
	out := make(Parents, 0, len(ds))
	for _, d := range ds {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i][:]) < string(out[j][:])
	})
	return out
}

// Header is the V1 header shape. Construct with New; the digest is
// computed once, eagerly, at construction and memoized thereafter.
type Header struct {
	author    AuthorityId
	round     Round
	epoch     Epoch
	createdAt clock.TimestampMs
	payload   *Payload
	parents   Parents

	digestOnce sync.Once
	digest     Digest
}

// New builds a Header for (author, round, epoch) over payload and
// parents, stamping CreatedAt from c (or the default clock).
func New(author AuthorityId, round Round, epoch Epoch, payload *Payload, parents Parents, c clock.Clock) *Header {
	if c == nil {
		c = clock.Default
	}
	if payload == nil {
		payload = NewPayload()
	}
	h := &Header{
		author:    author,
		round:     round,
		epoch:     epoch,
		createdAt: c.NowMs(),
		payload:   payload,
		parents:   parents,
	}
	// Eagerly compute and memoize so every reader sees the same digest
	// without racing on first access.
	h.digestOnce.Do(func() { h.digest = computeDigest(h) })
	return h
}

// Author returns the header's author.
func (h *Header) Author() AuthorityId { return h.author }

// Round returns the header's round.
func (h *Header) Round() Round { return h.round }

// Epoch returns the header's epoch.
func (h *Header) Epoch() Epoch { return h.epoch }

// CreatedAt returns the header's creation timestamp.
func (h *Header) CreatedAt() clock.TimestampMs { return h.createdAt }

// Payload returns the header's payload.
func (h *Header) Payload() *Payload { return h.payload }

// ParentsSet returns the header's parent certificate digests, sorted.
func (h *Header) ParentsSet() Parents { return h.parents }

// Digest returns the header's digest, computing and memoizing it on
// first call if it wasn't already set at construction (e.g. for a
// Header built by a decoder rather than New). The first successful
// call wins; all readers observe the same value.
func (h *Header) Digest() Digest {
	h.digestOnce.Do(func() { h.digest = computeDigest(h) })
	return h.digest
}

// computeDigest hashes the canonical serialization of every field
// except the digest cache itself.
func computeDigest(h *Header) Digest {
	w := canonical.NewWriter()
	encodeForDigest(w, h)
	return Digest(digest.Sum(w.Bytes()))
}

func encodeForDigest(w *canonical.Writer, h *Header) {
	w.Raw(h.author.Bytes())
	w.U64(h.round)
	w.U64(h.epoch)
	w.U64(h.createdAt)

	w.Len(h.payload.Len())
	for _, e := range h.payload.Entries() {
		w.Raw(e.BatchDigest[:])
		w.U32(e.WorkerID)
		w.U64(e.CreatedAt)
	}

	w.Len(len(h.parents))
	for _, p := range h.parents {
		w.Raw(p[:])
	}
}

// Validate runs the header-level checks in order: epoch equality,
// digest-recomputation equality, non-zero
// author stake, and worker-cache resolution for every payload entry.
// Each failure maps to a distinct dagerr kind. logger may be nil; when
// given, every failure is logged at Warn before the typed error is
// returned.
func (h *Header) Validate(c *committee.Committee, wc workercache.Cache, logger log.Logger) error {
	if h.epoch != c.Epoch() {
		err := &dagerr.InvalidEpoch{Expected: c.Epoch(), Received: h.epoch}
		warnf(logger, "header epoch mismatch", "round", h.round, "expected", c.Epoch(), "received", h.epoch)
		return err
	}

	if computeDigest(h) != h.Digest() {
		warnf(logger, "header digest mismatch", "author", h.author.String(), "round", h.round)
		return dagerr.ErrInvalidHeaderDigest
	}

	if c.StakeByID(h.author) == 0 {
		warnf(logger, "header authored by unknown authority", "author", h.author.String())
		return &dagerr.UnknownAuthority{ID: h.author.String()}
	}

	for _, e := range h.payload.Entries() {
		if _, ok := wc.Worker(h.author, e.WorkerID); !ok {
			warnf(logger, "header references unresolvable worker id", "author", h.author.String(), "worker", e.WorkerID)
			return &dagerr.HeaderHasBadWorkerIds{HeaderDigest: h.Digest().String()}
		}
	}

	return nil
}

// warnf logs at Warn if logger is non-nil, a no-op otherwise — every
// call site here is a validation failure worth surfacing to an operator.
func warnf(logger log.Logger, msg string, ctx ...interface{}) {
	if logger != nil {
		logger.Warn(msg, ctx...)
	}
}

// IsGenesisShaped reports whether h has the empty-payload, no-parents,
// zero-round shape genesis headers use.
func (h *Header) IsGenesisShaped() bool {
	return h.round == 0 && h.payload.Len() == 0 && len(h.parents) == 0
}

// Encode serializes h in the canonical wire format: the same fields in
// the same order as the digest image, except that the author id and
// every batch and parent digest are length-prefixed rather than raw,
// so a decoder doesn't need to assume a fixed AuthorityId width.
func (h *Header) Encode() []byte {
	w := canonical.NewWriter()
	w.RawBytes(h.author.Bytes())
	w.U64(h.round)
	w.U64(h.epoch)
	w.U64(h.createdAt)

	w.Len(h.payload.Len())
	for _, e := range h.payload.Entries() {
		w.RawBytes(e.BatchDigest[:])
		w.U32(e.WorkerID)
		w.U64(e.CreatedAt)
	}

	w.Len(len(h.parents))
	for _, p := range h.parents {
		w.RawBytes(p[:])
	}
	return w.Bytes()
}

// Decode parses a Header from its Encode output. The digest is
// recomputed (and memoized) from the decoded fields rather than
// carried on the wire, so Decode(h.Encode()).Digest() == h.Digest().
func Decode(buf []byte) (*Header, error) {
	r := canonical.NewReader(buf)

	authorBytes := r.RawBytes()
	round := r.U64()
	epoch := r.U64()
	createdAt := r.U64()

	n := r.Len()
	payload := NewPayload()
	for i := 0; i < n; i++ {
		bdBytes := r.RawBytes()
		workerID := r.U32()
		entryCreatedAt := r.U64()
		if r.Err() != nil {
			break
		}
		if len(bdBytes) != digest.Length {
			return nil, fmt.Errorf("header: decode: batch digest is %d bytes, want %d", len(bdBytes), digest.Length)
		}
		payload.Insert(digest.FromBytes(bdBytes), workerID, entryCreatedAt)
	}

	pn := r.Len()
	parents := make(Parents, 0, pn)
	for i := 0; i < pn; i++ {
		pBytes := r.RawBytes()
		if r.Err() != nil {
			break
		}
		if len(pBytes) != digest.Length {
			return nil, fmt.Errorf("header: decode: parent digest is %d bytes, want %d", len(pBytes), digest.Length)
		}
		parents = append(parents, digest.FromBytes(pBytes))
	}

	if err := r.Err(); err != nil {
		return nil, err
	}

	author, err := ids.ToNodeID(authorBytes)
	if err != nil {
		return nil, err
	}

	h := &Header{
		author:    author,
		round:     round,
		epoch:     epoch,
		createdAt: createdAt,
		payload:   payload,
		parents:   parents,
	}
	h.digestOnce.Do(func() { h.digest = computeDigest(h) })
	return h, nil
}
