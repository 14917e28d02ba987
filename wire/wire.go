// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire holds the request/response envelopes primaries and
// workers exchange: pushing certificates, soliciting votes, fetching
// missing certificates, checking payload availability, and directing
// workers.
package wire

import (
	"bytes"

	"github.com/RoaringBitmap/roaring"
	"github.com/luxfi/log"

	"github.com/luxfi/narwhal/batch"
	"github.com/luxfi/narwhal/certificate"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/header"
	"github.com/luxfi/narwhal/vote"
	"github.com/luxfi/narwhal/workercache"
)

// SendCertificateRequest pushes a certificate to a peer.
type SendCertificateRequest struct {
	Certificate *certificate.Certificate
}

// SendCertificateResponse is a peer's reply to a pushed certificate.
type SendCertificateResponse struct {
	Accepted bool
}

// RequestVoteRequest solicits a vote on a newly produced header. A
// voter missing parent certificates may rely on Parents to catch up
// before voting.
type RequestVoteRequest struct {
	Header  *header.Header
	Parents []*certificate.Certificate
}

// RequestVoteResponse replies to a RequestVoteRequest. Exactly one of
// Vote or a non-empty Missing is populated.
type RequestVoteResponse struct {
	Vote    *vote.Vote
	Missing []certificate.Digest
}

// GetCertificatesRequest fetches specific certificates by digest.
type GetCertificatesRequest struct {
	Digests []certificate.Digest
}

// GetCertificatesResponse replies to a GetCertificatesRequest.
type GetCertificatesResponse struct {
	Certificates []*certificate.Certificate
}

// FetchCertificatesRequest fetches certificates a requester is missing
// above its GC round, excluding rounds it already has per authority.
type FetchCertificatesRequest struct {
	// ExclusiveLowerBound is a round number; only certificates above
	// it should be returned. Corresponds to the requestor's GC round.
	ExclusiveLowerBound header.Round
	// SkipRounds holds, per authority, a serialized roaring bitmap of
	// (round - ExclusiveLowerBound) deltas the requestor already has
	// and should therefore be skipped. Deltas fit in 32 bits by
	// construction.
	SkipRounds []AuthoritySkipRounds
	// MaxItems bounds the number of certificates returned.
	MaxItems int
}

// AuthoritySkipRounds is one authority's serialized skip-rounds
// bitmap.
type AuthoritySkipRounds struct {
	Authority  committee.AuthorityId
	Serialized []byte
}

// GetBounds deserializes SkipRounds back into (gcRound, {authority ->
// rounds to skip}). A per-authority bitmap that fails to deserialize
// is logged and skipped — the sole case where a validation failure is
// swallowed rather than propagated, so a single malformed entry cannot
// deny service for the whole request.
func (r *FetchCertificatesRequest) GetBounds(logger log.Logger) (header.Round, map[committee.AuthorityId]map[header.Round]struct{}) {
	bounds := make(map[committee.AuthorityId]map[header.Round]struct{}, len(r.SkipRounds))
	for _, entry := range r.SkipRounds {
		bm := roaring.New()
		if err := bm.UnmarshalBinary(entry.Serialized); err != nil {
			if logger != nil {
				logger.Warn("failed to deserialize skip-rounds bitmap", "authority", entry.Authority.String(), "err", err)
			}
			continue
		}
		rounds := make(map[header.Round]struct{}, bm.GetCardinality())
		it := bm.Iterator()
		for it.HasNext() {
			delta := it.Next()
			rounds[r.ExclusiveLowerBound+header.Round(delta)] = struct{}{}
		}
		bounds[entry.Authority] = rounds
	}
	return r.ExclusiveLowerBound, bounds
}

// SetBounds encodes gcRound and a per-authority set of rounds to skip
// into a new FetchCertificatesRequest, the inverse of GetBounds.
func SetBounds(gcRound header.Round, skip map[committee.AuthorityId]map[header.Round]struct{}) FetchCertificatesRequest {
	entries := make([]AuthoritySkipRounds, 0, len(skip))
	for authority, rounds := range skip {
		bm := roaring.New()
		for round := range rounds {
			bm.Add(uint32(round - gcRound))
		}
		var buf bytes.Buffer
		if _, err := bm.WriteTo(&buf); err != nil {
			continue
		}
		entries = append(entries, AuthoritySkipRounds{Authority: authority, Serialized: buf.Bytes()})
	}
	return FetchCertificatesRequest{ExclusiveLowerBound: gcRound, SkipRounds: entries}
}

// FetchCertificatesResponse replies to a FetchCertificatesRequest.
// Certificates are sorted from lower to higher rounds.
type FetchCertificatesResponse struct {
	Certificates []*certificate.Certificate
}

// PayloadAvailabilityRequest asks whether a peer holds the payload for
// each named certificate.
type PayloadAvailabilityRequest struct {
	CertificateDigests []certificate.Digest
}

// PayloadAvailabilityResponse replies to a PayloadAvailabilityRequest.
type PayloadAvailabilityResponse struct {
	Availability []PayloadAvailability
}

// PayloadAvailability is one certificate's availability outcome.
type PayloadAvailability struct {
	Digest    certificate.Digest
	Available bool
}

// AvailableCertificates returns the digests marked available.
func (r *PayloadAvailabilityResponse) AvailableCertificates() []certificate.Digest {
	out := make([]certificate.Digest, 0, len(r.Availability))
	for _, a := range r.Availability {
		if a.Available {
			out = append(out, a.Digest)
		}
	}
	return out
}

// WorkerSynchronizeMessage asks a worker to sync the named batches. If
// IsCertified is set, the batches are already part of a certificate,
// so the worker may skip full validation and verify digests only.
type WorkerSynchronizeMessage struct {
	Digests     []batch.Digest
	Target      committee.AuthorityId
	IsCertified bool
}

// FetchBatchesRequest asks a worker to fetch and return missing
// batches in full.
type FetchBatchesRequest struct {
	Digests      map[batch.Digest]struct{}
	KnownWorkers map[string]struct{} // network public keys, opaque here
}

// FetchBatchesResponse returns the batches requested by the primary.
type FetchBatchesResponse struct {
	Batches map[batch.Digest]batch.Batch
}

// WorkerDeleteBatchesMessage asks a worker to delete the named
// batches.
type WorkerDeleteBatchesMessage struct {
	Digests []batch.Digest
}

// WorkerOurBatchMessage notifies the primary that this worker sealed a
// new V1 batch.
type WorkerOurBatchMessage struct {
	Digest   batch.Digest
	WorkerID workercache.WorkerId
	Metadata batch.Metadata
}

// WorkerOurBatchMessageV2 notifies the primary that this worker sealed
// a new V2 (versioned-metadata) batch.
type WorkerOurBatchMessageV2 struct {
	Digest   batch.Digest
	WorkerID workercache.WorkerId
	Metadata batch.VersionedMetadata
}

// WorkerOthersBatchMessage notifies the primary that this worker
// received a batch originated by another authority.
type WorkerOthersBatchMessage struct {
	Digest   batch.Digest
	WorkerID workercache.WorkerId
}
