// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package certificate is a Header plus an aggregated quorum of votes:
// the unit a primary disseminates and a peer admits into its local
// DAG once it verifies. A certificate's identity is the header it
// certifies (CertificateDigest == HeaderDigest verbatim), so multiple
// certificates for the same header are equivalent and deduplicated by
// the DAG.
package certificate

import (
	"bytes"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/log"

	"github.com/luxfi/narwhal/canonical"
	"github.com/luxfi/narwhal/clock"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/dagerr"
	"github.com/luxfi/narwhal/digest"
	"github.com/luxfi/narwhal/header"
	"github.com/luxfi/narwhal/intent"
	"github.com/luxfi/narwhal/workercache"
)

// AuthorityId identifies a signer.
type AuthorityId = committee.AuthorityId

// Digest is a Certificate's digest: the header digest's bytes,
// verbatim.
type Digest digest.Digest

func (d Digest) String() string { return digest.Digest(d).String() }
func (d Digest) Short() string  { return digest.Digest(d).Short() }

// Metadata is advisory, never covered by the aggregate signature.
type Metadata struct {
	CreatedAt uint64
}

// VoteEntry is one (signer, signature) pair fed into aggregation.
type VoteEntry struct {
	Author    AuthorityId
	Signature *bls.Signature
}

// Certificate is the V1 certificate shape.
type Certificate struct {
	Header              *header.Header
	AggregatedSignature *bls.Signature // nil means the aggregate identity (no signers)
	SignedAuthorities   *roaring.Bitmap
	Metadata            Metadata
}

// Genesis builds the committee's canonical genesis certificates: one
// per authority, empty payload, round 0, createdAt fixed at 0, and no
// aggregated signature. These are always valid. createdAt must be
// fixed rather than wall-clock-stamped: it is part of the header
// digest, so a wall-clock stamp would make Genesis non-deterministic
// across calls and across nodes.
func Genesis(c *committee.Committee) []*Certificate {
	out := make([]*Certificate, 0, c.Size())
	for _, a := range c.Authorities() {
		h := header.New(a.ID, 0, c.Epoch(), nil, nil, clock.Fixed(0))
		out = append(out, &Certificate{
			Header:            h,
			SignedAuthorities: roaring.New(),
		})
	}
	return out
}

// NewUnverified aggregates votes into a Certificate and requires that
// the accumulated stake reach the committee's quorum threshold.
func NewUnverified(c *committee.Committee, h *header.Header, votes []VoteEntry) (*Certificate, error) {
	return newUnsafe(c, h, votes, true)
}

// NewUnsigned aggregates votes into a Certificate without requiring
// quorum stake — used for test fixtures and sub-quorum scenarios.
func NewUnsigned(c *committee.Committee, h *header.Header, votes []VoteEntry) (*Certificate, error) {
	return newUnsafe(c, h, votes, false)
}

// newUnsafe implements the shared construction algorithm: sort votes
// by authority, walk the committee in canonical
// order draining matches (and exact-duplicate repeats) from the
// sorted queue, reject any leftover vote naming an authority the
// committee doesn't know, optionally enforce quorum, then aggregate
// the collected signatures.
func newUnsafe(c *committee.Committee, h *header.Header, votes []VoteEntry, checkStake bool) (*Certificate, error) {
	sorted := make([]VoteEntry, len(votes))
	copy(sorted, votes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Author.Compare(sorted[j].Author) < 0
	})

	var (
		weight committee.Stake
		sigs   []*bls.Signature
		qi     = 0 // index into sorted votes queue
	)
	bitmap := roaring.New()

	for i, a := range c.Authorities() {
		if qi >= len(sorted) || sorted[qi].Author != a.ID {
			continue
		}
		vote := sorted[qi]
		qi++
		weight += a.Stake
		sigs = append(sigs, vote.Signature)
		bitmap.Add(uint32(i))

		// Drain any further votes from the same author. Exact repeats
		// of the one just consumed (same signature bytes) are dropped.
		// Votes from the same author with a *different* signature are
		// not deduplicated here: their signatures are folded into the
		// aggregate, so construction still succeeds, but aggregate
		// verification will later fail, since the aggregate would not
		// match the committee's recorded public keys one-to-one.
		for qi < len(sorted) && sorted[qi].Author == a.ID {
			if !sameSignature(sorted[qi].Signature, vote.Signature) {
				sigs = append(sigs, sorted[qi].Signature)
			}
			qi++
		}
	}

	if qi < len(sorted) {
		return nil, &dagerr.UnknownAuthority{ID: sorted[qi].Author.String()}
	}

	if checkStake && weight < c.QuorumThreshold() {
		return nil, dagerr.ErrCertificateRequiresQuorum
	}

	var agg *bls.Signature
	if len(sigs) > 0 {
		var err error
		agg, err = bls.Aggregate(sigs...)
		if err != nil {
			return nil, dagerr.ErrInvalidSignature
		}
	}

	return &Certificate{
		Header:              h,
		AggregatedSignature: agg,
		SignedAuthorities:   bitmap,
	}, nil
}

// Digest returns the certificate's digest: its header's digest,
// verbatim.
func (c *Certificate) Digest() Digest {
	return Digest(c.Header.Digest())
}

// Round returns the certificate's round (its header's round).
func (c *Certificate) Round() header.Round { return c.Header.Round() }

// Epoch returns the certificate's epoch (its header's epoch).
func (c *Certificate) Epoch() header.Epoch { return c.Header.Epoch() }

// Origin returns the certificate's origin (its header's author).
func (c *Certificate) Origin() AuthorityId { return c.Header.Author() }

// SignedBy walks the committee in canonical order alongside the
// ascending bitmap indices, accumulating stake and the signers'
// public keys. It does not itself check the aggregate signature or
// quorum, and bitmap indices outside the committee are skipped rather
// than reported; Verify checks all three separately.
func (c *Certificate) SignedBy(comm *committee.Committee) (committee.Stake, []*bls.PublicKey) {
	indexes := c.SignedAuthorities.ToArray()
	var weight committee.Stake
	pks := make([]*bls.PublicKey, 0, len(indexes))
	ai := 0
	for i, a := range comm.Authorities() {
		if ai >= len(indexes) || indexes[ai] != uint32(i) {
			continue
		}
		ai++
		weight += a.Stake
		pks = append(pks, a.ProtocolKey)
	}
	return weight, pks
}

// Verify runs the ordered verification pipeline: epoch equality,
// genesis short-circuit, header validation, the signer walk, quorum,
// then aggregate signature verification. Any step failing is terminal;
// there is no partial admission. logger may be nil; every failure is
// logged at Warn before the typed error is returned.
func (c *Certificate) Verify(comm *committee.Committee, wc workercache.Cache, logger log.Logger) error {
	if c.Epoch() != comm.Epoch() {
		warn(logger, "certificate epoch mismatch", "origin", c.Origin().String(), "round", c.Round(), "expected", comm.Epoch(), "received", c.Epoch())
		return &dagerr.InvalidEpoch{Expected: comm.Epoch(), Received: c.Epoch()}
	}

	if c.Round() == 0 && isGenesis(c, comm) {
		return nil
	}

	if err := c.Header.Validate(comm, wc, logger); err != nil {
		return err
	}

	weight, pks := c.SignedBy(comm)
	if err := checkSignerBitmap(c.SignedAuthorities, comm); err != nil {
		warn(logger, "certificate signer bitmap out of range", "digest", c.Digest().String())
		return err
	}
	if weight < comm.QuorumThreshold() {
		warn(logger, "certificate below quorum", "digest", c.Digest().String(), "weight", weight, "threshold", comm.QuorumThreshold())
		return dagerr.ErrCertificateRequiresQuorum
	}

	msg := intent.Wrap(intent.ScopeVote, c.Digest()[:])
	if !bls.VerifyAggregate(msg.Bytes(), c.AggregatedSignature, pks) {
		warn(logger, "certificate aggregate signature invalid", "digest", c.Digest().String())
		return dagerr.ErrInvalidSignature
	}

	return nil
}

// warn logs at Warn if logger is non-nil, a no-op otherwise.
func warn(logger log.Logger, msg string, ctx ...interface{}) {
	if logger != nil {
		logger.Warn(msg, ctx...)
	}
}

// checkSignerBitmap rejects a bitmap containing any index outside
// [0, committee.Size()).
func checkSignerBitmap(b *roaring.Bitmap, comm *committee.Committee) error {
	if b.GetCardinality() > 0 && b.Maximum() >= uint32(comm.Size()) {
		return &dagerr.InvalidBitmap{Reason: "index out of range"}
	}
	return nil
}

// sameSignature reports whether two signatures are byte-for-byte
// identical, treating nil as distinct from any non-nil signature.
func sameSignature(a, b *bls.Signature) bool {
	if a == nil || b == nil {
		return a == b
	}
	return bytes.Equal(a.Bytes(), b.Bytes())
}

// isGenesis reports whether c equals one of comm's canonical genesis
// certificates: matching header digest and origin alone is not
// enough, since a certificate carrying a genesis header but an
// arbitrary aggregated signature or non-empty signer bitmap must not
// be exempted from verification.
func isGenesis(c *Certificate, comm *committee.Committee) bool {
	if c.AggregatedSignature != nil {
		return false
	}
	if c.SignedAuthorities == nil || !c.SignedAuthorities.IsEmpty() {
		return false
	}
	for _, g := range Genesis(comm) {
		if g.Origin() == c.Origin() && g.Digest() == c.Digest() {
			return true
		}
	}
	return false
}

// Parents implements the Affiliated DAG hook: this certificate's
// parents are its header's parent certificate digests.
func (c *Certificate) Parents() []Digest {
	ps := c.Header.ParentsSet()
	out := make([]Digest, len(ps))
	for i, p := range ps {
		out[i] = Digest(p)
	}
	return out
}

// Compressible implements the Affiliated DAG hook: a certificate with
// an empty payload is compressible, and downstream DAG walkers elide
// it.
func (c *Certificate) Compressible() bool {
	return c.Header.Payload().Len() == 0
}

// Encode serializes c in the canonical wire format: the header image,
// the aggregated signature, the signer bitmap, and metadata.
func (c *Certificate) Encode() []byte {
	w := canonical.NewWriter()
	w.RawBytes(c.Header.Encode())

	if c.AggregatedSignature != nil {
		w.U8(1)
		w.RawBytes(c.AggregatedSignature.Bytes())
	} else {
		w.U8(0)
	}

	bitmapBytes, err := c.SignedAuthorities.ToBytes()
	if err != nil {
		bitmapBytes = nil
	}
	w.RawBytes(bitmapBytes)

	w.U64(c.Metadata.CreatedAt)
	return w.Bytes()
}

// Decode parses a Certificate from its Encode output.
func Decode(buf []byte) (*Certificate, error) {
	r := canonical.NewReader(buf)

	headerBytes := r.RawBytes()
	hasSig := r.U8()
	var sigBytes []byte
	if hasSig == 1 {
		sigBytes = r.RawBytes()
	}
	bitmapBytes := r.RawBytes()
	createdAt := r.U64()
	if err := r.Err(); err != nil {
		return nil, err
	}

	h, err := header.Decode(headerBytes)
	if err != nil {
		return nil, err
	}

	var sig *bls.Signature
	if hasSig == 1 {
		sig, err = bls.SignatureFromBytes(sigBytes)
		if err != nil {
			return nil, err
		}
	}

	bitmap := roaring.New()
	if len(bitmapBytes) > 0 {
		if err := bitmap.UnmarshalBinary(bitmapBytes); err != nil {
			return nil, err
		}
	}

	return &Certificate{
		Header:              h,
		AggregatedSignature: sig,
		SignedAuthorities:   bitmap,
		Metadata:            Metadata{CreatedAt: createdAt},
	}, nil
}
