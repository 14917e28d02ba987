// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vote is a signed attestation that a header's payload and
// parent history are available. A vote is content-addressed by the
// header digest it endorses: its own digest equals the HeaderDigest
// bytes verbatim, so a voter cannot sign two distinct votes for the
// same header without producing the same digest.
package vote

import (
	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/ids"

	"github.com/luxfi/narwhal/canonical"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/digest"
	"github.com/luxfi/narwhal/header"
	"github.com/luxfi/narwhal/intent"
)

// AuthorityId is the voter's identifier.
type AuthorityId = committee.AuthorityId

// Digest is a Vote's digest: always equal to the HeaderDigest it
// endorses.
type Digest digest.Digest

func (d Digest) String() string { return digest.Digest(d).String() }
func (d Digest) Short() string  { return digest.Digest(d).Short() }

// Signer produces a signature over an already-intent-wrapped payload.
// A synchronous signer and an async signing-service path both produce
// identical bytes; this interface covers the synchronous shape, and
// Header/Vote construction is the only place in this package that may
// suspend.
type Signer interface {
	Sign(msg []byte) (*bls.Signature, error)
}

// Vote is the V1 vote shape.
type Vote struct {
	HeaderDigest header.Digest
	Round        header.Round
	Epoch        header.Epoch
	Origin       AuthorityId // header.Author()
	Author       AuthorityId // the voter
	Signature    *bls.Signature
}

// New signs a vote over h's digest as author, using signer. The
// signed image is the vote's digest (== h.Digest()) wrapped in the
// ScopeVote intent envelope.
func New(h *header.Header, author AuthorityId, signer Signer) (*Vote, error) {
	v := &Vote{
		HeaderDigest: h.Digest(),
		Round:        h.Round(),
		Epoch:        h.Epoch(),
		Origin:       h.Author(),
		Author:       author,
	}
	msg := intent.Wrap(intent.ScopeVote, v.Digest()[:])
	sig, err := signer.Sign(msg.Bytes())
	if err != nil {
		return nil, err
	}
	v.Signature = sig
	return v, nil
}

// Digest returns the vote's digest: the HeaderDigest bytes verbatim.
func (v *Vote) Digest() Digest {
	return Digest(v.HeaderDigest)
}

// Info is the durable record kept per-peer to enforce "at-most-one
// vote per round per peer": only the latest VoteInfo survives, never
// the vote itself.
type Info struct {
	Epoch      header.Epoch
	Round      header.Round
	VoteDigest Digest
}

// NewInfo extracts the Info to persist for v.
func NewInfo(v *Vote) Info {
	return Info{Epoch: v.Epoch, Round: v.Round, VoteDigest: v.Digest()}
}

// Encode serializes v in the canonical wire format.
func (v *Vote) Encode() []byte {
	w := canonical.NewWriter()
	w.RawBytes(v.HeaderDigest[:])
	w.U64(v.Round)
	w.U64(v.Epoch)
	w.RawBytes(v.Origin.Bytes())
	w.RawBytes(v.Author.Bytes())
	w.RawBytes(v.Signature.Bytes())
	return w.Bytes()
}

// Decode parses a Vote from its Encode output.
func Decode(buf []byte) (*Vote, error) {
	r := canonical.NewReader(buf)

	hd := r.RawBytes()
	round := r.U64()
	epoch := r.U64()
	originBytes := r.RawBytes()
	authorBytes := r.RawBytes()
	sigBytes := r.RawBytes()
	if err := r.Err(); err != nil {
		return nil, err
	}

	origin, err := ids.ToNodeID(originBytes)
	if err != nil {
		return nil, err
	}
	author, err := ids.ToNodeID(authorBytes)
	if err != nil {
		return nil, err
	}
	sig, err := bls.SignatureFromBytes(sigBytes)
	if err != nil {
		return nil, err
	}

	return &Vote{
		HeaderDigest: header.Digest(digest.FromBytes(hd)),
		Round:        round,
		Epoch:        epoch,
		Origin:       origin,
		Author:       author,
		Signature:    sig,
	}, nil
}
