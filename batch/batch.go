// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package batch is a worker-produced, versioned container of
// transactions, identified by the content hash of its transaction
// list alone — metadata never affects a batch's digest.
package batch

import (
	"fmt"

	"github.com/luxfi/narwhal/canonical"
	"github.com/luxfi/narwhal/clock"
	"github.com/luxfi/narwhal/digest"
	"github.com/luxfi/narwhal/protoconfig"
)

// Transaction is an opaque, worker-supplied transaction payload.
type Transaction = []byte

// Digest identifies a Batch by the content hash of its transactions.
// Two batches with equal transaction lists hash identically regardless
// of version or metadata — the digest commits only to payload.
type Digest digest.Digest

func (d Digest) String() string     { return digest.Digest(d).String() }
func (d Digest) Short() string      { return digest.Digest(d).Short() }
func (d Digest) IsEmpty() bool      { return digest.Digest(d).IsEmpty() }

// Metadata is the advisory V1 metadata: only a creation time. Never
// used in any safety- or liveness-critical decision.
type Metadata struct {
	CreatedAt clock.TimestampMs
}

// VersionedMetadata is the V2 metadata: a creation time plus an
// optional receipt time. ReceivedAt is populated by the receiver, not
// the author, and is therefore never covered by any signature.
type VersionedMetadata struct {
	CreatedAt  clock.TimestampMs
	ReceivedAt *clock.TimestampMs
}

// version discriminates which shape a Batch holds. It is load-bearing:
// calling a V2-only accessor on a V1 batch (or vice versa) is a
// programmer error, never a silently-recovered runtime state.
type version uint8

const (
	versionV1 version = iota
	versionV2
)

// Batch is a versioned container of transactions. Construct with New;
// do not build the zero value directly, since its version
// discriminant would be wrong.
type Batch struct {
	version      version
	transactions []Transaction
	metadata     Metadata
	versioned    VersionedMetadata
}

// New builds a Batch, selecting V1 or V2 based on cfg's feature flag.
func New(transactions []Transaction, cfg protoconfig.Config, c clock.Clock) Batch {
	if c == nil {
		c = clock.Default
	}
	now := c.NowMs()
	if cfg.VersionedMetadataEnabled {
		return Batch{
			version:      versionV2,
			transactions: transactions,
			versioned:    VersionedMetadata{CreatedAt: now},
		}
	}
	return Batch{
		version:      versionV1,
		transactions: transactions,
		metadata:     Metadata{CreatedAt: now},
	}
}

// Transactions returns the batch's transactions in order.
func (b Batch) Transactions() []Transaction { return b.transactions }

// Size returns the sum of the byte lengths of all transactions.
func (b Batch) Size() int {
	n := 0
	for _, t := range b.transactions {
		n += len(t)
	}
	return n
}

// IsV2 reports whether this batch carries VersionedMetadata.
func (b Batch) IsV2() bool { return b.version == versionV2 }

// Metadata returns the V1 metadata. It panics if called on a V2 batch:
// mixing accessors across versions is a programmer error.
func (b Batch) Metadata() Metadata {
	if b.version != versionV1 {
		panic(fmt.Sprintf("batch: Metadata() called on version %d", b.version))
	}
	return b.metadata
}

// VersionedMetadata returns the V2 metadata. It panics if called on a
// V1 batch.
func (b Batch) VersionedMetadata() VersionedMetadata {
	if b.version != versionV2 {
		panic(fmt.Sprintf("batch: VersionedMetadata() called on version %d", b.version))
	}
	return b.versioned
}

// SetReceivedAt records when this node received the batch. Only valid
// on V2 batches; receiver-populated and therefore never signed.
func (b *Batch) SetReceivedAt(ts clock.TimestampMs) {
	if b.version != versionV2 {
		panic("batch: SetReceivedAt called on a V1 batch")
	}
	b.versioned.ReceivedAt = &ts
}

// ComputeDigest hashes the concatenation of the batch's transactions,
// in order. Independent of version and metadata.
func (b Batch) ComputeDigest() Digest {
	return Digest(digest.Sum(b.transactions...))
}

// Encode serializes b in the canonical wire format: a variant tag for
// the version, the transaction list, then the version-specific
// metadata.
func (b Batch) Encode() []byte {
	w := canonical.NewWriter()
	w.Variant(uint32(b.version))

	w.Len(len(b.transactions))
	for _, t := range b.transactions {
		w.RawBytes(t)
	}

	switch b.version {
	case versionV1:
		w.U64(b.metadata.CreatedAt)
	case versionV2:
		w.U64(b.versioned.CreatedAt)
		if b.versioned.ReceivedAt != nil {
			w.U8(1)
			w.U64(*b.versioned.ReceivedAt)
		} else {
			w.U8(0)
		}
	}
	return w.Bytes()
}

// Decode parses a Batch from its Encode output.
func Decode(buf []byte) (Batch, error) {
	r := canonical.NewReader(buf)
	v := version(r.Variant())

	n := r.Len()
	txs := make([]Transaction, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, r.RawBytes())
	}

	b := Batch{version: v, transactions: txs}
	switch v {
	case versionV1:
		b.metadata = Metadata{CreatedAt: r.U64()}
	case versionV2:
		createdAt := r.U64()
		hasReceived := r.U8()
		var receivedAt *clock.TimestampMs
		if hasReceived == 1 {
			ts := r.U64()
			receivedAt = &ts
		}
		b.versioned = VersionedMetadata{CreatedAt: createdAt, ReceivedAt: receivedAt}
	default:
		return Batch{}, fmt.Errorf("batch: unknown version tag %d", v)
	}

	if err := r.Err(); err != nil {
		return Batch{}, err
	}
	return b, nil
}
