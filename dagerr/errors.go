// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dagerr is the typed error taxonomy for the DAG data model and
// verification pipeline. Every validation failure returns one of these
// kinds rather than an opaque string, so a caller can discriminate with
// errors.As and a peer-scoring layer (out of scope here) can act on the
// taxonomy directly.
package dagerr

import "fmt"

// Sentinel errors for kinds with no payload beyond their message.
var (
	// ErrCertificateRequiresQuorum is returned when the accumulated
	// stake of a certificate's signers is below the committee's
	// quorum threshold.
	ErrCertificateRequiresQuorum = fmt.Errorf("certificate requires quorum")

	// ErrInvalidHeaderDigest is returned when a header's recomputed
	// digest disagrees with its claimed digest.
	ErrInvalidHeaderDigest = fmt.Errorf("invalid header digest")

	// ErrInvalidSignature is returned when aggregate signature
	// verification fails. It never identifies which signer was at
	// fault: the aggregate check is all-or-nothing.
	ErrInvalidSignature = fmt.Errorf("invalid signature")
)

// InvalidEpoch is returned when a message's epoch does not match the
// committee the receiver verifies against.
type InvalidEpoch struct {
	Expected uint64
	Received uint64
}

func (e *InvalidEpoch) Error() string {
	return fmt.Sprintf("invalid epoch: expected %d, received %d", e.Expected, e.Received)
}

// UnknownAuthority is returned when a signer or header author is not
// present in the committee.
type UnknownAuthority struct {
	ID string
}

func (e *UnknownAuthority) Error() string {
	return fmt.Sprintf("unknown authority: %s", e.ID)
}

// HeaderHasBadWorkerIds is returned when a header's payload references
// a worker ID that isn't registered for the author in the worker cache.
type HeaderHasBadWorkerIds struct {
	HeaderDigest string
}

func (e *HeaderHasBadWorkerIds) Error() string {
	return fmt.Sprintf("header %s references unknown worker ids", e.HeaderDigest)
}

// InvalidBitmap is returned when a signer bitmap is malformed or
// contains an out-of-range authority index.
type InvalidBitmap struct {
	Reason string
}

func (e *InvalidBitmap) Error() string {
	return fmt.Sprintf("invalid bitmap: %s", e.Reason)
}
