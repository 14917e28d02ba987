// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package digest defines the fixed-width content hash used to identify
// every entity in the DAG: batches, headers, votes and certificates.
package digest

import (
	"crypto/sha256"
	"encoding/base64"
)

// Length is the size, in bytes, of a Digest.
const Length = 32

// ShortLength is how many characters of the base64 display a short
// form keeps, for compact logging.
const ShortLength = 16

// Digest is a fixed 32-byte content hash.
type Digest [Length]byte

// Empty is the all-zero digest, used by default-constructed entities.
var Empty Digest

// FromBytes wraps an existing 32-byte hash. It panics if b is not
// exactly Length bytes, since a caller passing the wrong size is a
// programmer error, not a recoverable runtime condition.
func FromBytes(b []byte) Digest {
	if len(b) != Length {
		panic("digest: expected 32 bytes")
	}
	var d Digest
	copy(d[:], b)
	return d
}

// Sum hashes the concatenation of parts, in order, into a Digest.
// Used directly for BatchDigest, and indirectly (over a canonical
// serialization) for Header/Certificate digests.
func Sum(parts ...[]byte) Digest {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// String renders the digest as standard base64.
func (d Digest) String() string {
	return base64.StdEncoding.EncodeToString(d[:])
}

// Short renders the first ShortLength characters of the base64 form,
// for logs.
func (d Digest) Short() string {
	s := d.String()
	if len(s) > ShortLength {
		return s[:ShortLength]
	}
	return s
}

// IsEmpty reports whether d is the all-zero digest.
func (d Digest) IsEmpty() bool {
	return d == Empty
}
