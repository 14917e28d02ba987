// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package intent wraps every signed digest in a domain-separation
// envelope before it is signed or verified, so a signature produced
// under one scope, version, or application can never be replayed
// under another.
package intent

// Scope discriminates the kind of payload being signed, so a
// signature produced for one purpose can never be replayed as a
// signature for another.
type Scope uint8

// Scopes this module signs over. Votes are signed over the
// HeaderDigest under ScopeVote; a certificate's aggregate signature is
// the aggregate of its votes' signatures, so it is verified under
// ScopeVote as well. No signing path in this module uses
// ScopeCertificate.
const (
	ScopeVote Scope = iota
	ScopeCertificate
)

// Version is the intent envelope's wire version. Bumped only if the
// envelope's own shape changes, independent of payload versioning.
const Version uint8 = 0

// AppID identifies the application (Narwhal primary) producing the
// intent, distinguishing this module's signatures from unrelated
// signing domains sharing the same key material.
const AppID uint8 = 0

// Message is the envelope placed around a payload before signing:
// Scope || Version || AppID || Payload.
type Message struct {
	Scope   Scope
	Version uint8
	AppID   uint8
	Payload []byte
}

// Wrap builds the IntentMessage for payload under scope.
func Wrap(scope Scope, payload []byte) Message {
	return Message{
		Scope:   scope,
		Version: Version,
		AppID:   AppID,
		Payload: payload,
	}
}

// Bytes returns the exact byte image signatures are computed over.
// Producers and verifiers must agree on this byte-for-byte.
func (m Message) Bytes() []byte {
	out := make([]byte, 0, 3+len(m.Payload))
	out = append(out, byte(m.Scope), m.Version, m.AppID)
	out = append(out, m.Payload...)
	return out
}
