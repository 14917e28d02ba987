// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package protoconfig carries the protocol-version feature flags this
// core consults. Loading the flags from a file, flag set, or network
// gossip is out of scope; a host process constructs a Config and
// threads it through batch.New and friends.
package protoconfig

// Config is the subset of protocol configuration this module depends
// on. Upgrading rule: a node accepts any version <= its own max, and
// emits only the version its Config currently enables.
type Config struct {
	// VersionedMetadataEnabled selects Batch V2 (VersionedMetadata,
	// with an optional ReceivedAt) over V1 (Metadata, CreatedAt only).
	VersionedMetadataEnabled bool
}

// V1 is a Config that emits only V1 shapes.
var V1 = Config{VersionedMetadataEnabled: false}

// V2 is a Config that emits V2 (versioned) shapes.
var V2 = Config{VersionedMetadataEnabled: true}
