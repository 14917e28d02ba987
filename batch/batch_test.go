// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/narwhal/batch"
	"github.com/luxfi/narwhal/clock"
	"github.com/luxfi/narwhal/protoconfig"
)

func TestNewV1MetadataAccessorsPanicOnV2Only(t *testing.T) {
	r := require.New(t)
	b := batch.New([][]byte{[]byte("tx1")}, protoconfig.V1, clock.Fixed(100))

	r.False(b.IsV2())
	r.Equal(clock.TimestampMs(100), b.Metadata().CreatedAt)
	r.Panics(func() { b.VersionedMetadata() })
}

func TestNewV2VersionedMetadataAccessorsPanicOnV1Only(t *testing.T) {
	r := require.New(t)
	b := batch.New([][]byte{[]byte("tx1")}, protoconfig.V2, clock.Fixed(200))

	r.True(b.IsV2())
	r.Equal(clock.TimestampMs(200), b.VersionedMetadata().CreatedAt)
	r.Nil(b.VersionedMetadata().ReceivedAt)
	r.Panics(func() { b.Metadata() })
}

func TestSetReceivedAtPanicsOnV1(t *testing.T) {
	r := require.New(t)
	b := batch.New([][]byte{[]byte("tx1")}, protoconfig.V1, clock.Fixed(100))
	r.Panics(func() { b.SetReceivedAt(150) })
}

func TestSetReceivedAtOnV2(t *testing.T) {
	r := require.New(t)
	b := batch.New([][]byte{[]byte("tx1")}, protoconfig.V2, clock.Fixed(100))
	b.SetReceivedAt(150)
	r.NotNil(b.VersionedMetadata().ReceivedAt)
	r.Equal(clock.TimestampMs(150), *b.VersionedMetadata().ReceivedAt)
}

func TestDigestIgnoresMetadataAndVersion(t *testing.T) {
	r := require.New(t)
	txs := [][]byte{[]byte("a"), []byte("b")}

	v1 := batch.New(txs, protoconfig.V1, clock.Fixed(1))
	v2 := batch.New(txs, protoconfig.V2, clock.Fixed(999))

	r.Equal(v1.ComputeDigest(), v2.ComputeDigest())
}

func TestSize(t *testing.T) {
	r := require.New(t)
	b := batch.New([][]byte{[]byte("abc"), []byte("de")}, protoconfig.V1, clock.Fixed(1))
	r.Equal(5, b.Size())
}

func TestEncodeDecodeRoundTripV1(t *testing.T) {
	r := require.New(t)
	b := batch.New([][]byte{[]byte("tx1"), []byte("tx2")}, protoconfig.V1, clock.Fixed(42))

	decoded, err := batch.Decode(b.Encode())
	r.NoError(err)
	r.Equal(b.ComputeDigest(), decoded.ComputeDigest())
	r.False(decoded.IsV2())
	r.Equal(b.Metadata(), decoded.Metadata())
}

func TestEncodeDecodeRoundTripV2WithReceivedAt(t *testing.T) {
	r := require.New(t)
	b := batch.New([][]byte{[]byte("tx1")}, protoconfig.V2, clock.Fixed(42))
	b.SetReceivedAt(99)

	decoded, err := batch.Decode(b.Encode())
	r.NoError(err)
	r.True(decoded.IsV2())
	r.Equal(b.VersionedMetadata().CreatedAt, decoded.VersionedMetadata().CreatedAt)
	r.Equal(*b.VersionedMetadata().ReceivedAt, *decoded.VersionedMetadata().ReceivedAt)
}
