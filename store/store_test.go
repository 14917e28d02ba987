// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store_test

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/narwhal/certificate"
	"github.com/luxfi/narwhal/clock"
	"github.com/luxfi/narwhal/header"
	"github.com/luxfi/narwhal/store"
	"github.com/luxfi/narwhal/vote"
)

func TestCertificateStoreWriteReadGC(t *testing.T) {
	r := require.New(t)
	s := store.NewInMemoryCertificateStore()

	author := ids.BuildTestNodeID([]byte{0x01})

	var certs []*certificate.Certificate
	for round := header.Round(0); round < 3; round++ {
		h := header.New(author, round, 1, nil, nil, clock.Fixed(uint64(round)))
		certs = append(certs, &certificate.Certificate{Header: h})
	}
	for _, c := range certs {
		r.NoError(s.Write(c))
	}

	got, ok := s.Read(certs[1].Digest())
	r.True(ok)
	r.Equal(certs[1].Digest(), got.Digest())

	latest, ok := s.LatestRound(author)
	r.True(ok)
	r.Equal(header.Round(2), latest)

	removed := s.GC(1)
	r.Equal(2, removed)

	_, ok = s.Read(certs[0].Digest())
	r.False(ok)
	_, ok = s.Read(certs[2].Digest())
	r.True(ok)
}

func TestHeaderStoreWriteRead(t *testing.T) {
	r := require.New(t)
	s := store.NewInMemoryHeaderStore()
	author := ids.BuildTestNodeID([]byte{0x01})
	h := header.New(author, 1, 1, nil, nil, clock.Fixed(1))

	r.NoError(s.Write(h))
	got, ok := s.Read(h.Digest())
	r.True(ok)
	r.Equal(h.Digest(), got.Digest())

	_, ok = s.Read(header.Digest{0xff})
	r.False(ok)
}

func TestVoteInfoStoreLatestOverwrites(t *testing.T) {
	r := require.New(t)
	s := store.NewInMemoryVoteInfoStore()
	voter := ids.BuildTestNodeID([]byte{0x01})

	info1 := vote.Info{Epoch: 1, Round: 1}
	info2 := vote.Info{Epoch: 1, Round: 2}

	r.NoError(s.Store(voter, info1))
	r.NoError(s.Store(voter, info2))

	got, ok := s.Load(voter)
	r.True(ok)
	r.Equal(info2, got)
}
