// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire_test

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/header"
	"github.com/luxfi/narwhal/wire"
)

func TestSetBoundsGetBoundsRoundTrip(t *testing.T) {
	r := require.New(t)

	a1 := ids.BuildTestNodeID([]byte{0x01})
	a2 := ids.BuildTestNodeID([]byte{0x02})

	gcRound := header.Round(100)
	skip := map[committee.AuthorityId]map[header.Round]struct{}{
		a1: {102: {}, 105: {}},
		a2: {101: {}},
	}

	req := wire.SetBounds(gcRound, skip)
	gotGC, gotSkip := req.GetBounds(nil)

	r.Equal(gcRound, gotGC)
	r.Equal(skip, gotSkip)
}

func TestGetBoundsToleratesOneMalformedEntry(t *testing.T) {
	r := require.New(t)

	a1 := ids.BuildTestNodeID([]byte{0x01})
	a2 := ids.BuildTestNodeID([]byte{0x02})

	good := wire.SetBounds(10, map[committee.AuthorityId]map[header.Round]struct{}{
		a1: {12: {}},
	})

	req := wire.FetchCertificatesRequest{
		ExclusiveLowerBound: 10,
		SkipRounds: append(good.SkipRounds, wire.AuthoritySkipRounds{
			Authority:  a2,
			Serialized: []byte{0xff, 0xff, 0xff}, // not a valid roaring bitmap
		}),
	}

	gc, bounds := req.GetBounds(nil)
	r.Equal(header.Round(10), gc)
	r.Contains(bounds, a1)
	r.NotContains(bounds, a2)
}

func TestAvailableCertificates(t *testing.T) {
	r := require.New(t)
	resp := wire.PayloadAvailabilityResponse{
		Availability: []wire.PayloadAvailability{
			{Digest: [32]byte{1}, Available: true},
			{Digest: [32]byte{2}, Available: false},
		},
	}
	got := resp.AvailableCertificates()
	r.Len(got, 1)
	r.Equal([32]byte{1}, [32]byte(got[0]))
}
