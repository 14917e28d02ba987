// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package header_test

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/narwhal/clock"
	"github.com/luxfi/narwhal/committee"
	"github.com/luxfi/narwhal/dagerr"
	"github.com/luxfi/narwhal/digest"
	"github.com/luxfi/narwhal/header"
	"github.com/luxfi/narwhal/workercache"
)

var author = ids.BuildTestNodeID([]byte{0x01})

func testCommittee() *committee.Committee {
	return committee.New(1, []committee.Authority{
		{ID: author, Stake: 1},
		{ID: ids.BuildTestNodeID([]byte{0x02}), Stake: 1},
	})
}

func TestDigestIsMemoizedAtConstruction(t *testing.T) {
	r := require.New(t)
	h := header.New(author, 1, 1, nil, nil, clock.Fixed(100))

	d1 := h.Digest()
	d2 := h.Digest()
	r.Equal(d1, d2)
}

func TestDigestIsDeterministicOverFields(t *testing.T) {
	r := require.New(t)
	p := header.NewPayload()
	p.Insert(digest.FromBytes(make([]byte, 32)), 0, 10)

	parents := header.NewParents(digest.FromBytes(make([]byte, 32)))

	h1 := header.New(author, 3, 1, p, parents, clock.Fixed(100))

	p2 := header.NewPayload()
	p2.Insert(digest.FromBytes(make([]byte, 32)), 0, 10)
	h2 := header.New(author, 3, 1, p2, parents, clock.Fixed(100))

	r.Equal(h1.Digest(), h2.Digest())
}

func TestParentsAreDeduplicatedAndSorted(t *testing.T) {
	r := require.New(t)
	var a, b digest.Digest
	a[0] = 0x02
	b[0] = 0x01

	ps := header.NewParents(a, b, a)
	r.Len(ps, 2)
	r.Equal(b, ps[0])
	r.Equal(a, ps[1])
}

func TestPayloadInsertOverwritesInPlace(t *testing.T) {
	r := require.New(t)
	p := header.NewPayload()
	var bd digest.Digest
	bd[0] = 1

	p.Insert(bd, 5, 10)
	p.Insert(bd, 9, 20)

	r.Equal(1, p.Len())
	r.Equal(workercache.WorkerId(9), p.Entries()[0].WorkerID)
	r.Equal(clock.TimestampMs(20), p.Entries()[0].CreatedAt)
}

func TestValidateRejectsWrongEpoch(t *testing.T) {
	r := require.New(t)
	c := testCommittee()
	wc := workercache.NewStatic()

	h := header.New(author, 1, 99, nil, nil, clock.Fixed(1))
	err := h.Validate(c, wc, nil)
	r.Error(err)
	var epochErr *dagerr.InvalidEpoch
	r.ErrorAs(err, &epochErr)
}

func TestValidateRejectsUnknownAuthor(t *testing.T) {
	r := require.New(t)
	c := testCommittee()
	wc := workercache.NewStatic()

	h := header.New(ids.BuildTestNodeID([]byte{0xff}), 1, 1, nil, nil, clock.Fixed(1))
	err := h.Validate(c, wc, nil)
	r.Error(err)
	var unk *dagerr.UnknownAuthority
	r.ErrorAs(err, &unk)
}

func TestValidateRejectsUnresolvableWorker(t *testing.T) {
	r := require.New(t)
	c := testCommittee()
	wc := workercache.NewStatic()

	p := header.NewPayload()
	var bd digest.Digest
	bd[0] = 1
	p.Insert(bd, 7, 10)

	h := header.New(author, 1, 1, p, nil, clock.Fixed(1))
	err := h.Validate(c, wc, nil)
	r.Error(err)
	var bad *dagerr.HeaderHasBadWorkerIds
	r.ErrorAs(err, &bad)
}

func TestValidateAcceptsResolvableWorker(t *testing.T) {
	r := require.New(t)
	c := testCommittee()
	wc := workercache.NewStatic()
	wc.Register(author, 7, workercache.WorkerInfo{Address: "127.0.0.1:9000"})

	p := header.NewPayload()
	var bd digest.Digest
	bd[0] = 1
	p.Insert(bd, 7, 10)

	h := header.New(author, 1, 1, p, nil, clock.Fixed(1))
	r.NoError(h.Validate(c, wc, nil))
}

func TestIsGenesisShaped(t *testing.T) {
	r := require.New(t)
	h := header.New(author, 0, 1, nil, nil, clock.Fixed(1))
	r.True(h.IsGenesisShaped())

	h2 := header.New(author, 1, 1, nil, nil, clock.Fixed(1))
	r.False(h2.IsGenesisShaped())
}

func TestEncodeDecodeRoundTripPreservesDigest(t *testing.T) {
	r := require.New(t)
	p := header.NewPayload()
	var bd digest.Digest
	bd[0] = 9
	p.Insert(bd, 3, 50)
	parents := header.NewParents(digest.FromBytes(make([]byte, 32)))

	h := header.New(author, 5, 2, p, parents, clock.Fixed(77))

	decoded, err := header.Decode(h.Encode())
	r.NoError(err)
	r.Equal(h.Digest(), decoded.Digest())
	r.Equal(h.Author(), decoded.Author())
	r.Equal(h.Round(), decoded.Round())
	r.Equal(h.Epoch(), decoded.Epoch())
	r.Equal(h.CreatedAt(), decoded.CreatedAt())
	r.Equal(h.ParentsSet(), decoded.ParentsSet())
}
