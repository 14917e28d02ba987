// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package clock provides an injectable wall clock so timestamp-bearing
// entities (Batch/Header metadata) can be tested without sleeping.
package clock

import "time"

// TimestampMs is a UNIX timestamp in milliseconds.
type TimestampMs = uint64

// Clock returns the current time. now() in the core always goes
// through one of these so tests can substitute a fixed or advancing
// clock; ordering decisions must never depend on it.
type Clock interface {
	NowMs() TimestampMs
}

// Wall is the production Clock, backed by the system wall clock.
type Wall struct{}

// NowMs returns the current UNIX time in milliseconds. Panics if the
// system clock reports a time before the UNIX epoch, rather than
// silently wrapping a negative value into a huge uint64.
func (Wall) NowMs() TimestampMs {
	ms := time.Now().UnixMilli()
	if ms < 0 {
		panic("clock: system time is before the UNIX epoch")
	}
	return uint64(ms)
}

// Fixed is a Clock that always returns the same instant, for tests.
type Fixed TimestampMs

// NowMs returns the fixed instant.
func (f Fixed) NowMs() TimestampMs {
	return TimestampMs(f)
}

// Default is the clock used when a constructor isn't given one
// explicitly.
var Default Clock = Wall{}

// ElapsedMs returns the milliseconds between ts and now, per the given
// clock. If ts is in the future relative to now, returns 0 rather than
// wrapping around.
func ElapsedMs(c Clock, ts TimestampMs) uint64 {
	now := c.NowMs()
	if ts >= now {
		return 0
	}
	return now - ts
}
