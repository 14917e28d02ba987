// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package canonical implements a length-prefixed, field-ordered
// binary format equivalent to BCS: fixed-width
// integers little-endian, sequences prefixed by a uleb128 length, maps
// as sequences of (k, v) pairs in insertion order, enums prefixed by a
// uleb128 variant tag. Every Header/Certificate digest is computed over
// this encoding, so producers and verifiers on different nodes must
// agree on it byte-for-byte.
//
// Sequence/map length prefixes reuse protobuf's wire-format varint
// (base-128, little-endian group order), which is bit-for-bit the same
// encoding as uleb128, instead of hand-rolling the same math.
package canonical

import (
	"encoding/binary"

	"google.golang.org/protobuf/encoding/protowire"
)

// Writer accumulates a canonical byte image.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated image.
func (w *Writer) Bytes() []byte { return w.buf }

// U8 appends a single byte.
func (w *Writer) U8(v uint8) { w.buf = append(w.buf, v) }

// U32 appends a fixed-width little-endian uint32.
func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// U64 appends a fixed-width little-endian uint64.
func (w *Writer) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Len appends a uleb128-encoded sequence/map length prefix.
func (w *Writer) Len(n int) {
	w.buf = protowire.AppendVarint(w.buf, uint64(n))
}

// Variant appends a uleb128-encoded enum variant tag.
func (w *Writer) Variant(tag uint32) {
	w.buf = protowire.AppendVarint(w.buf, uint64(tag))
}

// RawBytes appends a length-prefixed byte string.
func (w *Writer) RawBytes(b []byte) {
	w.Len(len(b))
	w.buf = append(w.buf, b...)
}

// Raw appends bytes with no length prefix (used for fixed-width values
// that are themselves byte arrays, e.g. a Digest).
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Reader consumes a canonical byte image in order.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader wraps buf for sequential canonical decoding.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// U8 reads a single byte.
func (r *Reader) U8() uint8 {
	if r.err != nil || r.pos+1 > len(r.buf) {
		r.fail(errShortBuffer)
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

// U32 reads a fixed-width little-endian uint32.
func (r *Reader) U32() uint32 {
	if r.err != nil || r.pos+4 > len(r.buf) {
		r.fail(errShortBuffer)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

// U64 reads a fixed-width little-endian uint64.
func (r *Reader) U64() uint64 {
	if r.err != nil || r.pos+8 > len(r.buf) {
		r.fail(errShortBuffer)
		return 0
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v
}

// Len reads a uleb128-encoded length prefix.
func (r *Reader) Len() int {
	if r.err != nil {
		return 0
	}
	v, n := protowire.ConsumeVarint(r.buf[r.pos:])
	if n < 0 {
		r.fail(errShortBuffer)
		return 0
	}
	r.pos += n
	return int(v)
}

// Variant reads a uleb128-encoded enum variant tag.
func (r *Reader) Variant() uint32 {
	return uint32(r.Len())
}

// RawBytes reads a length-prefixed byte string.
func (r *Reader) RawBytes() []byte {
	n := r.Len()
	if r.err != nil || r.pos+n > len(r.buf) {
		r.fail(errShortBuffer)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return append([]byte(nil), b...)
}

// Raw reads n bytes with no length prefix.
func (r *Reader) Raw(n int) []byte {
	if r.err != nil || r.pos+n > len(r.buf) {
		r.fail(errShortBuffer)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return append([]byte(nil), b...)
}

var errShortBuffer = shortBufferError{}

type shortBufferError struct{}

func (shortBufferError) Error() string { return "canonical: short buffer" }
