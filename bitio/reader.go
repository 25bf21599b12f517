/*
NAME
  reader.go

DESCRIPTION
  reader.go provides a bit-level reader over an immutable byte buffer,
  used to decode the dense variable-length bit syntax of Dolby Vision
  RPU payloads.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bitio provides MSB-first bit-level readers and writers over
// byte buffers, including unsigned and signed Exp-Golomb support.
package bitio

import (
	"bytes"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// ErrTruncated is returned when a read would consume more bits than
// remain in the underlying buffer.
var ErrTruncated = errors.New("bitio: truncated read")

// Reader is a bit-level reader over an immutable byte buffer. Bits are
// read MSB-first within each byte.
type Reader struct {
	r    *bitio.Reader
	buf  []byte
	pos  int // bits consumed so far
	size int // total bits in buf
}

// NewReader returns a Reader over buf. buf is not copied and must not
// be modified while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{
		r:    bitio.NewReader(bytes.NewReader(buf)),
		buf:  buf,
		size: len(buf) * 8,
	}
}

// Get reads a single bit.
func (r *Reader) Get() (uint8, error) {
	if r.pos >= r.size {
		return 0, ErrTruncated
	}
	b, err := r.r.ReadBits(1)
	if err != nil {
		return 0, errors.Wrap(ErrTruncated, err.Error())
	}
	r.pos++
	return uint8(b), nil
}

// GetN reads n bits (0 <= n <= 64) and returns them as an unsigned
// integer in the low-order bits.
func (r *Reader) GetN(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > 64 {
		return 0, errors.Errorf("bitio: invalid bit count %d", n)
	}
	if r.pos+n > r.size {
		return 0, ErrTruncated
	}
	v, err := r.r.ReadBits(uint8(n))
	if err != nil {
		return 0, errors.Wrap(ErrTruncated, err.Error())
	}
	r.pos += n
	return v, nil
}

// GetUE reads an unsigned Exp-Golomb coded value (ue(v) descriptor):
// count the leading zero bits n, consume the following one bit, then
// read n further bits k; the value is (1<<n) + k - 1.
func (r *Reader) GetUE() (uint64, error) {
	n := 0
	for {
		b, err := r.Get()
		if err != nil {
			return 0, errors.Wrap(err, "bitio: reading ue(v) leading zeros")
		}
		if b == 1 {
			break
		}
		n++
		if n > 63 {
			return 0, errors.New("bitio: ue(v) leading zero run too long")
		}
	}
	if n == 0 {
		return 0, nil
	}
	rem, err := r.GetN(n)
	if err != nil {
		return 0, errors.Wrap(err, "bitio: reading ue(v) remainder")
	}
	return (uint64(1)<<uint(n) - 1) + rem, nil
}

// GetSE reads a signed Exp-Golomb coded value (se(v) descriptor) using
// the mapping in ITU-T H.264 9.1.1 / the Dolby Vision RPU syntax:
// k = ue(v); value = ceil(k/2) with sign (-1)^(k+1).
func (r *Reader) GetSE() (int64, error) {
	k, err := r.GetUE()
	if err != nil {
		return 0, errors.Wrap(err, "bitio: reading se(v)")
	}
	v := int64((k + 1) / 2)
	if k%2 == 0 {
		v = -v
	}
	return v, nil
}

// IsAligned reports whether the current position is at a byte
// boundary.
func (r *Reader) IsAligned() bool {
	return r.pos%8 == 0
}

// Pos returns the current bit position.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return r.size - r.pos
}

// Inner returns the underlying byte buffer this Reader was
// constructed with.
func (r *Reader) Inner() []byte {
	return r.buf
}
