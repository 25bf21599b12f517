/*
NAME
  writer.go

DESCRIPTION
  writer.go provides a bit-level writer that mirrors Reader, used to
  re-serialize Dolby Vision RPU payloads.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bitio

import (
	"bytes"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// Writer is a bit-level writer that appends bits MSB-first into a
// growable byte buffer. Writes never fail except on invalid bit
// counts, since the destination buffer always has room to grow.
type Writer struct {
	buf *bytes.Buffer
	w   *bitio.Writer
	pos int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	buf := new(bytes.Buffer)
	return &Writer{buf: buf, w: bitio.NewWriter(buf)}
}

// Write appends a single bit.
func (w *Writer) Write(bit uint8) {
	if err := w.w.WriteBits(uint64(bit&1), 1); err != nil {
		panic(errors.Wrap(err, "bitio: write bit"))
	}
	w.pos++
}

// WriteN appends the low n bits (0 <= n <= 64) of v, MSB-first.
func (w *Writer) WriteN(v uint64, n int) {
	if n == 0 {
		return
	}
	if n < 0 || n > 64 {
		panic(errors.Errorf("bitio: invalid bit count %d", n))
	}
	if err := w.w.WriteBits(v, uint8(n)); err != nil {
		panic(errors.Wrap(err, "bitio: write bits"))
	}
	w.pos += n
}

// WriteUE writes v as an unsigned Exp-Golomb coded value (ue(v)).
func (w *Writer) WriteUE(v uint64) {
	n := 0
	for x := v + 1; x > 1; x >>= 1 {
		n++
	}
	for i := 0; i < n; i++ {
		w.Write(0)
	}
	w.Write(1)
	if n > 0 {
		w.WriteN(v+1-(uint64(1)<<uint(n)), n)
	}
}

// WriteSE writes v as a signed Exp-Golomb coded value (se(v)), the
// inverse of Reader.GetSE.
func (w *Writer) WriteSE(v int64) {
	var k uint64
	if v <= 0 {
		k = uint64(-v) * 2
	} else {
		k = uint64(v)*2 - 1
	}
	w.WriteUE(k)
}

// Pos returns the number of bits written so far.
func (w *Writer) Pos() int {
	return w.pos
}

// IsAligned reports whether the writer is at a byte boundary.
func (w *Writer) IsAligned() bool {
	return w.pos%8 == 0
}

// Bytes returns the finished byte buffer, padding the final partial
// byte with zero bits if the writer is not byte-aligned.
func (w *Writer) Bytes() []byte {
	if err := w.w.Close(); err != nil {
		panic(errors.Wrap(err, "bitio: flush writer"))
	}
	return w.buf.Bytes()
}

// AppendBits copies the numBits bits of src starting at bit offset
// startBit into w, MSB-first. It is used to splice an unmodified tail
// of a source buffer (e.g. mapping/NLQ/DM/CRC data the RPU codec does
// not re-serialize field-by-field) onto a freshly written header.
func AppendBits(w *Writer, src []byte, startBit, numBits int) {
	r := NewReader(src)
	for skip := startBit; skip > 0; {
		n := skip
		if n > 56 {
			n = 56
		}
		if _, err := r.GetN(n); err != nil {
			panic(errors.Wrap(err, "bitio: seeking to splice offset"))
		}
		skip -= n
	}
	remaining := numBits
	for remaining > 0 {
		n := remaining
		if n > 56 {
			n = 56
		}
		v, err := r.GetN(n)
		if err != nil {
			panic(errors.Wrap(err, "bitio: reading splice chunk"))
		}
		w.WriteN(v, n)
		remaining -= n
	}
}
