/*
NAME
  sink.go

DESCRIPTION
  sink.go implements the buffered output sink triple the demultiplexer
  writes its base-layer, enhancement-layer and RPU byte streams to,
  including the RPU-to-EL fallback routing rule used when no
  dedicated RPU sink is configured.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sink provides the buffered byte sinks the demultiplexer
// writes its classified NAL-unit streams to.
package sink

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// ErrNoSink is returned when none of the three output sinks are
// configured; the demultiplexer has nothing to do.
var ErrNoSink = errors.New("sink: no output sink configured")

// DefaultBufferSize is the buffer size New uses for any sink given a
// non-positive size. The dovi-demux CLI defaults its BL sink to twice
// this, since it tends to carry the bulk of the data.
const DefaultBufferSize = 100_000

// nalHeader is the 2-byte HEVC NAL header (0x7C 0x01) an RPU codec
// output carries ahead of its bitstream.
var nalHeader = [2]byte{0x7C, 0x01}

// Sink is a single buffered output stream. A nil *Sink absorbs writes
// silently, so callers need not branch on whether a given output was
// requested.
type Sink struct {
	w *bufio.Writer
	c io.Closer
}

// New wraps w in a buffered Sink of the given size. If w also
// implements io.Closer, Close closes it after flushing.
func New(w io.Writer, bufSize int) *Sink {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	c, _ := w.(io.Closer)
	return &Sink{w: bufio.NewWriterSize(w, bufSize), c: c}
}

func (s *Sink) write(p []byte) error {
	if s == nil || len(p) == 0 {
		return nil
	}
	_, err := s.w.Write(p)
	return errors.Wrap(err, "sink: write")
}

// Flush flushes any buffered bytes to the underlying writer.
func (s *Sink) Flush() error {
	if s == nil {
		return nil
	}
	return errors.Wrap(s.w.Flush(), "sink: flush")
}

// Close flushes and, if the underlying writer supports it, closes the
// sink.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	if err := s.Flush(); err != nil {
		return err
	}
	if s.c == nil {
		return nil
	}
	return errors.Wrap(s.c.Close(), "sink: close")
}

// Set is the BL/EL/RPU sink triple a demultiplexer pass writes to. A
// nil field means that category's output was not requested.
type Set struct {
	BL  *Sink
	EL  *Sink
	RPU *Sink
}

// Validate reports ErrNoSink if no sink in the set is configured.
func (s *Set) Validate() error {
	if s.BL == nil && s.EL == nil && s.RPU == nil {
		return ErrNoSink
	}
	return nil
}

// WriteBL appends p to the base-layer sink.
func (s *Set) WriteBL(p []byte) error {
	return s.BL.write(p)
}

// WriteEL appends p to the enhancement-layer sink.
func (s *Set) WriteEL(p []byte) error {
	return s.EL.write(p)
}

// WriteRPU writes one complete RPU NAL (start code followed by the
// 0x7C 0x01-prefixed bitstream in payload) to the RPU sink if one is
// configured, stripping the 0x7C 0x01 prefix per the x265-oriented
// convention that sink's consumer expects. If no RPU sink is
// configured, the NAL is routed to the EL sink instead with the
// prefix retained.
func (s *Set) WriteRPU(startCode, payload []byte) error {
	if s.RPU != nil {
		if err := s.RPU.write(startCode); err != nil {
			return err
		}
		body := payload
		if len(body) >= 2 && body[0] == nalHeader[0] && body[1] == nalHeader[1] {
			body = body[2:]
		}
		return s.RPU.write(body)
	}
	if s.EL != nil {
		if err := s.EL.write(startCode); err != nil {
			return err
		}
		return s.EL.write(payload)
	}
	return nil
}

// Flush flushes every configured sink, returning the first error
// encountered after attempting all three.
func (s *Set) Flush() error {
	var first error
	for _, sk := range []*Sink{s.BL, s.EL, s.RPU} {
		if err := sk.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close flushes and closes every configured sink, returning the first
// error encountered after attempting all three.
func (s *Set) Close() error {
	var first error
	for _, sk := range []*Sink{s.BL, s.EL, s.RPU} {
		if err := sk.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
