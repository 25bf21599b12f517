/*
NAME
  splitter.go

DESCRIPTION
  splitter.go implements the chunked Annex-B NAL-unit splitter: a
  state machine that reads a HEVC bitstream in fixed-size chunks,
  classifies each NAL unit into base-layer, enhancement-layer or RPU
  metadata, and routes its bytes to the matching sink, handling start
  codes and RPU payloads that straddle chunk boundaries.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package demux implements the streaming demultiplexer that splits an
// Annex-B framed HEVC-with-Dolby-Vision bitstream into its base-layer,
// enhancement-layer and RPU metadata streams.
package demux

import (
	"bytes"
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/dovi-demux/nalu"
	"github.com/ausocean/dovi-demux/rpu"
	"github.com/ausocean/dovi-demux/sink"
)

// DefaultChunkSize is the number of bytes read from the input per
// iteration of the splitter's main loop.
const DefaultChunkSize = 100_000

// startCode is the 4-byte Annex-B NAL delimiter.
var startCode = []byte{0, 0, 0, 1}

// elPrefixLen is the length of the "fake type" prefix an EL NAL's
// payload carries immediately after the start code, stripped before
// the payload reaches the EL sink.
const elPrefixLen = 2

// rpuTerminator is the byte that closes a complete RPU NAL payload.
const rpuTerminator = 0x80

// Mode selects how an RPU's metadata is treated while it is copied
// through the demultiplexer.
type Mode int

const (
	// ModeCopy passes each RPU through byte-for-byte, without invoking
	// the RPU codec at all. The dovi-demux CLI uses it when no --mode
	// is given; the zero value of Mode is ModeValidate.
	ModeCopy Mode = iota - 1
	// ModeValidate parses and re-serializes each RPU without mutation,
	// acting as a validator.
	ModeValidate
	// ModeMEL parses, converts to the MEL profile, and re-serializes.
	ModeMEL
	// ModeTo81 parses, converts to profile 8.1, and re-serializes.
	ModeTo81
)

// Splitter demultiplexes one Annex-B HEVC bitstream pass. The zero
// value is ready to use with ModeValidate and the default chunk size;
// set Mode to ModeCopy explicitly for a byte-exact copy-through.
type Splitter struct {
	// ChunkSize is the number of input bytes read per iteration.
	// Zero selects DefaultChunkSize.
	ChunkSize int
	// Mode selects the RPU conversion applied while copying through.
	Mode Mode
	// OnRPUError, if set, is called when the RPU codec fails to parse
	// or validate a complete RPU payload. The splitter then falls back
	// to copying that RPU through unmodified rather than aborting the
	// pass. If unset, an RPU codec failure is fatal.
	OnRPUError func(err error, nalIndex int)
	// Log receives warnings for non-fatal anomalies, such as a
	// truncated RPU discarded at end of input.
	Log logging.Logger
}

func (s *Splitter) chunkSize() int {
	if s.ChunkSize > 0 {
		return s.ChunkSize
	}
	return DefaultChunkSize
}

func (s *Splitter) logf(msg string, kv ...interface{}) {
	if s.Log != nil {
		s.Log.Warning(msg, kv...)
	}
}

// state is the splitter's per-pass mutable state, carried across
// chunk reads.
type state struct {
	haveCategory bool
	category     nalu.Category
	partialRPU   []byte
	skipNext     int
	carry        []byte
	nalIndex     int
	chunkOffset  int64
}

// Split reads src to completion in ChunkSize chunks, classifying and
// routing each NAL unit to sinks, and flushes sinks on every exit
// path, including failure.
func (s *Splitter) Split(src io.Reader, sinks *sink.Set) error {
	if err := sinks.Validate(); err != nil {
		return err
	}

	buf := make([]byte, s.chunkSize())
	st := &state{}

	runErr := func() error {
		for {
			n, rerr := src.Read(buf)
			if n > 0 {
				if err := s.processChunk(buf[:n], sinks, st); err != nil {
					return err
				}
				st.chunkOffset += int64(n)
			}
			if rerr != nil {
				if rerr == io.EOF {
					return nil
				}
				return errors.Wrapf(rerr, "demux: reading input at offset %d", st.chunkOffset)
			}
		}
	}()

	finishErr := s.finish(sinks, st)
	flushErr := sinks.Flush()

	switch {
	case runErr != nil:
		return runErr
	case finishErr != nil:
		return finishErr
	default:
		return flushErr
	}
}

// processChunk scans one chunk (with any carried-over bytes from the
// previous chunk prepended) for start codes, routing resolved NAL
// bytes and leaving any unresolved trailing bytes in st.carry for the
// next call.
func (s *Splitter) processChunk(chunk []byte, sinks *sink.Set, st *state) error {
	work := chunk
	if len(st.carry) > 0 {
		work = append(append([]byte(nil), st.carry...), chunk...)
		st.carry = nil
	}

	i := 0
	for {
		idx := bytes.Index(work[i:], startCode)
		if idx < 0 {
			rem := work[i:]
			keep := startCodeOverlap(rem)
			body := rem[:len(rem)-keep]
			if err := s.route(body, sinks, st); err != nil {
				return err
			}
			st.carry = append([]byte(nil), rem[len(rem)-keep:]...)
			return nil
		}

		pos := i + idx
		if err := s.route(work[i:pos], sinks, st); err != nil {
			return err
		}

		if pos+4 >= len(work) {
			// The start code itself was found but its NAL-type byte
			// has not arrived yet; carry the whole start code.
			st.carry = append([]byte(nil), work[pos:]...)
			return nil
		}

		if err := s.transition(work[pos+4], sinks, st); err != nil {
			return err
		}
		i = pos + 4
	}
}

// route appends body (bytes preceding the next resolved start code)
// to the sink or accumulator for the category currently in progress.
func (s *Splitter) route(body []byte, sinks *sink.Set, st *state) error {
	if len(body) == 0 || !st.haveCategory {
		return nil
	}
	switch st.category {
	case nalu.RPU:
		st.partialRPU = append(st.partialRPU, body...)
		return nil
	case nalu.EL:
		if st.skipNext > 0 {
			if st.skipNext >= len(body) {
				st.skipNext -= len(body)
				return nil
			}
			body = body[st.skipNext:]
			st.skipNext = 0
		}
		return sinks.WriteEL(body)
	default:
		return sinks.WriteBL(body)
	}
}

// transition finalizes the category in progress (if it was RPU) and
// begins the NAL identified by typeByte, emitting its start code
// immediately for BL and EL (which stream straight through).
func (s *Splitter) transition(typeByte byte, sinks *sink.Set, st *state) error {
	if st.haveCategory && st.category == nalu.RPU {
		if err := s.finishRPU(sinks, st); err != nil {
			return err
		}
	}

	st.haveCategory = true
	st.category = nalu.Classify(typeByte)
	st.nalIndex++

	switch st.category {
	case nalu.EL:
		st.skipNext = elPrefixLen
		return sinks.WriteEL(startCode)
	case nalu.RPU:
		st.partialRPU = st.partialRPU[:0]
		return nil
	default:
		return sinks.WriteBL(startCode)
	}
}

// finishRPU runs the accumulated RPU payload through the RPU codec
// (per s.Mode) and writes the result to the sink set. A codec failure
// is fatal unless OnRPUError is set, in which case the RPU is copied
// through unmodified and the pass continues.
func (s *Splitter) finishRPU(sinks *sink.Set, st *state) error {
	payload := st.partialRPU
	st.partialRPU = nil
	if len(payload) == 0 {
		return nil
	}

	out, err := s.processRPU(payload)
	if err != nil {
		if s.OnRPUError == nil {
			return errors.Wrapf(err, "demux: rpu nal %d", st.nalIndex)
		}
		s.OnRPUError(err, st.nalIndex)
		out = payload
	}
	return sinks.WriteRPU(startCode, out)
}

// processRPU applies s.Mode's conversion to an RPU payload.
func (s *Splitter) processRPU(payload []byte) ([]byte, error) {
	if s.Mode == ModeCopy {
		return payload, nil
	}

	u, err := rpu.Decode(payload)
	if err != nil {
		return nil, err
	}

	switch s.Mode {
	case ModeMEL:
		u.ToMEL()
	case ModeTo81:
		u.To81()
	}

	return u.Encode(), nil
}

// finish handles end of input: any carried bytes are flushed to the
// category in progress (a truncated start code at EOF is not an
// error), and a pending partial RPU is either finalized, if its
// terminator byte is present, or discarded with a warning.
func (s *Splitter) finish(sinks *sink.Set, st *state) error {
	if len(st.carry) > 0 {
		if err := s.route(st.carry, sinks, st); err != nil {
			return err
		}
		st.carry = nil
	}

	if len(st.partialRPU) == 0 {
		return nil
	}

	if st.partialRPU[len(st.partialRPU)-1] != rpuTerminator {
		s.logf("discarding truncated RPU at end of input", "nal", st.nalIndex)
		st.partialRPU = nil
		return nil
	}

	return s.finishRPU(sinks, st)
}

// startCodeOverlap returns the length (0..3) of the longest suffix of
// buf that is a proper prefix of the Annex-B start code, i.e. the
// number of trailing bytes that might be the beginning of a start
// code split across the next chunk.
func startCodeOverlap(buf []byte) int {
	max := len(startCode) - 1
	if len(buf) < max {
		max = len(buf)
	}
	for n := max; n > 0; n-- {
		if bytes.Equal(buf[len(buf)-n:], startCode[:n]) {
			return n
		}
	}
	return 0
}
