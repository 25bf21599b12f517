/*
NAME
  format.go

DESCRIPTION
  format.go selects the input container format. Only raw Annex-B HEVC
  is supported; Matroska is a reserved value that always fails.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package format identifies the container format of the demultiplexer's
// input.
package format

import "github.com/pkg/errors"

// ErrUnsupported is returned for any format other than Raw.
var ErrUnsupported = errors.New("format: unsupported input format")

// Format selects how the input byte stream is framed.
type Format int

const (
	// Raw is an Annex-B framed HEVC bitstream, the only format this
	// demultiplexer can read.
	Raw Format = iota
	// Matroska is reserved for a future container path; selecting it
	// always fails with ErrUnsupported.
	Matroska
)

func (f Format) String() string {
	switch f {
	case Raw:
		return "raw"
	case Matroska:
		return "matroska"
	default:
		return "unknown"
	}
}

// Validate reports ErrUnsupported for any format this demultiplexer
// cannot read.
func (f Format) Validate() error {
	if f != Raw {
		return errors.Wrapf(ErrUnsupported, "format %q", f)
	}
	return nil
}
