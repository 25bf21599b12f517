/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the sentinel error kinds reported by the rpu
  package, matching the fixed set of error kinds specified for the
  demultiplexer as a whole.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import "github.com/pkg/errors"

var (
	// ErrTruncated indicates the bit reader ran past the end of the
	// RPU payload while decoding.
	ErrTruncated = errors.New("rpu: truncated payload")
	// ErrMalformed indicates a decoded RPU failed validation.
	ErrMalformed = errors.New("rpu: malformed payload")
)
