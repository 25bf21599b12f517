/*
NAME
  category.go

DESCRIPTION
  category.go classifies HEVC NAL units that carry Dolby Vision
  enhancement data into base-layer, enhancement-layer and RPU
  categories.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package nalu classifies HEVC NAL units carrying Dolby Vision
// enhancement data into base-layer (BL), enhancement-layer (EL) and
// RPU metadata categories.
package nalu

// Category is a closed tagged variant identifying which output stream
// a NAL unit belongs to.
type Category uint8

const (
	// BL is the base-layer HEVC video stream.
	BL Category = iota
	// EL is the Dolby Vision enhancement-layer stream.
	EL
	// RPU is the Dolby Vision Reference Processing Unit metadata
	// stream.
	RPU
)

func (c Category) String() string {
	switch c {
	case BL:
		return "BL"
	case EL:
		return "EL"
	case RPU:
		return "RPU"
	default:
		return "unknown"
	}
}

// HEVC NAL unit type codes relevant to Dolby Vision demultiplexing,
// per ITU-T H.265 Table 7-1 and the Dolby Vision bitstreams
// specification. All other type values fall into the BL category.
const (
	TypeRPU = 62
	TypeEL  = 63
)

// Type extracts the HEVC NAL unit type from the first byte of a NAL
// unit header by shifting the byte following the start code right by
// one. No mask is applied, so the result equals the 6-bit type field
// only when the forbidden_zero_bit is clear.
func Type(header byte) uint8 {
	return header >> 1
}

// Classify returns the Category a NAL unit belongs to given its
// header byte (the first byte after the Annex-B start code).
func Classify(header byte) Category {
	switch Type(header) {
	case TypeRPU:
		return RPU
	case TypeEL:
		return EL
	default:
		return BL
	}
}
