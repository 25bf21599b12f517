/*
NAME
  encode.go

DESCRIPTION
  encode.go re-serializes a decoded RPU back into bytes: the header
  fields are re-emitted field-by-field in decode order, and the
  mapping/NLQ/DM/CRC bits that follow are spliced unchanged from the
  payload Decode parsed, then emulation-prevention bytes are
  reinstated.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import (
	"github.com/ausocean/dovi-demux/bitio"
	"github.com/ausocean/dovi-demux/emulation"
)

// Encode re-serializes u. The header fields are written field-by-field
// in the same order decodeHeader reads them; everything from
// HeaderEnd onward (mapping, NLQ, DM, CRC32) is copied unchanged from
// the payload u was decoded from, since this package's write path
// never mutates those sections. This mirrors the upstream tool's
// behavior: re-emitting only the header, even when a later mutation
// (To81/ToMEL) changes how many bits the re-emitted header occupies
// relative to the original header_end.
func (u *RPU) Encode() []byte {
	w := bitio.NewWriter()
	writeHeader(w, u)

	if u.cleared != nil {
		tailBits := len(u.cleared)*8 - u.HeaderEnd
		if tailBits > 0 {
			bitio.AppendBits(w, u.cleared, u.HeaderEnd, tailBits)
		}
	}

	body := w.Bytes()
	out := make([]byte, 0, len(body)+2)
	out = append(out, nalHeader[0], nalHeader[1])
	out = append(out, body...)
	return emulation.Add(out)
}

// writeHeader writes rpu_data_header in the same field order and
// under the same guard conditions as decodeHeader.
func writeHeader(w *bitio.Writer, u *RPU) {
	w.WriteN(uint64(u.RpuNalPrefix), 8)
	if u.RpuNalPrefix != 25 {
		return
	}

	w.WriteN(uint64(u.RpuType), 6)
	w.WriteN(uint64(u.RpuFormat), 11)

	if u.RpuType != 2 {
		return
	}

	w.WriteN(uint64(u.VdrRpuProfile), 4)
	w.WriteN(uint64(u.VdrRpuLevel), 4)
	w.Write(boolBit(u.VdrSeqInfoPresentFlag))

	if u.VdrSeqInfoPresentFlag {
		w.Write(boolBit(u.ChromaResamplingExplicitFilterFlag))
		w.WriteN(uint64(u.CoefficientDataType), 2)

		if u.CoefficientDataType == 0 {
			w.WriteUE(u.CoefficientLog2Denom)
		}

		w.WriteN(uint64(u.VdrRpuNormalizedIdc), 2)
		w.Write(boolBit(u.BlVideoFullRangeFlag))

		if u.RpuFormat&0x700 == 0 {
			w.WriteUE(u.BlBitDepthMinus8)
			w.WriteUE(u.ElBitDepthMinus8)
			w.WriteUE(u.VdrBitDepthMinus8)
			w.Write(boolBit(u.SpatialResamplingFilterFlag))
			w.WriteN(uint64(u.ReservedZero3bits), 3)
			w.Write(boolBit(u.ElSpatialResamplingFilterFlag))
			w.Write(boolBit(u.DisableResidualFlag))
		}
	}

	w.Write(boolBit(u.VdrDmMetadataPresentFlag))
	w.Write(boolBit(u.UsePrevVdrRpuFlag))

	if u.UsePrevVdrRpuFlag {
		w.WriteUE(u.PrevVdrRpuId)
		return
	}

	w.WriteUE(u.VdrRpuId)
	w.WriteUE(u.MappingColorSpace)
	w.WriteUE(u.MappingChromaFormatIdc)

	for cmp := 0; cmp < 3; cmp++ {
		w.WriteUE(u.NumPivotsMinus2[cmp])
		for _, v := range u.PredPivotValue[cmp] {
			w.WriteN(v, int(u.BlBitDepthMinus8)+8)
		}
	}

	if u.RpuFormat&0x700 == 0 && !u.DisableResidualFlag {
		w.WriteN(uint64(u.NlqMethodIdc), 3)
	}

	w.WriteUE(u.NumXPartitionsMinus1)
	w.WriteUE(u.NumYPartitionsMinus1)
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
