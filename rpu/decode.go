/*
NAME
  decode.go

DESCRIPTION
  decode.go reads a Dolby Vision RPU payload from a bit stream into an
  RPU structure, following a straight-line, data-dependent decode
  graph where later fields are only read when earlier flags or values
  permit it.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dovi-demux/bitio"
	"github.com/ausocean/dovi-demux/emulation"
)

// clearPayload strips emulation-prevention bytes from a raw RPU NAL
// payload before it is bit-parsed.
func clearPayload(payload []byte) []byte {
	return emulation.Clear(payload)
}

// reader wraps a bitio.Reader with a sticky decode error, so a long
// chain of syntax-element reads can be written as straight-line code
// and checked once at the end.
type reader struct {
	br  *bitio.Reader
	err error
}

func newReader(buf []byte) *reader {
	return &reader{br: bitio.NewReader(buf)}
}

func (r *reader) bit() bool {
	if r.err != nil {
		return false
	}
	v, err := r.br.Get()
	if err != nil {
		r.err = errors.Wrap(ErrTruncated, err.Error())
		return false
	}
	return v == 1
}

func (r *reader) u(n int) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.br.GetN(n)
	if err != nil {
		r.err = errors.Wrap(ErrTruncated, err.Error())
		return 0
	}
	return v
}

func (r *reader) ue() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.br.GetUE()
	if err != nil {
		r.err = errors.Wrap(ErrTruncated, err.Error())
		return 0
	}
	return v
}

func (r *reader) se() int64 {
	if r.err != nil {
		return 0
	}
	v, err := r.br.GetSE()
	if err != nil {
		r.err = errors.Wrap(ErrTruncated, err.Error())
		return 0
	}
	return v
}

func (r *reader) alignToByte() {
	for !r.br.IsAligned() {
		r.bit()
		if r.err != nil {
			return
		}
	}
}

// nalHeader is the fixed 2-byte HEVC NAL-unit header Dolby Vision RPU
// NALs carry ahead of the RPU bitstream proper: 0x7C selects NAL type
// 62 (RPU), 0x01 is the fixed layer/temporal-id byte this format
// always uses.
var nalHeader = [2]byte{0x7C, 0x01}

// Decode parses a Dolby Vision RPU NAL payload, starting at the
// 4-byte Annex-B start code's following byte (i.e. payload must begin
// with the 0x7C 0x01 NAL header), into an RPU. The payload must not
// have emulation-prevention bytes stripped yet; Decode does this
// itself via emulation.Clear before bit-parsing.
func Decode(payload []byte) (*RPU, error) {
	cleared := clearPayload(payload)

	if len(cleared) < 2 || cleared[0] != nalHeader[0] || cleared[1] != nalHeader[1] {
		return nil, errors.Wrap(ErrMalformed, "rpu: missing 7C 01 NAL header")
	}
	body := cleared[2:]

	r := newReader(body)
	u := &RPU{cleared: body}
	decodeHeader(r, u)
	u.HeaderEnd = r.br.Pos()
	if r.err != nil {
		return nil, r.err
	}

	if u.RpuType == 2 {
		if !u.UsePrevVdrRpuFlag {
			u.Mapping = decodeMapping(r, u)
			u.NLQ = decodeNLQ(r, u)
		}
		if u.VdrDmMetadataPresentFlag {
			u.DM = decodeDM(r)
		}
	}

	r.alignToByte()
	u.RpuDataCrc32 = uint32(r.u(32))
	if r.err != nil {
		return nil, r.err
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// decodeHeader reads rpu_data_header: the fixed and conditionally
// present fields preceding the mapping/NLQ/DM payloads.
func decodeHeader(r *reader, u *RPU) {
	u.RpuNalPrefix = uint8(r.u(8))
	if u.RpuNalPrefix != 25 {
		return
	}

	u.RpuType = uint8(r.u(6))
	u.RpuFormat = uint16(r.u(11))

	if u.RpuType != 2 {
		return
	}

	u.VdrRpuProfile = uint8(r.u(4))
	u.VdrRpuLevel = uint8(r.u(4))
	u.VdrSeqInfoPresentFlag = r.bit()

	if u.VdrSeqInfoPresentFlag {
		u.ChromaResamplingExplicitFilterFlag = r.bit()
		u.CoefficientDataType = uint8(r.u(2))

		if u.CoefficientDataType == 0 {
			u.CoefficientLog2Denom = r.ue()
		}

		u.VdrRpuNormalizedIdc = uint8(r.u(2))
		u.BlVideoFullRangeFlag = r.bit()

		if u.RpuFormat&0x700 == 0 {
			u.BlBitDepthMinus8 = r.ue()
			u.ElBitDepthMinus8 = r.ue()
			u.VdrBitDepthMinus8 = r.ue()
			u.SpatialResamplingFilterFlag = r.bit()
			u.ReservedZero3bits = uint8(r.u(3))
			u.ElSpatialResamplingFilterFlag = r.bit()
			u.DisableResidualFlag = r.bit()
		}
	}

	u.VdrDmMetadataPresentFlag = r.bit()
	u.UsePrevVdrRpuFlag = r.bit()

	if u.UsePrevVdrRpuFlag {
		u.PrevVdrRpuId = r.ue()
		return
	}

	u.VdrRpuId = r.ue()
	u.MappingColorSpace = r.ue()
	u.MappingChromaFormatIdc = r.ue()

	for cmp := 0; cmp < 3; cmp++ {
		u.NumPivotsMinus2[cmp] = r.ue()
		count := int(u.NumPivotsMinus2[cmp]) + 2
		u.PredPivotValue[cmp] = make([]uint64, count)
		for i := 0; i < count; i++ {
			u.PredPivotValue[cmp][i] = r.u(int(u.BlBitDepthMinus8) + 8)
		}
	}

	if u.RpuFormat&0x700 == 0 && !u.DisableResidualFlag {
		u.NlqMethodIdc = uint8(r.u(3))
		u.NlqNumPivotsMinus2 = 0
	}

	u.NumXPartitionsMinus1 = r.ue()
	u.NumYPartitionsMinus1 = r.ue()
}

// coefficientLength returns the bit width used for every
// coefficient_log2_denom_length-sized field, per rpu_data_mapping /
// rpu_data_nlq in the Dolby Vision RPU syntax.
func coefficientLength(u *RPU) int {
	switch u.CoefficientDataType {
	case 0:
		return int(u.CoefficientLog2Denom)
	case 1:
		return 32
	default:
		return 0
	}
}

// decodeMapping reads rpu_data_mapping: for each of 3 components and
// each pivot, a mapping_idc selecting a polynomial or MMR payload.
func decodeMapping(r *reader, u *RPU) *VdrRpuData {
	d := &VdrRpuData{}
	coefLen := coefficientLength(u)

	for cmp := 0; cmp < 3; cmp++ {
		count := int(u.NumPivotsMinus2[cmp]) + 1
		d.MappingIdc[cmp] = make([]uint64, count)
		d.NumMappingParamPredictors[cmp] = make([]uint64, count)
		d.MappingParamPredFlag[cmp] = make([]bool, count)
		d.DiffPredPartIdxMappingMinus1[cmp] = make([]uint64, count)
		d.PolyOrderMinus1[cmp] = make([]uint64, count)
		d.LinearInterpFlag[cmp] = make([]bool, count)
		d.PredLinearInterpValueInt[cmp] = make([]uint64, count+1)
		d.PredLinearInterpValue[cmp] = make([]uint64, count+1)
		d.PolyCoefInt[cmp] = make([]int64, count)
		d.PolyCoef[cmp] = make([]uint64, count)
		d.MmrOrderMinus1[cmp] = make([]uint8, count)
		d.MmrConstantInt[cmp] = make([]int64, count)
		d.MmrConstant[cmp] = make([]uint64, count)
		d.MmrCoefInt[cmp] = make([][][]int64, count)
		d.MmrCoef[cmp] = make([][][]uint64, count)

		// predictors is the running count of predictors established so
		// far for this component; a pivot's mapping_param_pred_flag is
		// only present once at least one predictor exists.
		predictors := uint64(0)
		for pivot := 0; pivot < count; pivot++ {
			d.MappingIdc[cmp][pivot] = r.ue()
			d.NumMappingParamPredictors[cmp][pivot] = predictors

			if predictors > 0 {
				d.MappingParamPredFlag[cmp][pivot] = r.bit()
			}

			if !d.MappingParamPredFlag[cmp][pivot] {
				predictors++

				switch d.MappingIdc[cmp][pivot] {
				case 0: // Polynomial.
					d.PolyOrderMinus1[cmp][pivot] = r.ue()

					if d.PolyOrderMinus1[cmp][pivot] == 0 {
						d.LinearInterpFlag[cmp][pivot] = r.bit()
					}

					if d.PolyOrderMinus1[cmp][pivot] == 0 && d.LinearInterpFlag[cmp][pivot] {
						if u.CoefficientDataType == 0 {
							d.PredLinearInterpValueInt[cmp][pivot] = r.ue()
						}
						d.PredLinearInterpValue[cmp][pivot] = r.u(coefLen)

						if uint64(pivot) == u.NumPivotsMinus2[cmp] {
							if u.CoefficientDataType == 0 {
								d.PredLinearInterpValueInt[cmp][pivot+1] = r.ue()
							}
							d.PredLinearInterpValue[cmp][pivot+1] = r.u(coefLen)
						}
					} else {
						for i := uint64(0); i <= d.PolyOrderMinus1[cmp][pivot]+1; i++ {
							if u.CoefficientDataType == 0 {
								d.PolyCoefInt[cmp][pivot] = r.se()
							}
							d.PolyCoef[cmp][pivot] = r.u(coefLen)
						}
					}
				case 1: // MMR.
					d.MmrOrderMinus1[cmp][pivot] = uint8(r.u(2))

					rows := int(d.MmrOrderMinus1[cmp][pivot]) + 2
					d.MmrCoef[cmp][pivot] = make([][]uint64, rows)
					d.MmrCoefInt[cmp][pivot] = make([][]int64, rows)
					for row := range d.MmrCoef[cmp][pivot] {
						d.MmrCoef[cmp][pivot][row] = make([]uint64, 7)
						d.MmrCoefInt[cmp][pivot][row] = make([]int64, 7)
					}

					if u.CoefficientDataType == 0 {
						d.MmrConstantInt[cmp][pivot] = r.se()
					}
					d.MmrConstant[cmp][pivot] = r.u(coefLen)

					for row := 1; row <= int(d.MmrOrderMinus1[cmp][pivot])+1; row++ {
						for col := 0; col < 7; col++ {
							if u.CoefficientDataType == 0 {
								d.MmrCoefInt[cmp][pivot][row][col] = r.se()
							}
							d.MmrCoef[cmp][pivot][row][col] = r.u(coefLen)
						}
					}
				}
			} else if d.NumMappingParamPredictors[cmp][pivot] > 1 {
				d.DiffPredPartIdxMappingMinus1[cmp][pivot] = r.ue()
			}
		}
	}

	return d
}

// decodeNLQ reads rpu_data_nlq: per-pivot, per-component residual
// quantization parameters.
func decodeNLQ(r *reader, u *RPU) *NlqData {
	d := &NlqData{}
	coefLen := coefficientLength(u)
	pivotCount := int(u.NlqNumPivotsMinus2) + 1

	d.NumNlqParamPredictors = make([][3]uint64, pivotCount)
	d.NlqParamPredFlag = make([][3]bool, pivotCount)
	d.DiffPredPartIdxNlqMinus1 = make([][3]uint64, pivotCount)
	d.NlqOffset = make([][3]uint64, pivotCount)
	d.VdrInMaxInt = make([][3]uint64, pivotCount)
	d.VdrInMax = make([][3]uint64, pivotCount)
	d.LinearDeadzoneSlopeInt = make([][3]uint64, pivotCount)
	d.LinearDeadzoneSlope = make([][3]uint64, pivotCount)
	d.LinearDeadzoneThresholdInt = make([][3]uint64, pivotCount)
	d.LinearDeadzoneThreshold = make([][3]uint64, pivotCount)

	for pivot := 0; pivot < pivotCount; pivot++ {
		// predictors is the running count of predictors established so
		// far for this pivot, across components.
		predictors := uint64(0)
		for cmp := 0; cmp < 3; cmp++ {
			d.NumNlqParamPredictors[pivot][cmp] = predictors

			if predictors > 0 {
				d.NlqParamPredFlag[pivot][cmp] = r.bit()
			}

			if !d.NlqParamPredFlag[pivot][cmp] {
				predictors++

				d.NlqOffset[pivot][cmp] = r.u(int(u.ElBitDepthMinus8) + 8)

				if u.CoefficientDataType == 0 {
					d.VdrInMaxInt[pivot][cmp] = r.ue()
				}
				d.VdrInMax[pivot][cmp] = r.u(coefLen)

				if u.NlqMethodIdc == 0 {
					if u.CoefficientDataType == 0 {
						d.LinearDeadzoneSlopeInt[pivot][cmp] = r.ue()
					}
					d.LinearDeadzoneSlope[pivot][cmp] = r.u(coefLen)

					if u.CoefficientDataType == 0 {
						d.LinearDeadzoneThresholdInt[pivot][cmp] = r.ue()
					}
					d.LinearDeadzoneThreshold[pivot][cmp] = r.u(coefLen)
				}
			} else if d.NumNlqParamPredictors[pivot][cmp] > 1 {
				d.DiffPredPartIdxNlqMinus1[pivot][cmp] = r.ue()
			}
		}
	}

	return d
}

// decodeDM reads vdr_dm_data_payload: the fixed color-matrix block
// followed by a variable number of extension metadata blocks.
func decodeDM(r *reader) *VdrDmData {
	d := &VdrDmData{}
	d.AffectedDmMetadataId = r.ue()
	d.CurrentDmMetadataId = r.ue()
	d.SceneRefreshFlag = r.ue()

	for i := range d.YccToRgbCoef {
		d.YccToRgbCoef[i] = int16(r.u(16))
	}
	for i := range d.YccToRgbOffset {
		d.YccToRgbOffset[i] = uint32(r.u(32))
	}
	for i := range d.RgbToLmsCoef {
		d.RgbToLmsCoef[i] = int16(r.u(16))
	}

	d.SignalEotf = uint16(r.u(16))
	d.SignalEotfParam0 = uint16(r.u(16))
	d.SignalEotfParam1 = uint16(r.u(16))
	d.SignalEotfParam2 = uint32(r.u(32))
	d.SignalBitDepth = uint8(r.u(5))
	d.SignalColorSpace = uint8(r.u(2))
	d.SignalChromaFormat = uint8(r.u(2))
	d.SignalFullRangeFlag = uint8(r.u(2))
	d.SourceMinPq = uint16(r.u(12))
	d.SourceMaxPq = uint16(r.u(12))
	d.SourceDiagonal = uint16(r.u(10))

	numExtBlocks := r.ue()
	if numExtBlocks > 0 {
		r.alignToByte()

		for i := uint64(0); i < numExtBlocks; i++ {
			var b ExtMetadataBlock
			b.ExtBlockLength = r.ue()
			b.ExtBlockLevel = uint8(r.u(8))

			lenBits := 8 * b.ExtBlockLength
			usedBits := uint64(0)

			switch b.ExtBlockLevel {
			case 1:
				b.MinPq = uint16(r.u(12))
				b.MaxPq = uint16(r.u(12))
				b.AvgPq = uint16(r.u(12))
				usedBits += 36
			case 2:
				b.TargetMaxPq = uint16(r.u(12))
				b.TrimSlope = uint16(r.u(12))
				b.TrimOffset = uint16(r.u(12))
				b.TrimPower = uint16(r.u(12))
				b.TrimChromaWeight = uint16(r.u(12))
				b.TrimSaturationGain = uint16(r.u(12))
				b.MsWeight = int16(r.u(13))
				usedBits += 85
			case 5:
				b.ActiveAreaLeftOffset = uint16(r.u(13))
				b.ActiveAreaRightOffset = uint16(r.u(13))
				b.ActiveAreaTopOffset = uint16(r.u(13))
				b.ActiveAreaBottomOffset = uint16(r.u(13))
				usedBits += 52
			}

			for usedBits < lenBits {
				r.bit()
				usedBits++
				if r.err != nil {
					break
				}
			}

			d.ExtMetadataBlocks = append(d.ExtMetadataBlocks, b)
			if r.err != nil {
				break
			}
		}
	}

	return d
}
