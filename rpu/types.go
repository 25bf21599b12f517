/*
NAME
  types.go

DESCRIPTION
  types.go defines the in-memory representation of a Dolby Vision RPU
  NAL unit and its mapping, NLQ and display-management payloads.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package rpu decodes, validates, transforms and re-serializes Dolby
// Vision Reference Processing Unit (RPU) metadata carried in HEVC NAL
// units.
package rpu

// RPU is the structured representation of a single Dolby Vision RPU
// NAL unit.
type RPU struct {
	// HeaderEnd is the bit position immediately after the header was
	// decoded, saved so Encode can splice the untouched remainder of
	// the cleared payload back on unchanged.
	HeaderEnd int

	// cleared is the emulation-prevention-stripped payload Decode
	// parsed this RPU from. Encode splices the bits from HeaderEnd
	// onward out of this buffer rather than re-serializing the
	// mapping/NLQ/DM/CRC fields field-by-field.
	cleared []byte

	RpuNalPrefix  uint8
	RpuType       uint8
	RpuFormat     uint16
	VdrRpuProfile uint8
	VdrRpuLevel   uint8

	VdrSeqInfoPresentFlag              bool
	ChromaResamplingExplicitFilterFlag bool
	CoefficientDataType                uint8
	CoefficientLog2Denom               uint64
	VdrRpuNormalizedIdc                uint8
	BlVideoFullRangeFlag               bool
	BlBitDepthMinus8                   uint64
	ElBitDepthMinus8                   uint64
	VdrBitDepthMinus8                  uint64
	SpatialResamplingFilterFlag        bool
	ReservedZero3bits                  uint8
	ElSpatialResamplingFilterFlag      bool
	DisableResidualFlag                bool

	VdrDmMetadataPresentFlag bool
	UsePrevVdrRpuFlag        bool
	PrevVdrRpuId             uint64

	VdrRpuId               uint64
	MappingColorSpace      uint64
	MappingChromaFormatIdc uint64

	// NumPivotsMinus2 and PredPivotValue are indexed by component
	// (0..2). PredPivotValue[cmp] has NumPivotsMinus2[cmp]+2 entries.
	NumPivotsMinus2 [3]uint64
	PredPivotValue  [3][]uint64

	NlqMethodIdc         uint8
	NlqNumPivotsMinus2   uint8
	NumXPartitionsMinus1 uint64
	NumYPartitionsMinus1 uint64

	Mapping *VdrRpuData
	NLQ     *NlqData
	DM      *VdrDmData

	RpuDataCrc32 uint32
}

// VdrRpuData is the per-component, per-pivot mapping payload
// (rpu_data_mapping). All slices are indexed [component][pivotIdx].
type VdrRpuData struct {
	MappingIdc                   [3][]uint64
	MappingParamPredFlag         [3][]bool
	NumMappingParamPredictors    [3][]uint64
	DiffPredPartIdxMappingMinus1 [3][]uint64

	// Polynomial branch (MappingIdc == 0).
	PolyOrderMinus1          [3][]uint64
	LinearInterpFlag         [3][]bool
	PredLinearInterpValueInt [3][]uint64
	PredLinearInterpValue    [3][]uint64
	PolyCoefInt              [3][]int64
	PolyCoef                 [3][]uint64

	// MMR branch (MappingIdc == 1). MmrCoef[cmp][pivot] has shape
	// [MmrOrderMinus1+2][7].
	MmrOrderMinus1 [3][]uint8
	MmrConstantInt [3][]int64
	MmrConstant    [3][]uint64
	MmrCoefInt     [3][][][]int64
	MmrCoef        [3][][][]uint64
}

// NlqData is the per-pivot, per-component non-linear-quantization
// payload (rpu_data_nlq). All slices are indexed
// [pivotIdx][component].
type NlqData struct {
	NumNlqParamPredictors    [][3]uint64
	NlqParamPredFlag         [][3]bool
	DiffPredPartIdxNlqMinus1 [][3]uint64

	NlqOffset   [][3]uint64
	VdrInMaxInt [][3]uint64
	VdrInMax    [][3]uint64

	LinearDeadzoneSlopeInt     [][3]uint64
	LinearDeadzoneSlope        [][3]uint64
	LinearDeadzoneThresholdInt [][3]uint64
	LinearDeadzoneThreshold    [][3]uint64
}

// VdrDmData is the fixed-layout display-management payload
// (vdr_dm_data_payload).
type VdrDmData struct {
	AffectedDmMetadataId uint64
	CurrentDmMetadataId  uint64
	SceneRefreshFlag     uint64

	YccToRgbCoef   [9]int16
	YccToRgbOffset [3]uint32
	RgbToLmsCoef   [9]int16

	SignalEotf       uint16
	SignalEotfParam0 uint16
	SignalEotfParam1 uint16
	SignalEotfParam2 uint32

	SignalBitDepth      uint8
	SignalColorSpace    uint8
	SignalChromaFormat  uint8
	SignalFullRangeFlag uint8

	SourceMinPq    uint16
	SourceMaxPq    uint16
	SourceDiagonal uint16

	ExtMetadataBlocks []ExtMetadataBlock
}

// ExtMetadataBlock is one level-tagged extension metadata block
// trailing the fixed VdrDmData payload.
type ExtMetadataBlock struct {
	ExtBlockLength uint64
	ExtBlockLevel  uint8

	// Level 1.
	MinPq uint16
	MaxPq uint16
	AvgPq uint16

	// Level 2.
	TargetMaxPq        uint16
	TrimSlope          uint16
	TrimOffset         uint16
	TrimPower          uint16
	TrimChromaWeight   uint16
	TrimSaturationGain uint16
	MsWeight           int16

	// Level 5.
	ActiveAreaLeftOffset   uint16
	ActiveAreaRightOffset  uint16
	ActiveAreaTopOffset    uint16
	ActiveAreaBottomOffset uint16
}
