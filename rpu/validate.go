/*
NAME
  validate.go

DESCRIPTION
  validate.go checks a decoded RPU against the fixed set of invariants
  a well-formed Dolby Vision RPU must satisfy.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import "github.com/pkg/errors"

// Validate checks u against the fixed RPU invariants, returning
// ErrMalformed wrapped with the specific violation when one is found.
func (u *RPU) Validate() error {
	if u.RpuNalPrefix != 25 {
		return errors.Wrapf(ErrMalformed, "rpu_nal_prefix = %d, want 25", u.RpuNalPrefix)
	}

	if u.RpuType != 2 {
		// Only rpu_type 2 carries the header fields checked below; an
		// RPU of any other type passes without further checks.
		return nil
	}

	if u.VdrRpuProfile != 1 {
		return errors.Wrapf(ErrMalformed, "vdr_rpu_profile = %d, want 1", u.VdrRpuProfile)
	}
	if u.VdrRpuLevel != 0 {
		return errors.Wrapf(ErrMalformed, "vdr_rpu_level = %d, want 0", u.VdrRpuLevel)
	}

	if u.UsePrevVdrRpuFlag {
		return nil
	}

	if u.BlBitDepthMinus8 != 2 {
		return errors.Wrapf(ErrMalformed, "bl_bit_depth_minus8 = %d, want 2", u.BlBitDepthMinus8)
	}
	if u.ElBitDepthMinus8 != 2 {
		return errors.Wrapf(ErrMalformed, "el_bit_depth_minus8 = %d, want 2", u.ElBitDepthMinus8)
	}
	if u.VdrBitDepthMinus8 > 6 {
		return errors.Wrapf(ErrMalformed, "vdr_bit_depth_minus_8 = %d, want <= 6", u.VdrBitDepthMinus8)
	}
	if u.MappingColorSpace != 0 {
		return errors.Wrapf(ErrMalformed, "mapping_color_space = %d, want 0", u.MappingColorSpace)
	}
	if u.MappingChromaFormatIdc != 0 {
		return errors.Wrapf(ErrMalformed, "mapping_chroma_format_idc = %d, want 0", u.MappingChromaFormatIdc)
	}
	if u.CoefficientLog2Denom > 23 {
		return errors.Wrapf(ErrMalformed, "coefficient_log2_denom = %d, want <= 23", u.CoefficientLog2Denom)
	}
	if u.RpuFormat&0x700 == 0 && !u.DisableResidualFlag {
		if u.NlqMethodIdc != 0 {
			return errors.Wrapf(ErrMalformed, "nlq_method_idc = %d, want 0", u.NlqMethodIdc)
		}
		if u.NlqNumPivotsMinus2 != 0 {
			return errors.Wrapf(ErrMalformed, "nlq_num_pivots_minus2 = %d, want 0", u.NlqNumPivotsMinus2)
		}
	}

	if u.Mapping != nil {
		for cmp := 0; cmp < 3; cmp++ {
			for _, order := range u.Mapping.MmrOrderMinus1[cmp] {
				if order > 2 {
					return errors.Wrapf(ErrMalformed, "mmr order = %d, want <= 2", order)
				}
			}
		}
	}

	if u.DM != nil {
		if u.DM.AffectedDmMetadataId > 15 {
			return errors.Wrapf(ErrMalformed, "affected_dm_metadata_id = %d, want <= 15", u.DM.AffectedDmMetadataId)
		}
		if u.DM.SignalBitDepth < 8 || u.DM.SignalBitDepth > 16 {
			return errors.Wrapf(ErrMalformed, "signal_bit_depth = %d, want 8..16", u.DM.SignalBitDepth)
		}
		if u.DM.SignalEotf != 65535 {
			return errors.Wrapf(ErrMalformed, "signal_eotf = %d, want 65535", u.DM.SignalEotf)
		}
	}

	return nil
}
