package rpu

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/dovi-demux/bitio"
	"github.com/ausocean/dovi-demux/emulation"
)

// buildFixture writes a minimal but complete rpu_type==2 RPU payload
// (header, one pivot per component, one NLQ pivot, no DM block) using
// the same field order and guard conditions Decode expects, and
// returns it with emulation-prevention bytes reinstated, as it would
// appear on the wire.
func buildFixture() []byte {
	w := bitio.NewWriter()

	w.WriteN(0x7C, 8) // NAL header byte 1 (type 62)
	w.WriteN(0x01, 8) // NAL header byte 2
	w.WriteN(25, 8)   // rpu_nal_prefix
	w.WriteN(2, 6)  // rpu_type
	w.WriteN(0, 11) // rpu_format, &0x700 == 0

	w.WriteN(1, 4) // vdr_rpu_profile
	w.WriteN(0, 4) // vdr_rpu_level
	w.Write(1)     // vdr_seq_info_present_flag

	w.Write(0)     // chroma_resampling_explicit_filter_flag
	w.WriteN(1, 2) // coefficient_data_type == 1 (32-bit fixed fields)
	w.WriteN(0, 2) // vdr_rpu_normalized_idc
	w.Write(0)     // bl_video_full_range_flag

	w.WriteUE(2) // bl_bit_depth_minus8
	w.WriteUE(2) // el_bit_depth_minus8
	w.WriteUE(0) // vdr_bit_depth_minus_8
	w.Write(0)   // spatial_resampling_filter_flag
	w.WriteN(0, 3)
	w.Write(1) // el_spatial_resampling_filter_flag
	w.Write(1) // disable_residual_flag

	w.Write(0) // vdr_dm_metadata_present_flag
	w.Write(0) // use_prev_vdr_rpu_flag

	w.WriteUE(0) // vdr_rpu_id
	w.WriteUE(0) // mapping_color_space
	w.WriteUE(0) // mapping_chroma_format_idc

	for cmp := 0; cmp < 3; cmp++ {
		w.WriteUE(0) // num_pivots_minus2
		w.WriteN(uint64(100+cmp), 10)
		w.WriteN(uint64(200+cmp), 10)
	}
	// disable_residual_flag is set, so nlq_method_idc is absent.

	w.WriteUE(0) // num_x_partitions_minus1
	w.WriteUE(0) // num_y_partitions_minus1

	// Mapping payload: one pivot per component, polynomial branch,
	// two coefficient reads each.
	for cmp := 0; cmp < 3; cmp++ {
		w.WriteUE(0) // mapping_idc
		w.WriteUE(0) // poly_order_minus1
		w.Write(0)   // linear_interp_flag
		w.WriteN(uint64(0xABCD0000+uint32(cmp)), 32)
		w.WriteN(uint64(0x1234+cmp), 32)
	}

	// NLQ payload: one pivot, three components, nlq_method_idc == 0.
	for cmp := 0; cmp < 3; cmp++ {
		if cmp > 0 {
			w.Write(0) // nlq_param_pred_flag, present once a predictor exists
		}
		w.WriteN(uint64(300+cmp), 10) // nlq_offset
		w.WriteN(uint64(0x1111*uint32(cmp+1)), 32)
		w.WriteN(uint64(0x2222*uint32(cmp+1)), 32)
		w.WriteN(uint64(0x3333*uint32(cmp+1)), 32)
	}

	for !w.IsAligned() {
		w.Write(0)
	}
	w.WriteN(0xDEADBEEF, 32) // rpu_data_crc32

	return emulation.Add(w.Bytes())
}

func TestDecodeFixture(t *testing.T) {
	input := buildFixture()

	u, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if u.RpuNalPrefix != 25 || u.RpuType != 2 || u.VdrRpuProfile != 1 {
		t.Fatalf("unexpected header: %+v", u)
	}
	if u.BlBitDepthMinus8 != 2 || u.ElBitDepthMinus8 != 2 {
		t.Fatalf("unexpected bit depths: %+v", u)
	}
	if !u.DisableResidualFlag || !u.ElSpatialResamplingFilterFlag {
		t.Fatalf("unexpected flags: %+v", u)
	}
	if u.Mapping == nil || u.NLQ == nil {
		t.Fatal("expected mapping and NLQ payloads to be decoded")
	}
	for cmp := 0; cmp < 3; cmp++ {
		if got, want := u.Mapping.MappingIdc[cmp][0], uint64(0); got != want {
			t.Errorf("cmp %d: MappingIdc = %d, want %d", cmp, got, want)
		}
		if got, want := u.NLQ.NlqOffset[0][cmp], uint64(300+cmp); got != want {
			t.Errorf("cmp %d: NlqOffset = %d, want %d", cmp, got, want)
		}
	}
	if u.RpuDataCrc32 != 0xDEADBEEF {
		t.Errorf("RpuDataCrc32 = %#x, want 0xdeadbeef", u.RpuDataCrc32)
	}
}

// TestRoundTripPassthrough exercises testable property 4: serializing
// the parsed form of a well-formed RPU without mutation yields the
// original bytes.
func TestRoundTripPassthrough(t *testing.T) {
	input := buildFixture()

	u, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got := u.Encode()
	if diff := cmp.Diff(input, got); diff != "" {
		t.Errorf("Encode() did not reproduce the original bytes (-want +got):\n%s", diff)
	}
}

func TestTo81(t *testing.T) {
	u := &RPU{
		ElSpatialResamplingFilterFlag: true,
		DisableResidualFlag:           false,
	}
	u.To81()
	if u.ElSpatialResamplingFilterFlag {
		t.Error("To81: ElSpatialResamplingFilterFlag should be false")
	}
	if !u.DisableResidualFlag {
		t.Error("To81: DisableResidualFlag should be true")
	}
}

// TestTo81Idempotent exercises testable property 5.
func TestTo81Idempotent(t *testing.T) {
	a := &RPU{ElSpatialResamplingFilterFlag: true}
	a.To81()
	b := *a
	b.To81()
	if a.ElSpatialResamplingFilterFlag != b.ElSpatialResamplingFilterFlag ||
		a.DisableResidualFlag != b.DisableResidualFlag {
		t.Error("To81 applied twice differs from applying it once")
	}
}

func TestToMEL(t *testing.T) {
	u := &RPU{
		ElSpatialResamplingFilterFlag: true,
		DisableResidualFlag:           false,
	}
	u.ToMEL()
	if !u.ElSpatialResamplingFilterFlag {
		t.Error("ToMEL should leave ElSpatialResamplingFilterFlag untouched")
	}
	if !u.DisableResidualFlag {
		t.Error("ToMEL: DisableResidualFlag should be true")
	}
}

func TestValidate(t *testing.T) {
	base := func() *RPU {
		return &RPU{
			RpuNalPrefix:      25,
			RpuType:           2,
			VdrRpuProfile:     1,
			VdrRpuLevel:       0,
			BlBitDepthMinus8:  2,
			ElBitDepthMinus8:  2,
			VdrBitDepthMinus8: 6,
		}
	}

	t.Run("valid minimal", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("bad prefix", func(t *testing.T) {
		u := base()
		u.RpuNalPrefix = 1
		if err := u.Validate(); err == nil {
			t.Error("expected error for bad rpu_nal_prefix")
		}
	})

	t.Run("bad vdr bit depth", func(t *testing.T) {
		u := base()
		u.VdrBitDepthMinus8 = 7
		if err := u.Validate(); err == nil {
			t.Error("expected error for vdr_bit_depth_minus_8 > 6")
		}
	})

	t.Run("bad dm block", func(t *testing.T) {
		u := base()
		u.DM = &VdrDmData{AffectedDmMetadataId: 16, SignalBitDepth: 10, SignalEotf: 65535}
		if err := u.Validate(); err == nil {
			t.Error("expected error for affected_dm_metadata_id > 15")
		}
	})

	t.Run("good dm block", func(t *testing.T) {
		u := base()
		u.DM = &VdrDmData{AffectedDmMetadataId: 15, SignalBitDepth: 10, SignalEotf: 65535}
		if err := u.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestDecodeTruncated(t *testing.T) {
	if _, err := Decode([]byte{0x7C, 0x01, 25, 2}); err == nil {
		t.Error("expected an error decoding a truncated payload")
	}
}

func TestDecodeMissingNalHeader(t *testing.T) {
	if _, err := Decode([]byte{25, 2, 3, 4}); err == nil {
		t.Error("expected an error decoding a payload missing the 7C 01 NAL header")
	}
}
