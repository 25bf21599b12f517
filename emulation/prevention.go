/*
NAME
  prevention.go

DESCRIPTION
  prevention.go implements the HEVC/Annex-B emulation prevention byte
  transform used to keep RPU and other NAL payloads from accidentally
  containing a start-code-like byte sequence.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package emulation implements the emulation-prevention byte codec
// used by Annex-B framed NAL units: insertion/removal of the 0x03
// byte that keeps a payload from containing a false start code.
package emulation

// Clear strips every 0x03 byte that occurs as the third byte of a
// 00 00 03 run, returning a freshly allocated buffer. It is the
// inverse of Add.
func Clear(buf []byte) []byte {
	out := make([]byte, 0, len(buf))
	zeros := 0
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if zeros >= 2 && b == 0x03 {
			zeros = 0
			continue
		}
		out = append(out, b)
		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}

// Add inserts a 0x03 byte after every two consecutive zero bytes that
// would otherwise be followed by a byte of 0x03 or less (which would
// form, or be mistaken for, a start-code prefix), returning a freshly
// allocated buffer.
func Add(buf []byte) []byte {
	out := make([]byte, 0, len(buf)+len(buf)/2)
	zeros := 0
	for _, b := range buf {
		if zeros >= 2 && b <= 0x03 {
			out = append(out, 0x03)
			zeros = 0
		}
		out = append(out, b)
		if b == 0 {
			zeros++
		} else {
			zeros = 0
		}
	}
	return out
}
