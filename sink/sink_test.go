package sink

import (
	"bytes"
	"testing"
)

func TestWriteRPU_dedicatedSink(t *testing.T) {
	var rpuBuf, elBuf bytes.Buffer
	set := &Set{RPU: New(&rpuBuf, 0), EL: New(&elBuf, 0)}

	startCode := []byte{0, 0, 0, 1}
	payload := []byte{0x7C, 0x01, 0xAA, 0xBB}
	if err := set.WriteRPU(startCode, payload); err != nil {
		t.Fatalf("WriteRPU: %v", err)
	}
	set.Flush()

	want := []byte{0, 0, 0, 1, 0xAA, 0xBB}
	if !bytes.Equal(rpuBuf.Bytes(), want) {
		t.Errorf("RPU sink = % x, want % x (7C 01 should be stripped)", rpuBuf.Bytes(), want)
	}
	if elBuf.Len() != 0 {
		t.Errorf("EL sink should be untouched when an RPU sink exists, got % x", elBuf.Bytes())
	}
}

func TestWriteRPU_fallbackToEL(t *testing.T) {
	var elBuf bytes.Buffer
	set := &Set{EL: New(&elBuf, 0)}

	startCode := []byte{0, 0, 0, 1}
	payload := []byte{0x7C, 0x01, 0xAA, 0xBB}
	if err := set.WriteRPU(startCode, payload); err != nil {
		t.Fatalf("WriteRPU: %v", err)
	}
	set.Flush()

	want := []byte{0, 0, 0, 1, 0x7C, 0x01, 0xAA, 0xBB}
	if !bytes.Equal(elBuf.Bytes(), want) {
		t.Errorf("EL fallback = % x, want % x (7C 01 should be retained)", elBuf.Bytes(), want)
	}
}

func TestWriteRPU_noSink(t *testing.T) {
	set := &Set{}
	if err := set.WriteRPU([]byte{0, 0, 0, 1}, []byte{0x7C, 0x01}); err != nil {
		t.Errorf("WriteRPU with no sinks configured should be a silent no-op, got %v", err)
	}
}

func TestSetValidate(t *testing.T) {
	if err := (&Set{}).Validate(); err != ErrNoSink {
		t.Errorf("Validate() on an empty Set = %v, want ErrNoSink", err)
	}

	var buf bytes.Buffer
	if err := (&Set{BL: New(&buf, 0)}).Validate(); err != nil {
		t.Errorf("Validate() with a BL sink = %v, want nil", err)
	}
}

func TestNilSinkAbsorbsWrites(t *testing.T) {
	var s *Sink
	if err := s.write([]byte("ignored")); err != nil {
		t.Errorf("nil Sink write = %v, want nil", err)
	}
	if err := s.Flush(); err != nil {
		t.Errorf("nil Sink Flush = %v, want nil", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("nil Sink Close = %v, want nil", err)
	}
}
