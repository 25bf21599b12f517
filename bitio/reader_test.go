package bitio

import "testing"

func TestReaderGetN(t *testing.T) {
	// 1000 1111, 1110 0011
	data := []byte{0x8f, 0xe3}
	r := NewReader(data)

	tests := []struct {
		n    int
		want uint64
	}{
		{4, 0x8},
		{2, 0x3},
		{4, 0xf},
		{6, 0x23},
	}
	for i, tt := range tests {
		got, err := r.GetN(tt.n)
		if err != nil {
			t.Fatalf("test %d: unexpected error: %v", i, err)
		}
		if got != tt.want {
			t.Errorf("test %d: got %#x, want %#x", i, got, tt.want)
		}
	}
}

func TestReaderGetNTruncated(t *testing.T) {
	r := NewReader([]byte{0xff})
	if _, err := r.GetN(9); err == nil {
		t.Fatal("expected truncated error, got nil")
	}
}

func TestReaderGetUE(t *testing.T) {
	// ue(v) codes: 1 -> 0, 010 -> 1, 011 -> 2, 00100 -> 3, 00101 -> 4.
	// Packed MSB-first: 1 010 011 00100 00101 = 1010 0110 0100 0010 1...
	r := NewReader([]byte{0b10100110, 0b01000010, 0b10000000})
	want := []uint64{0, 1, 2, 3, 4}
	for i, w := range want {
		got, err := r.GetUE()
		if err != nil {
			t.Fatalf("code %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("code %d: got %d, want %d", i, got, w)
		}
	}
}

func TestReaderGetSE(t *testing.T) {
	// se(v) mapping: codeNum 0 -> 0, 1 -> 1, 2 -> -1, 3 -> 2, 4 -> -2.
	r := NewReader([]byte{0b10100110, 0b01000010, 0b10000000})
	want := []int64{0, 1, -1, 2, -2}
	for i, w := range want {
		got, err := r.GetSE()
		if err != nil {
			t.Fatalf("code %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("code %d: got %d, want %d", i, got, w)
		}
	}
}

func TestReaderIsAlignedAndPos(t *testing.T) {
	r := NewReader([]byte{0xff, 0x00})
	if !r.IsAligned() {
		t.Fatal("new reader should be aligned")
	}
	if _, err := r.GetN(3); err != nil {
		t.Fatal(err)
	}
	if r.IsAligned() {
		t.Fatal("reader should not be aligned after reading 3 bits")
	}
	if r.Pos() != 3 {
		t.Fatalf("got pos %d, want 3", r.Pos())
	}
	if r.Remaining() != 13 {
		t.Fatalf("got remaining %d, want 13", r.Remaining())
	}
}

func TestReaderInner(t *testing.T) {
	data := []byte{1, 2, 3}
	r := NewReader(data)
	got := r.Inner()
	if len(got) != len(data) {
		t.Fatalf("got len %d, want %d", len(got), len(data))
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, got[i], data[i])
		}
	}
}
