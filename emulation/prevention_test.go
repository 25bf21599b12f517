package emulation

import (
	"bytes"
	"testing"
)

func TestClear(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"empty", nil, []byte{}},
		{"no emulation", []byte{1, 2, 3, 4}, []byte{1, 2, 3, 4}},
		{"single run", []byte{0, 0, 3, 1}, []byte{0, 0, 1}},
		{"overlapping zeros", []byte{0, 0, 0, 3}, []byte{0, 0, 0}},
		{"two runs", []byte{0, 0, 3, 0, 0, 3, 1}, []byte{0, 0, 0, 0, 1}},
		{"03 not after two zeros is kept", []byte{1, 0, 3, 1}, []byte{1, 0, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clear(tt.in)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Clear(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"empty", nil, []byte{}},
		{"no trigger", []byte{1, 2, 3, 4}, []byte{1, 2, 3, 4}},
		{"00 00 00", []byte{0, 0, 0, 1}, []byte{0, 0, 3, 0, 1}},
		{"00 00 01", []byte{0, 0, 1, 1}, []byte{0, 0, 3, 1, 1}},
		{"00 00 03", []byte{0, 0, 3}, []byte{0, 0, 3, 3}},
		{"00 00 04 not triggered", []byte{0, 0, 4}, []byte{0, 0, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Add(tt.in)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Add(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// Any byte sequence, once escaped with Add and then unescaped with
	// Clear, must return to the original.
	inputs := [][]byte{
		{},
		{1, 2, 3},
		{0, 0, 0, 0, 1, 2},
		{0, 0, 1, 0, 0, 2, 0, 0, 3, 0, 0, 0},
		{0xff, 0, 0, 0x80, 0, 0, 1},
	}
	for _, in := range inputs {
		escaped := Add(in)
		got := Clear(escaped)
		if !bytes.Equal(got, in) {
			t.Errorf("Clear(Add(%v)) = %v, want %v", in, got, in)
		}
	}
}
