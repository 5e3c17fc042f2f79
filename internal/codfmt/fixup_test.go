package codfmt

import (
	"testing"

	"codtool/internal/bytestream"
)

func TestParseFixupListExplicitOffsets(t *testing.T) {
	// count=1 (WORD), member=0x1234 (WORD), offset vector: size=1 (PUS), delta=5 (PUS)
	data := []byte{0x01, 0x00, 0x34, 0x12, 0x01, 0x05}
	r := bytestream.New(data)
	out, err := parseFixupList(r, readCountWord, readWordAsT, 2, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d entries, want 1", len(out))
	}
	if out[0].Member != 0x1234 {
		t.Errorf("member = 0x%x, want 0x1234", out[0].Member)
	}
	if len(out[0].Offsets) != 1 || out[0].Offsets[0] != 5 {
		t.Errorf("offsets = %v, want [5]", out[0].Offsets)
	}
}

func TestParseFixupListNegativeCountImpliesOffsets(t *testing.T) {
	// count=-1 as signed_short -> 0xFFFF; member word=0x0007; offset vector size=0 -> no deltas
	data := []byte{0xFF, 0xFF, 0x07, 0x00, 0x00}
	r := bytestream.New(data)
	out, err := parseFixupList(r, readCountSignedShort, readWordAsT, 2, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d entries, want 1", len(out))
	}
	if out[0].Member != 7 {
		t.Errorf("member = %d, want 7", out[0].Member)
	}
	if out[0].Offsets != nil {
		t.Errorf("offsets = %v, want nil", out[0].Offsets)
	}
}

func TestReadPUSMultiByte(t *testing.T) {
	// 300 = 0b1_0010_1100 -> low 7 bits = 0101100 (0x2c) with continuation, next byte = remaining bits (300>>7=2)
	data := []byte{0x2c | 0x80, 0x02}
	r := bytestream.New(data)
	v, err := readPUS(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 300 {
		t.Errorf("got %d, want 300", v)
	}
}
