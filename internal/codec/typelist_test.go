package codec

import (
	"testing"

	"codtool/internal/bytestream"
)

func TestParseTypeListShort(t *testing.T) {
	// len_hdr = 0x20 -> (0x20 & 0x70)>>4 = 2 -> length=2 -> after length>0 path: length-- => 1
	// one token follows: code 5 (int)
	data := []byte{0x20, 0x05}
	r := bytestream.New(data)
	tl, err := ParseTypeList(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tl) != 1 {
		t.Fatalf("got %d tokens, want 1", len(tl))
	}
	if tl[0].JTS() != "I" {
		t.Errorf("got %q, want I", tl[0].JTS())
	}
}

func TestParseTypeListRLERun(t *testing.T) {
	// len_hdr=0x40 (short form) -> length=(0x40&0x70)>>4=4 -> length>0: length--=>3
	// payload window = 3 bytes: token1(1B) + rle_hdr(1B) + token2(1B).
	// token1: code 5 (int); rle pair: hdr=0x10 (run=(0x10>>4)+1=2), token code 5
	data := []byte{0x40, 0x05, 0x10, 0x05}
	r := bytestream.New(data)
	tl, err := ParseTypeList(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tl) != 3 {
		t.Fatalf("got %d tokens, want 3 (1 + run of 2)", len(tl))
	}
	for i, tok := range tl {
		if tok.JTS() != "I" {
			t.Errorf("token %d: got %q, want I", i, tok.JTS())
		}
	}
}

func TestSplitJTS(t *testing.T) {
	parts, err := SplitJTS("ILjava/lang/String;[I")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"I", "Ljava/lang/String;", "[I"}
	if len(parts) != len(want) {
		t.Fatalf("got %v, want %v", parts, want)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("part %d: got %q, want %q", i, parts[i], want[i])
		}
	}
}

func TestParseJTSListRoundTrip(t *testing.T) {
	tl, err := ParseJTSList("ZB[[D", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tl.JTS(false); got != "ZB[[D" {
		t.Errorf("got %q, want ZB[[D", got)
	}
	// An array of double is a single reference slot, not a wide value.
	if tl.Slots() != 1+1+1 {
		t.Errorf("slots = %d, want 3", tl.Slots())
	}
}
