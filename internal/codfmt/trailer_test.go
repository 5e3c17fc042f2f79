package codfmt

import (
	"testing"

	"codtool/internal/bytestream"
)

func TestParseTrailerMultipleItems(t *testing.T) {
	data := []byte{
		0x01, 0x00, 0x02, 0x00, 'h', 'i',
		0x02, 0x00, 0x00, 0x00,
	}
	r := bytestream.New(data)
	tr, err := ParseTrailer(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(tr.Items))
	}
	if string(tr.Items[0].Value) != "hi" {
		t.Errorf("item 0 value = %q, want hi", tr.Items[0].Value)
	}
	if tr.Items[1].Length != 0 || len(tr.Items[1].Value) != 0 {
		t.Errorf("item 1 = %+v, want empty value", tr.Items[1])
	}
}

func TestParseTrailerEmpty(t *testing.T) {
	r := bytestream.New(nil)
	tr, err := ParseTrailer(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Items) != 0 {
		t.Fatalf("got %d items, want 0", len(tr.Items))
	}
}
