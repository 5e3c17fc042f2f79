package codfmt

import "testing"

func TestDataSectionTypeTokenPrimitive(t *testing.T) {
	raw := []byte{byte(5)} // CodeInt
	ds := &DataSection{Raw: raw}
	tt, err := ds.TypeToken(0)
	if err != nil {
		t.Fatal(err)
	}
	if tt.Primitive != "int" {
		t.Errorf("primitive = %q, want int", tt.Primitive)
	}
}

func TestDataSectionTypeTokenObject(t *testing.T) {
	raw := []byte{byte(7), 0x01, 0x02} // CodeClass7, mod_index=1, class_index=2
	ds := &DataSection{Raw: raw}
	tt, err := ds.TypeToken(0)
	if err != nil {
		t.Fatal(err)
	}
	if !tt.IsObject || tt.ClassID.ModIndex != 1 || tt.ClassID.ClassIndex != 2 {
		t.Errorf("got %+v", tt)
	}
}

func TestDataSectionTypeTokenOffsetOutOfRange(t *testing.T) {
	ds := &DataSection{Raw: []byte{1, 2, 3}}
	if _, err := ds.TypeToken(10); err == nil {
		t.Error("expected an error for an out-of-range offset")
	}
}

func TestDataSectionTypeList(t *testing.T) {
	// length header 0x40 -> (0x40&0x70)>>4 = 4, less one = 3 payload
	// bytes: the first token (1 byte), then one RLE-header+token pair
	// (2 bytes) for a second, single-repeat entry.
	raw := []byte{
		0x40,    // length header
		byte(5), // first token: int
		0x00,    // RLE header: repeat count 1
		byte(6), // second token: long
	}
	ds := &DataSection{Raw: raw}
	tl, err := ds.TypeList(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tl) != 2 || tl[0].Primitive != "int" || tl[1].Primitive != "long" {
		t.Errorf("got %+v", tl)
	}
}
