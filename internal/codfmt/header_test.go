package codfmt

import (
	"encoding/binary"
	"testing"

	"codtool/internal/bytestream"
)

func validHeaderBytes() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:], MagicFlashID)
	binary.LittleEndian.PutUint32(buf[4:], 1)  // section_num
	binary.LittleEndian.PutUint32(buf[8:], 2)  // vtable_ptr
	binary.LittleEndian.PutUint32(buf[12:], 3) // timestamp
	binary.LittleEndian.PutUint32(buf[16:], 4) // user_version
	binary.LittleEndian.PutUint32(buf[20:], 5) // fieldref_ptr
	binary.LittleEndian.PutUint16(buf[24:], 100) // max_typelist_size
	binary.LittleEndian.PutUint16(buf[26:], 0)   // reserved
	binary.LittleEndian.PutUint32(buf[28:], 0)   // data_section
	binary.LittleEndian.PutUint32(buf[32:], 0)   // mod_info
	binary.LittleEndian.PutUint16(buf[36:], 78)  // version
	binary.LittleEndian.PutUint16(buf[38:], 10)  // code_size
	binary.LittleEndian.PutUint16(buf[40:], 20)  // data_size
	binary.LittleEndian.PutUint16(buf[42:], 0)   // flags
	return buf
}

func TestParseHeaderValid(t *testing.T) {
	r := bytestream.New(validHeaderBytes())
	h, err := ParseHeader(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.CodeSize != 10 || h.DataSize != 20 || h.Version != 78 {
		t.Errorf("got %+v", h)
	}
	if r.Tell() != HeaderSize {
		t.Errorf("cursor at %d, want %d", r.Tell(), HeaderSize)
	}
}

func TestParseHeaderBadMagic(t *testing.T) {
	buf := validHeaderBytes()
	buf[0] = 0
	r := bytestream.New(buf)
	if _, err := ParseHeader(r); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestParseHeaderUnsupportedVersion(t *testing.T) {
	buf := validHeaderBytes()
	binary.LittleEndian.PutUint16(buf[36:], 1)
	r := bytestream.New(buf)
	if _, err := ParseHeader(r); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}
