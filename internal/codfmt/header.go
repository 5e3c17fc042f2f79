// Package codfmt parses the on-disk module container: header, data section
// (classes, fixup tables, type pools), code section (routine bytecode), and
// trailer (signature records).
package codfmt

import (
	"fmt"

	"codtool/internal/bytestream"
	"codtool/internal/errkind"
)

// MagicFlashID is the fixed 4-byte magic at the start of every module.
const MagicFlashID uint32 = 0xFFFFC0DE

// HeaderSize is the fixed byte length of Header, used to locate the code
// section immediately following it.
const HeaderSize = 44

var supportedModuleVersions = map[uint16]bool{78: true, 79: true}
var supportedDataVersions = map[uint8]bool{5: true, 6: true}

// Header is the fixed-size module header.
type Header struct {
	FlashID         uint32
	SectionNum      uint32
	VTablePtr       uint32
	Timestamp       uint32
	UserVersion     uint32
	FieldrefPtr     uint32
	MaxTypeListSize uint16
	Reserved        int16
	DataSection     int32
	ModInfo         int32
	Version         uint16
	CodeSize        uint16
	DataSize        uint16
	Flags           uint16
}

// ParseHeader reads and validates the fixed header at the current position.
func ParseHeader(r *bytestream.Reader) (*Header, error) {
	h := &Header{}
	var err error
	if h.FlashID, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header flashid: %w", err)
	}
	if h.SectionNum, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header section_num: %w", err)
	}
	if h.VTablePtr, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header vtable_ptr: %w", err)
	}
	if h.Timestamp, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header timestamp: %w", err)
	}
	if h.UserVersion, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header user_version: %w", err)
	}
	if h.FieldrefPtr, err = r.U32LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header fieldref_ptr: %w", err)
	}
	if h.MaxTypeListSize, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header max_typelist_size: %w", err)
	}
	if h.Reserved, err = r.I16LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header reserved: %w", err)
	}
	if h.DataSection, err = r.I32LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header data_section: %w", err)
	}
	if h.ModInfo, err = r.I32LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header mod_info: %w", err)
	}
	if h.Version, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header version: %w", err)
	}
	if h.CodeSize, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header code_size: %w", err)
	}
	if h.DataSize, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header data_size: %w", err)
	}
	if h.Flags, err = r.U16LE(); err != nil {
		return nil, fmt.Errorf("codfmt: header flags: %w", err)
	}

	if h.FlashID != MagicFlashID {
		return nil, errkind.New(errkind.MalformedModule, "", "", 0,
			fmt.Errorf("bad magic 0x%08x, want 0x%08x", h.FlashID, MagicFlashID))
	}
	if !supportedModuleVersions[h.Version] {
		return nil, errkind.New(errkind.UnsupportedVersion, "", "", 0,
			fmt.Errorf("unsupported module version %d", h.Version))
	}
	return h, nil
}
