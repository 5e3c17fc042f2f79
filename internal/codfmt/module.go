package codfmt

import (
	"fmt"

	"codtool/internal/bytestream"
)

// RawModule is the fully parsed module container: header, data section,
// code section, and trailer, held together with the byte buffer they were
// parsed from so offsets recorded during parsing stay dereferenceable.
type RawModule struct {
	Data []byte

	Header      *Header
	DataSection *DataSection
	CodeSection *CodeSection
	Trailer     *Trailer
}

// Parse reads a complete module from data: header, then (seeking around)
// the data section, code section, and trailer, in that order — mirroring
// the original parser's header-first / data-section-before-code-section /
// trailer-last traversal rather than a single linear pass, since the code
// section's routine offsets are only meaningful once classDefs are known.
func Parse(data []byte) (*RawModule, error) {
	r := bytestream.New(data)

	hdr, err := ParseHeader(r)
	if err != nil {
		return nil, err
	}

	if err := r.Seek(HeaderSize + int(hdr.CodeSize)); err != nil {
		return nil, fmt.Errorf("codfmt: seek data section: %w", err)
	}
	ds, err := ParseDataSection(r, int(hdr.DataSize))
	if err != nil {
		return nil, fmt.Errorf("codfmt: data section: %w", err)
	}

	if err := r.Seek(HeaderSize); err != nil {
		return nil, fmt.Errorf("codfmt: seek code section: %w", err)
	}
	cs, err := ParseCodeSection(r, int(hdr.CodeSize), ds.ClassDefs)
	if err != nil {
		return nil, fmt.Errorf("codfmt: code section: %w", err)
	}

	if err := r.Seek(HeaderSize + int(hdr.CodeSize) + int(hdr.DataSize)); err != nil {
		return nil, fmt.Errorf("codfmt: seek trailer: %w", err)
	}
	trailer, err := ParseTrailer(r)
	if err != nil {
		return nil, fmt.Errorf("codfmt: trailer: %w", err)
	}

	return &RawModule{
		Data:        data,
		Header:      hdr,
		DataSection: ds,
		CodeSection: cs,
		Trailer:     trailer,
	}, nil
}
